package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KilimcininKorOglu/sonda/internal/config"
	"github.com/KilimcininKorOglu/sonda/internal/diag"
	"github.com/KilimcininKorOglu/sonda/internal/discover"
	"github.com/KilimcininKorOglu/sonda/internal/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Flags
	infoOnly       bool
	quiet          bool
	pingTargets    []string
	timeout        time.Duration
	publicResolver string
	verbose        bool
	jsonOutput     bool
	noColor        bool

	// Config file
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sonda [flags]",
	Short: "Network reachability checker",
	Long: `Sonda - a small network reachability checker

Sonda reports the host's network identity (local address, configured
DNS servers, public address) and checks basic connectivity by pinging
the configured resolvers, a well-known public resolver, and any extra
targets you name.

Features:
  • Local, DNS and public address discovery
  • ICMP Echo probes with an unprivileged fallback
  • Per-target status: OK, FAILED, NO_PERMISSION, ...
  • Multiple output formats: text, JSON, table
  • Configuration file support (~/.config/sonda/config.yaml)

Examples:
  sonda                         Full check with defaults
  sonda -p 1.1.1.1 -p host.example  Ping extra targets
  sonda -n                      Report network info only
  sonda -q                      Skip the network info block
  sonda -v                      Verbose table output
  sonda --json                  JSON output
  sonda config --init           Create default config file`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runDiagnostics,
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.config/sonda/config.yaml)")

	// Run mode flags
	rootCmd.Flags().BoolVarP(&infoOnly, "info-only", "n", false, "Report network information, skip pinging")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the network information block")

	// Probe parameters
	rootCmd.Flags().StringArrayVarP(&pingTargets, "ping", "p", nil, "Extra target to ping (repeatable)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "w", 0, "Per-probe reply timeout")
	rootCmd.Flags().StringVar(&publicResolver, "public-resolver", "", "Well-known resolver to ping (default 8.8.8.8)")

	// Output flags
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed table output")
	rootCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads configuration from file and applies defaults.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error

	if cfgFile != "" {
		// Custom config file specified
		cfg, err = config.LoadFrom(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}
	}

	// Apply config defaults if flags not explicitly set
	applyConfigDefaults(cmd)

	return nil
}

// applyConfigDefaults applies config file values for unset flags.
func applyConfigDefaults(cmd *cobra.Command) {
	if cfg == nil {
		return
	}

	defaults := cfg.Defaults

	// Run mode from config (if no flag set)
	if !cmd.Flags().Changed("info-only") && defaults.InfoOnly {
		infoOnly = true
	}
	if !cmd.Flags().Changed("quiet") && defaults.Quiet {
		quiet = true
	}

	// Output mode from config
	if !cmd.Flags().Changed("verbose") && defaults.Verbose {
		verbose = true
	}
	if !cmd.Flags().Changed("json") && defaults.JSON {
		jsonOutput = true
	}
	if !cmd.Flags().Changed("no-color") && defaults.NoColor {
		noColor = true
	}

	// Probe parameters from config
	if !cmd.Flags().Changed("timeout") {
		if defaults.Timeout > 0 {
			timeout = defaults.Timeout.Duration()
		} else {
			timeout = 1 * time.Second
		}
	}
	if !cmd.Flags().Changed("public-resolver") {
		if defaults.PublicResolver != "" {
			publicResolver = defaults.PublicResolver
		} else {
			publicResolver = diag.DefaultPublicResolver
		}
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Sonda %s\n", version)
		fmt.Printf("  Commit: %s\n", commit)
		fmt.Printf("  Built:  %s\n", date)
		fmt.Printf("  Config: %s\n", config.GetConfigPath())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage Sonda configuration file.

Commands:
  sonda config --init     Create default config file
  sonda config --show     Show example configuration
  sonda config --path     Show config file path`,
	RunE: runConfig,
}

var (
	configInit bool
	configShow bool
	configPath bool
)

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Create default config file")
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show example configuration")
	configCmd.Flags().BoolVar(&configPath, "path", false, "Show config file path")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configPath {
		fmt.Println(config.GetConfigPath())
		return nil
	}

	if configInit {
		path := config.GetConfigPath()

		// Check if file already exists
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}

		cfg := config.DefaultConfig()
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}

		fmt.Printf("Created config file: %s\n", path)
		fmt.Println("\nEdit this file to customize defaults.")
		return nil
	}

	if configShow {
		fmt.Println(config.GenerateExample())
		return nil
	}

	// No flag specified, show help
	return cmd.Help()
}

func runDiagnostics(cmd *cobra.Command, args []string) error {
	if noColor {
		color.NoColor = true
	}

	// Build run configuration
	diagConfig := diag.DefaultConfig()
	diagConfig.InfoOnly = infoOnly
	diagConfig.Quiet = quiet
	diagConfig.Targets = resolveAliases(pingTargets)
	diagConfig.Timeout = timeout
	diagConfig.PublicResolver = publicResolver
	diagConfig.Discovery = discoveryConfig()

	outputConfig := output.Config{Colors: !noColor}

	// For streaming text output, set up snapshot and result callbacks.
	// JSON and table output render the full report at once instead.
	streaming := !jsonOutput && !verbose
	if streaming {
		textFormatter := output.NewTextFormatter(outputConfig)
		snapshotShown := false
		resultsStarted := false

		diagConfig.OnSnapshot = func(snapshot *discover.Snapshot) {
			fmt.Print(textFormatter.FormatSnapshot(snapshot))
			snapshotShown = true
		}
		diagConfig.OnResult = func(result *diag.Result) {
			if !resultsStarted {
				resultsStarted = true
				if snapshotShown {
					fmt.Println()
				}
				fmt.Println("Pinging ...")
				if result.Kind != diag.KindDNSServer {
					// No resolvers were discovered; show the placeholder.
					fmt.Print(textFormatter.SkippedLine())
				}
			}
			fmt.Print(textFormatter.FormatResult(result))
			os.Stdout.Sync()
		}
	}

	runner, err := diag.New(diagConfig)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !jsonOutput {
		printBanner()
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	// Streaming text already printed everything as it happened.
	if streaming {
		return nil
	}

	format := output.FormatVerbose
	if jsonOutput {
		format = output.FormatJSON
	}
	writer := output.NewWriter(format, outputConfig)
	return writer.Write(report)
}

// printBanner prints the greeting line above the report.
func printBanner() {
	title := "Sonda - network check"
	if !noColor {
		title = color.New(color.FgCyan, color.Bold).Sprint(title)
	}
	fmt.Printf("%s\n\n", title)
}

// resolveAliases substitutes configured aliases for matching targets.
func resolveAliases(targets []string) []string {
	if cfg == nil || len(cfg.Aliases) == 0 {
		return targets
	}

	resolved := make([]string, len(targets))
	for i, t := range targets {
		if alias, ok := cfg.Aliases[t]; ok {
			resolved[i] = alias
		} else {
			resolved[i] = t
		}
	}
	return resolved
}

// discoveryConfig builds the discovery settings, applying any endpoint
// chain override from the config file.
func discoveryConfig() discover.Config {
	var dc discover.Config
	if cfg == nil {
		return dc
	}

	for _, ep := range cfg.Endpoints {
		dc.Endpoints = append(dc.Endpoints, discover.Endpoint{
			URL:  ep.URL,
			Kind: discover.BodyKind(ep.Kind),
		})
	}
	return dc
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets version information for the CLI.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}
