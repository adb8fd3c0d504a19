package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KilimcininKorOglu/sonda/internal/diag"
	"github.com/KilimcininKorOglu/sonda/internal/discover"
	"github.com/KilimcininKorOglu/sonda/internal/probe"
	"github.com/fatih/color"
)

const undetermined = "<could not determine>"

// TextFormatter renders reports in the classic troubleshooter style: a
// network info block followed by one line per probe target.
type TextFormatter struct {
	config Config
	colors *ColorScheme
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(config Config) *TextFormatter {
	var colors *ColorScheme
	if config.Colors {
		colors = DefaultColorScheme()
	}

	return &TextFormatter{
		config: config,
		colors: colors,
	}
}

// Format formats the whole report as text.
func (f *TextFormatter) Format(report *diag.Report) ([]byte, error) {
	var buf bytes.Buffer

	if report.Snapshot != nil {
		buf.WriteString(f.FormatSnapshot(report.Snapshot))
	}

	if report.Results != nil {
		if report.Snapshot != nil {
			buf.WriteString("\n")
		}
		buf.WriteString("Pinging ...\n")

		if !hasDNSServerResults(report) {
			buf.WriteString(f.skippedLine())
		}
		for i := range report.Results {
			buf.WriteString(f.FormatResult(&report.Results[i]))
		}
	}

	return buf.Bytes(), nil
}

// FormatSnapshot renders the network info block. Absent fields show as
// undetermined rather than disappearing.
func (f *TextFormatter) FormatSnapshot(snapshot *discover.Snapshot) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Local IP Address: %s\n", f.valueOr(snapshot.LocalAddress))
	if len(snapshot.DNSServers) > 0 {
		fmt.Fprintf(&buf, "DNS Server(s): %s\n", f.value(strings.Join(snapshot.DNSServers, ", ")))
	} else {
		fmt.Fprintf(&buf, "DNS Server(s): %s\n", undetermined)
	}
	fmt.Fprintf(&buf, "Public IP Address: %s\n", f.valueOr(snapshot.PublicAddress))

	return buf.String()
}

// FormatResult renders a single target line. This is also used for
// streaming output while the run progresses.
func (f *TextFormatter) FormatResult(result *diag.Result) string {
	status := result.Status.String()
	if f.colors != nil {
		status = f.colors.status(result.Status).Sprint(status)
	}

	switch result.Kind {
	case diag.KindDNSServer:
		return fmt.Sprintf("default DNS Server %s: %s\n", result.Name, status)
	case diag.KindPublicResolver:
		return fmt.Sprintf("public DNS Server %s: %s\n", result.Name, status)
	default:
		if result.Renamed() {
			return fmt.Sprintf("%s %s: %s\n", result.Name, result.Address, status)
		}
		return fmt.Sprintf("%s: %s\n", result.Name, status)
	}
}

// SkippedLine is the placeholder emitted when no DNS servers were
// discovered; the entry is presentation only and is never probed.
func (f *TextFormatter) SkippedLine() string {
	return f.skippedLine()
}

func (f *TextFormatter) skippedLine() string {
	skipped := "SKIPPED"
	if f.colors != nil {
		skipped = f.colors.Skipped.Sprint(skipped)
	}
	return fmt.Sprintf("default DNS Server <none found>: %s\n", skipped)
}

func (f *TextFormatter) valueOr(v string) string {
	if v == "" {
		return undetermined
	}
	return f.value(v)
}

func (f *TextFormatter) value(v string) string {
	if f.colors != nil {
		return f.colors.Value.Sprint(v)
	}
	return v
}

// hasDNSServerResults reports whether any probe target came from the
// discovered resolver list.
func hasDNSServerResults(report *diag.Report) bool {
	for i := range report.Results {
		if report.Results[i].Kind == diag.KindDNSServer {
			return true
		}
	}
	return false
}

// ContentType returns the MIME type for text output.
func (f *TextFormatter) ContentType() string {
	return "text/plain"
}

// FileExtension returns the file extension for text output.
func (f *TextFormatter) FileExtension() string {
	return "txt"
}

// ColorScheme defines colors for different output elements.
type ColorScheme struct {
	Header  *color.Color
	Value   *color.Color
	OK      *color.Color
	Failed  *color.Color
	Skipped *color.Color
	Error   *color.Color
}

// DefaultColorScheme returns the default color scheme.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Header:  color.New(color.FgWhite, color.Bold),
		Value:   color.New(color.FgCyan),
		OK:      color.New(color.FgGreen),
		Failed:  color.New(color.FgRed),
		Skipped: color.New(color.FgYellow),
		Error:   color.New(color.FgRed, color.Bold),
	}
}

// status picks the color for a probe status.
func (c *ColorScheme) status(s probe.Status) *color.Color {
	switch s {
	case probe.StatusOK:
		return c.OK
	case probe.StatusFailed:
		return c.Failed
	case probe.StatusError:
		return c.Error
	default:
		return c.Skipped
	}
}
