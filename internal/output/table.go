package output

import (
	"bytes"
	"fmt"

	"github.com/KilimcininKorOglu/sonda/internal/diag"
	"github.com/olekukonko/tablewriter"
)

// TableFormatter formats reports as a detailed table.
type TableFormatter struct {
	config Config
	colors *ColorScheme
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(config Config) *TableFormatter {
	var colors *ColorScheme
	if config.Colors {
		colors = DefaultColorScheme()
	}

	return &TableFormatter{
		config: config,
		colors: colors,
	}
}

// Format formats the report as a detailed table.
func (f *TableFormatter) Format(report *diag.Report) ([]byte, error) {
	var buf bytes.Buffer

	f.writeHeader(&buf, report)

	if report.Results != nil {
		table := tablewriter.NewWriter(&buf)
		f.configureTable(table)
		table.SetHeader([]string{"Target", "Address", "Origin", "Status"})

		for i := range report.Results {
			table.Append(f.formatRow(&report.Results[i]))
		}

		table.Render()
		f.writeSummary(&buf, report)
	}

	return buf.Bytes(), nil
}

// writeHeader writes the snapshot block above the table.
func (f *TableFormatter) writeHeader(buf *bytes.Buffer, report *diag.Report) {
	header := fmt.Sprintf("Run: %s\n", report.Timestamp.Format("2006-01-02 15:04:05"))
	if f.colors != nil {
		header = f.colors.Header.Sprint(header)
	}
	buf.WriteString(header)

	if report.Snapshot != nil {
		text := NewTextFormatter(f.config)
		buf.WriteString(text.FormatSnapshot(report.Snapshot))
	}
	buf.WriteString("\n")
}

// configureTable sets up the table appearance.
func (f *TableFormatter) configureTable(table *tablewriter.Table) {
	table.SetBorder(true)
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("│")
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.SetHeaderLine(true)
	table.SetTablePadding(" ")
}

// formatRow formats a single probe result as a table row.
func (f *TableFormatter) formatRow(result *diag.Result) []string {
	address := result.Address
	if address == "" {
		address = "-"
	}

	status := result.Status.String()
	if f.colors != nil {
		status = f.colors.status(result.Status).Sprint(status)
	}

	return []string{result.Name, address, result.Kind.String(), status}
}

// writeSummary writes the run summary below the table.
func (f *TableFormatter) writeSummary(buf *bytes.Buffer, report *diag.Report) {
	buf.WriteString("\nSummary:\n")
	fmt.Fprintf(buf, "  Targets:     %d\n", len(report.Results))
	fmt.Fprintf(buf, "  Reachable:   %d\n", report.Reachable())
	fmt.Fprintf(buf, "  Unreachable: %d\n", len(report.Results)-report.Reachable())
}

// ContentType returns the MIME type for table output.
func (f *TableFormatter) ContentType() string {
	return "text/plain"
}

// FileExtension returns the file extension for table output.
func (f *TableFormatter) FileExtension() string {
	return "txt"
}
