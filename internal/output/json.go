package output

import (
	"encoding/json"

	"github.com/KilimcininKorOglu/sonda/internal/diag"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	config Config
	pretty bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(config Config) *JSONFormatter {
	return &JSONFormatter{
		config: config,
		pretty: true, // Default to pretty-printed
	}
}

// SetPretty enables or disables pretty-printing.
func (f *JSONFormatter) SetPretty(pretty bool) {
	f.pretty = pretty
}

// Format formats the report as JSON.
func (f *JSONFormatter) Format(report *diag.Report) ([]byte, error) {
	output := toJSONOutput(report)

	if f.pretty {
		return json.MarshalIndent(output, "", "  ")
	}
	return json.Marshal(output)
}

// JSONOutput is the JSON-serializable representation of a report.
type JSONOutput struct {
	Timestamp string       `json:"timestamp"`
	Network   *JSONNetwork `json:"network,omitempty"`
	Results   []JSONResult `json:"results"`
}

// JSONNetwork represents the network snapshot in JSON format.
type JSONNetwork struct {
	LocalIP  string   `json:"local_ip,omitempty"`
	DNS      []string `json:"dns_servers"`
	PublicIP string   `json:"public_ip,omitempty"`
}

// JSONResult represents a single probe outcome in JSON format.
type JSONResult struct {
	Target    string `json:"target"`
	Address   string `json:"address,omitempty"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Reachable bool   `json:"reachable"`
}

// toJSONOutput converts a Report to JSONOutput.
func toJSONOutput(report *diag.Report) *JSONOutput {
	output := &JSONOutput{
		Timestamp: report.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		Results:   make([]JSONResult, len(report.Results)),
	}

	if report.Snapshot != nil {
		output.Network = &JSONNetwork{
			LocalIP:  report.Snapshot.LocalAddress,
			DNS:      report.Snapshot.DNSServers,
			PublicIP: report.Snapshot.PublicAddress,
		}
	}

	for i := range report.Results {
		result := &report.Results[i]
		output.Results[i] = JSONResult{
			Target:    result.Name,
			Address:   result.Address,
			Kind:      result.Kind.String(),
			Status:    result.Status.String(),
			Reachable: result.Status.Reachable(),
		}
	}

	return output
}

// ContentType returns the MIME type for JSON output.
func (f *JSONFormatter) ContentType() string {
	return "application/json"
}

// FileExtension returns the file extension for JSON output.
func (f *JSONFormatter) FileExtension() string {
	return "json"
}
