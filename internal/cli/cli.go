// Package cli wires configuration, credentials and the run pipeline behind
// the apiprobe cobra commands.
package cli

// ConfigOptions holds command-line flag values for configuration.
// These are passed to LoadConfiguration to build the final Config.
type ConfigOptions struct {
	BaseURL           string
	Timeout           string
	UserAgent         string
	ReportsDir        string
	MetricsFile       string
	AuthType          string
	AuthUsername      string
	AuthHeader        string
	Rate              float64
	MaxResponseTimeMs int
	Verbose           bool
	HTMLReport        bool
	AuthPasswordStdin bool
	AuthTokenStdin    bool
}
