package domain

import "time"

// Config represents the complete harness configuration
type Config struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	// Timeout bounds a whole run, e.g. "5m".
	Timeout     string      `yaml:"timeout"`
	UserAgent   string      `yaml:"user_agent"`
	ReportsDir  string      `yaml:"reports_dir"`
	MetricsFile string      `yaml:"metrics_file,omitempty"`
	Performance Performance `yaml:"performance"`
	Retry       Retry       `yaml:"retry"`
	TestData    TestData    `yaml:"test_data"`
	Rate        float64     `yaml:"rate" validate:"gte=0"`
	Verbose     bool        `yaml:"verbose"`
	HTMLReport  bool        `yaml:"html_report"`
}

// Performance holds response-time thresholds in milliseconds.
type Performance struct {
	MaxResponseTimeMs        int `yaml:"max_response_time_ms" validate:"gt=0"`
	AcceptableResponseTimeMs int `yaml:"acceptable_response_time_ms" validate:"gt=0,ltefield=MaxResponseTimeMs"`
}

// MaxResponseTime returns the hard threshold as a duration.
func (p Performance) MaxResponseTime() time.Duration {
	return time.Duration(p.MaxResponseTimeMs) * time.Millisecond
}

// Retry holds retry settings. They are loaded and reported but no component retries requests.
type Retry struct {
	MaxRetries   int `yaml:"max_retries" validate:"gte=0"`
	RetryDelayMs int `yaml:"retry_delay_ms" validate:"gte=0"`
}

// TestData holds fixtures used by the built-in suite.
type TestData struct {
	ValidCountries   []string `yaml:"valid_countries"`
	InvalidCountries []string `yaml:"invalid_countries"`
	CountryCodes     []string `yaml:"country_codes"`
	Regions          []string `yaml:"regions"`
}

// TesterConfig represents the configuration for the request tester
type TesterConfig struct {
	// Headers are sent with every request; per-request headers win.
	Headers   map[string]string
	UserAgent string
	// Rate limits requests per second; zero disables pacing.
	Rate float64
}

// DefaultConfig returns the default configuration targeting REST Countries v3.1
func DefaultConfig() Config {
	return Config{
		BaseURL:    "https://restcountries.com/v3.1",
		Timeout:    "5m",
		UserAgent:  "apiprobe/1.0",
		ReportsDir: "reports/json-reports",
		Performance: Performance{
			MaxResponseTimeMs:        2000,
			AcceptableResponseTimeMs: 1000,
		},
		Retry: Retry{
			MaxRetries:   3,
			RetryDelayMs: 1000,
		},
		TestData: DefaultTestData(),
	}
}

// DefaultTestData returns the built-in fixture identifiers
func DefaultTestData() TestData {
	return TestData{
		ValidCountries:   []string{"israel", "usa", "france", "germany", "japan"},
		InvalidCountries: []string{"nonexistentcountry123", ""},
		CountryCodes:     []string{"il", "us", "fr", "de", "jp"},
		Regions:          []string{"europe", "asia", "americas", "africa", "oceania"},
	}
}
