// Package config handles loading and saving harness configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vnykmshr/apiprobe/internal/domain"
)

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default} syntax
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Loader handles loading configuration from various sources
type Loader struct {
	validate *validator.Validate
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{validate: validator.New()}
}

// LoadFromFile loads configuration from a YAML file.
// Supports environment variable substitution using ${VAR_NAME} syntax.
// Optional default values can be specified with ${VAR_NAME:-default}.
func (l *Loader) LoadFromFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: config path is user supplied
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w\nCheck if file exists and has read permissions", path, err)
	}

	// Substitute environment variables before parsing YAML
	expandedData, err := substituteEnvVars(string(data))
	if err != nil {
		return nil, fmt.Errorf("environment variable substitution failed: %w", err)
	}

	var config domain.Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("invalid YAML in config file: %w\nVerify YAML syntax at %s", err, path)
	}

	return &config, nil
}

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// Supports ${VAR_NAME:-default} syntax for default values when env var is not set.
// Returns an error if a required env var (no default) is not set.
// Note: ${VAR:-} with empty default is valid and means "use empty string if VAR is unset".
func substituteEnvVars(content string) (string, error) {
	var missingVars []string

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := strings.Contains(match, ":-")
		defaultValue := ""
		if hasDefault && len(submatches) > 2 {
			defaultValue = submatches[2]
		}

		// Use LookupEnv to distinguish between unset and empty env vars
		value, isSet := os.LookupEnv(varName)
		if !isSet {
			if hasDefault {
				return defaultValue
			}
			missingVars = append(missingVars, varName)
			return match
		}
		return value
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing required environment variables: %v\nSet these variables or provide defaults using ${VAR:-default} syntax", missingVars)
	}

	return result, nil
}

// SaveToFile saves configuration to a YAML file
func (l *Loader) SaveToFile(config *domain.Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("cannot write config file %s: %w\nCheck directory exists and has write permissions", path, err)
	}

	return nil
}

// MergeWithDefaults merges provided config with defaults
func (l *Loader) MergeWithDefaults(config *domain.Config) *domain.Config {
	defaults := domain.DefaultConfig()

	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == "" {
		config.Timeout = defaults.Timeout
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.ReportsDir == "" {
		config.ReportsDir = defaults.ReportsDir
	}

	// Merge performance thresholds
	if config.Performance.MaxResponseTimeMs == 0 {
		config.Performance.MaxResponseTimeMs = defaults.Performance.MaxResponseTimeMs
	}
	if config.Performance.AcceptableResponseTimeMs == 0 {
		config.Performance.AcceptableResponseTimeMs = min(
			defaults.Performance.AcceptableResponseTimeMs,
			config.Performance.MaxResponseTimeMs)
	}

	// An absent retry block keeps the documented defaults
	if config.Retry == (domain.Retry{}) {
		config.Retry = defaults.Retry
	}

	if config.TestData.ValidCountries == nil {
		config.TestData.ValidCountries = defaults.TestData.ValidCountries
	}
	if config.TestData.InvalidCountries == nil {
		config.TestData.InvalidCountries = defaults.TestData.InvalidCountries
	}
	if config.TestData.CountryCodes == nil {
		config.TestData.CountryCodes = defaults.TestData.CountryCodes
	}
	if config.TestData.Regions == nil {
		config.TestData.Regions = defaults.TestData.Regions
	}

	return config
}

// Validate checks struct constraints and values the tags cannot express.
func (l *Loader) Validate(config *domain.Config) error {
	if err := l.validate.Struct(config); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			msgs := make([]string, 0, len(validationErrs))
			for _, fe := range validationErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s' (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := time.ParseDuration(config.Timeout); err != nil {
		return fmt.Errorf("invalid configuration: timeout %q: %w", config.Timeout, err)
	}

	return nil
}
