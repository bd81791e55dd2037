package cli

import (
	"github.com/vnykmshr/apiprobe/internal/config"
	"github.com/vnykmshr/apiprobe/internal/domain"
)

// LoadConfiguration loads configuration from file (if provided) and merges with CLI options.
// CLI flags override file configuration values. The merged result is validated.
func LoadConfiguration(configPath string, opts *ConfigOptions) (*domain.Config, error) {
	loader := config.NewLoader()

	var cfg *domain.Config

	if configPath != "" {
		loadedCfg, err := loader.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loadedCfg
	} else {
		defaultCfg := domain.DefaultConfig()
		cfg = &defaultCfg
	}

	// Override with CLI flags (if provided)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Timeout != "" {
		cfg.Timeout = opts.Timeout
	}
	if opts.UserAgent != "" {
		cfg.UserAgent = opts.UserAgent
	}
	if opts.ReportsDir != "" {
		cfg.ReportsDir = opts.ReportsDir
	}
	if opts.MetricsFile != "" {
		cfg.MetricsFile = opts.MetricsFile
	}
	if opts.Rate != 0 {
		cfg.Rate = opts.Rate
	}
	if opts.MaxResponseTimeMs != 0 {
		cfg.Performance.MaxResponseTimeMs = opts.MaxResponseTimeMs
		if cfg.Performance.AcceptableResponseTimeMs > opts.MaxResponseTimeMs {
			cfg.Performance.AcceptableResponseTimeMs = opts.MaxResponseTimeMs
		}
	}
	if opts.Verbose {
		cfg.Verbose = true
	}
	if opts.HTMLReport {
		cfg.HTMLReport = true
	}

	cfg = loader.MergeWithDefaults(cfg)
	if err := loader.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
