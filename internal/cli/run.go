package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/apiprobe/internal/domain"
	"github.com/vnykmshr/apiprobe/internal/metrics"
	"github.com/vnykmshr/apiprobe/internal/reporter"
	"github.com/vnykmshr/apiprobe/internal/suite"
	"github.com/vnykmshr/apiprobe/internal/tester"
)

// ErrChecksFailed is returned by a run in which at least one check failed.
var ErrChecksFailed = errors.New("one or more checks failed")

// builtinReportName names reports of the built-in suite.
const builtinReportName = "countries-api"

// RunOptions holds everything the run command needs besides configuration flags.
type RunOptions struct {
	Stdin           io.Reader
	Stdout          io.Writer
	Stderr          io.Writer
	ConfigPath      string
	ReportName      string
	SuiteFiles      []string
	Config          ConfigOptions
	Iterations      int
	AllowPrivateIPs bool
	Interactive     bool
}

func newRunCommand() *cobra.Command {
	opts := RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [suite.yaml ...]",
		Short: "Run test suites and write a report",
		Long: `Run one or more YAML suites, or the built-in REST Countries suite when no
file is given. Results are written as a JSON report under the reports
directory and summarized on stdout. The exit code is non-zero when any
check fails.

Examples:
  apiprobe run
  apiprobe run --url http://127.0.0.1:8089/v3.1 --allow-private-ips
  apiprobe run suites/countries.yaml --html --metrics-file apiprobe.prom
  APIPROBE_AUTH_TOKEN=abc apiprobe run api.yaml --auth-type bearer`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.SuiteFiles = args
			opts.Stdin = cmd.InOrStdin()
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()
			opts.Interactive = IsInteractiveTerminal()
			return Run(cmd.Context(), &opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (YAML)")
	flags.StringVar(&opts.Config.BaseURL, "url", "", "Base URL of the API under test")
	flags.StringVar(&opts.Config.Timeout, "timeout", "", "Deadline for the whole run (e.g. 30s, 5m)")
	flags.StringVar(&opts.Config.UserAgent, "user-agent", "", "User agent string")
	flags.StringVar(&opts.Config.ReportsDir, "reports-dir", "", "Directory reports are written to")
	flags.StringVar(&opts.Config.MetricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	flags.Float64Var(&opts.Config.Rate, "rate", 0, "Requests per second limit (0 disables pacing)")
	flags.IntVar(&opts.Config.MaxResponseTimeMs, "max-response-time", 0, "Response time threshold in milliseconds")
	flags.BoolVarP(&opts.Config.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&opts.Config.HTMLReport, "html", false, "Also write an HTML report")
	flags.StringVar(&opts.Config.AuthType, "auth-type", "", "Authentication type: basic, bearer, header")
	flags.StringVar(&opts.Config.AuthUsername, "auth-username", "", "Username for basic authentication")
	flags.StringVar(&opts.Config.AuthHeader, "auth-header", "", "Custom header in Name:Value format")
	flags.BoolVar(&opts.Config.AuthPasswordStdin, "auth-password-stdin", false, "Read the basic auth password from stdin")
	flags.BoolVar(&opts.Config.AuthTokenStdin, "auth-token-stdin", false, "Read the bearer token from stdin")
	flags.IntVarP(&opts.Iterations, "iterations", "n", domain.DefaultIterations, "Iterations of the built-in performance sample")
	flags.BoolVar(&opts.AllowPrivateIPs, "allow-private-ips", false, "Allow private and loopback targets")
	flags.StringVar(&opts.ReportName, "report-name", "", "Report file prefix (defaults to the suite name)")

	return cmd
}

// Run executes the configured suites, writes the reports and prints a summary.
// Failing checks yield ErrChecksFailed after every report has been written.
func Run(ctx context.Context, opts *RunOptions) error {
	cfg, err := LoadConfiguration(opts.ConfigPath, &opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var confirm io.Reader
	if opts.Interactive {
		confirm = opts.Stdin
	}
	if err := ValidateRateLimit(&cfg.Rate, opts.Stderr, confirm); err != nil {
		return fmt.Errorf("rate limit validation failed: %w", err)
	}
	if err := ValidateTarget(cfg.BaseURL, opts.AllowPrivateIPs, opts.Stderr); err != nil {
		return err
	}

	headers, err := BuildAuthHeaders(&opts.Config, opts.Stdin)
	if err != nil {
		return fmt.Errorf("authentication configuration: %w", err)
	}

	logger := newLogger(opts.Stderr, cfg.Verbose)

	// Validated by LoadConfiguration
	runTimeout, _ := time.ParseDuration(cfg.Timeout)
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	suites, err := loadSuites(ctx, opts, cfg, logger)
	if err != nil {
		return err
	}
	if err := ValidateSuiteTargets(suites, cfg.BaseURL, opts.AllowPrivateIPs, opts.Stderr); err != nil {
		return err
	}

	executor := tester.New(domain.TesterConfig{
		Headers:   headers,
		UserAgent: cfg.UserAgent,
		Rate:      cfg.Rate,
	}, nil, logger)
	runner := suite.NewRunner(executor, suite.RunnerOptions{
		BaseURL:         cfg.BaseURL,
		MaxResponseTime: cfg.Performance.MaxResponseTime(),
	}, logger)

	logger.Info("Starting run",
		"run_id", runner.RunID(),
		"base_url", cfg.BaseURL,
		"suites", len(suites),
		"timeout", cfg.Timeout,
		"rate", cfg.Rate)

	collector := suite.NewCollector()
	var runErr error
	for _, s := range suites {
		if runErr = runner.Run(ctx, s, collector); runErr != nil {
			logger.Error("Run stopped early", "suite", s.Name, "error", runErr)
			break
		}
	}

	report, err := writeReports(collector, cfg, reportName(opts, suites), logger)
	if err != nil {
		return err
	}
	reporter.PrintSummary(opts.Stdout, report)

	if runErr != nil {
		return runErr
	}
	if report.Summary.FailedTests > 0 {
		return ErrChecksFailed
	}
	return nil
}

func loadSuites(ctx context.Context, opts *RunOptions, cfg *domain.Config, logger *slog.Logger) ([]*suite.Suite, error) {
	if len(opts.SuiteFiles) == 0 {
		return []*suite.Suite{suite.Countries(cfg.BaseURL, opts.Iterations)}, nil
	}

	suites, err := suite.NewLoader(logger).LoadFiles(ctx, opts.SuiteFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to load suites: %w", err)
	}
	return suites, nil
}

func reportName(opts *RunOptions, suites []*suite.Suite) string {
	switch {
	case opts.ReportName != "":
		return opts.ReportName
	case len(opts.SuiteFiles) == 0:
		return builtinReportName
	case len(suites) == 1:
		return suites[0].Name
	default:
		return "apiprobe"
	}
}

// writeReports finalizes the collector into the JSON report plus the optional
// HTML report and metrics textfile. A run without results writes nothing.
func writeReports(collector *suite.Collector, cfg *domain.Config, name string, logger *slog.Logger) (*domain.Report, error) {
	rep := reporter.New(cfg.ReportsDir, logger)

	err := collector.Finalize(func(results []domain.Result) error {
		at := time.Now()
		if _, err := rep.GenerateJSON(results, reporter.Filename(name, at, "json")); err != nil {
			return err
		}

		if cfg.HTMLReport {
			if _, err := rep.GenerateHTML(results, reporter.Filename(name, at, "html")); err != nil {
				logger.Error("Failed to generate HTML report", "error", err)
			}
		}

		if cfg.MetricsFile != "" {
			recorder := metrics.NewRecorder()
			recorder.ObserveAll(results)
			if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
				logger.Error("Failed to write metrics", "error", err)
			} else {
				logger.Info("Metrics written", "path", cfg.MetricsFile)
			}
		}
		return nil
	})
	if errors.Is(err, suite.ErrNoResults) {
		logger.Warn("No results collected, skipping reports")
	} else if err != nil {
		return nil, fmt.Errorf("failed to save results: %w", err)
	}

	return reporter.BuildReport(collector.Results(), time.Now()), nil
}
