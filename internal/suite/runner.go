package suite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vnykmshr/apiprobe/internal/domain"
)

// Executor runs individual checks. *tester.Tester satisfies it.
type Executor interface {
	Execute(ctx context.Context, spec domain.RequestSpec) *domain.RequestResult
	Sample(ctx context.Context, spec domain.SampleSpec) *domain.PerformanceResult
}

// RunnerOptions holds the defaults applied to cases that leave them unset.
type RunnerOptions struct {
	// BaseURL resolves case paths when the suite has no base_url of its own.
	BaseURL string
	// MaxResponseTime is the request threshold and the sample threshold.
	MaxResponseTime time.Duration
}

// Runner executes suites case by case.
type Runner struct {
	executor Executor
	logger   *slog.Logger
	options  RunnerOptions
	runID    string
}

// NewRunner creates a runner with a fresh run identifier attached to its logger.
func NewRunner(executor Executor, options RunnerOptions, logger *slog.Logger) *Runner {
	if options.MaxResponseTime <= 0 {
		options.MaxResponseTime = domain.DefaultMaxResponseTime
	}
	runID := uuid.NewString()

	return &Runner{
		executor: executor,
		logger:   logger.With("run_id", runID),
		options:  options,
		runID:    runID,
	}
}

// RunID returns the identifier attached to this runner's log lines.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes every case of s in order and appends each result to c.
// Failing cases never stop the suite; only cancellation does.
func (r *Runner) Run(ctx context.Context, s *Suite, c *Collector) error {
	if err := s.Check(); err != nil {
		return fmt.Errorf("suite %s: %w", s.Name, err)
	}

	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = r.options.BaseURL
	}

	logger := r.logger.With("suite", s.Name)
	logger.Info("Running suite", "cases", len(s.Cases), "base_url", baseURL)
	startTime := time.Now()

	passed := 0
	for i := range s.Cases {
		if err := ctx.Err(); err != nil {
			logger.Warn("Suite interrupted", "completed", i, "total", len(s.Cases))
			return fmt.Errorf("suite %s interrupted: %w", s.Name, err)
		}

		result := r.runCase(ctx, &s.Cases[i], baseURL)
		if result.ResultStatus() == domain.StatusPass {
			passed++
		}
		c.Add(result)
	}

	logger.Info("Suite complete",
		"passed", passed,
		"failed", len(s.Cases)-passed,
		"duration", time.Since(startTime).Round(time.Millisecond).String())
	return nil
}

func (r *Runner) runCase(ctx context.Context, tc *Case, baseURL string) domain.Result {
	switch tc.kind() {
	case KindPerformance:
		spec, err := tc.sampleSpec(baseURL, r.options.MaxResponseTime)
		if err != nil {
			return caseSetupFailure(tc, err)
		}
		return r.executor.Sample(ctx, spec)

	default:
		spec, err := tc.requestSpec(baseURL, r.options.MaxResponseTime)
		if err != nil {
			return caseSetupFailure(tc, err)
		}
		return r.executor.Execute(ctx, spec)
	}
}

// caseSetupFailure reports a case that could not be turned into a request.
func caseSetupFailure(tc *Case, err error) *domain.RequestResult {
	method := tc.Method
	if method == "" {
		method = domain.DefaultMethod
	}
	target := tc.URL
	if target == "" {
		target = tc.Path
	}

	result := &domain.RequestResult{
		Name:       tc.Name,
		URL:        target,
		Method:     method,
		Assertions: make([]domain.Assertion, 0, 1),
	}
	result.Fail(err.Error())
	result.AddAssertion(domain.Assertion{
		Name:   domain.AssertionRequestSetup,
		Passed: false,
		Error:  err.Error(),
	})
	return result
}
