// Package tester runs single request checks and sequential performance samples.
package tester

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vnykmshr/goflow/pkg/ratelimit/bucket"

	"github.com/vnykmshr/apiprobe/internal/domain"
	"github.com/vnykmshr/apiprobe/internal/transport"
	"github.com/vnykmshr/apiprobe/internal/util"
)

// Tester executes checks against an HTTP API
type Tester struct {
	config      domain.TesterConfig
	transport   domain.Transport
	rateLimiter domain.RateLimiter
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a new tester. A nil transport selects the net/http transport.
func New(config domain.TesterConfig, tr domain.Transport, logger *slog.Logger) *Tester {
	if tr == nil {
		tr = transport.NewHTTP(config.UserAgent)
	}

	// Create token bucket rate limiter using goflow
	var rateLimiter domain.RateLimiter
	if config.Rate > 0 {
		// Create token bucket with burst capacity of 2x the rate per second
		burst := int(config.Rate * 2)
		if burst < 1 {
			burst = 1
		}

		limiter, err := bucket.NewSafe(bucket.Limit(config.Rate), burst)
		if err != nil {
			logger.Error("Failed to create rate limiter", "error", err)
		} else {
			rateLimiter = limiter
		}
	}

	return &Tester{
		config:      config,
		transport:   tr,
		rateLimiter: rateLimiter,
		logger:      logger,
		now:         time.Now,
	}
}

// Execute performs one request check. It never fails: every outcome,
// including transport and validator errors, is recorded in the returned result.
func (t *Tester) Execute(ctx context.Context, spec domain.RequestSpec) *domain.RequestResult { //nolint:gocritic // specs are passed by value so defaults never leak back to callers
	spec = spec.WithDefaults()

	result := &domain.RequestResult{
		Name:       spec.Name,
		URL:        spec.URL,
		Method:     spec.Method,
		Status:     domain.StatusPending,
		Assertions: make([]domain.Assertion, 0, 3),
	}

	if err := t.wait(ctx); err != nil {
		recordSetupFailure(result, fmt.Errorf("rate limiter wait canceled: %w", err))
		t.logResult(result)
		return result
	}

	startTime := t.now()
	resp, err := t.transport.Do(ctx, domain.Request{
		URL:     spec.URL,
		Method:  spec.Method,
		Body:    spec.Data,
		Headers: t.headers(spec.Headers),
		Timeout: spec.MaxResponseTime + domain.TimeoutPadding,
	})
	result.ResponseTime = t.now().Sub(startTime).Milliseconds()

	if err != nil {
		t.classifyFailure(result, spec, err)
	} else {
		t.checkResponse(result, spec, resp)
	}

	t.logResult(result)
	return result
}

// headers layers request headers over the configured defaults.
func (t *Tester) headers(request map[string]string) map[string]string {
	if len(t.config.Headers) == 0 {
		return request
	}
	merged := make(map[string]string, len(t.config.Headers)+len(request))
	for k, v := range t.config.Headers {
		merged[k] = v
	}
	for k, v := range request {
		merged[k] = v
	}
	return merged
}

// checkResponse runs the status, performance and custom validation checks in
// order on a 2xx response. A status mismatch or failed validation stops the chain.
func (t *Tester) checkResponse(result *domain.RequestResult, spec domain.RequestSpec, resp *domain.Response) { //nolint:gocritic // see Execute
	result.SetStatusCode(resp.StatusCode)

	if resp.StatusCode != spec.ExpectedStatus {
		result.AddAssertion(domain.Assertion{
			Name:     domain.AssertionStatusCode,
			Passed:   false,
			Expected: spec.ExpectedStatus,
			Actual:   resp.StatusCode,
			Error:    fmt.Sprintf("Expected %d, got %d", spec.ExpectedStatus, resp.StatusCode),
		})
		result.Fail(fmt.Sprintf("Wrong status code: %d", resp.StatusCode))
		return
	}
	result.AddAssertion(domain.Assertion{
		Name:     domain.AssertionStatusCode,
		Passed:   true,
		Expected: spec.ExpectedStatus,
		Actual:   resp.StatusCode,
	})

	// Slow responses are reported but never fail the check on their own
	maxMs := spec.MaxResponseTime.Milliseconds()
	perf := domain.Assertion{
		Name:     domain.AssertionPerformance,
		Passed:   result.ResponseTime <= maxMs,
		Expected: fmt.Sprintf("<= %dms", maxMs),
		Actual:   fmt.Sprintf("%dms", result.ResponseTime),
	}
	if !perf.Passed {
		perf.Error = fmt.Sprintf("Response time too slow: %dms", result.ResponseTime)
		t.logger.Warn("Slow response",
			"name", result.Name,
			"response_time_ms", result.ResponseTime,
			"threshold_ms", maxMs)
	}
	result.AddAssertion(perf)

	if spec.Validate != nil {
		if err := runValidator(spec.Validate, resp.Data); err != nil {
			var failure domain.ValidationFailure
			if errors.As(err, &failure) {
				result.AddAssertion(domain.Assertion{
					Name:   domain.AssertionCustomValidation,
					Passed: false,
					Error:  failure.Error(),
				})
				result.Fail("Custom validation failed")
				return
			}

			result.AddAssertion(domain.Assertion{
				Name:   domain.AssertionCustomValidation,
				Passed: false,
				Error:  err.Error(),
			})
			result.Fail("Validation error: " + err.Error())
			return
		}
		result.AddAssertion(domain.Assertion{
			Name:   domain.AssertionCustomValidation,
			Passed: true,
		})
	}

	result.Status = domain.StatusPass
	result.Data = resp.Data
}

// classifyFailure records exactly one assertion for a request that did not
// produce a 2xx response.
func (t *Tester) classifyFailure(result *domain.RequestResult, spec domain.RequestSpec, err error) { //nolint:gocritic // see Execute
	var (
		statusErr *transport.StatusError
		noResp    *transport.NoResponseError
	)

	switch {
	case errors.As(err, &statusErr):
		resp := statusErr.Response
		result.SetStatusCode(resp.StatusCode)

		// An error status that was asked for is a pass, e.g. probing for 404
		if resp.StatusCode == spec.ExpectedStatus {
			result.Status = domain.StatusPass
			result.AddAssertion(domain.Assertion{
				Name:     domain.AssertionStatusCode,
				Passed:   true,
				Expected: spec.ExpectedStatus,
				Actual:   resp.StatusCode,
			})
			return
		}

		result.Fail(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.StatusText))
		result.AddAssertion(domain.Assertion{
			Name:     domain.AssertionStatusCode,
			Passed:   false,
			Expected: spec.ExpectedStatus,
			Actual:   resp.StatusCode,
			Error:    resp.StatusText,
		})

	case errors.As(err, &noResp):
		t.logger.Debug("No response", "url", util.SanitizeURLDefault(spec.URL), "error", noResp.Err)
		result.Fail("No response from server")
		result.AddAssertion(domain.Assertion{
			Name:   domain.AssertionNetwork,
			Passed: false,
			Error:  "No response received",
		})

	default:
		recordSetupFailure(result, err)
	}
}

func recordSetupFailure(result *domain.RequestResult, err error) {
	result.Fail(err.Error())
	result.AddAssertion(domain.Assertion{
		Name:   domain.AssertionRequestSetup,
		Passed: false,
		Error:  err.Error(),
	})
}

// runValidator calls a caller-supplied validator, turning a panic into an error.
func runValidator(validate domain.ResponseValidator, data any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return validate(data)
}

// Sample performs spec.Iterations sequential requests and aggregates their timings.
// Failed attempts still contribute their elapsed time. When ctx ends first the
// sample stops, keeps the timings taken so far and is marked Interrupted and
// failed.
func (t *Tester) Sample(ctx context.Context, spec domain.SampleSpec) *domain.PerformanceResult {
	spec = spec.WithDefaults()

	allTimes := make([]int64, 0, spec.Iterations)
	successCount := 0
	interrupted := false
	var totalTime int64

	for i := 0; i < spec.Iterations; i++ {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		if err := t.wait(ctx); err != nil {
			t.logger.Debug("Rate limiter wait canceled", "attempt", i, "error", err)
			interrupted = true
			break
		}

		startTime := t.now()
		_, err := t.transport.Do(ctx, domain.Request{
			URL:     spec.URL,
			Method:  spec.Method,
			Headers: t.headers(nil),
			Timeout: spec.MaxTime + domain.TimeoutPadding,
		})
		elapsed := t.now().Sub(startTime).Milliseconds()

		allTimes = append(allTimes, elapsed)
		totalTime += elapsed
		if err == nil {
			successCount++
			continue
		}
		t.logger.Debug("Sample attempt failed",
			"url", util.SanitizeURLDefault(spec.URL),
			"attempt", i,
			"error", err)
		if ctx.Err() != nil {
			interrupted = true
			break
		}
	}

	var minTime, maxTime int64
	var averageTime float64
	if len(allTimes) > 0 {
		minTime, maxTime = allTimes[0], allTimes[0]
		for _, v := range allTimes[1:] {
			minTime = min(minTime, v)
			maxTime = max(maxTime, v)
		}
		averageTime = float64(totalTime) / float64(len(allTimes))
	}

	passed := !interrupted && averageTime <= float64(spec.MaxTime.Milliseconds())
	status := domain.StatusFail
	if passed {
		status = domain.StatusPass
	}
	if interrupted {
		t.logger.Warn("Performance sample interrupted",
			"name", spec.Name,
			"completed", len(allTimes),
			"iterations", spec.Iterations,
			"error", ctx.Err())
	}

	result := &domain.PerformanceResult{
		Name:         spec.Name,
		URL:          spec.URL,
		Method:       spec.Method,
		Status:       status,
		Iterations:   spec.Iterations,
		SuccessCount: successCount,
		AverageTime:  int64(math.Round(averageTime)),
		MinTime:      minTime,
		MaxTime:      maxTime,
		AllTimes:     allTimes,
		Threshold:    spec.MaxTime.Milliseconds(),
		Passed:       passed,
		Interrupted:  interrupted,
	}

	t.logger.Info("Performance sample complete",
		"name", result.Name,
		"status", result.Status,
		"iterations", result.Iterations,
		"success_count", result.SuccessCount,
		"average_ms", result.AverageTime,
		"min_ms", result.MinTime,
		"max_ms", result.MaxTime)

	return result
}

// wait applies rate limiting using goflow's token bucket
func (t *Tester) wait(ctx context.Context) error {
	if t.rateLimiter == nil {
		return nil
	}
	return t.rateLimiter.Wait(ctx)
}

func (t *Tester) logResult(result *domain.RequestResult) {
	attrs := []any{
		"name", result.Name,
		"method", result.Method,
		"url", util.SanitizeURLDefault(result.URL),
		"status", result.Status,
		"response_time_ms", result.ResponseTime,
	}
	if result.StatusCode != nil {
		attrs = append(attrs, "status_code", *result.StatusCode)
	}
	if result.Error != nil {
		attrs = append(attrs, "error", *result.Error)
	}

	if result.Status == domain.StatusPass {
		t.logger.Info("Check passed", attrs...)
		return
	}
	t.logger.Info("Check failed", attrs...)
}
