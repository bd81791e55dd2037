package suite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/apiprobe/internal/domain"
	"github.com/vnykmshr/apiprobe/internal/validator"
)

// recordingExecutor passes every check and records the specs it received.
type recordingExecutor struct {
	requests []domain.RequestSpec
	samples  []domain.SampleSpec
	onCall   func()
}

func (e *recordingExecutor) Execute(_ context.Context, spec domain.RequestSpec) *domain.RequestResult {
	e.requests = append(e.requests, spec)
	if e.onCall != nil {
		e.onCall()
	}
	return &domain.RequestResult{Name: spec.Name, URL: spec.URL, Method: spec.Method, Status: domain.StatusPass}
}

func (e *recordingExecutor) Sample(_ context.Context, spec domain.SampleSpec) *domain.PerformanceResult {
	e.samples = append(e.samples, spec)
	if e.onCall != nil {
		e.onCall()
	}
	return &domain.PerformanceResult{Name: spec.Name, URL: spec.URL, Status: domain.StatusPass, Passed: true}
}

func TestNewRunner_AssignsRunID(t *testing.T) {
	r := NewRunner(&recordingExecutor{}, RunnerOptions{}, testLogger())

	_, err := uuid.Parse(r.RunID())
	assert.NoError(t, err)
	assert.Equal(t, domain.DefaultMaxResponseTime, r.options.MaxResponseTime)
	assert.NotEqual(t, r.RunID(), NewRunner(&recordingExecutor{}, RunnerOptions{}, testLogger()).RunID())
}

func TestRun_BuildsSpecsInOrder(t *testing.T) {
	exec := &recordingExecutor{}
	r := NewRunner(exec, RunnerOptions{
		BaseURL:         "http://fallback.test",
		MaxResponseTime: 1500 * time.Millisecond,
	}, testLogger())

	s := &Suite{
		Name: "ordered",
		Cases: []Case{
			{Name: "one", Path: "/a"},
			{Name: "two", URL: "http://other.test/b", Method: "post", ExpectedStatus: 201, MaxResponseTimeMs: 300},
			{Name: "three", Kind: KindPerformance, Path: "c", Iterations: 2},
			{Name: "four", Path: "d", Rules: []validator.Rule{{Type: validator.TypeIsArray}}},
		},
	}

	collector := NewCollector()
	require.NoError(t, r.Run(context.Background(), s, collector))

	results := collector.Results()
	require.Len(t, results, 4)
	for i, want := range []string{"one", "two", "three", "four"} {
		assert.Equal(t, want, results[i].ResultName())
	}

	require.Len(t, exec.requests, 3)
	assert.Equal(t, "http://fallback.test/a", exec.requests[0].URL)
	assert.Equal(t, 1500*time.Millisecond, exec.requests[0].MaxResponseTime)
	assert.Nil(t, exec.requests[0].Validate)

	assert.Equal(t, "http://other.test/b", exec.requests[1].URL)
	assert.Equal(t, "POST", exec.requests[1].Method)
	assert.Equal(t, 201, exec.requests[1].ExpectedStatus)
	assert.Equal(t, 300*time.Millisecond, exec.requests[1].MaxResponseTime)

	require.NotNil(t, exec.requests[2].Validate)
	assert.NoError(t, exec.requests[2].Validate([]any{}))

	require.Len(t, exec.samples, 1)
	assert.Equal(t, "http://fallback.test/c", exec.samples[0].URL)
	assert.Equal(t, 2, exec.samples[0].Iterations)
	assert.Equal(t, 1500*time.Millisecond, exec.samples[0].MaxTime)
}

func TestRun_SuiteBaseURLWins(t *testing.T) {
	exec := &recordingExecutor{}
	r := NewRunner(exec, RunnerOptions{BaseURL: "http://fallback.test"}, testLogger())

	s := &Suite{Name: "own base", BaseURL: "http://suite.test/v1/", Cases: []Case{{Name: "a", Path: "items"}}}
	require.NoError(t, r.Run(context.Background(), s, NewCollector()))

	require.Len(t, exec.requests, 1)
	assert.Equal(t, "http://suite.test/v1/items", exec.requests[0].URL)
}

func TestRun_PathWithoutBaseIsSetupFailure(t *testing.T) {
	exec := &recordingExecutor{}
	r := NewRunner(exec, RunnerOptions{}, testLogger())

	collector := NewCollector()
	s := &Suite{Name: "no base", Cases: []Case{{Name: "a", Path: "items"}, {Name: "b", URL: "http://x.test/b"}}}
	require.NoError(t, r.Run(context.Background(), s, collector))

	results := collector.Results()
	require.Len(t, results, 2)

	failed, ok := results[0].(*domain.RequestResult)
	require.True(t, ok)
	assert.Equal(t, domain.StatusFail, failed.Status)
	require.Len(t, failed.Assertions, 1)
	assert.Equal(t, domain.AssertionRequestSetup, failed.Assertions[0].Name)
	assert.Equal(t, "GET", failed.Method)

	assert.Equal(t, domain.StatusPass, results[1].ResultStatus(), "siblings still run")
	assert.Len(t, exec.requests, 1)
}

func TestRun_InvalidSuite(t *testing.T) {
	r := NewRunner(&recordingExecutor{}, RunnerOptions{}, testLogger())

	err := r.Run(context.Background(), &Suite{Name: "empty"}, NewCollector())
	assert.True(t, errors.Is(err, errNoCases))
}

func TestRun_StopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exec := &recordingExecutor{onCall: cancel}
	r := NewRunner(exec, RunnerOptions{BaseURL: "http://x.test"}, testLogger())

	collector := NewCollector()
	s := &Suite{Name: "cancel", Cases: []Case{{Name: "a", Path: "a"}, {Name: "b", Path: "b"}}}
	err := r.Run(ctx, s, collector)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, collector.Len())
}
