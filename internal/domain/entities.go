package domain

import "time"

// Status is the lifecycle state of a single check.
type Status string

// Check statuses. Pending is transient and never leaves the tester.
const (
	StatusPending Status = "PENDING"
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
)

// Assertion names recorded in a result's assertion trail.
const (
	AssertionStatusCode       = "Status Code"
	AssertionPerformance      = "Performance"
	AssertionCustomValidation = "Custom Validation"
	AssertionNetwork          = "Network"
	AssertionRequestSetup     = "Request Setup"
)

// Default request parameters applied when a spec leaves them unset.
const (
	DefaultMethod          = "GET"
	DefaultExpectedStatus  = 200
	DefaultMaxResponseTime = 2000 * time.Millisecond
	DefaultIterations      = 5

	// TimeoutPadding is added to a threshold to derive the transport timeout.
	// The timeout only keeps the transport from hanging; thresholds are checked separately.
	TimeoutPadding = time.Second
)

// Result is a finished check headed for the report. It is implemented only by
// *RequestResult and *PerformanceResult.
type Result interface {
	// ResultName returns the check's display name.
	ResultName() string
	// ResultStatus returns the terminal status of the check.
	ResultStatus() Status

	result()
}

// Assertion records one check performed against a response.
// Assertions are appended in the order the checks ran and are never modified afterwards.
type Assertion struct {
	// Expected is the check-specific expectation (status code, threshold string).
	Expected any `json:"expected,omitempty"`
	// Actual is the observed value.
	Actual any `json:"actual,omitempty"`
	// Name identifies the check, e.g. "Status Code".
	Name string `json:"name"`
	// Error explains a failed check.
	Error string `json:"error,omitempty"`
	// Passed is true if the check succeeded.
	Passed bool `json:"passed"`
}

// RequestResult is the outcome of a single executed request.
type RequestResult struct {
	// StatusCode is nil only when no response was ever received.
	StatusCode *int `json:"statusCode"`
	// Error is the human readable failure cause, nil on success.
	Error *string `json:"error"`
	// Data is the decoded response payload, set only when the result passed.
	Data any `json:"data,omitempty"`
	// Name is the display name of the check.
	Name string `json:"name"`
	// URL is the requested URL.
	URL string `json:"url"`
	// Method is the HTTP method used.
	Method string `json:"method"`
	// Status is PASS or FAIL once the tester returns.
	Status Status `json:"status"`
	// Assertions is the ordered trail of checks performed.
	Assertions []Assertion `json:"assertions"`
	// ResponseTime is the elapsed time in milliseconds, set on every path.
	ResponseTime int64 `json:"responseTime"`
}

// ResultName implements Result.
func (r *RequestResult) ResultName() string { return r.Name }

// ResultStatus implements Result.
func (r *RequestResult) ResultStatus() Status { return r.Status }

func (*RequestResult) result() {}

// AddAssertion appends an assertion to the trail.
func (r *RequestResult) AddAssertion(a Assertion) { //nolint:gocritic // Assertions are small value records
	r.Assertions = append(r.Assertions, a)
}

// Fail marks the result as failed with the given cause.
func (r *RequestResult) Fail(cause string) {
	r.Status = StatusFail
	r.Error = &cause
}

// SetStatusCode records the observed HTTP status code.
func (r *RequestResult) SetStatusCode(code int) {
	r.StatusCode = &code
}

// PerformanceResult is the outcome of a sequential timing sample against one URL.
type PerformanceResult struct {
	Name         string  `json:"name"`
	URL          string  `json:"url"`
	Method       string  `json:"method"`
	Status       Status  `json:"status"`
	AllTimes     []int64 `json:"allTimes"`
	Iterations   int     `json:"iterations"`
	SuccessCount int     `json:"successCount"`
	AverageTime  int64   `json:"averageTime"`
	MinTime      int64   `json:"minTime"`
	MaxTime      int64   `json:"maxTime"`
	Threshold    int64   `json:"threshold"`
	Passed       bool    `json:"passed"`
	// Interrupted is set when the context ended before every iteration ran.
	// An interrupted sample never passes.
	Interrupted bool `json:"interrupted,omitempty"`
}

// ResultName implements Result.
func (r *PerformanceResult) ResultName() string { return r.Name }

// ResultStatus implements Result.
func (r *PerformanceResult) ResultStatus() Status { return r.Status }

func (*PerformanceResult) result() {}

// Report is the persisted aggregate of a suite run.
type Report struct {
	Tests   []ReportEntry `json:"tests"`
	Summary ReportSummary `json:"summary"`
}

// ReportSummary holds the aggregate statistics of a run.
type ReportSummary struct {
	GeneratedAt         time.Time `json:"generatedAt"`
	TotalTests          int       `json:"totalTests"`
	PassedTests         int       `json:"passedTests"`
	FailedTests         int       `json:"failedTests"`
	PassRate            int       `json:"passRate"`
	AverageResponseTime int64     `json:"averageResponseTime"`
}

// ReportEntry is the normalized projection of one result.
// Nil pointers serialize as JSON null.
type ReportEntry struct {
	Method       *string           `json:"method"`
	StatusCode   *int              `json:"statusCode"`
	ResponseTime *int64            `json:"responseTime"`
	Error        *string           `json:"error"`
	Performance  *PerformanceStats `json:"performance,omitempty"`
	Name         string            `json:"name"`
	Status       Status            `json:"status"`
	URL          string            `json:"url"`
	Assertions   []Assertion       `json:"assertions"`
}

// PerformanceStats is the sampler-specific part of a report entry.
type PerformanceStats struct {
	AllTimes     []int64 `json:"allTimes"`
	Iterations   int     `json:"iterations"`
	SuccessCount int     `json:"successCount"`
	AverageTime  int64   `json:"averageTime"`
	MinTime      int64   `json:"minTime"`
	MaxTime      int64   `json:"maxTime"`
	Interrupted  bool    `json:"interrupted,omitempty"`
}
