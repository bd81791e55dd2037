// Package domain defines core domain types and interfaces for the API test harness.
package domain

import (
	"context"
	"net/http"
	"time"
)

// Request describes one HTTP call handed to a Transport.
type Request struct {
	// Body is encoded as JSON when non-nil.
	Body    any
	Headers map[string]string
	URL     string
	Method  string
	Timeout time.Duration
}

// Response is a received HTTP response with its payload already read.
type Response struct {
	Header http.Header
	// Data is the decoded payload: JSON values when the body parses as JSON,
	// the raw text otherwise, nil when the body is empty.
	Data       any
	StatusText string
	Body       []byte
	StatusCode int
}

// Transport issues HTTP requests.
// A 2xx response is returned with a nil error. Every other outcome is reported
// through an error that tells apart an error status (the response is still
// available), a request that never got a response, and a request that could
// not be built or sent.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// RateLimiter defines the interface for pacing outgoing requests.
type RateLimiter interface {
	// Wait blocks until a token is available or the context is canceled.
	Wait(ctx context.Context) error
}

// ResponseValidator inspects a decoded response payload.
// Returning nil passes the check. Returning a ValidationFailure fails it with
// that reason; any other error is reported as a validator error.
type ResponseValidator func(data any) error

// ValidationFailure is the reason a ResponseValidator rejected a payload.
type ValidationFailure string

func (f ValidationFailure) Error() string {
	if f == "" {
		return "Validation failed"
	}
	return string(f)
}

// RequestSpec holds the inputs of a single request check.
type RequestSpec struct {
	Data            any
	Headers         map[string]string
	Validate        ResponseValidator
	Name            string
	URL             string
	Method          string
	ExpectedStatus  int
	MaxResponseTime time.Duration
}

// WithDefaults returns a copy with unset fields filled in.
func (s RequestSpec) WithDefaults() RequestSpec { //nolint:gocritic // value receiver returns a modified copy
	if s.Method == "" {
		s.Method = DefaultMethod
	}
	if s.Headers == nil {
		s.Headers = map[string]string{}
	}
	if s.ExpectedStatus == 0 {
		s.ExpectedStatus = DefaultExpectedStatus
	}
	if s.MaxResponseTime <= 0 {
		s.MaxResponseTime = DefaultMaxResponseTime
	}
	if s.Name == "" {
		s.Name = s.Method + " " + s.URL
	}
	return s
}

// SampleSpec holds the inputs of a performance sample.
type SampleSpec struct {
	Name       string
	URL        string
	Method     string
	Iterations int
	MaxTime    time.Duration
}

// WithDefaults returns a copy with unset fields filled in.
// Iteration counts below one fall back to DefaultIterations.
func (s SampleSpec) WithDefaults() SampleSpec {
	if s.Method == "" {
		s.Method = DefaultMethod
	}
	if s.Iterations < 1 {
		s.Iterations = DefaultIterations
	}
	if s.MaxTime <= 0 {
		s.MaxTime = DefaultMaxResponseTime
	}
	if s.Name == "" {
		s.Name = "Performance Test: " + s.URL
	}
	return s
}
