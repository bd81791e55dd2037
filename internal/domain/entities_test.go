package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestSpec_WithDefaults(t *testing.T) {
	spec := RequestSpec{URL: "https://example.com/v3.1/all"}.WithDefaults()

	assert.Equal(t, "GET", spec.Method)
	assert.Equal(t, 200, spec.ExpectedStatus)
	assert.Equal(t, 2*time.Second, spec.MaxResponseTime)
	assert.NotNil(t, spec.Headers)
	assert.Equal(t, "GET https://example.com/v3.1/all", spec.Name)
}

func TestRequestSpec_WithDefaultsKeepsExplicitValues(t *testing.T) {
	spec := RequestSpec{
		Name:            "Invalid",
		URL:             "https://example.com",
		Method:          "POST",
		ExpectedStatus:  404,
		MaxResponseTime: 500 * time.Millisecond,
	}.WithDefaults()

	assert.Equal(t, "Invalid", spec.Name)
	assert.Equal(t, "POST", spec.Method)
	assert.Equal(t, 404, spec.ExpectedStatus)
	assert.Equal(t, 500*time.Millisecond, spec.MaxResponseTime)
}

func TestSampleSpec_WithDefaults(t *testing.T) {
	tests := []struct {
		name       string
		iterations int
		want       int
	}{
		{"unset", 0, 5},
		{"negative", -3, 5},
		{"explicit", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := SampleSpec{URL: "https://example.com", Iterations: tt.iterations}.WithDefaults()
			assert.Equal(t, tt.want, spec.Iterations)
			assert.Equal(t, "Performance Test: https://example.com", spec.Name)
			assert.Equal(t, 2*time.Second, spec.MaxTime)
		})
	}
}

func TestValidationFailure_Error(t *testing.T) {
	assert.Equal(t, "Response should be an array", ValidationFailure("Response should be an array").Error())
	assert.Equal(t, "Validation failed", ValidationFailure("").Error())

	var err error = ValidationFailure("nope")
	var failure ValidationFailure
	assert.True(t, errors.As(err, &failure))
}

func TestRequestResult_Mutators(t *testing.T) {
	r := &RequestResult{Name: "x", Status: StatusPending}
	r.SetStatusCode(418)
	r.AddAssertion(Assertion{Name: AssertionStatusCode, Passed: false})
	r.Fail("Wrong status code: 418")

	require.NotNil(t, r.StatusCode)
	assert.Equal(t, 418, *r.StatusCode)
	assert.Equal(t, StatusFail, r.ResultStatus())
	require.NotNil(t, r.Error)
	assert.Equal(t, "Wrong status code: 418", *r.Error)
	assert.Len(t, r.Assertions, 1)
}

func TestRequestResult_JSONNulls(t *testing.T) {
	r := &RequestResult{Name: "Network down", Status: StatusFail, Assertions: []Assertion{}}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["statusCode"])
	assert.Contains(t, decoded, "statusCode")
	assert.NotContains(t, decoded, "data")
}

func TestResultUnion(t *testing.T) {
	results := []Result{
		&RequestResult{Name: "a", Status: StatusPass},
		&PerformanceResult{Name: "b", Status: StatusFail},
	}

	assert.Equal(t, "a", results[0].ResultName())
	assert.Equal(t, StatusPass, results[0].ResultStatus())
	assert.Equal(t, "b", results[1].ResultName())
	assert.Equal(t, StatusFail, results[1].ResultStatus())
}
