// Package testutil provides shared test fixtures and utilities for use across test files.
package testutil

import (
	"github.com/vnykmshr/apiprobe/internal/domain"
)

// SampleResults returns a mixed run: two passing request checks, one request
// that never got a response, and a passing performance sample.
// This is the standard fixture used across multiple test files.
func SampleResults() []domain.Result {
	return []domain.Result{
		&domain.RequestResult{
			Name:         "Get Country by Code (IL)",
			URL:          "https://restcountries.com/v3.1/alpha/il",
			Method:       "GET",
			Status:       domain.StatusPass,
			StatusCode:   intPtr(200),
			ResponseTime: 120,
			Assertions: []domain.Assertion{
				{Name: domain.AssertionStatusCode, Passed: true, Expected: 200, Actual: 200},
				{Name: domain.AssertionPerformance, Passed: true, Expected: "<= 2000ms", Actual: "120ms"},
			},
		},
		&domain.RequestResult{
			Name:         "Handle Invalid Country Name",
			URL:          "https://restcountries.com/v3.1/name/nonexistentcountry12345",
			Method:       "GET",
			Status:       domain.StatusPass,
			StatusCode:   intPtr(404),
			ResponseTime: 45,
			Assertions: []domain.Assertion{
				{Name: domain.AssertionStatusCode, Passed: true, Expected: 404, Actual: 404},
			},
		},
		&domain.RequestResult{
			Name:   "Get Countries by Region (Europe)",
			URL:    "https://restcountries.com/v3.1/region/europe",
			Method: "GET",
			Status: domain.StatusFail,
			Error:  strPtr("No response from server"),
			Assertions: []domain.Assertion{
				{Name: domain.AssertionNetwork, Passed: false, Error: "No response received"},
			},
		},
		SamplePerformanceResult(),
	}
}

// SamplePerformanceResult returns a passing five-iteration sample.
func SamplePerformanceResult() *domain.PerformanceResult {
	return &domain.PerformanceResult{
		Name:         "Performance Test: https://restcountries.com/v3.1/all?fields=name,cca2",
		URL:          "https://restcountries.com/v3.1/all?fields=name,cca2",
		Method:       "GET",
		Status:       domain.StatusPass,
		Iterations:   5,
		SuccessCount: 5,
		AverageTime:  100,
		MinTime:      90,
		MaxTime:      110,
		AllTimes:     []int64{100, 110, 90, 100, 100},
		Threshold:    2000,
		Passed:       true,
	}
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }
