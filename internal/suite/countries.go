package suite

import (
	"fmt"
	"strings"

	"github.com/vnykmshr/apiprobe/internal/domain"
	"github.com/vnykmshr/apiprobe/internal/validator"
)

// CountriesSuiteName is the name of the built-in REST Countries suite.
const CountriesSuiteName = "REST Countries API Tests"

const allCountriesFields = "name,cca2,cca3,population,capital,region,subregion,area,currencies,languages"

// Countries returns the built-in REST Countries suite rooted at baseURL
// (e.g. https://restcountries.com/v3.1).
func Countries(baseURL string, iterations int) *Suite {
	if iterations < 1 {
		iterations = domain.DefaultIterations
	}
	sampleURL := joinURL(baseURL, "all?fields=name,cca2")

	return &Suite{
		Name:    CountriesSuiteName,
		BaseURL: baseURL,
		Cases: []Case{
			{
				Name: "Get All Countries",
				Path: "all?fields=" + allCountriesFields,
				Rules: []validator.Rule{
					{Type: validator.TypeIsArray, Message: "Response should be an array"},
					{Type: validator.TypeNotEmpty, Message: "Response should contain at least one country"},
					{Type: validator.TypeExists, Path: "[0].name.common", Message: "Country should have name.common field"},
				},
			},
			{
				Name:     "Get Country by Name (Israel)",
				Path:     "name/israel",
				Validate: countryNamed("israel"),
			},
			{
				Name:     "Get Country by Code (IL)",
				Path:     "alpha/il",
				Validate: countryWithCode("IL"),
			},
			{
				Name:           "Handle Invalid Country Name",
				Path:           "name/nonexistentcountry12345",
				ExpectedStatus: 404,
			},
			{
				Name: "Get Countries by Region (Europe)",
				Path: "region/europe",
				Rules: []validator.Rule{
					{Type: validator.TypeIsArray, Message: "Response should be an array"},
					{Type: validator.TypeNotEmpty, Message: "Response should contain at least one country"},
					{Type: validator.TypeAllEqual, Path: "[*].region", Value: "Europe", Message: "Not all countries are from Europe"},
				},
			},
			{
				Name:       "Performance Test: " + sampleURL,
				Kind:       KindPerformance,
				URL:        sampleURL,
				Iterations: iterations,
			},
		},
	}
}

// nonEmptyArray returns the payload as a non-empty array or the failure reason.
func nonEmptyArray(data any) ([]any, error) {
	items, ok := data.([]any)
	if !ok {
		return nil, domain.ValidationFailure("Response should be an array")
	}
	if len(items) == 0 {
		return nil, domain.ValidationFailure("Response should contain at least one country")
	}
	return items, nil
}

func commonName(country any) (string, bool) {
	obj, ok := country.(map[string]any)
	if !ok {
		return "", false
	}
	name, ok := obj["name"].(map[string]any)
	if !ok {
		return "", false
	}
	common, ok := name["common"].(string)
	return common, ok && common != ""
}

// countryNamed passes when some country's common name matches, ignoring case.
func countryNamed(want string) domain.ResponseValidator {
	return func(data any) error {
		items, err := nonEmptyArray(data)
		if err != nil {
			return err
		}
		for _, item := range items {
			if name, ok := commonName(item); ok && strings.EqualFold(name, want) {
				return nil
			}
		}
		return domain.ValidationFailure(fmt.Sprintf("%s not found in results", titleCase(want)))
	}
}

// countryWithCode accepts a single country object or an array holding it.
// A present cca2 must match code.
func countryWithCode(code string) domain.ResponseValidator {
	return func(data any) error {
		country := data
		if items, ok := data.([]any); ok {
			country = nil
			if len(items) > 0 {
				country = items[0]
			}
		}

		obj, ok := country.(map[string]any)
		if !ok {
			return domain.ValidationFailure("Response should be a country object")
		}
		if _, ok := commonName(obj); !ok {
			return domain.ValidationFailure("Country should have name.common field")
		}
		if cca2, ok := obj["cca2"].(string); ok && cca2 != "" && cca2 != code {
			return domain.ValidationFailure(fmt.Sprintf("Expected country code %s, got %s", code, cca2))
		}
		return nil
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
