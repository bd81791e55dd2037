// Package reporter generates run reports in various formats (console, JSON, HTML).
package reporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/vnykmshr/apiprobe/internal/domain"
)

// Reporter writes reports into a single output directory
type Reporter struct {
	logger    *slog.Logger
	now       func() time.Time
	outputDir string
}

// New creates a new report generator writing under outputDir
func New(outputDir string, logger *slog.Logger) *Reporter {
	return &Reporter{
		logger:    logger,
		now:       time.Now,
		outputDir: outputDir,
	}
}

// BuildReport projects results into a report. Entries keep the input order.
func BuildReport(results []domain.Result, generatedAt time.Time) *domain.Report {
	report := &domain.Report{
		Tests: make([]domain.ReportEntry, 0, len(results)),
	}

	var passed, failed int
	var totalTime int64
	for _, result := range results {
		entry := projectResult(result)
		report.Tests = append(report.Tests, entry)

		switch entry.Status {
		case domain.StatusPass:
			passed++
		case domain.StatusFail:
			failed++
		}
		if entry.ResponseTime != nil {
			totalTime += *entry.ResponseTime
		}
	}

	total := len(results)
	report.Summary = domain.ReportSummary{
		TotalTests:  total,
		PassedTests: passed,
		FailedTests: failed,
		GeneratedAt: generatedAt.UTC(),
	}
	if total > 0 {
		report.Summary.PassRate = int(math.Round(float64(passed) / float64(total) * 100))
		report.Summary.AverageResponseTime = int64(math.Round(float64(totalTime) / float64(total)))
	}

	return report
}

// projectResult normalizes one result. Zero and empty values become JSON null.
func projectResult(result domain.Result) domain.ReportEntry {
	switch r := result.(type) {
	case *domain.RequestResult:
		entry := domain.ReportEntry{
			Name:         r.Name,
			Status:       r.Status,
			URL:          r.URL,
			Method:       optionalString(r.Method),
			ResponseTime: optionalInt64(r.ResponseTime),
			Assertions:   r.Assertions,
		}
		if r.StatusCode != nil && *r.StatusCode != 0 {
			entry.StatusCode = r.StatusCode
		}
		if r.Error != nil {
			entry.Error = optionalString(*r.Error)
		}
		if entry.Assertions == nil {
			entry.Assertions = []domain.Assertion{}
		}
		return entry

	case *domain.PerformanceResult:
		return domain.ReportEntry{
			Name:       r.Name,
			Status:     r.Status,
			URL:        r.URL,
			Method:     optionalString(r.Method),
			Assertions: []domain.Assertion{},
			Performance: &domain.PerformanceStats{
				Iterations:   r.Iterations,
				SuccessCount: r.SuccessCount,
				AverageTime:  r.AverageTime,
				MinTime:      r.MinTime,
				MaxTime:      r.MaxTime,
				AllTimes:     r.AllTimes,
				Interrupted:  r.Interrupted,
			},
		}
	}

	// Result is sealed to the two types above
	panic(fmt.Sprintf("reporter: unsupported result type %T", result))
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt64(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

// GenerateJSON writes the report for results to filename under the output
// directory, creating the directory if needed, and returns the written path.
func (r *Reporter) GenerateJSON(results []domain.Result, filename string) (string, error) {
	report := BuildReport(results, r.now())

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}

	outputPath, err := r.prepare(filename)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(outputPath, data, 0o600); err != nil {
		return "", fmt.Errorf("writing JSON file: %w", err)
	}

	r.logger.Info("JSON report generated",
		"path", outputPath,
		"tests", report.Summary.TotalTests,
		"pass_rate", report.Summary.PassRate)
	return outputPath, nil
}

// prepare ensures the output directory exists and returns the target path.
func (r *Reporter) prepare(filename string) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o750); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}
	return filepath.Join(r.outputDir, filepath.Base(filename)), nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename returns the conventional report name, e.g. "countries-api-report-1700000000000.json".
func Filename(name string, at time.Time, ext string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "api"
	}
	return fmt.Sprintf("%s-report-%d.%s", slug, at.UnixMilli(), strings.TrimPrefix(ext, "."))
}
