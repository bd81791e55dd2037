package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/apiprobe/internal/domain"
	"github.com/vnykmshr/apiprobe/internal/mockapi"
)

func startMockAPI(t *testing.T) string {
	t.Helper()
	api, err := mockapi.New(mockapi.Options{}, newLogger(io.Discard, false))
	require.NoError(t, err)

	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)
	return server.URL + mockapi.PathPrefix
}

func newRunOptions(t *testing.T, baseURL string) (*RunOptions, *bytes.Buffer) {
	t.Helper()
	var stdout bytes.Buffer
	return &RunOptions{
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: io.Discard,
		Config: ConfigOptions{
			BaseURL:    baseURL,
			ReportsDir: filepath.Join(t.TempDir(), "reports"),
		},
		Iterations:      2,
		AllowPrivateIPs: true,
	}, &stdout
}

func readReport(t *testing.T, pattern string) domain.Report {
	t.Helper()
	matches, err := filepath.Glob(pattern)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	raw, err := os.ReadFile(matches[0])
	require.NoError(t, err)

	var report domain.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	return report
}

func TestRun_BuiltinSuiteAgainstMockAPI(t *testing.T) {
	opts, stdout := newRunOptions(t, startMockAPI(t))
	opts.Config.HTMLReport = true
	opts.Config.MetricsFile = filepath.Join(t.TempDir(), "apiprobe.prom")

	require.NoError(t, Run(context.Background(), opts))

	report := readReport(t, filepath.Join(opts.Config.ReportsDir, "countries-api-report-*.json"))
	assert.Equal(t, 6, report.Summary.TotalTests)
	assert.Equal(t, 6, report.Summary.PassedTests)
	assert.Equal(t, 100, report.Summary.PassRate)

	htmlReports, err := filepath.Glob(filepath.Join(opts.Config.ReportsDir, "countries-api-report-*.html"))
	require.NoError(t, err)
	assert.Len(t, htmlReports, 1)

	metricsRaw, err := os.ReadFile(opts.Config.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metricsRaw), `apiprobe_checks_total{kind="performance",status="PASS"} 1`)

	assert.Contains(t, stdout.String(), "Get Country by Code (IL)")
}

func TestRun_FailingSuiteFile(t *testing.T) {
	baseURL := startMockAPI(t)
	suitePath := filepath.Join(t.TempDir(), "failing.yaml")
	require.NoError(t, os.WriteFile(suitePath, []byte(`name: Failing Checks
cases:
  - name: Japan exists
    path: /alpha/jp
  - name: Atlantis exists
    path: /name/atlantis
`), 0o600))

	opts, _ := newRunOptions(t, baseURL)
	opts.SuiteFiles = []string{suitePath}

	err := Run(context.Background(), opts)
	require.ErrorIs(t, err, ErrChecksFailed)

	report := readReport(t, filepath.Join(opts.Config.ReportsDir, "failing-checks-report-*.json"))
	assert.Equal(t, 2, report.Summary.TotalTests)
	assert.Equal(t, 1, report.Summary.FailedTests)
	assert.Equal(t, 50, report.Summary.PassRate)
}

func TestRun_RefusesPrivateTargetByDefault(t *testing.T) {
	opts, _ := newRunOptions(t, startMockAPI(t))
	opts.AllowPrivateIPs = false

	err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid target")

	_, statErr := os.Stat(opts.Config.ReportsDir)
	assert.True(t, os.IsNotExist(statErr), "nothing runs against a refused target")
}

// publicBaseURL is a public IP literal, so the run base URL passes without DNS.
const publicBaseURL = "http://93.184.216.34/v3.1"

func TestRun_RefusesPrivateSuiteTargets(t *testing.T) {
	mockURL := startMockAPI(t)

	tests := []struct {
		name  string
		suite string
	}{
		{"suite base_url", `name: Local Base
base_url: ` + mockURL + `
cases:
  - name: Japan exists
    path: /alpha/jp
`},
		{"absolute case url", `name: Local Case
cases:
  - name: Japan exists
    url: ` + mockURL + `/alpha/jp
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suitePath := filepath.Join(t.TempDir(), "local.yaml")
			require.NoError(t, os.WriteFile(suitePath, []byte(tt.suite), 0o600))

			opts, _ := newRunOptions(t, publicBaseURL)
			opts.AllowPrivateIPs = false
			opts.SuiteFiles = []string{suitePath}

			err := Run(context.Background(), opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid target")
			assert.Contains(t, err.Error(), "private IP 127.0.0.1")

			_, statErr := os.Stat(opts.Config.ReportsDir)
			assert.True(t, os.IsNotExist(statErr), "nothing runs against a refused target")
		})
	}
}

func TestRun_PrivateSuiteTargetAllowed(t *testing.T) {
	suitePath := filepath.Join(t.TempDir(), "local.yaml")
	require.NoError(t, os.WriteFile(suitePath, []byte(`name: Local Base
base_url: `+startMockAPI(t)+`
cases:
  - name: Japan exists
    path: /alpha/jp
`), 0o600))

	var stderr bytes.Buffer
	opts, _ := newRunOptions(t, publicBaseURL)
	opts.Stderr = &stderr
	opts.SuiteFiles = []string{suitePath}

	require.NoError(t, Run(context.Background(), opts))
	assert.Contains(t, stderr.String(), "PRIVATE TARGET")

	report := readReport(t, filepath.Join(opts.Config.ReportsDir, "local-base-report-*.json"))
	assert.Equal(t, 1, report.Summary.PassedTests)
}

func TestRun_InvalidSuiteFile(t *testing.T) {
	suitePath := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(suitePath, []byte("name: Broken\ncases: []\n"), 0o600))

	opts, _ := newRunOptions(t, startMockAPI(t))
	opts.SuiteFiles = []string{suitePath}

	err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load suites")
}

func TestRun_CanceledContext(t *testing.T) {
	opts, _ := newRunOptions(t, startMockAPI(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportName(t *testing.T) {
	assert.Equal(t, "custom", reportName(&RunOptions{ReportName: "custom"}, nil))
	assert.Equal(t, builtinReportName, reportName(&RunOptions{}, nil))
}

func TestRootCommand_Version(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCommand("1.2.3")
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "apiprobe v1.2.3\n", out.String())
}

func TestRootCommand_ConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiprobe.yaml")

	root := NewRootCommand("test")
	root.SetOut(io.Discard)
	root.SetArgs([]string{"config", "init", path})
	require.NoError(t, root.Execute())

	root = NewRootCommand("test")
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"config", "init", path})
	require.Error(t, root.Execute(), "existing files are not overwritten without --force")

	var out bytes.Buffer
	root = NewRootCommand("test")
	root.SetOut(&out)
	root.SetArgs([]string{"config", "show", "--config", path})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "base_url: https://restcountries.com/v3.1")
	assert.Contains(t, out.String(), "max_response_time_ms: 2000")
}

func TestRootCommand_Validate(t *testing.T) {
	suitePath := filepath.Join(t.TempDir(), "ok.yaml")
	require.NoError(t, os.WriteFile(suitePath, []byte(`name: Smoke
base_url: https://restcountries.com/v3.1
cases:
  - name: All
    path: /all
`), 0o600))

	var out bytes.Buffer
	root := NewRootCommand("test")
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"validate", suitePath})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"Smoke" (1 cases)`)
}
