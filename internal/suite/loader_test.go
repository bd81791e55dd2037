package suite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/apiprobe/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))
}

const validSuiteYAML = `
name: Countries smoke
base_url: http://localhost:8089/v3.1
cases:
  - name: Get Country by Code
    path: alpha/il
    rules:
      - type: equals
        path: "[0].cca2 || cca2"
        value: IL
  - name: Create thing
    url: http://localhost:8089/things
    method: post
    body:
      name: thing
    headers:
      X-Trace: abc
    expected_status: 201
    max_response_time_ms: 500
  - name: Sample all
    kind: performance
    path: all?fields=name
    iterations: 3
    max_time_ms: 800
`

func writeSuite(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_ValidSuite(t *testing.T) {
	s, err := NewLoader(testLogger()).Parse([]byte(validSuiteYAML))
	require.NoError(t, err)

	assert.Equal(t, "Countries smoke", s.Name)
	assert.Equal(t, "http://localhost:8089/v3.1", s.BaseURL)
	require.Len(t, s.Cases, 3)

	lookup := s.Cases[0]
	assert.Equal(t, KindRequest, lookup.kind())
	require.Len(t, lookup.Rules, 1)
	assert.Equal(t, validator.TypeEquals, lookup.Rules[0].Type)
	assert.Equal(t, "IL", lookup.Rules[0].Value)

	create := s.Cases[1]
	assert.Equal(t, 201, create.ExpectedStatus)
	assert.Equal(t, map[string]string{"X-Trace": "abc"}, create.Headers)
	assert.Equal(t, map[string]any{"name": "thing"}, create.Body)

	sample := s.Cases[2]
	assert.Equal(t, KindPerformance, sample.Kind)
	assert.Equal(t, 3, sample.Iterations)
	assert.Equal(t, 800, sample.MaxTimeMs)
}

func TestParse_InvalidSuites(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "empty document",
			yaml:    "",
			wantErr: errNoCases,
		},
		{
			name:    "missing name",
			yaml:    "cases:\n  - name: a\n    url: http://x.test/a\n",
			wantErr: errInvalidDefinition,
		},
		{
			name:    "no cases",
			yaml:    "name: s\ncases: []\n",
			wantErr: errInvalidDefinition,
		},
		{
			name:    "case without target",
			yaml:    "name: s\ncases:\n  - name: a\n",
			wantErr: errCaseTargetRequired,
		},
		{
			name:    "case with path and url",
			yaml:    "name: s\ncases:\n  - name: a\n    path: a\n    url: http://x.test/a\n",
			wantErr: errCaseTargetAmbiguous,
		},
		{
			name:    "unknown kind",
			yaml:    "name: s\ncases:\n  - name: a\n    kind: soak\n    path: a\n",
			wantErr: errInvalidKind,
		},
		{
			name:    "performance with rules",
			yaml:    "name: s\ncases:\n  - name: a\n    kind: performance\n    path: a\n    rules:\n      - type: is_array\n",
			wantErr: errPerformanceRules,
		},
		{
			name:    "unknown rule type",
			yaml:    "name: s\ncases:\n  - name: a\n    path: a\n    rules:\n      - type: matches\n",
			wantErr: errInvalidDefinition,
		},
		{
			name:    "rule missing value",
			yaml:    "name: s\ncases:\n  - name: a\n    path: a\n    rules:\n      - type: equals\n        path: cca2\n",
			wantErr: validator.ErrMissingValue,
		},
		{
			name:    "status out of range",
			yaml:    "name: s\ncases:\n  - name: a\n    path: a\n    expected_status: 99\n",
			wantErr: errInvalidDefinition,
		},
	}

	loader := NewLoader(testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := NewLoader(testLogger()).Parse([]byte("name: s\ncases:\n  - name: a\n    path: a\n    expect: 200\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing yaml")
}

func TestLoadFiles_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSuite(t, dir, "a.yaml", "name: first\ncases:\n  - name: a\n    url: http://x.test/a\n"),
		writeSuite(t, dir, "b.yaml", "name: second\ncases:\n  - name: b\n    url: http://x.test/b\n"),
		writeSuite(t, dir, "c.yaml", validSuiteYAML),
	}

	suites, err := NewLoader(testLogger()).LoadFiles(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, suites, 3)
	assert.Equal(t, "first", suites[0].Name)
	assert.Equal(t, "second", suites[1].Name)
	assert.Equal(t, "Countries smoke", suites[2].Name)
}

func TestLoadFiles_FailsOnAnyError(t *testing.T) {
	dir := t.TempDir()
	good := writeSuite(t, dir, "good.yaml", "name: ok\ncases:\n  - name: a\n    url: http://x.test/a\n")
	missing := filepath.Join(dir, "missing.yaml")

	_, err := NewLoader(testLogger()).LoadFiles(context.Background(), []string{good, missing})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "missing.yaml")
}
