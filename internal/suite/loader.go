package suite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// maxParallelLoads bounds how many suite files are read at once.
const maxParallelLoads = 4

// Loader reads suite definitions from YAML files.
type Loader struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewLoader creates a suite loader
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{
		validate: validator.New(),
		logger:   logger.With("component", "suite_loader"),
	}
}

// LoadFile reads and validates a single suite file.
func (l *Loader) LoadFile(path string) (*Suite, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: suite paths come from the command line
	if err != nil {
		return nil, fmt.Errorf("reading suite %s: %w", path, err)
	}

	s, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading suite %s: %w", path, err)
	}

	l.logger.Debug("Loaded suite", "path", path, "name", s.Name, "cases", len(s.Cases))
	return s, nil
}

// Parse decodes and validates a suite definition. Unknown keys are rejected.
func (l *Loader) Parse(data []byte) (*Suite, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errNoCases
		}
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	if err := l.validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidDefinition, err)
	}

	if err := s.Check(); err != nil {
		return nil, err
	}

	return &s, nil
}

// LoadFiles loads several suite files concurrently. Suites are returned in
// argument order; the first failure cancels the remaining loads.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) ([]*Suite, error) {
	suites := make([]*Suite, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			s, err := l.LoadFile(path)
			if err != nil {
				return err
			}
			suites[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return suites, nil
}
