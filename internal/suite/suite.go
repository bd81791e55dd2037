// Package suite defines test suites, loads them from YAML and runs them
// through the tester.
package suite

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vnykmshr/apiprobe/internal/domain"
	"github.com/vnykmshr/apiprobe/internal/validator"
)

// Kind selects how a case is executed.
type Kind string

// Case kinds
const (
	KindRequest     Kind = "request"
	KindPerformance Kind = "performance"
)

var (
	errSuiteNameRequired   = errors.New("suite name is required")
	errNoCases             = errors.New("suite has no cases")
	errCaseNameRequired    = errors.New("case name is required")
	errCaseTargetRequired  = errors.New("case needs either path or url")
	errCaseTargetAmbiguous = errors.New("case sets both path and url")
	errRelativePathNoBase  = errors.New("case uses a path but no base_url is available")
	errInvalidKind         = errors.New("case kind must be request or performance")
	errPerformanceRules    = errors.New("performance cases do not support rules or a body")
	errInvalidDefinition   = errors.New("invalid suite definition")
)

// Suite is a named, ordered list of cases.
type Suite struct {
	Name    string `yaml:"name" validate:"required"`
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`
	Cases   []Case `yaml:"cases" validate:"required,min=1,dive"`
}

// Case is one request check or performance sample.
type Case struct {
	// Body is sent as JSON with request cases.
	Body    any               `yaml:"body,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	// Validate is a programmatic validator. When nil, Rules are compiled instead.
	Validate domain.ResponseValidator `yaml:"-"`

	Name   string `yaml:"name" validate:"required"`
	Kind   Kind   `yaml:"kind,omitempty"`
	Path   string `yaml:"path,omitempty"`
	URL    string `yaml:"url,omitempty" validate:"omitempty,url"`
	Method string `yaml:"method,omitempty" validate:"omitempty,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS get head post put patch delete options"`

	Rules []validator.Rule `yaml:"rules,omitempty" validate:"dive"`

	ExpectedStatus    int `yaml:"expected_status,omitempty" validate:"omitempty,gte=100,lte=599"`
	MaxResponseTimeMs int `yaml:"max_response_time_ms,omitempty" validate:"gte=0"`
	Iterations        int `yaml:"iterations,omitempty" validate:"gte=0"`
	MaxTimeMs         int `yaml:"max_time_ms,omitempty" validate:"gte=0"`
}

// kind returns the case kind, defaulting to a request check.
func (c *Case) kind() Kind {
	if c.Kind == "" {
		return KindRequest
	}
	return c.Kind
}

// check validates the cross-field rules struct tags cannot express.
func (c *Case) check() error {
	if c.Name == "" {
		return errCaseNameRequired
	}

	switch c.kind() {
	case KindRequest:
	case KindPerformance:
		if len(c.Rules) > 0 || c.Validate != nil || c.Body != nil {
			return errPerformanceRules
		}
	default:
		return fmt.Errorf("%w: %q", errInvalidKind, c.Kind)
	}

	if c.Path == "" && c.URL == "" {
		return errCaseTargetRequired
	}
	if c.Path != "" && c.URL != "" {
		return errCaseTargetAmbiguous
	}

	if _, err := validator.Compile(c.Rules); err != nil {
		return err
	}
	return nil
}

// Check validates the suite and every case in it.
func (s *Suite) Check() error {
	if s.Name == "" {
		return errSuiteNameRequired
	}
	if len(s.Cases) == 0 {
		return errNoCases
	}

	for i := range s.Cases {
		if err := s.Cases[i].check(); err != nil {
			return fmt.Errorf("case %d (%s): %w", i+1, s.Cases[i].Name, err)
		}
	}
	return nil
}

// resolveURL returns the absolute URL of a case.
func (c *Case) resolveURL(baseURL string) (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	if baseURL == "" {
		return "", errRelativePathNoBase
	}
	return joinURL(baseURL, c.Path), nil
}

func joinURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// requestSpec builds the tester input for a request case.
func (c *Case) requestSpec(baseURL string, defaultMaxResponseTime time.Duration) (domain.RequestSpec, error) {
	url, err := c.resolveURL(baseURL)
	if err != nil {
		return domain.RequestSpec{}, err
	}

	validate := c.Validate
	if validate == nil {
		validate, err = validator.Compile(c.Rules)
		if err != nil {
			return domain.RequestSpec{}, err
		}
	}

	maxResponseTime := defaultMaxResponseTime
	if c.MaxResponseTimeMs > 0 {
		maxResponseTime = time.Duration(c.MaxResponseTimeMs) * time.Millisecond
	}

	return domain.RequestSpec{
		Name:            c.Name,
		URL:             url,
		Method:          strings.ToUpper(c.Method),
		Data:            c.Body,
		Headers:         c.Headers,
		ExpectedStatus:  c.ExpectedStatus,
		MaxResponseTime: maxResponseTime,
		Validate:        validate,
	}, nil
}

// sampleSpec builds the tester input for a performance case.
func (c *Case) sampleSpec(baseURL string, defaultMaxTime time.Duration) (domain.SampleSpec, error) {
	url, err := c.resolveURL(baseURL)
	if err != nil {
		return domain.SampleSpec{}, err
	}

	maxTime := defaultMaxTime
	if c.MaxTimeMs > 0 {
		maxTime = time.Duration(c.MaxTimeMs) * time.Millisecond
	}

	return domain.SampleSpec{
		Name:       c.Name,
		URL:        url,
		Method:     strings.ToUpper(c.Method),
		Iterations: c.Iterations,
		MaxTime:    maxTime,
	}, nil
}
