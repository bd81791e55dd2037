// Package validator compiles declarative payload rules into response validators.
//
// Each rule evaluates a JMESPath expression against the decoded response body
// and checks the result. Rules run in order and the first failing rule decides
// the outcome.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/jmespath/go-jmespath"

	"github.com/vnykmshr/apiprobe/internal/domain"
)

// Rule types
const (
	TypeIsArray  = "is_array"
	TypeNotEmpty = "not_empty"
	TypeExists   = "exists"
	TypeEquals   = "equals"
	TypeAllEqual = "all_equal"
	TypeAnyEqual = "any_equal"
)

// Errors returned when compiling rules
var (
	ErrUnknownRuleType = errors.New("unknown rule type")
	ErrMissingValue    = errors.New("rule requires a value")
	ErrInvalidPath     = errors.New("invalid JMESPath expression")
)

// Rule is one declarative check against a response payload.
type Rule struct {
	// Value is the expected value for the equality rule types.
	Value any `yaml:"value,omitempty" json:"value,omitempty"`
	// Type selects the check, e.g. "is_array".
	Type string `yaml:"type" json:"type" validate:"required,oneof=is_array not_empty exists equals all_equal any_equal"`
	// Path is a JMESPath expression; empty means the whole payload.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
	// Message replaces the default failure reason.
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

type compiledRule struct {
	rule     Rule
	query    *jmespath.JMESPath
	expected any
}

// Compile turns rules into a single validator. An empty rule list yields nil,
// which the tester treats as no custom validation.
func Compile(rules []Rule) (domain.ResponseValidator, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		c, err := compileRule(rule)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, rule.Type, err)
		}
		compiled = append(compiled, c)
	}

	return func(data any) error {
		for _, c := range compiled {
			if err := c.check(data); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

// MustCompile is like Compile but panics on invalid rules. Intended for built-in suites.
func MustCompile(rules ...Rule) domain.ResponseValidator {
	v, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return v
}

func compileRule(rule Rule) (compiledRule, error) {
	switch rule.Type {
	case TypeIsArray, TypeNotEmpty, TypeExists:
	case TypeEquals, TypeAllEqual, TypeAnyEqual:
		if rule.Value == nil {
			return compiledRule{}, ErrMissingValue
		}
	default:
		return compiledRule{}, fmt.Errorf("%w: %q", ErrUnknownRuleType, rule.Type)
	}

	path := rule.Path
	if path == "" {
		path = "@"
	}

	query, err := jmespath.Compile(path)
	if err != nil {
		return compiledRule{}, fmt.Errorf("%w '%s': %v", ErrInvalidPath, path, err)
	}

	expected, err := normalize(rule.Value)
	if err != nil {
		return compiledRule{}, fmt.Errorf("normalizing value: %w", err)
	}

	rule.Path = path
	return compiledRule{rule: rule, query: query, expected: expected}, nil
}

// check returns a domain.ValidationFailure when the payload does not satisfy
// the rule, and a plain error when the expression cannot be evaluated.
func (c compiledRule) check(data any) error {
	result, err := c.query.Search(data)
	if err != nil {
		return fmt.Errorf("evaluating '%s': %w", c.rule.Path, err)
	}

	if ok, reason := c.evaluate(result); !ok {
		if c.rule.Message != "" {
			return domain.ValidationFailure(c.rule.Message)
		}
		return domain.ValidationFailure(reason)
	}
	return nil
}

func (c compiledRule) evaluate(result any) (bool, string) {
	path := c.rule.Path

	switch c.rule.Type {
	case TypeIsArray:
		_, ok := result.([]any)
		return ok, fmt.Sprintf("expected an array at '%s'", path)

	case TypeNotEmpty:
		return !isEmpty(result), fmt.Sprintf("expected a non-empty value at '%s'", path)

	case TypeExists:
		// An empty string counts as missing
		s, isString := result.(string)
		return result != nil && (!isString || s != ""), fmt.Sprintf("expected a value at '%s'", path)

	case TypeEquals:
		return reflect.DeepEqual(result, c.expected),
			fmt.Sprintf("expected '%s' to equal %v, got %v", path, c.expected, result)

	case TypeAllEqual:
		items, ok := result.([]any)
		if !ok {
			return false, fmt.Sprintf("expected an array at '%s'", path)
		}
		for i, item := range items {
			if !reflect.DeepEqual(item, c.expected) {
				return false, fmt.Sprintf("expected every '%s' to equal %v, item %d is %v", path, c.expected, i, item)
			}
		}
		return true, ""

	case TypeAnyEqual:
		items, ok := result.([]any)
		if !ok {
			return false, fmt.Sprintf("expected an array at '%s'", path)
		}
		for _, item := range items {
			if reflect.DeepEqual(item, c.expected) {
				return true, ""
			}
		}
		return false, fmt.Sprintf("expected some '%s' to equal %v", path, c.expected)
	}

	return false, "unknown rule type " + c.rule.Type
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	case string:
		return val == ""
	}
	return false
}

// normalize converts a configured value into the shape decoded JSON takes,
// so YAML integers compare equal to JSON numbers.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
