package rules

import (
	"fmt"
	"strings"
)

// Severity of a failure. Every severity is reported as a validation message.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// String returns the lowercase severity name, e.g. "warning".
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Failure is one rule that did not hold.
type Failure struct {
	// PropertyName is the path from the validated instance, e.g.
	// "Address.Line1". Empty means the failure applies to the whole instance.
	PropertyName string

	Message  string
	Severity Severity

	// Tag identifies the rule that failed, e.g. "required".
	Tag string

	AttemptedValue any
}

// Result is the ordered outcome of one validation run.
type Result struct {
	Failures []Failure
}

// IsValid reports whether the run produced no failures.
func (r *Result) IsValid() bool {
	return r == nil || len(r.Failures) == 0
}

// String returns "valid", or the failures as "Property: message" joined by "; ".
func (r *Result) String() string {
	if r.IsValid() {
		return "valid"
	}

	parts := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.PropertyName, f.Message))
	}

	return strings.Join(parts, "; ")
}
