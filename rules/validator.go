// Package rules defines the validator capability that form validators run,
// the strategy that selects which rules apply, and the result they produce.
//
// Rule evaluation itself lives in backends: the playground package wraps
// go-playground/validator struct tags, and SelfValidator runs checks that a
// model implements on itself.
package rules

import (
	"context"

	"github.com/amp-labs/amp-editform/future"
)

// Validator evaluates rules against a model instance.
//
// Rule failures are reported in the Result, never as errors. An error means
// the validator could not run at all (e.g. it was handed the wrong type).
type Validator interface {
	// Validate runs all selected rules and returns once they have finished.
	Validate(ctx context.Context, instance any, strategy *Strategy) (*Result, error)

	// ValidateAsync starts a validation run, which may include rules that
	// block on I/O, and returns a handle to its result.
	ValidateAsync(ctx context.Context, instance any, strategy *Strategy) *future.Future[*Result]

	// CanValidate reports whether instance is a type this validator handles.
	CanValidate(instance any) bool
}
