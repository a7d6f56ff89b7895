package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/amp-labs/amp-editform/bgworker"
	"github.com/amp-labs/amp-editform/future"
	"github.com/amp-labs/amp-editform/logger"
)

// HasValidate is implemented by models that check themselves.
type HasValidate interface {
	Validate() error
}

// HasValidateWithContext is the context-aware variant of HasValidate. Use it
// for checks that block, such as uniqueness lookups.
type HasValidateWithContext interface {
	Validate(ctx context.Context) error
}

// FieldError reports a failed check against one property. Models return it
// (or several joined with errors.Join) from their Validate method.
type FieldError struct {
	Property string
	Message  string
	Tag      string
}

// Error returns "property: message", or just the message for model-level errors.
func (e *FieldError) Error() string {
	if e.Property == "" {
		return e.Message
	}

	return e.Property + ": " + e.Message
}

// NewFieldError is a shorthand for &FieldError{Property: property, Message: message}.
func NewFieldError(property, message string) *FieldError {
	return &FieldError{Property: property, Message: message}
}

// SelfValidator validates models implementing HasValidate or
// HasValidateWithContext. Returned FieldErrors become failures on their
// property; any other error becomes a failure on the model itself.
type SelfValidator struct{}

var _ Validator = SelfValidator{}

// CanValidate reports whether instance implements HasValidate or
// HasValidateWithContext.
func (SelfValidator) CanValidate(instance any) bool {
	switch instance.(type) {
	case HasValidate, HasValidateWithContext:
		return true
	default:
		return false
	}
}

// Validate calls the model's own Validate method and converts what it returns
// into a Result filtered by strategy. Rule sets do not apply to self-validating
// models.
//
// Example:
//
//	func (b *Booking) Validate(ctx context.Context) error {
//	    if b.Nights <= 0 {
//	        return rules.NewFieldError("Nights", "must book at least one night")
//	    }
//
//	    return nil
//	}
//
//	result, err := rules.SelfValidator{}.Validate(ctx, booking, nil)
func (v SelfValidator) Validate(ctx context.Context, instance any, strategy *Strategy) (*Result, error) {
	if strategy == nil {
		strategy = NewStrategy()
	}

	var err error

	switch model := instance.(type) {
	case HasValidateWithContext:
		err = model.Validate(ctx)
	case HasValidate:
		err = model.Validate()
	default:
		logger.Get(ctx).Warn("SelfValidator called on unsupported type",
			"type", fmt.Sprintf("%T", instance))

		return nil, fmt.Errorf("%w: %T does not implement Validate", ErrUnsupportedType, instance)
	}

	return strategy.Apply(toResult(err)), nil
}

// ValidateAsync runs Validate on the async validation worker pool.
func (v SelfValidator) ValidateAsync(ctx context.Context, instance any, strategy *Strategy) *future.Future[*Result] {
	return future.Spawn(bgworker.Spawner(ctx), func() (*Result, error) {
		return v.Validate(ctx, instance, strategy)
	})
}

// ErrUnsupportedType is returned when a validator is handed a model it cannot check.
var ErrUnsupportedType = errors.New("unsupported model type")

func toResult(err error) *Result {
	result := &Result{}

	for _, e := range flatten(err) {
		var fieldErr *FieldError
		if errors.As(e, &fieldErr) {
			result.Failures = append(result.Failures, Failure{
				PropertyName: fieldErr.Property,
				Message:      fieldErr.Message,
				Tag:          fieldErr.Tag,
			})

			continue
		}

		result.Failures = append(result.Failures, Failure{Message: e.Error()})
	}

	return result
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok { //nolint:errorlint
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}

		return out
	}

	return []error{err}
}
