package errors

import "errors"

var (
	// ErrConfiguration marks misuse detected while wiring a form validator.
	// It is fatal: the component cannot be used until the caller fixes its setup.
	ErrConfiguration = errors.New("configuration error")

	// ErrUsage marks misuse detected while a form validator is running,
	// e.g. the host edit context never produced a pending async result.
	ErrUsage = errors.New("usage error")

	// ErrMissingEditContext is returned when a form validator is created
	// without an edit context to attach to.
	ErrMissingEditContext = errors.Join(ErrConfiguration,
		errors.New("form validator requires an edit context; create one with editcontext.New and pass it in"))

	// ErrNoPendingValidation is returned by ValidateAsync when the edit context
	// holds no pending async validation after the validation pass.
	ErrNoPendingValidation = errors.Join(ErrUsage, errors.New("no pending validation result found"))

	// ErrModelNotPointer is returned when an edit context is created for a
	// model that is nil or not a pointer.
	ErrModelNotPointer = errors.Join(ErrConfiguration, errors.New("edit context model must be a non-nil pointer"))
)

// Collection is a thread-unsafe utility for accumulating multiple errors.
// Edit context handlers use it to run every registered handler even when an
// earlier one fails.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Clear removes all errors from the collection.
func (c *Collection) Clear() {
	c.errors = nil
}

// HasError returns true if the collection contains at least one error.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// GetError returns nil for an empty collection, the single error if there's
// only one, or a joined error otherwise.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}
