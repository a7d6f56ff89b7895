package formvalidator

import (
	"context"
	"time"

	"github.com/amp-labs/amp-editform/registry"
	"github.com/amp-labs/amp-editform/rules"
)

// Option configures a FormValidator.
type Option func(*FormValidator)

// WithValidator uses v for every validation, skipping discovery.
func WithValidator(v rules.Validator) Option {
	return func(fv *FormValidator) {
		fv.explicit = v
	}
}

// WithRegistry looks the validator up in r before falling back to
// registry.Default.
func WithRegistry(r *registry.Registry) Option {
	return func(fv *FormValidator) {
		fv.services = r
	}
}

// WithDisableScanning never consults registry.Default, so the validator must
// come from WithValidator or WithRegistry.
func WithDisableScanning() Option {
	return func(fv *FormValidator) {
		fv.disableScanning = true
	}
}

// WithOptions sets the strategy customizer used when a call passes none.
func WithOptions(opts rules.Options) Option {
	return func(fv *FormValidator) {
		fv.options = opts
	}
}

// WithValidated registers a listener run after every successful validation.
// An error from the listener is returned by Validate or ValidateAsync.
func WithValidated(listener func(ctx context.Context) error) Option {
	return func(fv *FormValidator) {
		if listener != nil {
			fv.onValidated = listener
		}
	}
}

// WithAsyncTimeout bounds how long ValidateAsync waits for async rules.
// Zero (the default) waits for as long as the caller's context allows.
func WithAsyncTimeout(d time.Duration) Option {
	return func(fv *FormValidator) {
		fv.asyncTimeout = d
	}
}
