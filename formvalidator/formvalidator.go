// Package formvalidator connects an edit context to a rules.Validator.
//
// A FormValidator attaches to an edit context on creation. From then on the
// edit context's own Validate and NotifyFieldChanged run the validator and
// fill its message store, whether they are triggered through the
// FormValidator or directly by the host.
//
//	ec, _ := editcontext.New(&signup)
//	fv, err := formvalidator.New(ctx, ec, formvalidator.WithValidator(playground.New()))
//	if err != nil {
//	    return err
//	}
//
//	valid, err := fv.ValidateAsync(ctx)
package formvalidator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amp-labs/amp-editform/editcontext"
	"github.com/amp-labs/amp-editform/errors"
	"github.com/amp-labs/amp-editform/logger"
	"github.com/amp-labs/amp-editform/registry"
	"github.com/amp-labs/amp-editform/rules"
	"github.com/amp-labs/amp-editform/spans"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

type mode int

const (
	modeSync mode = iota
	modeAsync
)

func (m mode) String() string {
	if m == modeAsync {
		return "async"
	}

	return "sync"
}

// request is what a Validate call stashes for the validation-requested hook.
type request struct {
	options rules.Options
	mode    mode
}

// FormValidator runs a validator against the model of one edit context.
//
// Calls to Validate and ValidateAsync on the same FormValidator are
// serialized. The validated listener runs while the call is still in
// progress, so it must not call Validate or ValidateAsync itself.
type FormValidator struct {
	editCtx *editcontext.EditContext
	store   *editcontext.MessageStore

	explicit        rules.Validator
	services        *registry.Registry
	disableScanning bool
	options         rules.Options
	onValidated     func(ctx context.Context) error
	asyncTimeout    time.Duration

	validator rules.Validator

	callMu  sync.Mutex
	pending atomic.Pointer[request]

	// passes counts validation runs; an async result is applied only while
	// its run is still the latest.
	passes  atomic.Uint64
	applyMu sync.Mutex
}

// New attaches a form validator to editCtx. A nil editCtx is a configuration
// error and nothing is attached. When no validator can be found the form
// validator still attaches, but validation passes produce no messages and
// ValidateAsync fails with errors.ErrNoPendingValidation.
func New(ctx context.Context, editCtx *editcontext.EditContext, opts ...Option) (*FormValidator, error) {
	if editCtx == nil {
		return nil, errors.ErrMissingEditContext
	}

	fv := &FormValidator{
		editCtx:     editCtx,
		onValidated: func(context.Context) error { return nil },
	}

	for _, opt := range opts {
		opt(fv)
	}

	validator, found := registry.Resolve(fv.explicit, fv.services, fv.disableScanning, editCtx.Model())
	if found {
		fv.validator = validator
	} else {
		logger.Get(ctx).Warn("No validator found for model; validation will report no messages",
			"model", fmt.Sprintf("%T", editCtx.Model()),
			"scanning", !fv.disableScanning)
	}

	fv.attach()

	return fv, nil
}

// EditContext returns the edit context this form validator is attached to.
func (fv *FormValidator) EditContext() *editcontext.EditContext {
	return fv.editCtx
}

// Validator returns the resolved validator, or nil if none was found.
func (fv *FormValidator) Validator() rules.Validator { //nolint:ireturn
	return fv.validator
}

// Validate runs a full validation pass and reports whether the edit context
// has no validation messages afterwards. opts replace the WithOptions
// customizer for this call only. Rules that block are run to completion
// before Validate returns.
func (fv *FormValidator) Validate(ctx context.Context, opts ...rules.Options) (bool, error) {
	return fv.run(ctx, modeSync, opts, func(ctx context.Context) (bool, error) {
		return fv.editCtx.Validate(ctx)
	})
}

// ValidateAsync runs a full validation pass with the validator's async entry
// point and waits for it. The result reflects messages after every async
// rule has finished. It fails with errors.ErrNoPendingValidation if the pass
// left no pending result in the edit context, and with ctx.Err() if ctx ends
// first.
func (fv *FormValidator) ValidateAsync(ctx context.Context, opts ...rules.Options) (bool, error) {
	if fv.asyncTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, fv.asyncTimeout)
		defer cancel()
	}

	return fv.run(ctx, modeAsync, opts, func(ctx context.Context) (bool, error) {
		props := fv.editCtx.Properties()
		props.Delete(pendingAsyncValidation)

		if _, err := fv.editCtx.Validate(ctx); err != nil {
			return false, err
		}

		pending, ok := PendingAsyncValidation(fv.editCtx)
		if !ok {
			return false, errors.ErrNoPendingValidation
		}

		if _, err := pending.AwaitContext(ctx); err != nil {
			return false, err
		}

		return !fv.editCtx.HasMessages(), nil
	})
}

func (fv *FormValidator) run(
	ctx context.Context, m mode, opts []rules.Options, pass func(ctx context.Context) (bool, error),
) (valid bool, err error) {
	fv.callMu.Lock()
	defer fv.callMu.Unlock()

	ctx = logger.WithValidationId(ctx, uuid.NewString())
	start := time.Now()

	defer func() {
		label := resultLabel(valid, err)

		validationsTotal.WithLabelValues(m.String(), label).Inc()
		validationTime.WithLabelValues(m.String(), label).
			Observe(float64(time.Since(start).Milliseconds()))

		if err != nil {
			logger.Get(ctx).Error("Form validation failed", "mode", m.String(), "error", err)
		} else {
			logger.Get(ctx).Debug("Form validation finished", "mode", m.String(), "valid", valid)
		}
	}()

	fv.pending.Store(&request{options: combine(opts), mode: m})
	defer fv.pending.Store(nil)

	return spans.StartValErr[bool](ctx, "FormValidator.Validate",
		spans.WithAttribute("editform.mode", attribute.StringValue(m.String())),
		spans.WithAttribute("editform.model", attribute.StringValue(fmt.Sprintf("%T", fv.editCtx.Model()))),
		spans.WithErrorMessage("form validation failed"),
	).Enter(func(ctx context.Context, span trace.Span) (bool, error) {
		valid, err := pass(ctx)
		if err != nil {
			return false, err
		}

		span.SetAttributes(attribute.Bool("editform.valid", valid))

		if err := fv.onValidated(ctx); err != nil {
			return false, fmt.Errorf("validated listener: %w", err)
		}

		return valid, nil
	})
}

// combine folds per-call options into one, or nil when there are none.
func combine(opts []rules.Options) rules.Options {
	var nonNil []rules.Options

	for _, opt := range opts {
		if opt != nil {
			nonNil = append(nonNil, opt)
		}
	}

	if len(nonNil) == 0 {
		return nil
	}

	return func(s *rules.Strategy) {
		for _, opt := range nonNil {
			opt(s)
		}
	}
}
