package formvalidator

import (
	"context"
	"fmt"

	"github.com/amp-labs/amp-editform/editcontext"
	"github.com/amp-labs/amp-editform/future"
	"github.com/amp-labs/amp-editform/logger"
	"github.com/amp-labs/amp-editform/rules"
)

type propertyKey string

// pendingAsyncValidation is the edit context property holding the
// *future.Future[*rules.Result] of the latest validation pass.
const pendingAsyncValidation propertyKey = "PendingAsyncValidation"

// PendingAsyncValidation returns the result handle of the latest validation
// pass run against ec. Messages are already applied when it completes.
func PendingAsyncValidation(ec *editcontext.EditContext) (*future.Future[*rules.Result], bool) {
	val, ok := ec.Properties().Get(pendingAsyncValidation)
	if !ok {
		return nil, false
	}

	fut, ok := val.(*future.Future[*rules.Result])

	return fut, ok
}

func (fv *FormValidator) attach() {
	fv.store = editcontext.NewMessageStore(fv.editCtx)

	fv.editCtx.OnValidationRequested(fv.validationRequested)
	fv.editCtx.OnFieldChanged(fv.fieldChanged)
}

// strategy picks the per-call options stashed by Validate, falling back to
// the WithOptions customizer.
func (fv *FormValidator) strategy(req *request) *rules.Strategy {
	if req != nil && req.options != nil {
		return rules.NewStrategy(req.options)
	}

	return rules.NewStrategy(fv.options)
}

func (fv *FormValidator) validationRequested(ctx context.Context, ec *editcontext.EditContext) error {
	if fv.validator == nil {
		return nil
	}

	req := fv.pending.Load()
	strategy := fv.strategy(req)
	model := ec.Model()
	pass := fv.passes.Inc()

	if req != nil && req.mode == modeAsync {
		inner := fv.validator.ValidateAsync(ctx, model, strategy)
		fut, promise := future.New[*rules.Result]()

		inner.OnResult(func(result *rules.Result, err error) {
			if err == nil {
				fv.applyResult(ec, pass, result)
			}

			promise.Complete(result, err)
		})

		ec.Properties().Set(pendingAsyncValidation, fut)

		return nil
	}

	result, err := fv.validator.Validate(ctx, model, strategy)
	if err != nil {
		ec.Properties().Set(pendingAsyncValidation, future.Failed[*rules.Result](err))

		return fmt.Errorf("validating %T: %w", model, err)
	}

	fv.applyResult(ec, pass, result)
	ec.Properties().Set(pendingAsyncValidation, future.Completed(result))

	return nil
}

// applyResult replaces the messages with result unless a pass started after
// pass has taken over; a late async result never overwrites a newer one.
func (fv *FormValidator) applyResult(ec *editcontext.EditContext, pass uint64, result *rules.Result) {
	fv.applyMu.Lock()

	if fv.passes.Load() != pass {
		fv.applyMu.Unlock()
		logger.Get().Debug("Dropping result of a superseded validation pass", "pass", pass)

		return
	}

	fv.store.Replace(toMessages(ec.Model(), result))
	fv.applyMu.Unlock()

	ec.NotifyValidationStateChanged()
}

func toMessages(model any, result *rules.Result) []editcontext.Message {
	if result == nil {
		return nil
	}

	msgs := make([]editcontext.Message, 0, len(result.Failures))

	for _, failure := range result.Failures {
		msgs = append(msgs, editcontext.Message{
			Field: editcontext.ResolveField(model, failure.PropertyName),
			Path:  failure.PropertyName,
			Text:  failure.Message,
		})
	}

	return msgs
}

func (fv *FormValidator) fieldChanged(ctx context.Context, ec *editcontext.EditContext, field editcontext.FieldIdentifier) error {
	if fv.validator == nil {
		return nil
	}

	model := ec.Model()

	path, ok := editcontext.PathOf(model, field)
	if !ok {
		logger.Get(ctx).Debug("Changed field is not reachable from the model; skipping field validation",
			"field", field.String())

		return nil
	}

	strategy := rules.NewStrategy(fv.options).IncludeProperties(path)
	fv.passes.Inc()

	result, err := fv.validator.Validate(ctx, model, strategy)
	if err != nil {
		fieldValidationsTotal.WithLabelValues(resultError).Inc()

		return fmt.Errorf("validating %s of %T: %w", path, model, err)
	}

	fieldValidationsTotal.WithLabelValues(resultLabel(result.IsValid(), nil)).Inc()

	fv.applyMu.Lock()
	fv.store.ReplaceAt(path, field, toMessages(model, result))
	fv.applyMu.Unlock()

	ec.NotifyValidationStateChanged()

	return nil
}
