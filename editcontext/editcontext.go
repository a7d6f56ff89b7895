// Package editcontext holds per-form state: the model being edited, the
// validation messages reported against its fields, which fields were
// modified, and a property bag that validators use to coordinate.
//
// An EditContext does not validate anything itself. Validators attach handlers
// for validation requests and field changes, and report results through a
// MessageStore.
package editcontext

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"facette.io/natsort"
	"github.com/amp-labs/amp-editform/errors"
)

// ValidationRequestedHandler runs when Validate is called on the context.
type ValidationRequestedHandler func(ctx context.Context, ec *EditContext) error

// FieldChangedHandler runs when NotifyFieldChanged is called on the context.
type FieldChangedHandler func(ctx context.Context, ec *EditContext, field FieldIdentifier) error

// EditContext is safe for concurrent use. Handlers are invoked without any
// lock held, so they may call back into the context.
type EditContext struct {
	model      any
	properties *Properties

	mu                  sync.RWMutex
	stores              []*MessageStore
	nextSeq             uint64
	modified            map[FieldIdentifier]struct{}
	validationRequested []ValidationRequestedHandler
	fieldChanged        []FieldChangedHandler
	stateChanged        []func()
}

// New creates an edit context for model, which must be a non-nil pointer so
// that nested fields can be identified by address.
func New(model any) (*EditContext, error) {
	val := reflect.ValueOf(model)
	if !val.IsValid() || val.Kind() != reflect.Ptr || val.IsNil() {
		return nil, errors.ErrModelNotPointer
	}

	return &EditContext{
		model:      model,
		properties: newProperties(),
		modified:   make(map[FieldIdentifier]struct{}),
	}, nil
}

// Model returns the model passed to New.
func (ec *EditContext) Model() any {
	return ec.model
}

// Field returns the identifier of a top-level field of the model.
func (ec *EditContext) Field(fieldName string) FieldIdentifier {
	return Field(ec.model, fieldName)
}

// Properties returns the shared property bag.
func (ec *EditContext) Properties() *Properties {
	return ec.properties
}

// OnValidationRequested registers a handler for Validate.
func (ec *EditContext) OnValidationRequested(handler ValidationRequestedHandler) {
	if handler == nil {
		return
	}

	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.validationRequested = append(ec.validationRequested, handler)
}

// OnFieldChanged registers a handler for NotifyFieldChanged.
func (ec *EditContext) OnFieldChanged(handler FieldChangedHandler) {
	if handler == nil {
		return
	}

	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.fieldChanged = append(ec.fieldChanged, handler)
}

// OnValidationStateChanged registers a listener for NotifyValidationStateChanged.
func (ec *EditContext) OnValidationStateChanged(listener func()) {
	if listener == nil {
		return
	}

	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.stateChanged = append(ec.stateChanged, listener)
}

// Validate runs every validation-requested handler in registration order and
// reports whether the context has no validation messages afterwards. Handler
// errors are infrastructure failures, not rule failures; every handler runs
// and their errors are joined.
func (ec *EditContext) Validate(ctx context.Context) (bool, error) {
	ec.mu.RLock()
	handlers := append([]ValidationRequestedHandler(nil), ec.validationRequested...)
	ec.mu.RUnlock()

	errs := errors.Collection{}

	for _, handler := range handlers {
		errs.Add(handler(ctx, ec))
	}

	return !ec.HasMessages(), errs.GetError()
}

// NotifyFieldChanged marks field as modified and runs the field-changed handlers.
func (ec *EditContext) NotifyFieldChanged(ctx context.Context, field FieldIdentifier) error {
	ec.mu.Lock()
	ec.modified[field] = struct{}{}
	handlers := append([]FieldChangedHandler(nil), ec.fieldChanged...)
	ec.mu.Unlock()

	errs := errors.Collection{}

	for _, handler := range handlers {
		errs.Add(handler(ctx, ec, field))
	}

	return errs.GetError()
}

// NotifyValidationStateChanged tells listeners that messages have changed.
func (ec *EditContext) NotifyValidationStateChanged() {
	ec.mu.RLock()
	listeners := append([]func(){}, ec.stateChanged...)
	ec.mu.RUnlock()

	for _, listener := range listeners {
		listener()
	}
}

// IsModified reports whether NotifyFieldChanged was called for field since
// the last MarkAsUnmodified.
func (ec *EditContext) IsModified(field FieldIdentifier) bool {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	_, ok := ec.modified[field]

	return ok
}

// IsAnyModified reports whether any field was modified.
func (ec *EditContext) IsAnyModified() bool {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	return len(ec.modified) > 0
}

// MarkAsUnmodified clears the modified flag of every field.
func (ec *EditContext) MarkAsUnmodified() {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	clear(ec.modified)
}

// HasMessages reports whether any store holds a message.
func (ec *EditContext) HasMessages() bool {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	for _, store := range ec.stores {
		if len(store.messages) > 0 {
			return true
		}
	}

	return false
}

// Messages returns every validation message, naturally ordered by path
// ("Items[2]" before "Items[10]"). Messages on the same path keep the order
// they were added in.
func (ec *EditContext) Messages() []Message {
	ec.mu.RLock()

	var out []Message

	for _, store := range ec.stores {
		for _, msgs := range store.messages {
			out = append(out, msgs...)
		}
	}

	ec.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path == out[j].Path {
			return out[i].seq < out[j].seq
		}

		return natsort.Compare(out[i].Path, out[j].Path)
	})

	return out
}

// MessagesFor returns the message texts reported against field.
func (ec *EditContext) MessagesFor(field FieldIdentifier) []string {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	var out []string

	for _, store := range ec.stores {
		for _, msg := range store.messages[field] {
			out = append(out, msg.Text)
		}
	}

	return out
}
