// Package registry locates the validator for a model type.
//
// Applications either pass a Registry they populate themselves, or register
// validators into Default from an init function so that importing a package
// is enough to make its validators discoverable:
//
//	func init() {
//	    registry.Register[*Signup](playground.New())
//	}
package registry

import (
	"reflect"
	"sync"

	"github.com/amp-labs/amp-editform/rules"
)

// Default is the process-wide registry filled by Register.
var Default = New() //nolint:gochecknoglobals

// Registry maps model types to validators. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	validators map[reflect.Type]rules.Validator
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{validators: make(map[reflect.Type]rules.Validator)}
}

// Add registers v for models of type T, replacing any previous entry.
func Add[T any](r *Registry, v rules.Validator) {
	r.AddType(reflect.TypeFor[T](), v)
}

// Register adds v to Default for models of type T.
func Register[T any](v rules.Validator) {
	Add[T](Default, v)
}

// AddType registers v for models of typ.
func (r *Registry) AddType(typ reflect.Type, v rules.Validator) {
	if typ == nil || v == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.validators[typ] = v
}

// Lookup returns the validator registered for model's dynamic type. A model
// registered as a value type is also found through a pointer to it.
func (r *Registry) Lookup(model any) (rules.Validator, bool) { //nolint:ireturn
	if r == nil || model == nil {
		return nil, false
	}

	typ := reflect.TypeOf(model)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.validators[typ]; ok {
		return v, true
	}

	if typ.Kind() == reflect.Ptr {
		if v, ok := r.validators[typ.Elem()]; ok {
			return v, true
		}
	}

	return nil, false
}

// Resolve picks the validator for model. An explicit validator always wins;
// then services (the application's registry); then Default, unless
// disableDefault is set.
func Resolve(explicit rules.Validator, services *Registry, disableDefault bool, model any) (rules.Validator, bool) { //nolint:ireturn
	if explicit != nil {
		return explicit, true
	}

	if v, ok := services.Lookup(model); ok {
		return v, true
	}

	if disableDefault {
		return nil, false
	}

	return Default.Lookup(model)
}
