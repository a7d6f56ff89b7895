// Package playground runs go-playground/validator struct tags as a
// rules.Validator.
//
// Failures are reported against Go field paths relative to the validated
// struct ("Address.Line1", "Orders[2].Sku"). A field can be placed in named
// rule sets with a ruleset tag:
//
//	type Signup struct {
//	    Email    string `validate:"required,email"`
//	    Username string `validate:"required,username_free" ruleset:"Remote"`
//	}
//
// Fields without a ruleset tag belong to rules.DefaultRuleSet.
package playground

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/amp-labs/amp-editform/bgworker"
	"github.com/amp-labs/amp-editform/future"
	"github.com/amp-labs/amp-editform/logger"
	"github.com/amp-labs/amp-editform/rules"
	impl "github.com/go-playground/validator/v10"
)

// RuleSetTag is the struct tag that assigns a field to rule sets.
const RuleSetTag = "ruleset"

// MessageFunc renders the message for one failed tag.
type MessageFunc func(fe impl.FieldError, display string) string

// Option configures a Validator.
type Option func(*Validator)

// WithValidate uses an existing go-playground instance instead of a new one.
func WithValidate(v *impl.Validate) Option {
	return func(pv *Validator) {
		if v != nil {
			pv.validate = v
		}
	}
}

// WithMessage overrides the message rendered for tag.
func WithMessage(tag string, fn MessageFunc) Option {
	return func(pv *Validator) {
		pv.messages[tag] = fn
	}
}

// Validator is safe for concurrent use once configured.
type Validator struct {
	validate *impl.Validate

	mu       sync.RWMutex
	messages map[string]MessageFunc
	ruleSets sync.Map // reflect.Type -> map[string][]string
}

var _ rules.Validator = (*Validator)(nil)

// New returns a validator with required-struct checking enabled.
func New(opts ...Option) *Validator {
	pv := &Validator{
		validate: impl.New(impl.WithRequiredStructEnabled()),
		messages: make(map[string]MessageFunc),
	}

	for _, opt := range opts {
		opt(pv)
	}

	return pv
}

// RegisterRule adds a custom tag. fn receives the validation context, so it
// may block on I/O; such rules are meant to be run through ValidateAsync.
// message may be nil to use the generic message.
func (v *Validator) RegisterRule(tag string, fn impl.FuncCtx, message MessageFunc) error {
	if err := v.validate.RegisterValidationCtx(tag, fn); err != nil {
		return fmt.Errorf("registering rule %q: %w", tag, err)
	}

	if message != nil {
		v.mu.Lock()
		v.messages[tag] = message
		v.mu.Unlock()
	}

	return nil
}

// CanValidate reports whether instance is a struct or a pointer to one.
func (v *Validator) CanValidate(instance any) bool {
	_, ok := structType(instance)

	return ok
}

// Validate runs the struct tags selected by strategy.
func (v *Validator) Validate(ctx context.Context, instance any, strategy *rules.Strategy) (*rules.Result, error) {
	if strategy == nil {
		strategy = rules.NewStrategy()
	}

	typ, ok := structType(instance)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a struct", rules.ErrUnsupportedType, instance)
	}

	var err error

	if fields, partial := partialFields(typ, strategy); partial {
		if len(fields) == 0 {
			return &rules.Result{}, nil
		}

		err = v.validate.StructPartialCtx(ctx, instance, fields...)
	} else {
		err = v.validate.StructCtx(ctx, instance)
	}

	if err == nil {
		return &rules.Result{}, nil
	}

	var invalid *impl.InvalidValidationError
	if errors.As(err, &invalid) {
		return nil, fmt.Errorf("%w: %w", rules.ErrUnsupportedType, err)
	}

	var failures impl.ValidationErrors
	if !errors.As(err, &failures) {
		return nil, fmt.Errorf("playground validation: %w", err)
	}

	result := &rules.Result{}
	sets := v.ruleSetsFor(typ)

	for _, fe := range failures {
		path := relativePath(fe.StructNamespace())

		if !inSelectedRuleSet(sets, path, strategy) {
			continue
		}

		result.Failures = append(result.Failures, rules.Failure{
			PropertyName:   path,
			Message:        v.message(fe),
			Severity:       rules.SeverityError,
			Tag:            fe.Tag(),
			AttemptedValue: fe.Value(),
		})
	}

	filtered := strategy.Apply(result)

	logger.Get(ctx).Debug("playground validation finished",
		"type", typ.String(),
		"failures", len(filtered.Failures))

	return filtered, nil
}

// ValidateAsync runs Validate on the async validation worker pool.
func (v *Validator) ValidateAsync(
	ctx context.Context, instance any, strategy *rules.Strategy,
) *future.Future[*rules.Result] {
	return future.Spawn(bgworker.Spawner(ctx), func() (*rules.Result, error) {
		return v.Validate(ctx, instance, strategy)
	})
}

func (v *Validator) message(fe impl.FieldError) string {
	display := DisplayName(fe.StructField())

	v.mu.RLock()
	custom, ok := v.messages[fe.Tag()]
	v.mu.RUnlock()

	if ok {
		return custom(fe, display)
	}

	return defaultMessage(fe, display)
}

func (v *Validator) ruleSetsFor(typ reflect.Type) map[string][]string {
	if cached, ok := v.ruleSets.Load(typ); ok {
		return cached.(map[string][]string) //nolint:forcetypeassert
	}

	sets := make(map[string][]string)

	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		tag, ok := field.Tag.Lookup(RuleSetTag)
		if !ok {
			continue
		}

		for _, name := range strings.Split(tag, ",") {
			if name = strings.TrimSpace(name); name != "" {
				sets[field.Name] = append(sets[field.Name], name)
			}
		}
	}

	v.ruleSets.Store(typ, sets)

	return sets
}

func structType(instance any) (reflect.Type, bool) {
	typ := reflect.TypeOf(instance)
	if typ == nil {
		return nil, false
	}

	if typ.Kind() == reflect.Ptr {
		if reflect.ValueOf(instance).IsNil() {
			return nil, false
		}

		typ = typ.Elem()
	}

	return typ, typ.Kind() == reflect.Struct
}

// partialFields decides whether strategy can be run as a partial validation.
// go-playground only checks nested fields that are listed one by one, so a
// partial run is used only when every selected property is a top-level
// scalar field. Otherwise everything runs and failures are filtered.
func partialFields(typ reflect.Type, strategy *rules.Strategy) ([]string, bool) {
	props := strategy.Properties()
	if len(props) == 0 {
		return nil, false
	}

	fields := make([]string, 0, len(props))

	for _, prop := range props {
		if strings.ContainsAny(prop, ".[") {
			return nil, false
		}

		field, ok := typ.FieldByName(prop)
		if !ok {
			// Unknown names select nothing.
			continue
		}

		if !isScalar(field.Type) {
			return nil, false
		}

		fields = append(fields, prop)
	}

	return fields, true
}

func isScalar(typ reflect.Type) bool {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	switch typ.Kind() { //nolint:exhaustive
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map, reflect.Interface:
		return false
	default:
		return true
	}
}

// relativePath strips the root type name from a go-playground struct namespace.
func relativePath(ns string) string {
	if idx := strings.IndexByte(ns, '.'); idx >= 0 {
		return ns[idx+1:]
	}

	return ns
}

func topLevelField(path string) string {
	if idx := strings.IndexAny(path, ".["); idx >= 0 {
		return path[:idx]
	}

	return path
}

func inSelectedRuleSet(sets map[string][]string, path string, strategy *rules.Strategy) bool {
	names, ok := sets[topLevelField(path)]
	if !ok {
		return strategy.IncludesRuleSet(rules.DefaultRuleSet)
	}

	for _, name := range names {
		if strategy.IncludesRuleSet(name) {
			return true
		}
	}

	return false
}
