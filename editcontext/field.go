package editcontext

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrPathEmpty         = errors.New("path cannot be empty")
	ErrPathInvalidSyntax = errors.New("invalid property path syntax")
	ErrPathNotFound      = errors.New("property path not found")
)

// FieldIdentifier names one field of one object. Model must be comparable;
// in practice it is a pointer into the edited model.
type FieldIdentifier struct {
	Model     any
	FieldName string
}

// Field returns the identifier of fieldName on model.
func Field(model any, fieldName string) FieldIdentifier {
	return FieldIdentifier{Model: model, FieldName: fieldName}
}

// String renders the identifier as "<owner type>.<field>", e.g. "*main.Address.City".
func (f FieldIdentifier) String() string {
	return fmt.Sprintf("%T.%s", f.Model, f.FieldName)
}

// pathStep is either a struct field access or an index into a slice, array or map.
type pathStep struct {
	field string
	index string
	isIdx bool
}

func (s pathStep) name() string {
	if s.isIdx {
		return s.index
	}

	return s.field
}

var segmentRe = regexp.MustCompile(`^([^\[\]]*)((?:\[[^\[\]]+\])*)$`) //nolint:gochecknoglobals
var indexRe = regexp.MustCompile(`\[([^\[\]]+)\]`)                    //nolint:gochecknoglobals

// parsePath splits a property path such as "Address.Line1" or
// "Orders[2].Items[0].Sku" into field and index steps.
func parsePath(path string) ([]pathStep, error) {
	if path == "" {
		return nil, ErrPathEmpty
	}

	var steps []pathStep

	for i, segment := range strings.Split(path, ".") {
		match := segmentRe.FindStringSubmatch(segment)
		if match == nil {
			return nil, fmt.Errorf("%w: %q", ErrPathInvalidSyntax, path)
		}

		name, indices := match[1], match[2]

		switch {
		case name != "":
			steps = append(steps, pathStep{field: name})
		case i > 0 || indices == "":
			// Only the first segment may start with an index.
			return nil, fmt.Errorf("%w: empty segment in %q", ErrPathInvalidSyntax, path)
		}

		for _, idx := range indexRe.FindAllStringSubmatch(indices, -1) {
			steps = append(steps, pathStep{index: idx[1], isIdx: true})
		}
	}

	return steps, nil
}

// ResolveField maps a property path reported by a validator to the object
// that owns the leaf field, so that "Address.Line1" on a *Person resolves to
// {&person.Address, "Line1"}. Paths that cannot be walked (unknown fields,
// nil pointers, out-of-range indices, unaddressable values) resolve to the
// root model with the full path as the field name.
func ResolveField(model any, path string) FieldIdentifier {
	fallback := Field(model, path)

	steps, err := parsePath(path)
	if err != nil {
		return fallback
	}

	cur := reflect.ValueOf(model)

	for _, step := range steps[:len(steps)-1] {
		cur, err = walk(cur, step)
		if err != nil {
			return fallback
		}
	}

	last := steps[len(steps)-1]

	if !last.isIdx {
		holder := deref(cur)
		if holder.Kind() != reflect.Struct || !holder.FieldByName(last.field).IsValid() {
			return fallback
		}
	}

	owner, ok := ownerOf(cur)
	if !ok {
		return fallback
	}

	return Field(owner, last.name())
}

func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}

func walk(cur reflect.Value, step pathStep) (reflect.Value, error) {
	cur = deref(cur)
	if !cur.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: nil value before %q", ErrPathNotFound, step.name())
	}

	if !step.isIdx {
		if cur.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("%w: %s is not a struct", ErrPathNotFound, cur.Type())
		}

		next := cur.FieldByName(step.field)
		if !next.IsValid() {
			return reflect.Value{}, fmt.Errorf("%w: %s has no field %q", ErrPathNotFound, cur.Type(), step.field)
		}

		return next, nil
	}

	switch cur.Kind() { //nolint:exhaustive
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(step.index)
		if err != nil || idx < 0 || idx >= cur.Len() {
			return reflect.Value{}, fmt.Errorf("%w: index %q", ErrPathNotFound, step.index)
		}

		return cur.Index(idx), nil
	case reflect.Map:
		key, err := mapKey(cur.Type().Key(), step.index)
		if err != nil {
			return reflect.Value{}, err
		}

		next := cur.MapIndex(key)
		if !next.IsValid() {
			return reflect.Value{}, fmt.Errorf("%w: key %q", ErrPathNotFound, step.index)
		}

		return next, nil
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s is not indexable", ErrPathNotFound, cur.Type())
	}
}

func mapKey(keyType reflect.Type, raw string) (reflect.Value, error) {
	switch keyType.Kind() { //nolint:exhaustive
	case reflect.String:
		return reflect.ValueOf(raw).Convert(keyType), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: key %q", ErrPathNotFound, raw)
		}

		return reflect.ValueOf(n).Convert(keyType), nil
	default:
		return reflect.Value{}, fmt.Errorf("%w: unsupported key type %s", ErrPathNotFound, keyType)
	}
}

// ownerOf returns a comparable handle for the object at v: the pointer itself
// when v is a pointer, otherwise v's address.
func ownerOf(v reflect.Value) (any, bool) {
	for v.IsValid() && v.Kind() == reflect.Interface {
		v = v.Elem()
	}

	if !v.IsValid() {
		return nil, false
	}

	if v.Kind() == reflect.Ptr {
		if v.IsNil() || !v.CanInterface() {
			return nil, false
		}

		return v.Interface(), true
	}

	if v.CanAddr() && v.Addr().CanInterface() {
		return v.Addr().Interface(), true
	}

	return nil, false
}

const maxSearchDepth = 32

// PathOf is the inverse of ResolveField: it finds the property path of field
// by searching model for the object that owns it. The search follows struct
// fields, pointers, slices and arrays; it returns false when the owner is not
// reachable from model.
func PathOf(model any, field FieldIdentifier) (string, bool) {
	if field.Model == nil {
		return "", false
	}

	if sameObject(field.Model, model) {
		return field.FieldName, true
	}

	target := reflect.ValueOf(field.Model)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return "", false
	}

	s := &ownerSearch{target: target, visited: make(map[uintptr]struct{})}

	prefix, kind, ok := s.find(reflect.ValueOf(model), "", 0)
	if !ok {
		return "", false
	}

	switch kind { //nolint:exhaustive
	case reflect.Slice, reflect.Array, reflect.Map:
		return prefix + "[" + field.FieldName + "]", true
	default:
		return prefix + "." + field.FieldName, true
	}
}

func sameObject(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)

	return va.Kind() == reflect.Ptr && vb.Kind() == reflect.Ptr &&
		va.Type() == vb.Type() && va.Pointer() == vb.Pointer()
}

type ownerSearch struct {
	target  reflect.Value
	visited map[uintptr]struct{}
}

func (s *ownerSearch) matches(v reflect.Value) bool {
	if v.Kind() == reflect.Ptr {
		return !v.IsNil() && v.Type() == s.target.Type() && v.Pointer() == s.target.Pointer()
	}

	if v.CanAddr() {
		addr := v.Addr()

		return addr.Type() == s.target.Type() && addr.Pointer() == s.target.Pointer()
	}

	return false
}

// find walks v looking for the target owner and returns its path and kind.
func (s *ownerSearch) find(v reflect.Value, prefix string, depth int) (string, reflect.Kind, bool) {
	if depth > maxSearchDepth || !v.IsValid() {
		return "", reflect.Invalid, false
	}

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", reflect.Invalid, false
		}

		if _, seen := s.visited[v.Pointer()]; seen {
			return "", reflect.Invalid, false
		}

		s.visited[v.Pointer()] = struct{}{}
	}

	v = deref(v)
	if !v.IsValid() {
		return "", reflect.Invalid, false
	}

	visit := func(child reflect.Value, path string) (string, reflect.Kind, bool) {
		if s.matches(child) {
			return path, deref(child).Kind(), true
		}

		return s.find(child, path, depth+1)
	}

	switch v.Kind() { //nolint:exhaustive
	case reflect.Struct:
		typ := v.Type()

		for i := range v.NumField() {
			if !typ.Field(i).IsExported() {
				continue
			}

			path := typ.Field(i).Name
			if prefix != "" {
				path = prefix + "." + path
			}

			if p, k, ok := visit(v.Field(i), path); ok {
				return p, k, true
			}
		}
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if p, k, ok := visit(v.Index(i), prefix+"["+strconv.Itoa(i)+"]"); ok {
				return p, k, true
			}
		}
	}

	return "", reflect.Invalid, false
}
