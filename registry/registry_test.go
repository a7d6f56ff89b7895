package registry

import (
	"testing"

	"github.com/amp-labs/amp-editform/rules"
	"github.com/stretchr/testify/assert"
)

type invoice struct{}

type receipt struct{}

type scanned struct{}

func init() {
	Register[*scanned](rules.SelfValidator{})
}

type namedValidator struct {
	rules.SelfValidator

	name string
}

func TestLookup(t *testing.T) {
	t.Parallel()

	r := New()
	v := &namedValidator{name: "invoice"}

	Add[*invoice](r, v)

	got, ok := r.Lookup(&invoice{})
	assert.True(t, ok)
	assert.Same(t, v, got)

	_, ok = r.Lookup(&receipt{})
	assert.False(t, ok)

	_, ok = r.Lookup(nil)
	assert.False(t, ok)

	var nilRegistry *Registry

	_, ok = nilRegistry.Lookup(&invoice{})
	assert.False(t, ok)
}

func TestLookup_ValueTypeMatchesPointer(t *testing.T) {
	t.Parallel()

	r := New()
	v := &namedValidator{name: "receipt"}

	Add[receipt](r, v)

	got, ok := r.Lookup(&receipt{})
	assert.True(t, ok)
	assert.Same(t, v, got)
}

func TestResolve_Order(t *testing.T) {
	t.Parallel()

	explicit := &namedValidator{name: "explicit"}
	service := &namedValidator{name: "service"}

	services := New()
	Add[*scanned](services, service)

	got, ok := Resolve(explicit, services, false, &scanned{})
	assert.True(t, ok)
	assert.Same(t, explicit, got)

	got, ok = Resolve(nil, services, false, &scanned{})
	assert.True(t, ok)
	assert.Same(t, service, got)

	got, ok = Resolve(nil, nil, false, &scanned{})
	assert.True(t, ok)
	assert.Equal(t, rules.SelfValidator{}, got)

	_, ok = Resolve(nil, nil, true, &scanned{})
	assert.False(t, ok)
}
