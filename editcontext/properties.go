package editcontext

import "sync"

// Properties is a key/value bag shared by everything attached to an edit
// context. Keys follow context.WithValue conventions: use an unexported type.
type Properties struct {
	mu     sync.RWMutex
	values map[any]any
}

func newProperties() *Properties {
	return &Properties{values: make(map[any]any)}
}

// Get returns the value stored under key and whether it was present.
//
// Example:
//
//	if val, ok := ec.Properties().Get(myKey); ok {
//	    handle := val.(*myHandle)
//	}
func (p *Properties) Get(key any) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	val, ok := p.values[key]

	return val, ok
}

// Set stores value under key, replacing any previous value.
func (p *Properties) Set(key, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.values[key] = value
}

// Delete removes key. Deleting a missing key does nothing.
func (p *Properties) Delete(key any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.values, key)
}
