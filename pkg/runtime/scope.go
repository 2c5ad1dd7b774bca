package runtime

import "sort"

// Scope is the flat name table for one program run.
type Scope struct {
	values map[string]Value
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{values: make(map[string]Value)}
}

// Define inserts or overwrites a binding.
func (s *Scope) Define(name string, value Value) {
	if value == nil {
		value = Undefined
	}
	s.values[name] = value
}

// Assign rebinds name, creating it when it was never declared.
func (s *Scope) Assign(name string, value Value) {
	s.Define(name, value)
}

// Lookup returns the binding and whether it exists.
func (s *Scope) Lookup(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Get returns the binding for name, or Undefined when it has never been written.
func (s *Scope) Get(name string) Value {
	if v, ok := s.values[name]; ok {
		return v
	}
	return Undefined
}

// Len reports the number of bindings.
func (s *Scope) Len() int {
	return len(s.values)
}

// Snapshot returns a copy of the current bindings.
func (s *Scope) Snapshot() map[string]Value {
	out := make(map[string]Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Keys returns the bound names in sorted order.
func (s *Scope) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
