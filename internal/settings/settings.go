// Package settings provides read access to the administrator-editable
// key/value settings store backing the notification engine.
package settings

import (
	"context"
	"encoding/json"
	"sync"
)

// Value is a tagged union over the two shapes settings arrive in: a raw
// string (possibly JSON-serialized) or an already-structured object.
// Consumers normalize through AsMap/AsString at the boundary so the rest of
// the engine only ever sees typed data.
type Value struct {
	raw        string
	structured map[string]interface{}
}

// Raw constructs a Value holding an unparsed string.
func Raw(s string) Value {
	return Value{raw: s}
}

// Structured constructs a Value holding a pre-parsed object.
func Structured(m map[string]interface{}) Value {
	return Value{structured: m}
}

// IsStructured reports whether the value arrived as a parsed object.
func (v Value) IsStructured() bool {
	return v.structured != nil
}

// AsString returns the raw string form of the value. Structured values are
// re-serialized to JSON.
func (v Value) AsString() string {
	if v.structured != nil {
		b, err := json.Marshal(v.structured)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return v.raw
}

// AsMap normalizes the value into a map. Raw strings are parsed as JSON
// objects; a raw string that is not a JSON object yields an error.
func (v Value) AsMap() (map[string]interface{}, error) {
	if v.structured != nil {
		return v.structured, nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(v.raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Gateway is the narrow lookup interface the engine consumes. Implementations
// must be safe for concurrent use.
type Gateway interface {
	// Get returns the value stored under key. The second return is false
	// when no entry exists.
	Get(ctx context.Context, key string) (Value, bool, error)
}

// Memory is an in-memory Gateway, used in tests and as a zero-dependency
// fallback store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]Value
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]Value)}
}

func (m *Memory) Get(_ context.Context, key string) (Value, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores a value under key.
func (m *Memory) Set(key string, v Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = v
}

// Delete removes the entry under key, if any.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}
