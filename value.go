// Copyright (c) 2025, The conftree Authors. All rights reserved. Use of this
// source code is governed by a MIT License that can be found in the LICENSE
// file.

package conftree

import (
	"bytes"
	"encoding/json"
)

// Value is a node of a configuration tree. A node is either a Scalar, a
// *Sequence or a *Mapping; the set is closed so that merging and placeholder
// substitution can switch over it exhaustively.
type Value interface {
	// Interface converts the node to plain Go data: scalars unwrap to their
	// underlying value, sequences become []any and mappings become
	// map[string]any. Mapping key order is not representable in the result.
	Interface() any

	value()
}

// Scalar is a leaf node. Val holds a string, a bool, an int64, a float64, a
// time.Time or nil, depending on what the decoder produced.
type Scalar struct {
	Val any
}

// Sequence is an ordered list of nodes.
type Sequence struct {
	Items []Value
}

// Mapping is a string-keyed collection of nodes that remembers the order in
// which keys were first set.
type Mapping struct {
	keys  []string
	items map[string]Value
}

func (Scalar) value()    {}
func (*Sequence) value() {}
func (*Mapping) value()  {}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{items: make(map[string]Value)}
}

// NewSequence creates a sequence from the given items.
func NewSequence(items ...Value) *Sequence {
	return &Sequence{Items: items}
}

// Interface returns the underlying scalar value.
func (s Scalar) Interface() any {
	return s.Val
}

// Interface returns the sequence converted to a []any slice.
func (s *Sequence) Interface() any {
	items := make([]any, len(s.Items))

	for i, item := range s.Items {
		if item == nil {
			continue
		}

		items[i] = item.Interface()
	}

	return items
}

// Interface returns the mapping converted to a map[string]any map.
func (m *Mapping) Interface() any {
	items := make(map[string]any, len(m.keys))

	for _, key := range m.keys {
		if value := m.items[key]; value != nil {
			items[key] = value.Interface()
			continue
		}

		items[key] = nil
	}

	return items
}

// Set stores a value under the given key. A new key is appended to the key
// order; an existing key keeps its position.
func (m *Mapping) Set(key string, value Value) {
	if m.items == nil {
		m.items = make(map[string]Value)
	}

	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.items[key] = value
}

// Get returns the value stored under the given key.
func (m *Mapping) Get(key string) (Value, bool) {
	value, ok := m.items[key]
	return value, ok
}

// Delete removes the key and its value. The order of the remaining keys is
// preserved.
func (m *Mapping) Delete(key string) {
	if _, ok := m.items[key]; !ok {
		return
	}

	delete(m.items, key)

	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the mapping keys in insertion order.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)

	return keys
}

// Len returns the number of keys in the mapping.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// Clone returns a deep copy of the given node.
func Clone(value Value) Value {
	switch node := value.(type) {
	case nil:
		return nil
	case Scalar:
		return node
	case *Sequence:
		items := make([]Value, len(node.Items))

		for i, item := range node.Items {
			items[i] = Clone(item)
		}

		return &Sequence{Items: items}
	case *Mapping:
		clone := NewMapping()

		for _, key := range node.keys {
			clone.Set(key, Clone(node.items[key]))
		}

		return clone
	}

	return value
}

// Equal reports whether two nodes hold the same data. Mapping key order is
// significant.
func Equal(left, right Value) bool {
	switch l := left.(type) {
	case nil:
		return right == nil
	case Scalar:
		r, ok := right.(Scalar)
		return ok && l.Val == r.Val
	case *Sequence:
		r, ok := right.(*Sequence)

		if !ok || len(l.Items) != len(r.Items) {
			return false
		}

		for i := range l.Items {
			if !Equal(l.Items[i], r.Items[i]) {
				return false
			}
		}

		return true
	case *Mapping:
		r, ok := right.(*Mapping)

		if !ok || len(l.keys) != len(r.keys) {
			return false
		}

		for i, key := range l.keys {
			if r.keys[i] != key {
				return false
			}

			if !Equal(l.items[key], r.items[key]) {
				return false
			}
		}

		return true
	}

	return false
}

// isEmpty reports whether a decoded document carries no data: nothing at
// all, a null scalar, or a container without elements.
func isEmpty(value Value) bool {
	switch node := value.(type) {
	case nil:
		return true
	case Scalar:
		return node.Val == nil
	case *Sequence:
		return len(node.Items) == 0
	case *Mapping:
		return node.Len() == 0
	}

	return false
}

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Val)
}

// MarshalJSON implements json.Marshaler.
func (s *Sequence) MarshalJSON() ([]byte, error) {
	if s.Items == nil {
		return []byte("[]"), nil
	}

	return json.Marshal(s.Items)
}

// MarshalJSON implements json.Marshaler. Keys are written in insertion
// order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyData, err := json.Marshal(key)

		if err != nil {
			return nil, err
		}

		buf.Write(keyData)
		buf.WriteByte(':')

		valueData, err := json.Marshal(m.items[key])

		if err != nil {
			return nil, err
		}

		buf.Write(valueData)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
