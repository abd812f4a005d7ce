// Copyright (c) 2025, The conftree Authors. All rights reserved. Use of this
// source code is governed by a MIT License that can be found in the LICENSE
// file.

package conftree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	yaml "gopkg.in/yaml.v3"
)

// fileDecoder reads a file from disk and hands the bytes to a format parser.
type fileDecoder struct {
	exts  map[string]struct{}
	parse func(data []byte) (Value, error)
}

// NewYAMLDecoder creates a decoder for .yml and .yaml files.
func NewYAMLDecoder() Decoder {
	return &fileDecoder{
		exts:  map[string]struct{}{".yml": {}, ".yaml": {}},
		parse: ParseYAML,
	}
}

// NewJSONDecoder creates a decoder for .json files.
func NewJSONDecoder() Decoder {
	return &fileDecoder{
		exts:  map[string]struct{}{".json": {}},
		parse: ParseJSON,
	}
}

// NewTOMLDecoder creates a decoder for .toml files.
func NewTOMLDecoder() Decoder {
	return &fileDecoder{
		exts:  map[string]struct{}{".toml": {}},
		parse: ParseTOML,
	}
}

func (d *fileDecoder) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := d.exts[ext]

	return ok
}

func (d *fileDecoder) Decode(path string) (Value, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	value, err := d.parse(data)

	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return value, nil
}

// ParseYAML decodes the first document of a YAML stream, preserving mapping
// key order. Integers normalize to int64 and floats to float64, so trees
// compare stably across formats.
func ParseYAML(data []byte) (Value, error) {
	var root yaml.Node
	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root)

	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, err
	}

	return yamlValue(&root)
}

func yamlValue(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return yamlValue(node.Alias)
	case yaml.ScalarNode:
		return yamlScalar(node)
	case yaml.SequenceNode:
		items := make([]Value, len(node.Content))

		for i, child := range node.Content {
			item, err := yamlValue(child)

			if err != nil {
				return nil, err
			}

			items[i] = item
		}

		return &Sequence{Items: items}, nil
	case yaml.MappingNode:
		mapping := NewMapping()

		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]

			if keyNode.Kind == yaml.AliasNode {
				keyNode = keyNode.Alias
			}

			child, err := yamlValue(node.Content[i+1])

			if err != nil {
				return nil, err
			}

			mapping.Set(keyNode.Value, child)
		}

		return mapping, nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}

		return yamlValue(node.Content[0])
	}

	return nil, fmt.Errorf("unsupported YAML node kind: %d", node.Kind)
}

func yamlScalar(node *yaml.Node) (Value, error) {
	switch node.Tag {
	case "!!null":
		return Scalar{}, nil
	case "!!bool":
		var v bool

		if err := node.Decode(&v); err != nil {
			return nil, err
		}

		return Scalar{Val: v}, nil
	case "!!int":
		var v int64

		if err := node.Decode(&v); err != nil {
			return nil, err
		}

		return Scalar{Val: v}, nil
	case "!!float":
		var v float64

		if err := node.Decode(&v); err != nil {
			return nil, err
		}

		return Scalar{Val: v}, nil
	case "!!timestamp":
		var v time.Time

		if err := node.Decode(&v); err != nil {
			return nil, err
		}

		return Scalar{Val: v}, nil
	default:
		return Scalar{Val: node.Value}, nil
	}
}

// ParseJSON decodes a JSON value, preserving object key order. Integral
// numbers become int64, all others float64.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := jsonValue(dec)

	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level JSON value")
	}

	return value, nil
}

func jsonValue(dec *json.Decoder) (Value, error) {
	token, err := dec.Token()

	if err != nil {
		return nil, err
	}

	switch token := token.(type) {
	case json.Delim:
		switch token {
		case '{':
			mapping := NewMapping()

			for dec.More() {
				keyToken, err := dec.Token()

				if err != nil {
					return nil, err
				}

				key, ok := keyToken.(string)

				if !ok {
					return nil, fmt.Errorf("unexpected object key: %v", keyToken)
				}

				child, err := jsonValue(dec)

				if err != nil {
					return nil, err
				}

				mapping.Set(key, child)
			}

			if _, err := dec.Token(); err != nil {
				return nil, err
			}

			return mapping, nil
		case '[':
			seq := &Sequence{Items: []Value{}}

			for dec.More() {
				child, err := jsonValue(dec)

				if err != nil {
					return nil, err
				}

				seq.Items = append(seq.Items, child)
			}

			if _, err := dec.Token(); err != nil {
				return nil, err
			}

			return seq, nil
		}

		return nil, fmt.Errorf("unexpected token: %v", token)
	case json.Number:
		if i, err := strconv.ParseInt(token.String(), 10, 64); err == nil {
			return Scalar{Val: i}, nil
		}

		f, err := token.Float64()

		if err != nil {
			return nil, err
		}

		return Scalar{Val: f}, nil
	case string:
		return Scalar{Val: token}, nil
	case bool:
		return Scalar{Val: token}, nil
	case nil:
		return Scalar{}, nil
	}

	return nil, fmt.Errorf("unexpected token: %v", token)
}

// ParseTOML decodes a TOML document. Key order is reconstructed from the
// decoder metadata; nested values the metadata does not enumerate fall back
// to sorted key order, which is still deterministic.
func ParseTOML(data []byte) (Value, error) {
	var raw map[string]any
	meta, err := toml.Decode(string(data), &raw)

	if err != nil {
		return nil, err
	}

	root := NewMapping()

	for _, key := range meta.Keys() {
		insertTOML(root, key, raw)
	}

	fillTOMLGaps(root, raw)

	return root, nil
}

// insertTOML places the value found at the given key path into the tree,
// creating mapping nodes along the way in metadata order. Values that are
// not tables (arrays of tables included) are set once, at first sight.
func insertTOML(cur *Mapping, path toml.Key, raw map[string]any) {
	curRaw := raw

	for i, elem := range path {
		rawValue, ok := curRaw[elem]

		if !ok {
			return
		}

		rawMap, isMap := rawValue.(map[string]any)

		if !isMap {
			if _, exists := cur.Get(elem); !exists {
				cur.Set(elem, fromTOML(rawValue))
			}

			return
		}

		child, exists := cur.Get(elem)

		if !exists {
			child = NewMapping()
			cur.Set(elem, child)
		}

		childMap, isChildMap := child.(*Mapping)

		if !isChildMap {
			return
		}

		if i == len(path)-1 {
			return
		}

		cur, curRaw = childMap, rawMap
	}
}

// fillTOMLGaps converts table values whose keys the metadata did not
// enumerate, leaving everything already reconstructed untouched.
func fillTOMLGaps(m *Mapping, raw map[string]any) {
	for _, key := range m.Keys() {
		rawMap, rawOK := raw[key].(map[string]any)
		child, _ := m.Get(key)
		childMap, isMap := child.(*Mapping)

		if !rawOK || !isMap {
			continue
		}

		if childMap.Len() == 0 && len(rawMap) > 0 {
			m.Set(key, fromTOML(rawMap))
			continue
		}

		fillTOMLGaps(childMap, rawMap)
	}
}

func fromTOML(raw any) Value {
	switch raw := raw.(type) {
	case map[string]any:
		keys := make([]string, 0, len(raw))

		for key := range raw {
			keys = append(keys, key)
		}

		sort.Strings(keys)
		mapping := NewMapping()

		for _, key := range keys {
			mapping.Set(key, fromTOML(raw[key]))
		}

		return mapping
	case []map[string]any:
		items := make([]Value, len(raw))

		for i, elem := range raw {
			items[i] = fromTOML(elem)
		}

		return &Sequence{Items: items}
	case []any:
		items := make([]Value, len(raw))

		for i, elem := range raw {
			items[i] = fromTOML(elem)
		}

		return &Sequence{Items: items}
	default:
		return Scalar{Val: raw}
	}
}
