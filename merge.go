// Copyright (c) 2025, The conftree Authors. All rights reserved. Use of this
// source code is governed by a MIT License that can be found in the LICENSE
// file.

package conftree

// Merge performs a right-biased recursive merge of two configuration trees
// into a new one. Only mappings merge recursively; values of any other kind
// (sequences included) are replaced by the right side entirely, whatever its
// value. Neither input is modified.
func Merge(left, right Value) Value {
	leftMap, leftOK := left.(*Mapping)
	rightMap, rightOK := right.(*Mapping)

	if leftOK && rightOK {
		return mergeMapping(leftMap, rightMap)
	}

	if right == nil {
		return left
	}

	return right
}

func mergeMapping(left, right *Mapping) *Mapping {
	result := NewMapping()

	for _, key := range left.keys {
		result.Set(key, left.items[key])
	}

	for _, key := range right.keys {
		if existing, ok := result.Get(key); ok {
			result.Set(key, Merge(existing, right.items[key]))
			continue
		}

		result.Set(key, right.items[key])
	}

	return result
}

// mergeAll folds decoded documents left to right, so later documents shadow
// earlier ones. It returns ErrEmptyConfiguration when there is nothing to
// merge; a single document is returned unchanged.
func mergeAll(configs []Value) (Value, error) {
	if len(configs) == 0 {
		return nil, ErrEmptyConfiguration
	}

	config := configs[0]

	for _, layer := range configs[1:] {
		config = Merge(config, layer)
	}

	return config, nil
}
