package conftree

import (
	"fmt"
	"regexp"
)

var (
	paramTokenRe     = regexp.MustCompile(`%([0-9A-Za-z._-]+)%`)
	paramFullTokenRe = regexp.MustCompile(`^%([0-9A-Za-z._-]+)%$`)
)

// resolveToken looks a parameter up by its literal name. Names are opaque:
// dots carry no path semantics.
func resolveToken(name string, params *Mapping) (Value, bool) {
	return params.Get(name)
}

// substitute walks a tree replacing %name% placeholders in string leaves
// from the parameter table. Containers are rewritten in place; leaves of any
// other type pass through untouched.
func substitute(value Value, params *Mapping) Value {
	switch node := value.(type) {
	case Scalar:
		str, ok := node.Val.(string)

		if !ok {
			return node
		}

		return substituteString(str, params)
	case *Sequence:
		for i, item := range node.Items {
			node.Items[i] = substitute(item, params)
		}

		return node
	case *Mapping:
		for _, key := range node.keys {
			node.items[key] = substitute(node.items[key], params)
		}

		return node
	}

	return value
}

// substituteString applies the full-token rule first: a string that is
// exactly one placeholder takes the parameter's raw value, preserving its
// type. Otherwise every occurrence naming a plain scalar parameter is
// spliced into the text; unresolved names and structured values stay
// literal.
func substituteString(str string, params *Mapping) Value {
	if match := paramFullTokenRe.FindStringSubmatch(str); match != nil {
		if value, ok := resolveToken(match[1], params); ok {
			return Clone(value)
		}

		return Scalar{Val: str}
	}

	matches := paramTokenRe.FindAllStringSubmatchIndex(str, -1)

	if matches == nil {
		return Scalar{Val: str}
	}

	var res []byte
	last := 0

	for _, match := range matches {
		name := str[match[2]:match[3]]
		value, ok := resolveToken(name, params)

		if !ok {
			continue
		}

		scalar, ok := value.(Scalar)

		if !ok || scalar.Val == nil {
			continue
		}

		res = append(res, str[last:match[0]]...)
		res = append(res, fmt.Sprintf("%v", scalar.Val)...)
		last = match[1]
	}

	res = append(res, str[last:]...)

	return Scalar{Val: string(res)}
}

// mergeParams merges a parameters sub-tree into the table, name by name and
// right-biased. Structured values replace entirely; names are never merged
// deep.
func mergeParams(params, incoming *Mapping) {
	for _, key := range incoming.keys {
		params.Set(key, incoming.items[key])
	}
}
