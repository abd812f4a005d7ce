package conftree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	driveLetterRe = regexp.MustCompile(`^[A-Za-z]:[\\/]`)
	urlSchemeRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)
)

type importEntry struct {
	key  string
	path string
}

// processImports strips the imports directive from a document, resolves
// every declared target and recursively parses it. Documents produced by a
// keyed entry nest under that key.
func (p *Processor) processImports(state *loadState, doc *Mapping, path string) error {
	directive, ok := doc.Get(p.options.ImportsKey)

	if !ok {
		return nil
	}

	doc.Delete(p.options.ImportsKey)

	entries, err := importEntries(directive)

	if err != nil {
		return &ParseError{Path: path, Err: err}
	}

	for _, entry := range entries {
		target, err := p.resolveImport(path, entry.path)

		if err != nil {
			return err
		}

		if err := p.parseFile(state, target, entry.key); err != nil {
			return err
		}
	}

	return nil
}

// importEntries normalizes the three accepted directive shapes: a single
// string path, a sequence mixing bare strings with key-to-path pairs, and a
// mapping of key-to-path pairs.
func importEntries(directive Value) ([]importEntry, error) {
	switch node := directive.(type) {
	case Scalar:
		path, ok := node.Val.(string)

		if !ok {
			return nil, fmt.Errorf("import target must be a string, but got: %T",
				node.Val)
		}

		return []importEntry{{path: path}}, nil
	case *Sequence:
		entries := make([]importEntry, 0, len(node.Items))

		for _, item := range node.Items {
			switch item := item.(type) {
			case Scalar:
				path, ok := item.Val.(string)

				if !ok {
					return nil, fmt.Errorf("import target must be a string, but got: %T",
						item.Val)
				}

				entries = append(entries, importEntry{path: path})
			case *Mapping:
				keyed, err := keyedImportEntries(item)

				if err != nil {
					return nil, err
				}

				entries = append(entries, keyed...)
			default:
				return nil, errors.New("import entry must be a string or a key to path pair")
			}
		}

		return entries, nil
	case *Mapping:
		return keyedImportEntries(node)
	}

	return nil, errors.New("malformed imports directive")
}

func keyedImportEntries(node *Mapping) ([]importEntry, error) {
	entries := make([]importEntry, 0, node.Len())

	for _, key := range node.keys {
		scalar, ok := node.items[key].(Scalar)
		path, isString := "", false

		if ok {
			path, isString = scalar.Val.(string)
		}

		if !ok || !isString {
			return nil, fmt.Errorf("import target for key %q must be a string", key)
		}

		entries = append(entries, importEntry{key: key, path: path})
	}

	return entries, nil
}

// resolveImport turns an import declaration into the path to parse.
// Absolute declarations (leading separator, drive letter or URL scheme) are
// taken verbatim; everything else resolves against the importing file's
// directory. The target must exist.
func (p *Processor) resolveImport(from, declared string) (string, error) {
	var target string

	switch {
	case urlSchemeRe.MatchString(declared):
		target = declared
	case isAbsoluteImport(declared):
		target = filepath.Clean(declared)
	default:
		target = filepath.Join(filepath.Dir(from), declared)
	}

	if _, err := os.Stat(target); err != nil {
		return "", &MissingImportError{Path: target, ImportedFrom: from}
	}

	return target, nil
}

func isAbsoluteImport(path string) bool {
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\") {
		return true
	}

	return driveLetterRe.MatchString(path)
}
