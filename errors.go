package conftree

import (
	"errors"
	"fmt"
)

const errPref = "conftree"

// ErrEmptyConfiguration is returned by a load that produced no documents at
// all: the entry file and everything it imported decoded to nothing.
var ErrEmptyConfiguration = errors.New(errPref + ": empty configuration")

// UnsupportedFormatError is returned when no registered decoder claims a
// file.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", errPref, e.Path)
}

// ParseError is returned when a file cannot be read or decoded, or when a
// directive inside it is malformed. Err holds the underlying cause.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: cannot parse %s: %s", errPref, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingImportError is returned when a resolved import target does not
// exist on disk.
type MissingImportError struct {
	Path         string
	ImportedFrom string
}

func (e *MissingImportError) Error() string {
	return fmt.Sprintf("%s: missing import target %s (imported from %s)",
		errPref, e.Path, e.ImportedFrom)
}
