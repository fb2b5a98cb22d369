package parquet

import (
	"fmt"

	"github.com/pkg/errors"
)

// StructuralError reports a REQUIRED field that was null or missing, a
// non-REPEATED field that received a list, or a REPEATED field that was
// assigned a scalar at the wrong schema level.
type StructuralError struct {
	Row   int
	Path  string
	cause error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("row %d: %s: structural error", e.Row, e.Path)
}

func (e *StructuralError) Cause() error { return e.cause }
func (e *StructuralError) Unwrap() error { return e.cause }

func newStructuralError(row int, path, reason string) error {
	return &StructuralError{Row: row, Path: path, cause: errors.New(reason)}
}

// SchemaClosedError reports an incoming field with no declared schema node
// while the schema is locked.
type SchemaClosedError struct {
	Row  int
	Path string
}

func (e *SchemaClosedError) Error() string {
	return fmt.Sprintf("row %d: %s: not allowed by locked schema", e.Row, e.Path)
}

// TypeMismatchError reports a leaf value whose physical type differs from
// the declared physical type, under a locked schema.
type TypeMismatchError struct {
	Row      int
	Path     string
	Declared string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("row %d: %s: expected %s, got %s", e.Row, e.Path, e.Declared, e.Got)
}

// RedefinitionError reports Add() called with a path that already exists.
type RedefinitionError struct {
	Path string
}

func (e *RedefinitionError) Error() string {
	return fmt.Sprintf("%s: already defined", e.Path)
}

// LoaderError reports malformed Parquet thrift schema metadata, such as a
// pre-order element whose num_children count does not add up.
type LoaderError struct {
	Index  int
	reason string
	cause  error
}

func (e *LoaderError) Error() string {
	return fmt.Sprintf("schema element %d: %s", e.Index, e.reason)
}

func (e *LoaderError) Unwrap() error { return e.cause }

func newLoaderError(index int, reason string) error {
	return &LoaderError{Index: index, reason: reason, cause: errors.New(reason)}
}

// AssemblyError reports corrupt columnar input detected while assembling
// records: a leaf with no cursor, or a cursor that ran past the end of its
// leaf's rep/def or value arrays.
type AssemblyError struct {
	Path   string
	Offset int
	reason string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("%s@%d: %s", e.Path, e.Offset, e.reason)
}

func newAssemblyError(path string, offset int, reason string) error {
	return errors.WithStack(&AssemblyError{Path: path, Offset: offset, reason: reason})
}
