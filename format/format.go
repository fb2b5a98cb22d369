// Package format declares the subset of the Parquet thrift schema metadata
// that the Dremel schema tree converts to and from: SchemaElement plus its
// Type, FieldRepetitionType and ConvertedType enums.
//
// These types carry thrift field-tag struct tags for documentation and for
// interoperability with a real thrift codec, but this package implements no
// compact-protocol marshaling itself — reading and writing an actual
// Parquet file is file-I/O plumbing and stays out of this module's scope.
package format

import "fmt"

// Type is a Parquet physical type.
type Type int32

const (
	Boolean Type = iota
	Int32
	Int64
	Int96 // deprecated by the format, kept for completeness of the enum
	Float
	Double
	ByteArray
	FixedLenByteArray
)

func (t Type) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Int96:
		return "INT96"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case ByteArray:
		return "BYTE_ARRAY"
	case FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return fmt.Sprintf("Type(%d)", int32(t))
	}
}

// FieldRepetitionType is a Parquet schema node's repetition kind.
type FieldRepetitionType int32

const (
	Required FieldRepetitionType = iota
	Optional
	Repeated
)

func (r FieldRepetitionType) String() string {
	switch r {
	case Required:
		return "REQUIRED"
	case Optional:
		return "OPTIONAL"
	case Repeated:
		return "REPEATED"
	default:
		return fmt.Sprintf("FieldRepetitionType(%d)", int32(r))
	}
}

// ConvertedType is a Parquet logical/converted type annotation.
type ConvertedType int32

const (
	UTF8 ConvertedType = iota
	UUID
	Map
	List
)

func (c ConvertedType) String() string {
	switch c {
	case UTF8:
		return "UTF8"
	case UUID:
		return "UUID"
	case Map:
		return "MAP"
	case List:
		return "LIST"
	default:
		return fmt.Sprintf("ConvertedType(%d)", int32(c))
	}
}

// SchemaElement is one node of a pre-order-flattened Parquet schema, as
// stored in a file's FileMetaData.schema list.
//
// Interior nodes set NumChildren and leave Type nil; leaves set Type and
// leave NumChildren nil. The first element of a flattened list is always
// the root, named "." by convention in this module regardless of the name
// it carried on disk.
type SchemaElement struct {
	Type           *Type                `thrift:"1,optional"`
	TypeLength     *int32               `thrift:"2,optional"`
	Repetition     *FieldRepetitionType `thrift:"3,optional"`
	Name           string               `thrift:"4,required"`
	NumChildren    *int32               `thrift:"5,optional"`
	ConvertedType  *ConvertedType       `thrift:"6,optional"`
	Scale          *int32               `thrift:"7,optional"`
	Precision      *int32               `thrift:"8,optional"`
	FieldID        *int32               `thrift:"9,optional"`
}

// IsLeaf reports whether the element has a physical type (and therefore no
// children).
func (e SchemaElement) IsLeaf() bool {
	return e.Type != nil
}

func (e SchemaElement) String() string {
	rep := "?"
	if e.Repetition != nil {
		rep = e.Repetition.String()
	}
	if e.IsLeaf() {
		return fmt.Sprintf("%s %s %s", rep, e.Type, e.Name)
	}
	n := int32(0)
	if e.NumChildren != nil {
		n = *e.NumChildren
	}
	return fmt.Sprintf("%s group %s {%d children}", rep, e.Name, n)
}
