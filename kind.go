package parquet

import (
	"github.com/google/uuid"
	"github.com/klahnakoski/mo-parquet/format"
)

// Kind classifies the runtime shape of a record value: one of the
// primitives the Dremel algorithm can shred into a column, or one of the
// two container shapes (NESTED list, OBJECT map) the shredder recurses
// into. It is the type registry's vocabulary — see typeInfo below.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBoolean
	KindInt64
	KindDouble
	KindByteArray
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt64:
		return "int64"
	case KindDouble:
		return "double"
	case KindByteArray:
		return "byte_array"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// IsPrimitive reports whether values of this kind are leaf values (as
// opposed to NESTED lists or OBJECT maps the shredder must recurse into).
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindNull, KindBoolean, KindInt64, KindDouble, KindByteArray:
		return true
	default:
		return false
	}
}

// LeafType is the type registry's mapping from a primitive Kind to its
// Parquet physical/logical representation: the (physical_type,
// logical_type, byte_width) triple spec.md §2 assigns to the type
// registry component. It is also the public shape callers use to declare
// a leaf explicitly via (*Node).Add, rather than deriving it from a
// sample value via typeOf.
type LeafType struct {
	Physical  format.Type
	Logical   *format.ConvertedType
	ByteWidth int
}

var utf8 = format.UTF8
var uuidLogical = format.UUID

var registry = map[Kind]LeafType{
	KindBoolean:   {Physical: format.Boolean, ByteWidth: 1},
	KindInt64:     {Physical: format.Int64, ByteWidth: 8},
	KindDouble:    {Physical: format.Double, ByteWidth: 8},
	KindByteArray: {Physical: format.ByteArray, Logical: &utf8},
}

// classify identifies the Kind of a dynamic record value. Values come from
// JSON-shaped decoding (nil, bool, numbers, string, map[string]any,
// []any) plus the one Go-native special case this module recognizes
// directly: uuid.UUID, reported as a 16-byte fixed byte array with a UUID
// logical type.
func classify(value any) Kind {
	switch value.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt64
	case float32, float64:
		return KindDouble
	case string, []byte, uuid.UUID:
		return KindByteArray
	case map[string]any:
		return KindMap
	case []any:
		return KindList
	default:
		return KindInvalid
	}
}

// typeOf returns the physical/logical type registry entry for a primitive
// value, specializing uuid.UUID to a 16-byte FIXED_LEN_BYTE_ARRAY with a
// UUID logical type rather than the generic variable-length BYTE_ARRAY
// entry that plain strings and []byte get.
func typeOf(value any) LeafType {
	if _, ok := value.(uuid.UUID); ok {
		return LeafType{Physical: format.FixedLenByteArray, Logical: &uuidLogical, ByteWidth: 16}
	}
	return registry[classify(value)]
}

// toInt64 widens any of the supported integer kinds to int64.
func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}

// toFloat64 widens float32/float64 to float64.
func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// toBytes normalizes string/[]byte/uuid.UUID to a byte slice for
// physical-value storage.
func toBytes(value any) ([]byte, bool) {
	switch v := value.(type) {
	case string:
		return []byte(v), true
	case []byte:
		return v, true
	case uuid.UUID:
		b := v // copy
		return b[:], true
	default:
		return nil, false
	}
}
