// Package types defines the value type tags shared by rows, schemas, and
// expressions in Rowmill.
//
// Row slots hold dynamically typed Go values; the canonical value domain is
// nil (NULL), int8, int16, int32, int64, float32, float64, bool, string,
// []byte, *apd.Decimal, and time.Time. A DataType names one of those slot
// types in a schema or an expression signature.
package types

import (
	"time"

	"github.com/cockroachdb/apd/v3"
)

// DataType represents a column or expression result type.
type DataType int

const (
	Unknown DataType = iota
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	Bool
	Text
	Bytes
	Decimal
	Timestamp
	// Any marks a slot that may hold a value of any type. Accessing such a
	// slot goes through the generic accessor; typed accessors are the
	// caller's assertion about what the slot holds.
	Any
)

// String returns the SQL name of the type.
func (t DataType) String() string {
	switch t {
	case Int8:
		return "TINYINT"
	case Int16:
		return "SMALLINT"
	case Int32:
		return "INT"
	case Int64:
		return "BIGINT"
	case Float32:
		return "REAL"
	case Float64:
		return "DOUBLE"
	case Bool:
		return "BOOL"
	case Text:
		return "TEXT"
	case Bytes:
		return "BYTES"
	case Decimal:
		return "DECIMAL"
	case Timestamp:
		return "TIMESTAMP"
	case Any:
		return "ANY"
	default:
		return "UNKNOWN"
	}
}

// Numeric reports whether values of the type participate in arithmetic.
func (t DataType) Numeric() bool {
	switch t {
	case Int8, Int16, Int32, Int64, Float32, Float64, Decimal:
		return true
	default:
		return false
	}
}

// FixedWidth returns the byte width for fixed-width types, 0 otherwise.
func (t DataType) FixedWidth() int {
	switch t {
	case Int8, Bool:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64, Timestamp:
		return 8
	default:
		return 0
	}
}

// TypeOf returns the DataType tag for a Go value from the canonical value
// domain. nil and values outside the domain map to Unknown.
func TypeOf(v any) DataType {
	switch v.(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case float32:
		return Float32
	case float64:
		return Float64
	case bool:
		return Bool
	case string:
		return Text
	case []byte:
		return Bytes
	case *apd.Decimal:
		return Decimal
	case time.Time:
		return Timestamp
	default:
		return Unknown
	}
}
