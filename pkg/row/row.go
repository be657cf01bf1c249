// Package row defines the row contract of Rowmill: a fixed-length, ordered,
// indexed tuple of typed values, with typed accessors and a per-slot null
// check.
//
// Slots hold dynamically typed values from the canonical domain described in
// package types; NULL is the nil interface value. Typed accessors assert the
// slot's type: calling one on a slot of another type, on a NULL slot, or
// with an out-of-range index is a programming error and panics. Callers that
// cannot make that assertion use the generic accessor and IsNull.
package row

import (
	"bytes"
	"iter"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Row is a fixed-length, ordered sequence of typed values. Index access is
// 0-based and must lie within [0, Len()).
type Row interface {
	// Len returns the number of slots. It is fixed at construction.
	Len() int

	// Get returns the value at slot i, or nil if the slot is NULL.
	Get(i int) any

	// IsNull reports whether slot i holds NULL.
	IsNull(i int) bool

	// Typed accessors. Each panics if slot i holds a value of a different
	// type or NULL.
	Int8(i int) int8
	Int16(i int) int16
	Int32(i int) int32
	Int64(i int) int64
	Float32(i int) float32
	Float64(i int) float64
	Bool(i int) bool
	Text(i int) string

	// Values returns a lazy, restartable iterator over all slot values in
	// index order.
	Values() iter.Seq[any]

	// Copy returns a new row holding a snapshot of this row's slot values,
	// independent of this row's storage.
	Copy() Row

	String() string
}

// MutableRow is a Row whose slots can be overwritten in place.
type MutableRow interface {
	Row

	// Set overwrites slot i with v. A nil v sets the slot to NULL.
	Set(i int, v any)

	// SetNull sets slot i to NULL.
	SetNull(i int)
}

// Equal reports whether two rows have the same length and value-equal slots.
// Decimals compare numerically, byte slices by content, and timestamps with
// time.Time.Equal; all other values compare with ==.
func Equal(a, b Row) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !valueEqual(a.Get(i), b.Get(i)) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case *apd.Decimal:
		bv, ok := b.(*apd.Decimal)
		return ok && av.Cmp(bv) == 0
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}
