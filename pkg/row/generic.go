package row

import (
	"fmt"
	"iter"
	"strings"
)

// GenericRow is the []any-backed Row implementation. It is the row type
// allocated by projections and by Copy.
type GenericRow struct {
	values []any
}

// Empty is the zero-length row. Every accessor on it panics.
var Empty Row = &GenericRow{}

// New returns a GenericRow over the given values. The values slice is
// retained, not copied.
func New(values ...any) *GenericRow {
	return &GenericRow{values: values}
}

// FromValues returns a GenericRow that adopts the slice as its backing
// storage. The caller must not modify the slice afterwards.
func FromValues(values []any) *GenericRow {
	return &GenericRow{values: values}
}

// Len returns the number of slots.
func (r *GenericRow) Len() int { return len(r.values) }

// Get returns the value at slot i, or nil if the slot is NULL.
func (r *GenericRow) Get(i int) any { return r.values[i] }

// IsNull reports whether slot i holds NULL.
func (r *GenericRow) IsNull(i int) bool { return r.values[i] == nil }

func (r *GenericRow) Int8(i int) int8       { return r.values[i].(int8) }
func (r *GenericRow) Int16(i int) int16     { return r.values[i].(int16) }
func (r *GenericRow) Int32(i int) int32     { return r.values[i].(int32) }
func (r *GenericRow) Int64(i int) int64     { return r.values[i].(int64) }
func (r *GenericRow) Float32(i int) float32 { return r.values[i].(float32) }
func (r *GenericRow) Float64(i int) float64 { return r.values[i].(float64) }
func (r *GenericRow) Bool(i int) bool       { return r.values[i].(bool) }
func (r *GenericRow) Text(i int) string     { return r.values[i].(string) }

// Values returns a lazy iterator over the slot values in index order.
func (r *GenericRow) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range r.values {
			if !yield(v) {
				return
			}
		}
	}
}

// Copy returns a new GenericRow with a copied slot array.
func (r *GenericRow) Copy() Row {
	values := make([]any, len(r.values))
	copy(values, r.values)
	return &GenericRow{values: values}
}

// String returns a human-readable representation, e.g. [3, x, NULL].
func (r *GenericRow) String() string { return formatRow(r) }

// GenericMutableRow is a GenericRow whose slots can be overwritten in place.
// It is the buffer type reused by MutableProjection: one instance, its slot
// values rewritten for every input row.
type GenericMutableRow struct {
	GenericRow
}

// NewMutable returns a GenericMutableRow with n NULL slots.
func NewMutable(n int) *GenericMutableRow {
	return &GenericMutableRow{GenericRow{values: make([]any, n)}}
}

// Set overwrites slot i with v. A nil v sets the slot to NULL.
func (r *GenericMutableRow) Set(i int, v any) { r.values[i] = v }

// SetNull sets slot i to NULL.
func (r *GenericMutableRow) SetNull(i int) { r.values[i] = nil }

func formatRow(r Row) string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < r.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if r.IsNull(i) {
			b.WriteString("NULL")
		} else {
			fmt.Fprintf(&b, "%v", r.Get(i))
		}
	}
	b.WriteByte(']')
	return b.String()
}
