package projection

import (
	"fmt"
	"iter"

	"github.com/evanv/rowmill/pkg/row"
)

// JoinedRow presents two rows as one row of combined length without
// copying either. The left row supplies ordinals [0, left.Len()) and
// the right row the rest.
//
// A JoinedRow is a view: it borrows the underlying rows, so mutating
// or reusing them shows through until Copy materializes the current
// values into an independent row. One instance is meant to be
// repointed at successive row pairs via Set, so a join produces no
// per-tuple allocation.
type JoinedRow struct {
	left  row.Row
	right row.Row
}

var _ row.Row = (*JoinedRow)(nil)

// NewJoined returns a JoinedRow viewing left and right.
func NewJoined(left, right row.Row) *JoinedRow {
	return &JoinedRow{left: left, right: right}
}

// Set repoints the view at a new pair of rows and returns the
// receiver.
func (j *JoinedRow) Set(left, right row.Row) *JoinedRow {
	j.left = left
	j.right = right
	return j
}

// SetLeft replaces only the left row and returns the receiver.
func (j *JoinedRow) SetLeft(left row.Row) *JoinedRow {
	j.left = left
	return j
}

// SetRight replaces only the right row and returns the receiver.
func (j *JoinedRow) SetRight(right row.Row) *JoinedRow {
	j.right = right
	return j
}

func (j *JoinedRow) Len() int { return j.left.Len() + j.right.Len() }

// route maps a combined ordinal to the underlying row and its local
// ordinal.
func (j *JoinedRow) route(i int) (row.Row, int) {
	n := j.left.Len()
	if i < 0 || i >= n+j.right.Len() {
		panic(fmt.Sprintf("joined row index %d out of range [0, %d)", i, n+j.right.Len()))
	}
	if i < n {
		return j.left, i
	}
	return j.right, i - n
}

func (j *JoinedRow) Get(i int) any {
	r, k := j.route(i)
	return r.Get(k)
}

func (j *JoinedRow) IsNull(i int) bool {
	r, k := j.route(i)
	return r.IsNull(k)
}

func (j *JoinedRow) Int8(i int) int8 {
	r, k := j.route(i)
	return r.Int8(k)
}

func (j *JoinedRow) Int16(i int) int16 {
	r, k := j.route(i)
	return r.Int16(k)
}

func (j *JoinedRow) Int32(i int) int32 {
	r, k := j.route(i)
	return r.Int32(k)
}

func (j *JoinedRow) Int64(i int) int64 {
	r, k := j.route(i)
	return r.Int64(k)
}

func (j *JoinedRow) Float32(i int) float32 {
	r, k := j.route(i)
	return r.Float32(k)
}

func (j *JoinedRow) Float64(i int) float64 {
	r, k := j.route(i)
	return r.Float64(k)
}

func (j *JoinedRow) Bool(i int) bool {
	r, k := j.route(i)
	return r.Bool(k)
}

func (j *JoinedRow) Text(i int) string {
	r, k := j.route(i)
	return r.Text(k)
}

// Values yields every value of the left row in order, then every
// value of the right row. The sequence is restartable.
func (j *JoinedRow) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		for v := range j.left.Values() {
			if !yield(v) {
				return
			}
		}
		for v := range j.right.Values() {
			if !yield(v) {
				return
			}
		}
	}
}

// Copy materializes the current combined values into a row
// independent of the underlying pair. Repointing the JoinedRow or
// mutating the underlying rows afterwards does not affect the copy.
func (j *JoinedRow) Copy() row.Row {
	out := make([]any, 0, j.Len())
	for v := range j.Values() {
		out = append(out, v)
	}
	return row.FromValues(out)
}

func (j *JoinedRow) String() string { return j.Copy().String() }
