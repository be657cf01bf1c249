// Package expr defines the expression trees evaluated against rows.
//
// Expressions come in two layers. Unbound trees reference columns by
// name through AttributeRef and cannot be evaluated. Binding rewrites
// them against a schema into trees whose leaves are BoundRef ordinals;
// only bound trees may be evaluated. Evaluation never retains or
// mutates the row it is given.
//
// NULL is represented as an untyped nil. Arithmetic and comparisons
// propagate NULL; AND, OR and NOT follow three-valued logic.
package expr

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/evanv/rowmill/pkg/row"
	"github.com/evanv/rowmill/pkg/types"
)

// ErrUnresolved reports use of an expression that still contains
// unbound attribute references.
var ErrUnresolved = errors.New("expression is not resolved")

// ErrDivisionByZero reports integer, float or decimal division by zero.
var ErrDivisionByZero = errors.New("division by zero")

// Expression is a node in an expression tree.
type Expression interface {
	// Eval evaluates the expression against r. A nil result is NULL.
	Eval(r row.Row) (any, error)

	// Type reports the type the expression produces, or types.Unknown
	// when it cannot be determined before binding.
	Type() types.DataType

	// Resolved reports whether the expression and all of its children
	// are bound and safe to evaluate.
	Resolved() bool

	// Children returns the direct child expressions.
	Children() []Expression

	String() string
}

func allResolved(exprs ...Expression) bool {
	for _, e := range exprs {
		if !e.Resolved() {
			return false
		}
	}
	return true
}

// Literal is a constant value.
type Literal struct {
	Val any
	Typ types.DataType
}

// NewLiteral returns a Literal for v, inferring its type from the
// value. A nil v is the untyped NULL literal.
func NewLiteral(v any) *Literal {
	return &Literal{Val: v, Typ: types.TypeOf(v)}
}

// Null returns a NULL literal carrying the given type.
func Null(t types.DataType) *Literal {
	return &Literal{Val: nil, Typ: t}
}

func (e *Literal) Eval(row.Row) (any, error) { return e.Val, nil }
func (e *Literal) Type() types.DataType      { return e.Typ }
func (e *Literal) Resolved() bool            { return true }
func (e *Literal) Children() []Expression    { return nil }

func (e *Literal) String() string {
	switch v := e.Val.(type) {
	case nil:
		return "NULL"
	case string:
		return strconv.Quote(v)
	case []byte:
		return fmt.Sprintf("x'%x'", v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%v", e.Val)
}

// AttributeRef references a column by name. It is the unresolved form
// callers build before binding; evaluating one is an error.
type AttributeRef struct {
	Name string
}

func (e *AttributeRef) Eval(row.Row) (any, error) {
	return nil, errors.Wrapf(ErrUnresolved, "attribute %q", e.Name)
}

func (e *AttributeRef) Type() types.DataType   { return types.Unknown }
func (e *AttributeRef) Resolved() bool         { return false }
func (e *AttributeRef) Children() []Expression { return nil }
func (e *AttributeRef) String() string         { return e.Name }

// BoundRef references a column by ordinal in the input row.
type BoundRef struct {
	Ordinal int
	Typ     types.DataType
}

func (e *BoundRef) Eval(r row.Row) (any, error) { return r.Get(e.Ordinal), nil }
func (e *BoundRef) Type() types.DataType        { return e.Typ }
func (e *BoundRef) Resolved() bool              { return true }
func (e *BoundRef) Children() []Expression      { return nil }
func (e *BoundRef) String() string              { return fmt.Sprintf("input[%d]", e.Ordinal) }
