package expr

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"

	"github.com/evanv/rowmill/pkg/row"
	"github.com/evanv/rowmill/pkg/types"
)

// decimalCtx governs decimal arithmetic. 38 digits matches the widest
// fixed-point precision the row layer stores.
var decimalCtx = apd.BaseContext.WithPrecision(38)

// ArithOp identifies an arithmetic operator.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpRem:
		return "%"
	}
	return fmt.Sprintf("ArithOp(%d)", int(op))
}

// Arith applies an arithmetic operator to two numeric operands.
// Operands widen to the larger numeric kind: integers compute in
// int64, a float operand promotes both sides to float64, and a
// decimal operand promotes both sides to decimal. A NULL operand
// makes the result NULL.
type Arith struct {
	Op    ArithOp
	Left  Expression
	Right Expression
}

func (e *Arith) Eval(r row.Row) (any, error) {
	left, err := e.Left.Eval(r)
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, nil
	}
	right, err := e.Right.Eval(r)
	if err != nil {
		return nil, err
	}
	if right == nil {
		return nil, nil
	}
	return arithValue(e.Op, left, right)
}

func (e *Arith) Type() types.DataType {
	lt, rt := e.Left.Type(), e.Right.Type()
	switch {
	case lt == types.Decimal || rt == types.Decimal:
		return types.Decimal
	case lt == types.Float64 || rt == types.Float64 || lt == types.Float32 || rt == types.Float32:
		return types.Float64
	case lt.Numeric() && rt.Numeric():
		return types.Int64
	}
	return types.Unknown
}

func (e *Arith) Resolved() bool         { return allResolved(e.Left, e.Right) }
func (e *Arith) Children() []Expression { return []Expression{e.Left, e.Right} }
func (e *Arith) String() string         { return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right) }

// Neg negates a numeric operand, preserving its type.
type Neg struct {
	Input Expression
}

func (e *Neg) Eval(r row.Row) (any, error) {
	v, err := e.Input.Eval(r)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return negValue(v)
}

func (e *Neg) Type() types.DataType   { return e.Input.Type() }
func (e *Neg) Resolved() bool         { return e.Input.Resolved() }
func (e *Neg) Children() []Expression { return []Expression{e.Input} }
func (e *Neg) String() string         { return fmt.Sprintf("(-%s)", e.Input) }

// CmpOp identifies a comparison operator.
type CmpOp int

const (
	OpEQ CmpOp = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
)

func (op CmpOp) String() string {
	switch op {
	case OpEQ:
		return "="
	case OpNE:
		return "!="
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	}
	return fmt.Sprintf("CmpOp(%d)", int(op))
}

// Cmp compares two operands of the same kind. Numeric operands
// compare across widths. A NULL operand makes the result NULL.
type Cmp struct {
	Op    CmpOp
	Left  Expression
	Right Expression
}

func (e *Cmp) Eval(r row.Row) (any, error) {
	left, err := e.Left.Eval(r)
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, nil
	}
	right, err := e.Right.Eval(r)
	if err != nil {
		return nil, err
	}
	if right == nil {
		return nil, nil
	}
	cmp, err := compareValues(left, right)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case OpEQ:
		return cmp == 0, nil
	case OpNE:
		return cmp != 0, nil
	case OpLT:
		return cmp < 0, nil
	case OpLE:
		return cmp <= 0, nil
	case OpGT:
		return cmp > 0, nil
	case OpGE:
		return cmp >= 0, nil
	}
	return nil, errors.Newf("unknown comparison operator %v", e.Op)
}

func (e *Cmp) Type() types.DataType   { return types.Bool }
func (e *Cmp) Resolved() bool         { return allResolved(e.Left, e.Right) }
func (e *Cmp) Children() []Expression { return []Expression{e.Left, e.Right} }
func (e *Cmp) String() string         { return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right) }

// And is three-valued logical AND. A false operand decides the result
// even when the other side is NULL.
type And struct {
	Left  Expression
	Right Expression
}

func (e *And) Eval(r row.Row) (any, error) {
	lv, lnull, err := evalBool(e.Left, r)
	if err != nil {
		return nil, err
	}
	if !lnull && !lv {
		return false, nil
	}
	rv, rnull, err := evalBool(e.Right, r)
	if err != nil {
		return nil, err
	}
	if !rnull && !rv {
		return false, nil
	}
	if lnull || rnull {
		return nil, nil
	}
	return true, nil
}

func (e *And) Type() types.DataType   { return types.Bool }
func (e *And) Resolved() bool         { return allResolved(e.Left, e.Right) }
func (e *And) Children() []Expression { return []Expression{e.Left, e.Right} }
func (e *And) String() string         { return fmt.Sprintf("(%s AND %s)", e.Left, e.Right) }

// Or is three-valued logical OR. A true operand decides the result
// even when the other side is NULL.
type Or struct {
	Left  Expression
	Right Expression
}

func (e *Or) Eval(r row.Row) (any, error) {
	lv, lnull, err := evalBool(e.Left, r)
	if err != nil {
		return nil, err
	}
	if !lnull && lv {
		return true, nil
	}
	rv, rnull, err := evalBool(e.Right, r)
	if err != nil {
		return nil, err
	}
	if !rnull && rv {
		return true, nil
	}
	if lnull || rnull {
		return nil, nil
	}
	return false, nil
}

func (e *Or) Type() types.DataType   { return types.Bool }
func (e *Or) Resolved() bool         { return allResolved(e.Left, e.Right) }
func (e *Or) Children() []Expression { return []Expression{e.Left, e.Right} }
func (e *Or) String() string         { return fmt.Sprintf("(%s OR %s)", e.Left, e.Right) }

// Not is three-valued logical NOT. NOT NULL is NULL.
type Not struct {
	Input Expression
}

func (e *Not) Eval(r row.Row) (any, error) {
	v, isNull, err := evalBool(e.Input, r)
	if err != nil {
		return nil, err
	}
	if isNull {
		return nil, nil
	}
	return !v, nil
}

func (e *Not) Type() types.DataType   { return types.Bool }
func (e *Not) Resolved() bool         { return e.Input.Resolved() }
func (e *Not) Children() []Expression { return []Expression{e.Input} }
func (e *Not) String() string         { return fmt.Sprintf("(NOT %s)", e.Input) }

// IsNull tests an operand for NULL. Unlike the comparison operators
// it always produces a non-NULL boolean. Not inverts the test.
type IsNull struct {
	Input Expression
	Not   bool
}

func (e *IsNull) Eval(r row.Row) (any, error) {
	v, err := e.Input.Eval(r)
	if err != nil {
		return nil, err
	}
	if e.Not {
		return v != nil, nil
	}
	return v == nil, nil
}

func (e *IsNull) Type() types.DataType   { return types.Bool }
func (e *IsNull) Resolved() bool         { return e.Input.Resolved() }
func (e *IsNull) Children() []Expression { return []Expression{e.Input} }

func (e *IsNull) String() string {
	if e.Not {
		return fmt.Sprintf("(%s IS NOT NULL)", e.Input)
	}
	return fmt.Sprintf("(%s IS NULL)", e.Input)
}

// Coalesce returns the first non-NULL operand, or NULL if every
// operand is NULL. Operands after the first non-NULL one are not
// evaluated.
type Coalesce struct {
	Inputs []Expression
}

func (e *Coalesce) Eval(r row.Row) (any, error) {
	for _, in := range e.Inputs {
		v, err := in.Eval(r)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

func (e *Coalesce) Type() types.DataType {
	for _, in := range e.Inputs {
		if t := in.Type(); t != types.Unknown {
			return t
		}
	}
	return types.Unknown
}

func (e *Coalesce) Resolved() bool         { return allResolved(e.Inputs...) }
func (e *Coalesce) Children() []Expression { return e.Inputs }

func (e *Coalesce) String() string {
	parts := make([]string, len(e.Inputs))
	for i, in := range e.Inputs {
		parts[i] = in.String()
	}
	return "COALESCE(" + strings.Join(parts, ", ") + ")"
}

// evalBool evaluates e against r and interprets the result as a
// three-valued boolean.
func evalBool(e Expression, r row.Row) (val, isNull bool, err error) {
	v, err := e.Eval(r)
	if err != nil {
		return false, false, err
	}
	if v == nil {
		return false, true, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, false, errors.Newf("expected BOOL operand, got %v from %s", types.TypeOf(v), e)
	}
	return b, false, nil
}

func isDecimal(v any) bool {
	_, ok := v.(*apd.Decimal)
	return ok
}

func isFloat(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return false
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

func toDecimal(v any) (*apd.Decimal, bool) {
	switch x := v.(type) {
	case *apd.Decimal:
		return x, true
	case float32, float64:
		f, _ := toFloat(v)
		d := new(apd.Decimal)
		if _, err := d.SetFloat64(f); err != nil {
			return nil, false
		}
		return d, true
	}
	if i, ok := toInt(v); ok {
		return apd.New(i, 0), true
	}
	return nil, false
}

// arithValue applies op to two non-NULL operands, widening to the
// larger numeric kind.
func arithValue(op ArithOp, left, right any) (any, error) {
	if isDecimal(left) || isDecimal(right) {
		ld, lok := toDecimal(left)
		rd, rok := toDecimal(right)
		if !lok || !rok {
			return nil, arithTypeError(op, left, right)
		}
		return decimalArith(op, ld, rd)
	}
	if isFloat(left) || isFloat(right) {
		lf, lok := toFloat(left)
		rf, rok := toFloat(right)
		if !lok || !rok {
			return nil, arithTypeError(op, left, right)
		}
		return floatArith(op, lf, rf)
	}
	li, lok := toInt(left)
	ri, rok := toInt(right)
	if !lok || !rok {
		return nil, arithTypeError(op, left, right)
	}
	return intArith(op, li, ri)
}

func arithTypeError(op ArithOp, left, right any) error {
	return errors.Newf("cannot apply %s to %v and %v", op, types.TypeOf(left), types.TypeOf(right))
}

func intArith(op ArithOp, left, right int64) (any, error) {
	switch op {
	case OpAdd:
		return left + right, nil
	case OpSub:
		return left - right, nil
	case OpMul:
		return left * right, nil
	case OpDiv:
		if right == 0 {
			return nil, errors.Wrapf(ErrDivisionByZero, "%d / %d", left, right)
		}
		return left / right, nil
	case OpRem:
		if right == 0 {
			return nil, errors.Wrapf(ErrDivisionByZero, "%d %% %d", left, right)
		}
		return left % right, nil
	}
	return nil, errors.Newf("unknown arithmetic operator %v", op)
}

func floatArith(op ArithOp, left, right float64) (any, error) {
	switch op {
	case OpAdd:
		return left + right, nil
	case OpSub:
		return left - right, nil
	case OpMul:
		return left * right, nil
	case OpDiv:
		if right == 0 {
			return nil, errors.Wrapf(ErrDivisionByZero, "%v / %v", left, right)
		}
		return left / right, nil
	case OpRem:
		if right == 0 {
			return nil, errors.Wrapf(ErrDivisionByZero, "%v %% %v", left, right)
		}
		return math.Mod(left, right), nil
	}
	return nil, errors.Newf("unknown arithmetic operator %v", op)
}

func decimalArith(op ArithOp, left, right *apd.Decimal) (any, error) {
	res := new(apd.Decimal)
	var err error
	switch op {
	case OpAdd:
		_, err = decimalCtx.Add(res, left, right)
	case OpSub:
		_, err = decimalCtx.Sub(res, left, right)
	case OpMul:
		_, err = decimalCtx.Mul(res, left, right)
	case OpDiv:
		if right.IsZero() {
			return nil, errors.Wrapf(ErrDivisionByZero, "%s / %s", left, right)
		}
		_, err = decimalCtx.Quo(res, left, right)
	case OpRem:
		if right.IsZero() {
			return nil, errors.Wrapf(ErrDivisionByZero, "%s %% %s", left, right)
		}
		_, err = decimalCtx.Rem(res, left, right)
	default:
		return nil, errors.Newf("unknown arithmetic operator %v", op)
	}
	if err != nil {
		return nil, errors.Wrap(err, "decimal arithmetic")
	}
	return res, nil
}

func negValue(v any) (any, error) {
	switch x := v.(type) {
	case int8:
		return -x, nil
	case int16:
		return -x, nil
	case int32:
		return -x, nil
	case int64:
		return -x, nil
	case float32:
		return -x, nil
	case float64:
		return -x, nil
	case *apd.Decimal:
		return new(apd.Decimal).Neg(x), nil
	}
	return nil, errors.Newf("cannot negate %v", types.TypeOf(v))
}

// compareValues orders two non-NULL operands, returning -1, 0 or 1.
// Numeric operands compare across widths: a decimal operand promotes
// both sides to decimal, a float operand promotes both sides to
// float64, and two integers compare exactly.
func compareValues(left, right any) (int, error) {
	if isDecimal(left) || isDecimal(right) {
		ld, lok := toDecimal(left)
		rd, rok := toDecimal(right)
		if !lok || !rok {
			return 0, compareTypeError(left, right)
		}
		return ld.Cmp(rd), nil
	}
	if isFloat(left) || isFloat(right) {
		lf, lok := toFloat(left)
		rf, rok := toFloat(right)
		if !lok || !rok {
			return 0, compareTypeError(left, right)
		}
		switch {
		case lf < rf:
			return -1, nil
		case lf > rf:
			return 1, nil
		}
		return 0, nil
	}
	if li, ok := toInt(left); ok {
		ri, ok := toInt(right)
		if !ok {
			return 0, compareTypeError(left, right)
		}
		switch {
		case li < ri:
			return -1, nil
		case li > ri:
			return 1, nil
		}
		return 0, nil
	}
	switch l := left.(type) {
	case string:
		if r, ok := right.(string); ok {
			return strings.Compare(l, r), nil
		}
	case bool:
		if r, ok := right.(bool); ok {
			switch {
			case l == r:
				return 0, nil
			case !l:
				return -1, nil
			}
			return 1, nil
		}
	case []byte:
		if r, ok := right.([]byte); ok {
			return bytes.Compare(l, r), nil
		}
	case time.Time:
		if r, ok := right.(time.Time); ok {
			switch {
			case l.Before(r):
				return -1, nil
			case l.After(r):
				return 1, nil
			}
			return 0, nil
		}
	}
	return 0, compareTypeError(left, right)
}

func compareTypeError(left, right any) error {
	return errors.Newf("cannot compare %v and %v", types.TypeOf(left), types.TypeOf(right))
}
