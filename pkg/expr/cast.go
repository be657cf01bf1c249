package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"

	"github.com/evanv/rowmill/pkg/row"
	"github.com/evanv/rowmill/pkg/types"
)

// truncCtx rounds toward zero when a cast discards fractional digits.
var truncCtx = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(38)
	ctx.Rounding = apd.RoundDown
	return ctx
}()

// Cast converts its operand to a target type. Narrowing integer casts
// check range, fractional values truncate toward zero, and text
// conversions parse or format the value. NULL casts to NULL of the
// target type.
type Cast struct {
	Input Expression
	To    types.DataType
}

func (e *Cast) Eval(r row.Row) (any, error) {
	v, err := e.Input.Eval(r)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return castValue(v, e.To)
}

func (e *Cast) Type() types.DataType   { return e.To }
func (e *Cast) Resolved() bool         { return e.Input.Resolved() }
func (e *Cast) Children() []Expression { return []Expression{e.Input} }
func (e *Cast) String() string         { return fmt.Sprintf("CAST(%s AS %s)", e.Input, e.To) }

func castValue(v any, to types.DataType) (any, error) {
	from := types.TypeOf(v)
	if from == to {
		return v, nil
	}
	switch to {
	case types.Int8, types.Int16, types.Int32, types.Int64:
		return castToInt(v, to)
	case types.Float32, types.Float64:
		return castToFloat(v, to)
	case types.Bool:
		if s, ok := v.(string); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(s))
			if err != nil {
				return nil, errors.Newf("cannot cast %q to %v", s, to)
			}
			return b, nil
		}
	case types.Text:
		return castToText(v)
	case types.Bytes:
		if s, ok := v.(string); ok {
			return []byte(s), nil
		}
	case types.Decimal:
		if s, ok := v.(string); ok {
			d, _, err := apd.NewFromString(strings.TrimSpace(s))
			if err != nil {
				return nil, errors.Newf("cannot cast %q to %v", s, to)
			}
			return d, nil
		}
		if d, ok := toDecimal(v); ok {
			return d, nil
		}
	case types.Timestamp:
		if s, ok := v.(string); ok {
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
			if err != nil {
				return nil, errors.Newf("cannot cast %q to %v", s, to)
			}
			return t, nil
		}
	}
	return nil, errors.Newf("cannot cast %v to %v", from, to)
}

func castToInt(v any, to types.DataType) (any, error) {
	var n int64
	switch x := v.(type) {
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, errors.Newf("cannot cast %q to %v", x, to)
		}
		n = parsed
	case bool:
		if x {
			n = 1
		}
	case float32:
		return castFloatToInt(float64(x), to)
	case float64:
		return castFloatToInt(x, to)
	case *apd.Decimal:
		var trunc apd.Decimal
		if _, err := truncCtx.RoundToIntegralValue(&trunc, x); err != nil {
			return nil, errors.Newf("cannot cast %s to %v", x, to)
		}
		i, err := trunc.Int64()
		if err != nil {
			return nil, errors.Newf("value %s out of range for %v", x, to)
		}
		n = i
	default:
		i, ok := toInt(v)
		if !ok {
			return nil, errors.Newf("cannot cast %v to %v", types.TypeOf(v), to)
		}
		n = i
	}
	return narrowInt(n, to)
}

func castFloatToInt(f float64, to types.DataType) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= float64(math.MaxInt64) || f < float64(math.MinInt64) {
		return nil, errors.Newf("value %v out of range for %v", f, to)
	}
	return narrowInt(int64(f), to)
}

func narrowInt(n int64, to types.DataType) (any, error) {
	switch to {
	case types.Int8:
		if n < math.MinInt8 || n > math.MaxInt8 {
			return nil, errors.Newf("value %d out of range for %v", n, to)
		}
		return int8(n), nil
	case types.Int16:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, errors.Newf("value %d out of range for %v", n, to)
		}
		return int16(n), nil
	case types.Int32:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, errors.Newf("value %d out of range for %v", n, to)
		}
		return int32(n), nil
	case types.Int64:
		return n, nil
	}
	return nil, errors.Newf("not an integer type: %v", to)
}

func castToFloat(v any, to types.DataType) (any, error) {
	var f float64
	switch x := v.(type) {
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, errors.Newf("cannot cast %q to %v", x, to)
		}
		f = parsed
	case *apd.Decimal:
		converted, err := x.Float64()
		if err != nil {
			return nil, errors.Newf("cannot cast %s to %v", x, to)
		}
		f = converted
	default:
		converted, ok := toFloat(v)
		if !ok {
			return nil, errors.Newf("cannot cast %v to %v", types.TypeOf(v), to)
		}
		f = converted
	}
	if to == types.Float32 {
		return float32(f), nil
	}
	return f, nil
}

func castToText(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case *apd.Decimal:
		return x.String(), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	}
	if i, ok := toInt(v); ok {
		return strconv.FormatInt(i, 10), nil
	}
	return nil, errors.Newf("cannot cast %v to TEXT", types.TypeOf(v))
}
