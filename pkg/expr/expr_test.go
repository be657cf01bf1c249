package expr

import (
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"

	"github.com/evanv/rowmill/pkg/row"
	"github.com/evanv/rowmill/pkg/types"
)

func TestLiteral(t *testing.T) {
	tests := []struct {
		name string
		lit  *Literal
		typ  types.DataType
	}{
		{"int32", NewLiteral(int32(42)), types.Int32},
		{"int64", NewLiteral(int64(42)), types.Int64},
		{"float64", NewLiteral(2.5), types.Float64},
		{"string", NewLiteral("x"), types.Text},
		{"bool", NewLiteral(true), types.Bool},
		{"decimal", NewLiteral(apd.New(105, -1)), types.Decimal},
		{"untyped null", NewLiteral(nil), types.Unknown},
		{"typed null", Null(types.Text), types.Text},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.lit.Type(); got != tt.typ {
				t.Errorf("Type() = %v, want %v", got, tt.typ)
			}
			if !tt.lit.Resolved() {
				t.Error("Resolved() = false, want true")
			}
			got, err := tt.lit.Eval(row.Empty)
			if err != nil {
				t.Fatalf("Eval error: %v", err)
			}
			if types.TypeOf(got) != types.TypeOf(tt.lit.Val) {
				t.Errorf("Eval() = %v (%T), want %v", got, got, tt.lit.Val)
			}
		})
	}
}

func TestLiteralString(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		lit      *Literal
		expected string
	}{
		{NewLiteral(int64(42)), "42"},
		{NewLiteral("x"), `"x"`},
		{NewLiteral(nil), "NULL"},
		{Null(types.Int32), "NULL"},
		{NewLiteral(true), "true"},
		{NewLiteral([]byte{0xde, 0xad}), "x'dead'"},
		{NewLiteral(ts), "2024-05-01T12:00:00Z"},
	}

	for _, tt := range tests {
		if got := tt.lit.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestAttributeRef(t *testing.T) {
	ref := &AttributeRef{Name: "user_id"}

	if ref.Resolved() {
		t.Error("Resolved() = true, want false")
	}
	if got := ref.Type(); got != types.Unknown {
		t.Errorf("Type() = %v, want UNKNOWN", got)
	}
	if got := ref.String(); got != "user_id" {
		t.Errorf("String() = %q, want %q", got, "user_id")
	}

	_, err := ref.Eval(row.New(int32(1)))
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("Eval error = %v, want %v", err, ErrUnresolved)
	}
}

func TestBoundRef(t *testing.T) {
	r := row.New(int32(3), nil, "x")

	ref := &BoundRef{Ordinal: 0, Typ: types.Int32}
	if !ref.Resolved() {
		t.Error("Resolved() = false, want true")
	}
	if got := ref.Type(); got != types.Int32 {
		t.Errorf("Type() = %v, want INT", got)
	}
	if got := ref.String(); got != "input[0]" {
		t.Errorf("String() = %q, want %q", got, "input[0]")
	}

	got, err := ref.Eval(r)
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if got != int32(3) {
		t.Errorf("Eval() = %v, want 3", got)
	}

	// A NULL slot evaluates to nil without error.
	nullRef := &BoundRef{Ordinal: 1, Typ: types.Text}
	got, err = nullRef.Eval(r)
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if got != nil {
		t.Errorf("Eval() = %v, want nil", got)
	}
}

func TestExpressionStrings(t *testing.T) {
	a := &BoundRef{Ordinal: 0, Typ: types.Int64}
	b := &BoundRef{Ordinal: 1, Typ: types.Int64}

	tests := []struct {
		expr     Expression
		expected string
	}{
		{&Arith{Op: OpAdd, Left: a, Right: b}, "(input[0] + input[1])"},
		{&Arith{Op: OpRem, Left: a, Right: NewLiteral(int64(2))}, "(input[0] % 2)"},
		{&Neg{Input: a}, "(-input[0])"},
		{&Cmp{Op: OpLE, Left: a, Right: b}, "(input[0] <= input[1])"},
		{&And{Left: NewLiteral(true), Right: NewLiteral(false)}, "(true AND false)"},
		{&Or{Left: NewLiteral(true), Right: NewLiteral(false)}, "(true OR false)"},
		{&Not{Input: NewLiteral(true)}, "(NOT true)"},
		{&IsNull{Input: a}, "(input[0] IS NULL)"},
		{&IsNull{Input: a, Not: true}, "(input[0] IS NOT NULL)"},
		{&Cast{Input: a, To: types.Text}, "CAST(input[0] AS TEXT)"},
		{&Coalesce{Inputs: []Expression{a, b}}, "COALESCE(input[0], input[1])"},
	}

	for _, tt := range tests {
		if got := tt.expr.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestChildren(t *testing.T) {
	a := &BoundRef{Ordinal: 0, Typ: types.Int64}
	b := &BoundRef{Ordinal: 1, Typ: types.Int64}

	arith := &Arith{Op: OpAdd, Left: a, Right: b}
	children := arith.Children()
	if len(children) != 2 || children[0] != Expression(a) || children[1] != Expression(b) {
		t.Errorf("Children() = %v", children)
	}

	if children := NewLiteral(int64(1)).Children(); children != nil {
		t.Errorf("Literal.Children() = %v, want nil", children)
	}

	coalesce := &Coalesce{Inputs: []Expression{a, b}}
	if got := len(coalesce.Children()); got != 2 {
		t.Errorf("Coalesce.Children() length = %d, want 2", got)
	}
}
