package projection

import (
	"testing"

	"github.com/evanv/rowmill/pkg/expr"
	"github.com/evanv/rowmill/pkg/row"
	"github.com/evanv/rowmill/pkg/types"
)

func benchInput() row.Row {
	return row.New(int64(1), "x", true, 3.5)
}

func benchExprs() []expr.Expression {
	return []expr.Expression{
		&expr.BoundRef{Ordinal: 0, Typ: types.Int64},
		&expr.BoundRef{Ordinal: 1, Typ: types.Text},
		&expr.Arith{Op: expr.OpAdd, Left: &expr.BoundRef{Ordinal: 0, Typ: types.Int64}, Right: expr.NewLiteral(int64(1))},
		&expr.BoundRef{Ordinal: 3, Typ: types.Float64},
	}
}

func BenchmarkProjectionApply(b *testing.B) {
	p, err := New(benchExprs()...)
	if err != nil {
		b.Fatal(err)
	}
	r := benchInput()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Apply(r); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMutableProjectionApply(b *testing.B) {
	p, err := NewMutable(benchExprs()...)
	if err != nil {
		b.Fatal(err)
	}
	r := benchInput()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Apply(r); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkJoinedRowRepoint(b *testing.B) {
	r1 := row.New(int64(1), "a")
	r2 := row.New(int64(2), "b")
	j := NewJoined(r1, r2)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		j.Set(r1, r2)
		if j.Int64(0) != 1 {
			b.Fatal("wrong value")
		}
	}
}
