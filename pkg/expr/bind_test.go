package expr

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evanv/rowmill/internal/logger"
	"github.com/evanv/rowmill/pkg/row"
	"github.com/evanv/rowmill/pkg/schema"
	"github.com/evanv/rowmill/pkg/types"
)

func testSchema() *schema.Schema {
	return schema.New(
		schema.Attribute{Name: "a", Type: types.Int32},
		schema.Attribute{Name: "b", Type: types.Text, Nullable: true},
	)
}

func TestBindAttributeRef(t *testing.T) {
	bound, err := Bind(&AttributeRef{Name: "b"}, testSchema())
	require.NoError(t, err)

	ref, ok := bound.(*BoundRef)
	require.True(t, ok, "bound to %T, want *BoundRef", bound)
	require.Equal(t, 1, ref.Ordinal)
	require.Equal(t, types.Text, ref.Typ)

	got, err := ref.Eval(row.New(int32(3), "x"))
	require.NoError(t, err)
	require.Equal(t, "x", got)
}

func TestBindRebuildsTree(t *testing.T) {
	original := &Arith{Op: OpAdd, Left: &AttributeRef{Name: "a"}, Right: NewLiteral(int64(1))}

	bound, err := Bind(original, testSchema())
	require.NoError(t, err)
	require.True(t, bound.Resolved())

	// The input tree is untouched; binding returned a rewritten copy.
	_, stillUnbound := original.Left.(*AttributeRef)
	require.True(t, stillUnbound, "binding mutated the input tree")
	require.False(t, original.Resolved())

	got, err := bound.Eval(row.New(int32(3), "x"))
	require.NoError(t, err)
	require.Equal(t, int64(4), got)
}

func TestBindDeepTree(t *testing.T) {
	sch := testSchema()
	r := row.New(int32(3), "x")

	cond := &And{
		Left: &Or{
			Left:  &Cmp{Op: OpGT, Left: &AttributeRef{Name: "a"}, Right: NewLiteral(int64(1))},
			Right: &IsNull{Input: &AttributeRef{Name: "b"}},
		},
		Right: &Not{Input: &Cmp{Op: OpEQ, Left: &Cast{Input: &AttributeRef{Name: "a"}, To: types.Text}, Right: NewLiteral("3")}},
	}
	bound, err := Bind(cond, sch)
	require.NoError(t, err)
	require.True(t, bound.Resolved())

	got, err := bound.Eval(r)
	require.NoError(t, err)
	require.Equal(t, false, got)

	value := &Coalesce{Inputs: []Expression{
		Null(types.Int64),
		&Neg{Input: &Arith{Op: OpMul, Left: &AttributeRef{Name: "a"}, Right: NewLiteral(int64(2))}},
	}}
	bound, err = Bind(value, sch)
	require.NoError(t, err)

	got, err = bound.Eval(r)
	require.NoError(t, err)
	require.Equal(t, int64(-6), got)
}

func TestBindResolvedNodesPassThrough(t *testing.T) {
	sch := testSchema()

	l := NewLiteral(int64(1))
	bound, err := Bind(l, sch)
	require.NoError(t, err)
	require.Same(t, Expression(l), bound)

	ref := &BoundRef{Ordinal: 0, Typ: types.Int32}
	bound, err = Bind(ref, sch)
	require.NoError(t, err)
	require.Same(t, Expression(ref), bound)

	rnd := NewRand(1)
	bound, err = Bind(rnd, sch)
	require.NoError(t, err)
	require.Same(t, Expression(rnd), bound)
}

func TestBindErrors(t *testing.T) {
	sch := testSchema()

	_, err := Bind(&AttributeRef{Name: "missing"}, sch)
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)
	require.Contains(t, err.Error(), "missing")

	// A reference deep in a tree fails the whole bind.
	_, err = Bind(&Arith{Op: OpAdd, Left: NewLiteral(int64(1)), Right: &AttributeRef{Name: "missing"}}, sch)
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)

	dup := schema.Concat(sch, sch)
	_, err = Bind(&AttributeRef{Name: "a"}, dup)
	require.ErrorIs(t, err, schema.ErrAmbiguousAttribute)
}

// externalExpr stands in for expression types defined outside this
// package.
type externalExpr struct {
	resolved bool
}

func (e externalExpr) Eval(row.Row) (any, error) { return int64(7), nil }
func (e externalExpr) Type() types.DataType      { return types.Int64 }
func (e externalExpr) Resolved() bool            { return e.resolved }
func (e externalExpr) Children() []Expression    { return nil }
func (e externalExpr) String() string            { return "external()" }

func TestBindForeignExpressions(t *testing.T) {
	sch := testSchema()

	resolved := externalExpr{resolved: true}
	bound, err := Bind(resolved, sch)
	require.NoError(t, err)
	require.Equal(t, Expression(resolved), bound)

	_, err = Bind(externalExpr{resolved: false}, sch)
	require.Error(t, err)
}

func TestBindAll(t *testing.T) {
	sch := testSchema()

	bound, err := BindAll([]Expression{&AttributeRef{Name: "b"}, &AttributeRef{Name: "a"}}, sch)
	require.NoError(t, err)
	require.Len(t, bound, 2)
	require.Equal(t, 1, bound[0].(*BoundRef).Ordinal)
	require.Equal(t, 0, bound[1].(*BoundRef).Ordinal)

	_, err = BindAll([]Expression{&AttributeRef{Name: "a"}, &AttributeRef{Name: "missing"}}, sch)
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)
}

func TestBinderLogsResolutions(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "bind.log")
	log, err := logger.New("debug", "text", logFile)
	require.NoError(t, err)

	b := NewBinder(testSchema(), log)
	_, err = b.Bind(&AttributeRef{Name: "a"})
	require.NoError(t, err)
	log.Sync()

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	if !strings.Contains(string(content), "bound attribute") {
		t.Errorf("log output missing binding entry: %q", content)
	}
}
