// Package projection converts rows from one shape to another by
// evaluating a fixed list of column expressions against each input
// row.
//
// Projection allocates a fresh output row per call. MutableProjection
// reuses a single output buffer across calls to keep per-row work
// allocation-free. JoinedRow presents two rows as one concatenated
// row without copying either. None of the three types is safe for
// concurrent use; execution contexts running in parallel each own a
// private instance.
package projection

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/evanv/rowmill/pkg/expr"
	"github.com/evanv/rowmill/pkg/row"
	"github.com/evanv/rowmill/pkg/schema"
)

// Projection maps an input row to a freshly allocated output row. The
// output row never shares storage with the input row or with rows
// returned by other calls.
type Projection struct {
	exprs []expr.Expression
}

// New returns a Projection over already-bound expressions. It fails
// if any expression still contains unresolved attribute references;
// callers holding unbound trees use NewBound.
func New(exprs ...expr.Expression) (*Projection, error) {
	if err := checkResolved(exprs); err != nil {
		return nil, err
	}
	return &Projection{exprs: exprs}, nil
}

// NewBound binds exprs against sch and returns a Projection over the
// bound expressions. Binding failures surface here, not at the first
// Apply.
func NewBound(sch *schema.Schema, exprs ...expr.Expression) (*Projection, error) {
	bound, err := expr.BindAll(exprs, sch)
	if err != nil {
		return nil, err
	}
	return &Projection{exprs: bound}, nil
}

// Len returns the number of output columns.
func (p *Projection) Len() int { return len(p.exprs) }

// Apply evaluates every expression against r in ascending column
// order and returns the results as a new row. If any expression
// fails, the error propagates and no output row is produced.
func (p *Projection) Apply(r row.Row) (row.Row, error) {
	out := make([]any, len(p.exprs))
	for i, e := range p.exprs {
		v, err := e.Eval(r)
		if err != nil {
			return nil, errors.Wrapf(err, "projection column %d", i)
		}
		out[i] = v
	}
	return row.FromValues(out), nil
}

func (p *Projection) String() string {
	parts := make([]string, len(p.exprs))
	for i, e := range p.exprs {
		parts[i] = e.String()
	}
	return "Row => [" + strings.Join(parts, ", ") + "]"
}

// MutableProjection evaluates a fixed list of expressions into one
// persistent output buffer. Apply returns that same buffer on every
// call, so the returned row is only valid until the next Apply; a
// caller that needs values to survive must Copy them out first. The
// buffer is allocated once, which amortizes to zero allocation over
// arbitrarily many input rows.
type MutableProjection struct {
	exprs   []expr.Expression
	buf     *row.GenericMutableRow
	scratch []any
}

// NewMutable returns a MutableProjection over already-bound
// expressions.
func NewMutable(exprs ...expr.Expression) (*MutableProjection, error) {
	if err := checkResolved(exprs); err != nil {
		return nil, err
	}
	return &MutableProjection{
		exprs:   exprs,
		buf:     row.NewMutable(len(exprs)),
		scratch: make([]any, len(exprs)),
	}, nil
}

// NewMutableBound binds exprs against sch and returns a
// MutableProjection over the bound expressions.
func NewMutableBound(sch *schema.Schema, exprs ...expr.Expression) (*MutableProjection, error) {
	bound, err := expr.BindAll(exprs, sch)
	if err != nil {
		return nil, err
	}
	return NewMutable(bound...)
}

// Len returns the number of output columns.
func (p *MutableProjection) Len() int { return len(p.exprs) }

// Apply evaluates every expression against r into the shared buffer
// and returns it. The buffer only changes once all expressions have
// succeeded; on error it keeps the values of the last successful
// call.
func (p *MutableProjection) Apply(r row.Row) (row.Row, error) {
	for i, e := range p.exprs {
		v, err := e.Eval(r)
		if err != nil {
			return nil, errors.Wrapf(err, "projection column %d", i)
		}
		p.scratch[i] = v
	}
	for i, v := range p.scratch {
		p.buf.Set(i, v)
	}
	return p.buf, nil
}

// Current returns the shared buffer holding the results of the last
// successful Apply, without re-evaluating anything.
func (p *MutableProjection) Current() row.Row { return p.buf }

func checkResolved(exprs []expr.Expression) error {
	for i, e := range exprs {
		if !e.Resolved() {
			return errors.Wrapf(expr.ErrUnresolved, "projection expression %d: %s", i, e)
		}
	}
	return nil
}
