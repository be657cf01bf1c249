package expr

import (
	"github.com/cockroachdb/errors"

	"github.com/evanv/rowmill/internal/logger"
	"github.com/evanv/rowmill/pkg/schema"
)

// Binder rewrites attribute references into ordinal references
// against a fixed schema.
type Binder struct {
	sch *schema.Schema
	log *logger.Logger
}

// NewBinder returns a Binder for sch. A nil log disables logging.
func NewBinder(sch *schema.Schema, log *logger.Logger) *Binder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Binder{sch: sch, log: log}
}

// Bind returns a copy of e with every AttributeRef replaced by a
// BoundRef carrying the ordinal and type the schema assigns to that
// name. The input tree is not modified; nodes without attribute
// references below them are reused rather than copied.
func (b *Binder) Bind(e Expression) (Expression, error) {
	switch ex := e.(type) {
	case *AttributeRef:
		ord, err := b.sch.Resolve(ex.Name)
		if err != nil {
			return nil, err
		}
		attr := b.sch.At(ord)
		b.log.Debug("bound attribute", "name", ex.Name, "ordinal", ord, "type", attr.Type)
		return &BoundRef{Ordinal: ord, Typ: attr.Type}, nil

	case *Literal, *BoundRef, *Rand:
		return e, nil

	case *Arith:
		left, right, err := b.bindPair(ex.Left, ex.Right)
		if err != nil {
			return nil, err
		}
		return &Arith{Op: ex.Op, Left: left, Right: right}, nil

	case *Neg:
		in, err := b.Bind(ex.Input)
		if err != nil {
			return nil, err
		}
		return &Neg{Input: in}, nil

	case *Cmp:
		left, right, err := b.bindPair(ex.Left, ex.Right)
		if err != nil {
			return nil, err
		}
		return &Cmp{Op: ex.Op, Left: left, Right: right}, nil

	case *And:
		left, right, err := b.bindPair(ex.Left, ex.Right)
		if err != nil {
			return nil, err
		}
		return &And{Left: left, Right: right}, nil

	case *Or:
		left, right, err := b.bindPair(ex.Left, ex.Right)
		if err != nil {
			return nil, err
		}
		return &Or{Left: left, Right: right}, nil

	case *Not:
		in, err := b.Bind(ex.Input)
		if err != nil {
			return nil, err
		}
		return &Not{Input: in}, nil

	case *IsNull:
		in, err := b.Bind(ex.Input)
		if err != nil {
			return nil, err
		}
		return &IsNull{Input: in, Not: ex.Not}, nil

	case *Cast:
		in, err := b.Bind(ex.Input)
		if err != nil {
			return nil, err
		}
		return &Cast{Input: in, To: ex.To}, nil

	case *Coalesce:
		bound := make([]Expression, len(ex.Inputs))
		for i, in := range ex.Inputs {
			var err error
			bound[i], err = b.Bind(in)
			if err != nil {
				return nil, err
			}
		}
		return &Coalesce{Inputs: bound}, nil
	}

	// Expression types defined outside this package pass through as
	// long as they are already resolved.
	if e.Resolved() {
		return e, nil
	}
	return nil, errors.Newf("cannot bind expression %s (%T)", e, e)
}

func (b *Binder) bindPair(left, right Expression) (Expression, Expression, error) {
	boundLeft, err := b.Bind(left)
	if err != nil {
		return nil, nil, err
	}
	boundRight, err := b.Bind(right)
	if err != nil {
		return nil, nil, err
	}
	return boundLeft, boundRight, nil
}

// BindAll binds each expression in exprs against the binder's schema.
func (b *Binder) BindAll(exprs []Expression) ([]Expression, error) {
	bound := make([]Expression, len(exprs))
	for i, e := range exprs {
		var err error
		bound[i], err = b.Bind(e)
		if err != nil {
			return nil, err
		}
	}
	return bound, nil
}

// Bind binds e against sch without logging.
func Bind(e Expression, sch *schema.Schema) (Expression, error) {
	return NewBinder(sch, nil).Bind(e)
}

// BindAll binds exprs against sch without logging.
func BindAll(exprs []Expression, sch *schema.Schema) ([]Expression, error) {
	return NewBinder(sch, nil).BindAll(exprs)
}
