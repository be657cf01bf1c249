package expr

import (
	"golang.org/x/exp/rand"

	"github.com/evanv/rowmill/pkg/row"
	"github.com/evanv/rowmill/pkg/types"
)

// Rand produces a uniformly distributed float64 in [0, 1). It is
// nondeterministic across calls: each Eval advances the underlying
// source, so the same input row can produce different outputs. A
// fixed seed makes the sequence reproducible across runs.
type Rand struct {
	src *rand.Rand
}

// NewRand returns a Rand seeded with seed.
func NewRand(seed uint64) *Rand {
	return &Rand{src: rand.New(rand.NewSource(seed))}
}

func (e *Rand) Eval(row.Row) (any, error) { return e.src.Float64(), nil }
func (e *Rand) Type() types.DataType      { return types.Float64 }
func (e *Rand) Resolved() bool            { return true }
func (e *Rand) Children() []Expression    { return nil }
func (e *Rand) String() string            { return "RAND()" }
