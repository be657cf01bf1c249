// Package schema defines attributes and ordered schemas for Rowmill.
//
// An Attribute is the symbolic identity of a column; a Schema is an ordered
// sequence of attributes giving positional meaning to rows that follow it.
// Resolving an attribute name against a schema yields the ordinal used by
// bound references; see package expr for the binding step itself.
package schema

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/evanv/rowmill/pkg/types"
)

// Resolution failures. Both surface at projection construction time,
// wrapped with the offending attribute name.
var (
	ErrAttributeNotFound  = errors.New("attribute not found in schema")
	ErrAmbiguousAttribute = errors.New("attribute is ambiguous in schema")
)

// Attribute names a column within some schema. It is not addressable until
// resolved against a schema; names are matched exactly (callers that want
// SQL case-folding normalize before constructing attributes).
type Attribute struct {
	Name     string
	Type     types.DataType
	Nullable bool
}

// String returns "name TYPE".
func (a Attribute) String() string {
	return fmt.Sprintf("%s %s", a.Name, a.Type)
}

// Schema is an ordered sequence of attributes.
type Schema struct {
	Attributes []Attribute
}

// New creates a schema from the given attributes.
func New(attrs ...Attribute) *Schema {
	return &Schema{Attributes: attrs}
}

// Len returns the number of attributes.
func (s *Schema) Len() int { return len(s.Attributes) }

// At returns the attribute at ordinal i.
func (s *Schema) At(i int) Attribute { return s.Attributes[i] }

// Resolve returns the ordinal of the attribute with the given name.
// It fails with ErrAttributeNotFound if no attribute matches and with
// ErrAmbiguousAttribute if more than one does (e.g. both sides of a join
// carry the column).
func (s *Schema) Resolve(name string) (int, error) {
	found := -1
	for i := range s.Attributes {
		if s.Attributes[i].Name != name {
			continue
		}
		if found >= 0 {
			return -1, errors.Wrapf(ErrAmbiguousAttribute, "%q", name)
		}
		found = i
	}
	if found < 0 {
		return -1, errors.Wrapf(ErrAttributeNotFound, "%q", name)
	}
	return found, nil
}

// Concat returns a new schema holding a's attributes followed by b's. It is
// the schema counterpart of a joined row: ordinals resolved against the
// concatenation address the combined row positionally.
func Concat(a, b *Schema) *Schema {
	attrs := make([]Attribute, 0, len(a.Attributes)+len(b.Attributes))
	attrs = append(attrs, a.Attributes...)
	attrs = append(attrs, b.Attributes...)
	return &Schema{Attributes: attrs}
}

// String returns a human-readable representation, e.g. (a INT, b TEXT).
func (s *Schema) String() string {
	parts := make([]string, len(s.Attributes))
	for i, a := range s.Attributes {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
