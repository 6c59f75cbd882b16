// Package filter provides a typed, null-aware predicate builder used for
// query-by-example matching.
//
// A probe object's set fields become WHERE conjuncts; unset (nil) fields are
// skipped entirely, so a probe with nothing set matches everything. String
// matching is case-insensitive by default. Each entity supplies a Builder
// that maps its probe fields to columns at compile time, instead of
// discovering them through runtime reflection.
package filter

import (
	"reflect"
	"strings"

	"github.com/spf13/cast"
	"github.com/uptrace/bun"
)

// likeEscaper neutralizes LIKE metacharacters in containment values, so a
// probe value like "100%" matches the literal text instead of acting as a
// wildcard. Backslash is PostgreSQL's default LIKE escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`) //nolint:gochecknoglobals // stateless, shared

// Op identifies the comparison strategy of a predicate.
type Op string

const (
	// OpEq matches with plain equality.
	OpEq Op = "eq"
	// OpIEq matches string values with case-insensitive equality.
	OpIEq Op = "ieq"
	// OpContains matches string values with case-insensitive containment.
	OpContains Op = "contains"
)

// Predicate is a single column comparison.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

// Builder derives the predicate set from an entity probe. It is written once
// per entity by the host application; nil pointer fields of the probe must
// not produce predicates.
type Builder[E any] func(probe *E) *Set

// Set is an ordered collection of predicates combined with AND.
// The zero value is unusable; construct with New.
type Set struct {
	preds []Predicate
}

// New returns an empty predicate set. An empty set matches everything.
func New() *Set {
	return &Set{preds: make([]Predicate, 0)}
}

// Eq appends an equality predicate. Nil values and nil pointers are skipped;
// non-nil pointers are dereferenced first.
func (s *Set) Eq(column string, value any) *Set {
	return s.append(column, OpEq, value)
}

// IEq appends a case-insensitive equality predicate, subject to the same
// nil-skipping rules as Eq.
func (s *Set) IEq(column string, value any) *Set {
	return s.append(column, OpIEq, value)
}

// Contains appends a case-insensitive containment predicate, subject to the
// same nil-skipping rules as Eq.
func (s *Set) Contains(column string, value any) *Set {
	return s.append(column, OpContains, value)
}

// Predicates returns the collected predicates in insertion order.
func (s *Set) Predicates() []Predicate {
	return s.preds
}

// IsEmpty reports whether the set holds no predicates.
func (s *Set) IsEmpty() bool {
	return len(s.preds) == 0
}

// ApplyTo renders the predicates as WHERE conjuncts on the given query.
func (s *Set) ApplyTo(q *bun.SelectQuery) *bun.SelectQuery {
	for _, p := range s.preds {
		switch p.Op {
		case OpIEq:
			q = q.Where("LOWER(?) = LOWER(?)", bun.Ident(p.Column), p.Value)
		case OpContains:
			pattern := "%" + likeEscaper.Replace(cast.ToString(p.Value)) + "%"
			q = q.Where("? ILIKE ?", bun.Ident(p.Column), pattern)
		default:
			q = q.Where("? = ?", bun.Ident(p.Column), p.Value)
		}
	}
	return q
}

func (s *Set) append(column string, op Op, value any) *Set {
	v, ok := deref(value)
	if !ok {
		return s
	}
	s.preds = append(s.preds, Predicate{Column: column, Op: op, Value: v})
	return s
}

// deref unwraps a pointer value. It reports false for nil values and nil
// pointers, marking the field as unset.
func deref(value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}
