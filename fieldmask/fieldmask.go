// Package fieldmask models the column set applied by a partial update.
//
// Instead of reflecting over a probe object to find its null properties, the
// host supplies a Differ per entity that inspects the request's optional
// fields and collects the columns to write. Columns not present in the mask
// are left untouched by the update; the identifier column is excluded by the
// repository regardless of the mask contents.
package fieldmask

import (
	"reflect"
	"slices"
)

// Differ derives the update mask from an incoming request value of type T
// (typically the value object, whose pointer fields express optionality).
type Differ[T any] func(in T) *Mask

// Mask is the ordered set of column names a partial update applies.
// The zero value is unusable; construct with New.
type Mask struct {
	columns []string
}

// New returns an empty mask. An empty mask applies nothing.
func New() *Mask {
	return &Mask{columns: make([]string, 0)}
}

// Set includes column in the mask when value is set: nil values and nil
// pointers mark the field as absent and are skipped. Duplicate columns are
// recorded once.
func (m *Mask) Set(column string, value any) *Mask {
	if !isSet(value) {
		return m
	}
	if !slices.Contains(m.columns, column) {
		m.columns = append(m.columns, column)
	}
	return m
}

// Columns returns the masked column names in insertion order.
func (m *Mask) Columns() []string {
	return m.columns
}

// IsEmpty reports whether the mask applies no columns.
func (m *Mask) IsEmpty() bool {
	return len(m.columns) == 0
}

func isSet(value any) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		return !rv.IsNil()
	}
	return true
}
