package repository

import (
	"testing"

	"github.com/rise-and-shine/crud/entity"
	"github.com/stretchr/testify/assert"
)

type auditedDoc struct {
	entity.Model[int64]
	entity.Auditable

	Title string `bun:"title"`
}

type plainDoc struct {
	entity.Model[int64]

	Title string `bun:"title"`
}

func TestWriteColumns_AuditedModelsGetFreshUpdatedAt(t *testing.T) {
	r := NewPgRepository[auditedDoc, *auditedDoc, int64](nil)

	assert.Equal(t, []string{"title", "updated_at"}, r.writeColumns([]string{"title"}))
}

func TestWriteColumns_PlainModelsAreUntouched(t *testing.T) {
	r := NewPgRepository[plainDoc, *plainDoc, int64](nil)

	assert.Equal(t, []string{"title"}, r.writeColumns([]string{"title"}))
}

func TestWriteColumns_StripsPrimaryKey(t *testing.T) {
	r := NewPgRepository[plainDoc, *plainDoc, int64](nil)

	assert.Equal(t, []string{"title"}, r.writeColumns([]string{"id", "title"}))
}

func TestWriteColumns_DoesNotDuplicateUpdatedAt(t *testing.T) {
	r := NewPgRepository[auditedDoc, *auditedDoc, int64](nil)

	assert.Equal(t,
		[]string{"updated_at", "title"},
		r.writeColumns([]string{"updated_at", "title"}),
	)
}

func TestWriteColumns_EmptyMaskStaysEmpty(t *testing.T) {
	r := NewPgRepository[auditedDoc, *auditedDoc, int64](nil)

	assert.Empty(t, r.writeColumns([]string{"id"}))
	assert.Empty(t, r.writeColumns(nil))
}
