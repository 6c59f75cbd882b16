package entity_test

import (
	"context"
	"testing"

	"github.com/rise-and-shine/crud/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type product struct {
	entity.Model[int64]
	entity.SoftDeleteMarker
	entity.Auditable

	Name string
}

type category struct {
	entity.Model[string]

	Name string
}

func TestModel_IdentityRoundTrip(t *testing.T) {
	p := &product{}

	assert.True(t, p.IsNew())
	assert.Zero(t, p.GetID())

	p.SetID(42)
	assert.False(t, p.IsNew())
	assert.Equal(t, int64(42), p.GetID())
}

func TestModel_StringIdentifier(t *testing.T) {
	c := &category{}

	assert.True(t, c.IsNew())
	c.SetID("books")
	assert.False(t, c.IsNew())
	assert.Equal(t, "books", c.GetID())
}

func TestSoftDeleteMarker_DeclaresCapability(t *testing.T) {
	var p any = &product{}
	_, ok := p.(entity.SoftDeletable)
	assert.True(t, ok)

	var c any = &category{}
	_, ok = c.(entity.SoftDeletable)
	assert.False(t, ok)
}

func TestAuditable_DeclaresCapability(t *testing.T) {
	var p any = &product{}
	_, ok := p.(entity.Audited)
	assert.True(t, ok)

	var c any = &category{}
	_, ok = c.(entity.Audited)
	assert.False(t, ok)
}

func TestAuditable_InsertSetsBothTimestamps(t *testing.T) {
	p := &product{}

	require.NoError(t, p.BeforeAppendModel(context.Background(), &bun.InsertQuery{}))

	assert.False(t, p.CreatedAt.IsZero())
	assert.False(t, p.UpdatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestAuditable_UpdateTouchesOnlyUpdatedAt(t *testing.T) {
	p := &product{}
	require.NoError(t, p.BeforeAppendModel(context.Background(), &bun.InsertQuery{}))
	created := p.CreatedAt

	require.NoError(t, p.BeforeAppendModel(context.Background(), &bun.UpdateQuery{}))

	assert.Equal(t, created, p.CreatedAt)
	assert.True(t, p.UpdatedAt.After(created) || p.UpdatedAt.Equal(created))
}
