package entity

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Audited is declared by models embedding Auditable. The repository relies on
// it to include updated_at in the column list of partial updates, so a masked
// write never leaves the modification timestamp stale.
type Audited interface {
	audited()
}

// Auditable provides creation and modification timestamps for bun models.
// Embed it in an entity struct to have both fields maintained automatically
// on insert and update.
type Auditable struct {
	// CreatedAt stores the timestamp when the record was created.
	CreatedAt time.Time `bun:",nullzero" json:"created_at"`
	// UpdatedAt stores the timestamp when the record was last updated.
	UpdatedAt time.Time `bun:",nullzero" json:"updated_at"`
}

var _ bun.BeforeAppendModelHook = (*Auditable)(nil)

func (Auditable) audited() {}

// BeforeAppendModel implements bun.BeforeAppendModelHook to populate the
// timestamp fields before insert and update queries.
func (a *Auditable) BeforeAppendModel(_ context.Context, query bun.Query) error {
	now := time.Now()
	switch query.(type) {
	case *bun.InsertQuery:
		a.CreatedAt = now
		a.UpdatedAt = now
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}
