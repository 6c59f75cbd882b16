// Package repository provides the generic data-access contract of the crud
// toolkit and its PostgreSQL implementation on top of the bun ORM.
//
// The Repository interface narrows the ORM surface to the operations the
// generic service needs. It is never used directly by transport code; hosts
// construct one PgRepository per entity and hand it to the service.
package repository

import (
	"context"

	"github.com/rise-and-shine/crud/filter"
	"github.com/rise-and-shine/crud/pagination"
	"github.com/uptrace/bun"
)

// Repository defines persistence operations for entities of type E with
// identifier type ID.
type Repository[E any, ID comparable] interface {
	// Save persists the entity: insert when it is new, full update of all
	// non-identifier columns otherwise. Returns the persisted entity with
	// database-assigned values populated.
	Save(ctx context.Context, e *E) (*E, error)
	// FindByID returns the entity with the given identifier, or nil when no
	// such entity exists. Absence is not an error at this layer.
	FindByID(ctx context.Context, id ID) (*E, error)
	// FindAll returns all entities, unfiltered and unpaged.
	FindAll(ctx context.Context) ([]E, error)
	// FindAllByExample returns the entities matching the predicate set.
	FindAllByExample(ctx context.Context, fs *filter.Set) ([]E, error)
	// FindPage returns one page of entities matching the predicate set,
	// sorted and sliced per the page request, with the total match count.
	FindPage(ctx context.Context, fs *filter.Set, req pagination.PageRequest) (*pagination.Page[E], error)
	// FindAllByIDs returns the entities for the given identifiers. Order is
	// not guaranteed; missing identifiers are skipped silently.
	FindAllByIDs(ctx context.Context, ids []ID) ([]E, error)
	// ExistsByID reports whether an entity with the given identifier exists.
	ExistsByID(ctx context.Context, id ID) (bool, error)
	// DeleteByID physically removes the entity with the given identifier.
	DeleteByID(ctx context.Context, id ID) error
	// UpdateColumns persists only the listed columns of the entity. The
	// identifier column is never written, regardless of the list contents.
	UpdateColumns(ctx context.Context, e *E, columns []string) (*E, error)
	// WithTx returns a repository bound to the given transaction.
	WithTx(tx bun.Tx) Repository[E, ID]
}
