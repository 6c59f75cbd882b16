// Package service implements the generic CRUD orchestration layer.
//
// CrudService coordinates create/read/update/delete flows against a
// repository: existence checks, identifier stripping on create, full and
// field-mask partial updates, by-example filtering, and soft-delete dispatch.
// It holds no state beyond its injected strategies; every method is a single
// synchronous operation, run inside one transaction when a transaction runner
// is configured.
package service

import (
	"context"
	"database/sql"
	"reflect"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/crud/cruderr"
	"github.com/rise-and-shine/crud/entity"
	"github.com/rise-and-shine/crud/fieldmask"
	"github.com/rise-and-shine/crud/filter"
	"github.com/rise-and-shine/crud/pagination"
	"github.com/rise-and-shine/crud/repository"
	"github.com/uptrace/bun"
)

// TxRunner runs a function inside a database transaction. *bun.DB satisfies
// this interface.
type TxRunner interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error
}

// CrudService provides reusable CRUD logic for entities of type E.
//
// E is the entity struct type and PE its pointer type, which must implement
// entity.Entity[ID]. All collaborators are injected at construction; there is
// no subclassing involved:
//
//	svc := service.New[Product, *Product, int64](
//		repo,
//		service.WithFilter[Product, *Product, int64](productFilter),
//		service.WithTxRunner[Product, *Product, int64](db),
//	)
type CrudService[E any, PE entity.Ptr[E, ID], ID comparable] struct {
	repo       repository.Repository[E, ID]
	filterOf   filter.Builder[E]
	softDelete func(e *E)
	tx         TxRunner

	entityName    string
	softDeletable bool
}

// Option configures a CrudService.
type Option[E any, PE entity.Ptr[E, ID], ID comparable] func(*CrudService[E, PE, ID])

// WithFilter installs the per-entity predicate builder used by the
// by-example find operations. Without it, filtered finds match everything.
func WithFilter[E any, PE entity.Ptr[E, ID], ID comparable](b filter.Builder[E]) Option[E, PE, ID] {
	return func(s *CrudService[E, PE, ID]) { s.filterOf = b }
}

// WithSoftDelete installs the state-mutating hook invoked instead of physical
// removal for entities declaring the soft-delete capability. Deleting a
// soft-deletable entity through a service without this option fails with an
// internal error.
func WithSoftDelete[E any, PE entity.Ptr[E, ID], ID comparable](fn func(e *E)) Option[E, PE, ID] {
	return func(s *CrudService[E, PE, ID]) { s.softDelete = fn }
}

// WithTxRunner makes every write operation run inside a single transaction,
// rolled back entirely on failure.
func WithTxRunner[E any, PE entity.Ptr[E, ID], ID comparable](tx TxRunner) Option[E, PE, ID] {
	return func(s *CrudService[E, PE, ID]) { s.tx = tx }
}

// New creates a CrudService backed by the given repository.
func New[E any, PE entity.Ptr[E, ID], ID comparable](
	repo repository.Repository[E, ID],
	opts ...Option[E, PE, ID],
) *CrudService[E, PE, ID] {
	s := &CrudService[E, PE, ID]{
		repo:          repo,
		entityName:    reflect.TypeOf((*E)(nil)).Elem().Name(),
		softDeletable: declaresSoftDelete[E, PE, ID](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new entity and returns it with the repository-assigned
// identifier populated.
//
// When the entity carries a non-zero identifier that already exists, Create
// fails with ENTITY_ALREADY_EXISTS and never reaches the repository save.
// Otherwise any caller-supplied identifier is discarded before persisting.
func (s *CrudService[E, PE, ID]) Create(ctx context.Context, e *E) (*E, error) {
	var created *E
	err := s.inTx(ctx, func(ctx context.Context, repo repository.Repository[E, ID]) error {
		pe := PE(e)
		if !pe.IsNew() {
			exists, err := repo.ExistsByID(ctx, pe.GetID())
			if err != nil {
				return errx.Wrap(err)
			}
			if exists {
				return cruderr.AlreadyExists(pe.GetID())
			}
		}

		var zero ID
		pe.SetID(zero)

		var err error
		created, err = repo.Save(ctx, e)
		return errx.Wrap(err)
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return created, nil
}

// FindByID returns the entity with the given identifier, or nil when absent.
// Absence is not an error at this layer; the controller translates nil into
// a not-found response.
func (s *CrudService[E, PE, ID]) FindByID(ctx context.Context, id ID) (*E, error) {
	return s.repo.FindByID(ctx, id)
}

// FindAll returns all entities, unfiltered and unpaged.
func (s *CrudService[E, PE, ID]) FindAll(ctx context.Context) ([]E, error) {
	return s.repo.FindAll(ctx)
}

// FindAllByExample returns the entities matching the probe's set fields.
// A probe with nothing set matches everything.
func (s *CrudService[E, PE, ID]) FindAllByExample(ctx context.Context, probe *E) ([]E, error) {
	return s.repo.FindAllByExample(ctx, s.example(probe))
}

// FindPage returns one page of entities matching the probe, sorted and
// sliced per the page request, with total-count-aware page metadata.
func (s *CrudService[E, PE, ID]) FindPage(
	ctx context.Context,
	probe *E,
	req pagination.PageRequest,
) (*pagination.Page[E], error) {
	return s.repo.FindPage(ctx, s.example(probe), req)
}

// FindAllByIDs returns the entities for the given identifiers, order not
// guaranteed.
func (s *CrudService[E, PE, ID]) FindAllByIDs(ctx context.Context, ids []ID) ([]E, error) {
	return s.repo.FindAllByIDs(ctx, ids)
}

// Update replaces every field of the stored entity except the identifier,
// including overwriting previously-set fields with zero values. Fails with
// ENTITY_NOT_FOUND when no entity with the given identifier exists.
func (s *CrudService[E, PE, ID]) Update(ctx context.Context, id ID, e *E) (*E, error) {
	var updated *E
	err := s.inTx(ctx, func(ctx context.Context, repo repository.Repository[E, ID]) error {
		exists, err := repo.ExistsByID(ctx, id)
		if err != nil {
			return errx.Wrap(err)
		}
		if !exists {
			return cruderr.NotFound(id)
		}

		PE(e).SetID(id)
		updated, err = repo.Save(ctx, e)
		return errx.Wrap(err)
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return updated, nil
}

// UpdatePartial applies only the masked columns of the probe to the stored
// entity. Unmasked fields are left untouched and the identifier is never
// altered. An empty mask changes nothing and returns the stored entity.
// Fails with ENTITY_NOT_FOUND when no entity with the given identifier
// exists.
func (s *CrudService[E, PE, ID]) UpdatePartial(
	ctx context.Context,
	id ID,
	probe *E,
	mask *fieldmask.Mask,
) (*E, error) {
	var updated *E
	err := s.inTx(ctx, func(ctx context.Context, repo repository.Repository[E, ID]) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return errx.Wrap(err)
		}
		if existing == nil {
			return cruderr.NotFound(id)
		}

		if mask == nil || mask.IsEmpty() {
			updated = existing
			return nil
		}

		PE(probe).SetID(id)
		updated, err = repo.UpdateColumns(ctx, probe, mask.Columns())
		return errx.Wrap(err)
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return updated, nil
}

// DeleteByID removes the entity with the given identifier.
//
// Entity types declaring the soft-delete capability are never removed
// physically: the configured soft-delete function mutates the entity and the
// result is persisted. Fails with ENTITY_NOT_FOUND when no entity with the
// given identifier exists.
func (s *CrudService[E, PE, ID]) DeleteByID(ctx context.Context, id ID) error {
	err := s.inTx(ctx, func(ctx context.Context, repo repository.Repository[E, ID]) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return errx.Wrap(err)
		}
		if existing == nil {
			return cruderr.NotFound(id)
		}

		if s.softDeletable {
			if s.softDelete == nil {
				return cruderr.SoftDeleteNotImplemented(s.entityName)
			}
			s.softDelete(existing)
			_, err = repo.Save(ctx, existing)
			return errx.Wrap(err)
		}

		return errx.Wrap(repo.DeleteByID(ctx, id))
	})
	return errx.Wrap(err)
}

// example builds the predicate set for a probe. Probes are matched on their
// set fields only; without a configured builder every probe matches all
// entities.
func (s *CrudService[E, PE, ID]) example(probe *E) *filter.Set {
	if s.filterOf == nil || probe == nil {
		return filter.New()
	}
	return s.filterOf(probe)
}

// inTx runs fn against a transaction-bound repository when a TxRunner is
// configured, and against the plain repository otherwise.
func (s *CrudService[E, PE, ID]) inTx(
	ctx context.Context,
	fn func(ctx context.Context, repo repository.Repository[E, ID]) error,
) error {
	if s.tx == nil {
		return fn(ctx, s.repo)
	}
	return s.tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, s.repo.WithTx(tx))
	})
}

// declaresSoftDelete reports whether *E declares the soft-delete capability.
// Resolved once at construction instead of per delete call.
func declaresSoftDelete[E any, PE entity.Ptr[E, ID], ID comparable]() bool {
	var p PE
	_, ok := any(p).(entity.SoftDeletable)
	return ok
}
