package repository

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/crud/cruderr"
	"github.com/rise-and-shine/crud/entity"
	"github.com/rise-and-shine/crud/filter"
	"github.com/rise-and-shine/crud/pagination"
	"github.com/rise-and-shine/crud/pg"
	"github.com/uptrace/bun"
)

const codeIncorrectRowsAffection = "INCORRECT_ROWS_AFFECTION"

// updatedAtColumn is the modification timestamp column of audited models.
const updatedAtColumn = "updated_at"

// PgRepository implements Repository for a PostgreSQL database using bun.
//
// E is the entity struct type and PE its pointer type, which must implement
// entity.Entity[ID]. Construct with NewPgRepository:
//
//	repo := repository.NewPgRepository[Product, *Product, int64](db)
type PgRepository[E any, PE entity.Ptr[E, ID], ID comparable] struct {
	idb        bun.IDB
	entityName string
	pkColumn   string
	sortable   []string
	audited    bool

	// conflictCodes maps PostgreSQL constraint names to error codes,
	// e.g. map["products_sku_key"] = "SKU_ALREADY_EXISTS".
	conflictCodes map[string]string
}

// PgOption configures a PgRepository.
type PgOption func(*pgOptions)

type pgOptions struct {
	pkColumn      string
	sortable      []string
	conflictCodes map[string]string
}

// WithPKColumn overrides the primary key column name. Default is "id".
func WithPKColumn(column string) PgOption {
	return func(o *pgOptions) { o.pkColumn = column }
}

// WithSortableColumns whitelists the columns a page request may order by.
// Requests ordering by any other column fall back to the primary key.
func WithSortableColumns(columns ...string) PgOption {
	return func(o *pgOptions) { o.sortable = columns }
}

// WithConflictCodes maps PostgreSQL constraint names to domain error codes
// surfaced on unique violations.
func WithConflictCodes(codes map[string]string) PgOption {
	return func(o *pgOptions) { o.conflictCodes = codes }
}

// NewPgRepository creates a PostgreSQL repository for entity type E.
func NewPgRepository[E any, PE entity.Ptr[E, ID], ID comparable](idb bun.IDB, opts ...PgOption) *PgRepository[E, PE, ID] {
	o := pgOptions{pkColumn: "id"}
	for _, opt := range opts {
		opt(&o)
	}

	return &PgRepository[E, PE, ID]{
		idb:           idb,
		entityName:    entityNameOf[E](),
		pkColumn:      o.pkColumn,
		sortable:      o.sortable,
		audited:       declaresAudit[E, PE, ID](),
		conflictCodes: o.conflictCodes,
	}
}

func (r *PgRepository[E, PE, ID]) Save(ctx context.Context, e *E) (*E, error) {
	if PE(e).IsNew() {
		return r.insert(ctx, e)
	}
	return r.update(ctx, e)
}

func (r *PgRepository[E, PE, ID]) insert(ctx context.Context, e *E) (*E, error) {
	q := r.idb.NewInsert().Model(e).Returning("*")
	if _, err := q.Exec(ctx); err != nil {
		return nil, r.wrapWriteError(err, q)
	}
	return e, nil
}

func (r *PgRepository[E, PE, ID]) update(ctx context.Context, e *E) (*E, error) {
	q := r.idb.NewUpdate().Model(e).WherePK().Returning("*")
	result, err := q.Exec(ctx)
	if err != nil {
		return nil, r.wrapWriteError(err, q)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if affected == 0 {
		return nil, cruderr.NotFound(PE(e).GetID())
	}

	return e, nil
}

func (r *PgRepository[E, PE, ID]) UpdateColumns(ctx context.Context, e *E, columns []string) (*E, error) {
	cols := r.writeColumns(columns)
	if len(cols) == 0 {
		return nil, errx.New(
			fmt.Sprintf("no columns to update for %s", r.entityName),
			errx.WithCode(codeIncorrectRowsAffection),
		)
	}

	q := r.idb.NewUpdate().Model(e).Column(cols...).WherePK().Returning("*")
	result, err := q.Exec(ctx)
	if err != nil {
		return nil, r.wrapWriteError(err, q)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if affected == 0 {
		return nil, cruderr.NotFound(PE(e).GetID())
	}

	return e, nil
}

func (r *PgRepository[E, PE, ID]) FindByID(ctx context.Context, id ID) (*E, error) {
	entities := make([]E, 0, 1)
	q := r.idb.NewSelect().Model(&entities).
		Where("? = ?", bun.Ident(r.pkColumn), id).
		Limit(1)

	if err := q.Scan(ctx); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
	}

	if len(entities) == 0 {
		return nil, nil //nolint:nilnil // absence is not an error at this layer
	}
	return &entities[0], nil
}

func (r *PgRepository[E, PE, ID]) FindAll(ctx context.Context) ([]E, error) {
	return r.FindAllByExample(ctx, filter.New())
}

func (r *PgRepository[E, PE, ID]) FindAllByExample(ctx context.Context, fs *filter.Set) ([]E, error) {
	entities := make([]E, 0)
	q := r.idb.NewSelect().Model(&entities)
	if fs != nil {
		q = fs.ApplyTo(q)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
	}
	return entities, nil
}

func (r *PgRepository[E, PE, ID]) FindPage(
	ctx context.Context,
	fs *filter.Set,
	req pagination.PageRequest,
) (*pagination.Page[E], error) {
	entities := make([]E, 0, req.Size)
	q := r.idb.NewSelect().Model(&entities)
	if fs != nil {
		q = fs.ApplyTo(q)
	}
	q = q.OrderExpr("? ?", bun.Ident(r.orderColumn(req.OrderBy)), bun.Safe(string(req.Direction))).
		Limit(req.Limit()).
		Offset(req.Offset())

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
	}

	return pagination.NewPage(entities, int64(total), req), nil
}

func (r *PgRepository[E, PE, ID]) FindAllByIDs(ctx context.Context, ids []ID) ([]E, error) {
	entities := make([]E, 0, len(ids))
	if len(ids) == 0 {
		return entities, nil
	}

	q := r.idb.NewSelect().Model(&entities).
		Where("? IN (?)", bun.Ident(r.pkColumn), bun.In(ids))

	if err := q.Scan(ctx); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
	}
	return entities, nil
}

func (r *PgRepository[E, PE, ID]) ExistsByID(ctx context.Context, id ID) (bool, error) {
	q := r.idb.NewSelect().Model((*E)(nil)).
		Where("? = ?", bun.Ident(r.pkColumn), id)

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
	}
	return exists, nil
}

func (r *PgRepository[E, PE, ID]) DeleteByID(ctx context.Context, id ID) error {
	q := r.idb.NewDelete().Model((*E)(nil)).
		Where("? = ?", bun.Ident(r.pkColumn), id)

	result, err := q.Exec(ctx)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err)
	}
	if affected == 0 {
		return cruderr.NotFound(id)
	}
	return nil
}

func (r *PgRepository[E, PE, ID]) WithTx(tx bun.Tx) Repository[E, ID] {
	clone := *r
	clone.idb = tx
	return &clone
}

// writeColumns computes the effective column list of a partial update. The
// identifier is never overwritten, and audited models always get a fresh
// updated_at written even when the mask does not name it: the
// BeforeAppendModel hook only mutates the struct field, which a
// column-limited UPDATE would otherwise skip.
func (r *PgRepository[E, PE, ID]) writeColumns(columns []string) []string {
	cols := slices.DeleteFunc(slices.Clone(columns), func(c string) bool { return c == r.pkColumn })
	if len(cols) == 0 {
		return cols
	}
	if r.audited && !slices.Contains(cols, updatedAtColumn) {
		cols = append(cols, updatedAtColumn)
	}
	return cols
}

// orderColumn validates the requested sort column against the whitelist,
// falling back to the primary key for unknown columns.
func (r *PgRepository[E, PE, ID]) orderColumn(requested string) string {
	if requested == r.pkColumn || slices.Contains(r.sortable, requested) {
		return requested
	}
	return r.pkColumn
}

// wrapWriteError translates unique constraint violations into the
// already-exists error class, using the configured constraint code when one
// matches.
func (r *PgRepository[E, PE, ID]) wrapWriteError(err error, q fmt.Stringer) error {
	if code, ok := r.conflictCodes[pg.ConstraintName(err)]; ok {
		return errx.New(
			fmt.Sprintf("conflict while writing %s", r.entityName),
			errx.WithCode(code),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(pg.ErrorDetails(err, q)),
		)
	}
	if pg.IsConflict(err) {
		return errx.New(
			fmt.Sprintf("conflict while writing %s", r.entityName),
			errx.WithCode(cruderr.CodeEntityAlreadyExists),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(pg.ErrorDetails(err, q)),
		)
	}
	return errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
}

// declaresAudit reports whether *E carries the audit timestamp capability.
// Resolved once at construction.
func declaresAudit[E any, PE entity.Ptr[E, ID], ID comparable]() bool {
	var p PE
	_, ok := any(p).(entity.Audited)
	return ok
}

// entityNameOf returns the struct name of E for use in error messages.
func entityNameOf[E any]() string {
	t := reflect.TypeOf((*E)(nil)).Elem()
	return t.Name()
}
