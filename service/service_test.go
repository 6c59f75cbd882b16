package service_test

import (
	"context"
	"testing"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/crud/cruderr"
	"github.com/rise-and-shine/crud/entity"
	"github.com/rise-and-shine/crud/fieldmask"
	"github.com/rise-and-shine/crud/filter"
	"github.com/rise-and-shine/crud/pagination"
	"github.com/rise-and-shine/crud/repository"
	"github.com/rise-and-shine/crud/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type product struct {
	entity.Model[int64]

	Name  string
	Price float64
}

type document struct {
	entity.Model[int64]
	entity.SoftDeleteMarker

	Title    string
	Archived bool
}

// fakeRepo is an in-memory Repository used to exercise the service flows
// without a database.
type fakeRepo[E any, PE entity.Ptr[E, int64]] struct {
	items map[int64]*E
	seq   int64

	// applyColumns copies the named columns from src to dst, standing in for
	// the column-limited UPDATE of the real repository.
	applyColumns func(dst, src *E, columns []string)

	saveCount  int
	lastFilter *filter.Set
}

func newFakeRepo[E any, PE entity.Ptr[E, int64]](apply func(dst, src *E, columns []string)) *fakeRepo[E, PE] {
	return &fakeRepo[E, PE]{items: make(map[int64]*E), applyColumns: apply}
}

func (f *fakeRepo[E, PE]) add(e *E) *E {
	f.seq++
	PE(e).SetID(f.seq)
	f.items[f.seq] = e
	return e
}

func (f *fakeRepo[E, PE]) Save(_ context.Context, e *E) (*E, error) {
	f.saveCount++
	if PE(e).IsNew() {
		f.seq++
		PE(e).SetID(f.seq)
	}
	cp := *e
	f.items[PE(e).GetID()] = &cp
	return e, nil
}

func (f *fakeRepo[E, PE]) UpdateColumns(_ context.Context, e *E, columns []string) (*E, error) {
	f.saveCount++
	existing, ok := f.items[PE(e).GetID()]
	if !ok {
		return nil, cruderr.NotFound(PE(e).GetID())
	}
	f.applyColumns(existing, e, columns)
	cp := *existing
	return &cp, nil
}

func (f *fakeRepo[E, PE]) FindByID(_ context.Context, id int64) (*E, error) {
	e, ok := f.items[id]
	if !ok {
		return nil, nil //nolint:nilnil // mirrors the repository contract
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo[E, PE]) FindAll(ctx context.Context) ([]E, error) {
	return f.FindAllByExample(ctx, filter.New())
}

func (f *fakeRepo[E, PE]) FindAllByExample(_ context.Context, fs *filter.Set) ([]E, error) {
	f.lastFilter = fs
	out := make([]E, 0, len(f.items))
	for _, e := range f.items {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeRepo[E, PE]) FindPage(
	ctx context.Context,
	fs *filter.Set,
	req pagination.PageRequest,
) (*pagination.Page[E], error) {
	all, err := f.FindAllByExample(ctx, fs)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(all, int64(len(all)), req), nil
}

func (f *fakeRepo[E, PE]) FindAllByIDs(_ context.Context, ids []int64) ([]E, error) {
	out := make([]E, 0, len(ids))
	for _, id := range ids {
		if e, ok := f.items[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeRepo[E, PE]) ExistsByID(_ context.Context, id int64) (bool, error) {
	_, ok := f.items[id]
	return ok, nil
}

func (f *fakeRepo[E, PE]) DeleteByID(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return cruderr.NotFound(id)
	}
	delete(f.items, id)
	return nil
}

func (f *fakeRepo[E, PE]) WithTx(_ bun.Tx) repository.Repository[E, int64] {
	return f
}

func applyProductColumns(dst, src *product, columns []string) {
	for _, col := range columns {
		switch col {
		case "name":
			dst.Name = src.Name
		case "price":
			dst.Price = src.Price
		}
	}
}

func newProductRepo() *fakeRepo[product, *product] {
	return newFakeRepo[product, *product](applyProductColumns)
}

func TestCreate_AssignsIdentifier(t *testing.T) {
	repo := newProductRepo()
	svc := service.New[product, *product, int64](repo)

	created, err := svc.Create(context.Background(), &product{Name: "phone", Price: 9.99})
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.GetID())
	assert.Equal(t, "phone", repo.items[1].Name)
}

func TestCreate_DiscardsUnknownCallerIdentifier(t *testing.T) {
	repo := newProductRepo()
	svc := service.New[product, *product, int64](repo)

	p := &product{Name: "phone"}
	p.SetID(99)

	created, err := svc.Create(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.GetID())
	assert.NotContains(t, repo.items, int64(99))
}

func TestCreate_ExistingIdentifierFailsBeforeSave(t *testing.T) {
	repo := newProductRepo()
	repo.add(&product{Name: "phone"})
	svc := service.New[product, *product, int64](repo)

	p := &product{Name: "other"}
	p.SetID(1)

	_, err := svc.Create(context.Background(), p)
	require.Error(t, err)
	assert.True(t, cruderr.IsAlreadyExists(err))
	assert.Zero(t, repo.saveCount)
}

func TestFindByID_AbsenceIsNotAnError(t *testing.T) {
	svc := service.New[product, *product, int64](newProductRepo())

	e, err := svc.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestFindAllByExample_UsesConfiguredBuilder(t *testing.T) {
	repo := newProductRepo()
	repo.add(&product{Name: "phone"})

	svc := service.New[product, *product, int64](
		repo,
		service.WithFilter[product, *product, int64](func(p *product) *filter.Set {
			s := filter.New()
			if p.Name != "" {
				s.Contains("name", p.Name)
			}
			return s
		}),
	)

	_, err := svc.FindAllByExample(context.Background(), &product{Name: "pho"})
	require.NoError(t, err)

	require.NotNil(t, repo.lastFilter)
	assert.Equal(t, []filter.Predicate{
		{Column: "name", Op: filter.OpContains, Value: "pho"},
	}, repo.lastFilter.Predicates())
}

func TestFindAllByExample_WithoutBuilderMatchesEverything(t *testing.T) {
	repo := newProductRepo()
	svc := service.New[product, *product, int64](repo)

	_, err := svc.FindAllByExample(context.Background(), &product{Name: "ignored"})
	require.NoError(t, err)

	require.NotNil(t, repo.lastFilter)
	assert.True(t, repo.lastFilter.IsEmpty())
}

func TestUpdate_ReplacesEveryField(t *testing.T) {
	repo := newProductRepo()
	repo.add(&product{Name: "phone", Price: 9.99})
	svc := service.New[product, *product, int64](repo)

	updated, err := svc.Update(context.Background(), 1, &product{Name: "tablet"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), updated.GetID())
	assert.Equal(t, "tablet", repo.items[1].Name)
	assert.Zero(t, repo.items[1].Price)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := service.New[product, *product, int64](newProductRepo())

	_, err := svc.Update(context.Background(), 7, &product{Name: "tablet"})
	require.Error(t, err)
	assert.True(t, cruderr.IsNotFound(err))
}

func TestUpdatePartial_AppliesOnlyMaskedColumns(t *testing.T) {
	repo := newProductRepo()
	repo.add(&product{Name: "phone", Price: 9.99})
	svc := service.New[product, *product, int64](repo)

	mask := fieldmask.New().Set("name", "tablet")
	updated, err := svc.UpdatePartial(context.Background(), 1, &product{Name: "tablet", Price: 0}, mask)
	require.NoError(t, err)

	assert.Equal(t, "tablet", updated.Name)
	assert.Equal(t, 9.99, updated.Price)
}

func TestUpdatePartial_EmptyMaskReturnsStoredEntity(t *testing.T) {
	repo := newProductRepo()
	repo.add(&product{Name: "phone", Price: 9.99})
	svc := service.New[product, *product, int64](repo)

	updated, err := svc.UpdatePartial(context.Background(), 1, &product{Name: "tablet"}, fieldmask.New())
	require.NoError(t, err)

	assert.Equal(t, "phone", updated.Name)
	assert.Zero(t, repo.saveCount)
}

func TestUpdatePartial_NotFound(t *testing.T) {
	svc := service.New[product, *product, int64](newProductRepo())

	_, err := svc.UpdatePartial(context.Background(), 7, &product{}, fieldmask.New().Set("name", "x"))
	require.Error(t, err)
	assert.True(t, cruderr.IsNotFound(err))
}

func TestDeleteByID_PhysicalRemoval(t *testing.T) {
	repo := newProductRepo()
	repo.add(&product{Name: "phone"})
	svc := service.New[product, *product, int64](repo)

	require.NoError(t, svc.DeleteByID(context.Background(), 1))
	assert.NotContains(t, repo.items, int64(1))
}

func TestDeleteByID_NotFound(t *testing.T) {
	svc := service.New[product, *product, int64](newProductRepo())

	err := svc.DeleteByID(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, cruderr.IsNotFound(err))
}

func TestDeleteByID_SoftDeletePersistsMutatedEntity(t *testing.T) {
	repo := newFakeRepo[document, *document](func(dst, src *document, columns []string) {})
	repo.add(&document{Title: "report"})

	svc := service.New[document, *document, int64](
		repo,
		service.WithSoftDelete[document, *document, int64](func(d *document) { d.Archived = true }),
	)

	require.NoError(t, svc.DeleteByID(context.Background(), 1))

	require.Contains(t, repo.items, int64(1))
	assert.True(t, repo.items[1].Archived)
}

func TestDeleteByID_SoftDeletableWithoutFunctionFailsLoudly(t *testing.T) {
	repo := newFakeRepo[document, *document](func(dst, src *document, columns []string) {})
	repo.add(&document{Title: "report"})

	svc := service.New[document, *document, int64](repo)

	err := svc.DeleteByID(context.Background(), 1)
	require.Error(t, err)

	e := errx.AsErrorX(err)
	assert.Equal(t, cruderr.CodeSoftDeleteNotImplemented, e.Code())
	assert.Equal(t, errx.T_Internal, e.Type())
	assert.Contains(t, repo.items, int64(1))
}
