// Package controller exposes generic CRUD endpoints over Fiber.
//
// CrudController mounts the standard route set for one entity type and
// delegates all semantics to the service layer. Request and response bodies
// are value objects translated by the entity's converter; list responses
// carry pagination metadata in headers and use 206/204 status codes to signal
// partial or empty content.
package controller

import (
	"context"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/crud/converter"
	"github.com/rise-and-shine/crud/cruderr"
	"github.com/rise-and-shine/crud/fieldmask"
	"github.com/rise-and-shine/crud/logger"
	"github.com/rise-and-shine/crud/mask"
	"github.com/rise-and-shine/crud/pagination"
	"github.com/rise-and-shine/crud/val"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// Service is the service surface the controller depends on.
// *service.CrudService satisfies it.
type Service[E any, ID comparable] interface {
	Create(ctx context.Context, e *E) (*E, error)
	FindByID(ctx context.Context, id ID) (*E, error)
	FindPage(ctx context.Context, probe *E, req pagination.PageRequest) (*pagination.Page[E], error)
	Update(ctx context.Context, id ID, e *E) (*E, error)
	UpdatePartial(ctx context.Context, id ID, probe *E, m *fieldmask.Mask) (*E, error)
	DeleteByID(ctx context.Context, id ID) error
}

// CrudController serves the CRUD endpoints of one entity type.
//
//	POST   /        create
//	GET    /:id     find one
//	GET    /        find page (query params filter + pagination)
//	PUT    /:id     full update
//	PATCH  /:id     partial update (mounted only with a configured differ)
//	DELETE /:id     delete
type CrudController[E any, VO any, ID comparable] struct {
	svc     Service[E, ID]
	conv    converter.Converter[E, VO]
	parseID IDParser[ID]
	diff    fieldmask.Differ[VO]
	log     logger.Logger
}

// Option configures a CrudController.
type Option[E any, VO any, ID comparable] func(*CrudController[E, VO, ID])

// WithDiffer installs the field-mask differ enabling the PATCH endpoint.
// Controllers without a differ do not mount PATCH.
func WithDiffer[E any, VO any, ID comparable](d fieldmask.Differ[VO]) Option[E, VO, ID] {
	return func(c *CrudController[E, VO, ID]) { c.diff = d }
}

// WithLogger sets the controller's logger. Defaults to a no-op logger.
func WithLogger[E any, VO any, ID comparable](log logger.Logger) Option[E, VO, ID] {
	return func(c *CrudController[E, VO, ID]) { c.log = log }
}

// New creates a CrudController for the given service, converter and
// identifier parser.
func New[E any, VO any, ID comparable](
	svc Service[E, ID],
	conv converter.Converter[E, VO],
	parseID IDParser[ID],
	opts ...Option[E, VO, ID],
) *CrudController[E, VO, ID] {
	c := &CrudController[E, VO, ID]{
		svc:     svc,
		conv:    conv,
		parseID: parseID,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register mounts the controller's routes on the given router, typically a
// route group like app.Group("/products").
func (c *CrudController[E, VO, ID]) Register(r fiber.Router) {
	r.Post("/", c.create)
	r.Get("/", c.findPage)
	r.Get("/:id", c.findByID)
	r.Put("/:id", c.update)
	if c.diff != nil {
		r.Patch("/:id", c.updatePartial)
	}
	r.Delete("/:id", c.deleteByID)
}

func (c *CrudController[E, VO, ID]) create(ctx *fiber.Ctx) error {
	vo, err := c.parseBody(ctx)
	if err != nil {
		return err
	}
	if err := val.ValidateVO(vo); err != nil {
		return err
	}

	c.log.With("payload", mask.StructToOrdMap(vo)).Debug("create request")

	created, err := c.svc.Create(ctx.UserContext(), c.conv.ToEntity(vo))
	if err != nil {
		return errx.Wrap(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(c.conv.ToVO(created))
}

func (c *CrudController[E, VO, ID]) findByID(ctx *fiber.Ctx) error {
	id, err := c.parseID(ctx.Params("id"))
	if err != nil {
		return err
	}

	e, err := c.svc.FindByID(ctx.UserContext(), id)
	if err != nil {
		return errx.Wrap(err)
	}
	if e == nil {
		return cruderr.NotFound(id)
	}

	return ctx.JSON(c.conv.ToVO(e))
}

func (c *CrudController[E, VO, ID]) findPage(ctx *fiber.Ctx) error {
	var probe VO
	if err := ctx.QueryParser(&probe); err != nil {
		return cruderr.MalformedBody(err)
	}

	var req pagination.PageRequest
	if err := ctx.QueryParser(&req); err != nil {
		return cruderr.MalformedBody(err)
	}
	if err := req.Normalize(); err != nil {
		return errx.Wrap(err)
	}

	page, err := c.svc.FindPage(ctx.UserContext(), c.conv.ToEntity(probe), req)
	if err != nil {
		return errx.Wrap(err)
	}

	ctx.Set(pagination.HeaderCurrentPage, cast.ToString(page.Number))
	ctx.Set(pagination.HeaderCurrentElements, cast.ToString(page.NumberOfElements()))
	ctx.Set(pagination.HeaderTotalElements, cast.ToString(page.TotalElements))
	ctx.Set(pagination.HeaderTotalPages, cast.ToString(page.TotalPages()))

	if page.TotalElements == 0 {
		return ctx.SendStatus(fiber.StatusNoContent)
	}

	vos := lo.Map(page.Content, func(e E, _ int) VO {
		return c.conv.ToVO(&e)
	})
	return ctx.Status(fiber.StatusPartialContent).JSON(vos)
}

func (c *CrudController[E, VO, ID]) update(ctx *fiber.Ctx) error {
	id, err := c.parseID(ctx.Params("id"))
	if err != nil {
		return err
	}

	vo, err := c.parseBody(ctx)
	if err != nil {
		return err
	}
	if err := val.ValidateVO(vo); err != nil {
		return err
	}

	c.log.With("payload", mask.StructToOrdMap(vo)).Debug("update request")

	updated, err := c.svc.Update(ctx.UserContext(), id, c.conv.ToEntity(vo))
	if err != nil {
		return errx.Wrap(err)
	}

	return ctx.JSON(c.conv.ToVO(updated))
}

// updatePartial applies only the fields present in the request body. The
// body skips declarative validation since absent fields are legitimate here;
// the differ decides which columns the update touches.
func (c *CrudController[E, VO, ID]) updatePartial(ctx *fiber.Ctx) error {
	id, err := c.parseID(ctx.Params("id"))
	if err != nil {
		return err
	}

	vo, err := c.parseBody(ctx)
	if err != nil {
		return err
	}

	c.log.With("payload", mask.StructToOrdMap(vo)).Debug("partial update request")

	updated, err := c.svc.UpdatePartial(ctx.UserContext(), id, c.conv.ToEntity(vo), c.diff(vo))
	if err != nil {
		return errx.Wrap(err)
	}

	return ctx.JSON(c.conv.ToVO(updated))
}

func (c *CrudController[E, VO, ID]) deleteByID(ctx *fiber.Ctx) error {
	id, err := c.parseID(ctx.Params("id"))
	if err != nil {
		return err
	}

	if err := c.svc.DeleteByID(ctx.UserContext(), id); err != nil {
		return errx.Wrap(err)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *CrudController[E, VO, ID]) parseBody(ctx *fiber.Ctx) (VO, error) {
	var vo VO
	if err := ctx.BodyParser(&vo); err != nil {
		return vo, cruderr.MalformedBody(err)
	}
	return vo, nil
}
