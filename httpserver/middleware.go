package httpserver

import (
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/crud/logger"
)

// Middleware is a Fiber handler with a priority for ordering. Higher
// priorities run earlier in the request pipeline.
type Middleware struct {
	Priority int
	Handler  fiber.Handler
}

// applyMiddlewares registers the middlewares on the app in descending
// priority order. Nil handlers are skipped.
func applyMiddlewares(app *fiber.App, middlewares []Middleware) {
	sort.Slice(middlewares, func(i, j int) bool {
		return middlewares[i].Priority > middlewares[j].Priority
	})
	for _, mw := range middlewares {
		if mw.Handler == nil {
			continue
		}
		app.Use(mw.Handler)
	}
}

// NewRecoveryMW returns a middleware that recovers from panics in the
// handler chain, logs the stack trace, and converts the panic into a
// structured internal error for the error handler downstream.
func NewRecoveryMW(log logger.Logger) Middleware {
	return Middleware{
		Priority: 1000, //nolint:mnd // runs before everything else
		Handler: func(c *fiber.Ctx) (err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := make([]byte, 4<<10)
					stack = stack[:runtime.Stack(stack, false)]

					log.Named("middleware.recovery").
						With("panic_message", r, "stack_trace", string(stack)).
						Error("recovered from panic")

					err = errx.New("panic recovered", errx.WithDetails(errx.D{
						"panic_message": fmt.Sprint(r),
					}))
				}
			}()

			return c.Next()
		},
	}
}

// NewLoggerMW returns a middleware that logs one entry per request with
// method, route, status and duration. 4xx responses log at warn, 5xx at
// error, everything else at info.
func NewLoggerMW(log logger.Logger) Middleware {
	return Middleware{
		Priority: 500, //nolint:mnd // runs after recovery, before error handling
		Handler: func(c *fiber.Ctx) error {
			start := time.Now()
			err := c.Next()
			status := c.Response().StatusCode()

			entry := log.Named("middleware.logger").With(
				"http_method", c.Method(),
				"http_path", c.Path(),
				"http_route", c.Route().Path,
				"http_status_code", status,
				"duration", time.Since(start).String(),
			)
			if err != nil {
				e := errx.AsErrorX(err)
				entry = entry.With("error_code", e.Code(), "error_message", e.Error())
			}

			switch {
			case status >= fiber.StatusInternalServerError:
				entry.Error("request failed")
			case status >= fiber.StatusBadRequest:
				entry.Warn("request rejected")
			default:
				entry.Info("request processed")
			}

			return err
		},
	}
}
