// Package httpserver provides the Fiber-based HTTP server hosting crud
// controllers, with prioritized middleware and the error-list error handler.
package httpserver

import "github.com/gofiber/fiber/v2"

// Server is an HTTP server with configurable middleware and error mapping.
//
// Use New to create an instance, mount controllers via RegisterRouter, then
// call Start.
type Server struct {
	cfg        Config
	router     *fiber.App
	listenAddr string
}

// Option customizes the server.
type Option func(*options)

type options struct {
	middlewares []Middleware
	mappers     []Mapper
}

// WithMiddleware adds middlewares to the server. They are applied in order
// of descending priority.
func WithMiddleware(mws ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, mws...)
	}
}

// WithErrorMapper adds custom error mappers consulted before the default
// error mapping, in registration order.
func WithErrorMapper(mappers ...Mapper) Option {
	return func(o *options) {
		o.mappers = append(o.mappers, mappers...)
	}
}

// New creates a Server with the provided configuration and options.
func New(cfg Config, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	router := fiber.New(fiber.Config{
		ReadTimeout:              cfg.ReadTimeout,
		WriteTimeout:             cfg.WriteTimeout,
		IdleTimeout:              cfg.IdleTimeout,
		ErrorHandler:             customErrorHandler(o.mappers),
		DisableStartupMessage:    true,
		Immutable:                true,
		BodyLimit:                cfg.BodyLimit,
		EnableSplittingOnParsers: true,
	})

	applyMiddlewares(router, o.middlewares)

	return &Server{
		cfg:        cfg,
		router:     router,
		listenAddr: cfg.Address(),
	}
}

// RegisterRouter registers routes on the server using the provided function.
func (s *Server) RegisterRouter(registerFunc func(r fiber.Router)) {
	registerFunc(s.router)
}

// App exposes the underlying Fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.router
}

// Start begins listening for incoming HTTP requests on the configured address.
func (s *Server) Start() error {
	return s.router.Listen(s.listenAddr)
}

// Stop gracefully stops the server, allowing ongoing requests to complete.
func (s *Server) Stop() error {
	return s.router.Shutdown()
}
