// Package chi runs every request of a Chi router in its own sub-container.
//
// The middleware creates a child of an application container per request,
// binds the request and the Chi route context into it, runs the configured
// installers and attaches the child to the request context. Handlers resolve
// their controllers from that child, so request-local bindings override
// application-wide ones.
//
// Example usage:
//
//	app := zenject.New(zenject.WithTypes(types))
//	zenject.Bind[*UserRepo](app).AsSingle()
//
//	r := chi.NewRouter()
//	r.Use(zenjectchi.SubContainerMiddleware(app,
//	    zenjectchi.WithInstaller(zenject.InstallerFunc(installRequestBindings)),
//	))
//	r.Get("/users/{id}", zenjectchi.Handle((*UserController).GetByID))
package chi

import (
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aerialflame7125/zenject"
)

// Config holds the configuration for the sub-container middleware.
type Config struct {
	// ErrorHandler is called when the request container cannot be built.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Installers add request-local bindings to each request container.
	Installers []zenject.Installer

	// Middlewares run after the request container is ready, in order.
	Middlewares []func(*zenject.Container, *http.Request) error
}

// Option configures the sub-container middleware.
type Option func(*Config)

// WithErrorHandler sets the handler for request container failures.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithInstaller adds installers run against every request container.
func WithInstaller(installers ...zenject.Installer) Option {
	return func(c *Config) {
		c.Installers = append(c.Installers, installers...)
	}
}

// WithMiddleware adds a function that runs once the request container is
// ready. Multiple middlewares are executed in the order they are added.
func WithMiddleware(mw func(*zenject.Container, *http.Request) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func defaultConfig(parent *zenject.Container) *Config {
	logger := parent.Logger()
	return &Config{
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to build request container")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
	}
}

// SubContainerMiddleware creates a Chi middleware that builds a child of
// parent for each request. The child binds *http.Request and, when routed by
// Chi, *chi.Context. It is attached to the request context and can be
// retrieved using zenject.FromContext.
func SubContainerMiddleware(parent *zenject.Container, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig(parent)
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, err := parent.CreateSubContainer()
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			r = r.WithContext(zenject.WithContainer(r.Context(), sub))
			zenject.BindInstanceAs(sub, r)
			if rctx := chirouter.RouteContext(r.Context()); rctx != nil {
				zenject.BindInstanceAs(sub, rctx)
			}

			if err := sub.Install(cfg.Installers...); err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			for _, mw := range cfg.Middlewares {
				if err := mw(sub, r); err != nil {
					cfg.ErrorHandler(w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(http.ResponseWriter, *http.Request, any)

	// ContainerErrorHandler is called when the request has no container.
	ContainerErrorHandler func(http.ResponseWriter, *http.Request, error)

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(http.ResponseWriter, *http.Request, error)
}

// HandlerOption configures the Handle wrapper.
type HandlerOption func(*HandlerConfig)

// WithPanicRecovery enables or disables panic recovery in the handler.
func WithPanicRecovery(enabled bool) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicRecovery = enabled
	}
}

// WithPanicHandler sets the handler for panics.
func WithPanicHandler(h func(http.ResponseWriter, *http.Request, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithContainerErrorHandler sets the handler for requests without a container.
func WithContainerErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ContainerErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the handler for controller resolution failures.
func WithResolutionErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

func requestLogger(r *http.Request) *zerolog.Logger {
	if c, err := zenject.FromContext(r.Context()); err == nil {
		logger := c.Logger()
		return &logger
	}
	return zerolog.Ctx(r.Context())
}

func internalError(w http.ResponseWriter) {
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func defaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		PanicHandler: func(w http.ResponseWriter, r *http.Request, v any) {
			requestLogger(r).Error().Interface("panic", v).Msg("panic in handler")
			internalError(w)
		},
		ContainerErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			requestLogger(r).Error().Err(err).Msg("failed to get container from context")
			internalError(w)
		},
		ResolutionErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			requestLogger(r).Error().Err(err).Msg("failed to resolve controller")
			internalError(w)
		},
	}
}

// Handle wraps a controller method so the controller is resolved from the
// request container on every call.
//
// The method signature should be: func(T, http.ResponseWriter, *http.Request)
//
// Example:
//
//	r.Get("/users/{id}", zenjectchi.Handle((*UserController).GetByID))
func Handle[T any](method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					cfg.PanicHandler(w, r, v)
				}
			}()
		}

		c, err := zenject.FromContext(r.Context())
		if err != nil {
			cfg.ContainerErrorHandler(w, r, err)
			return
		}

		controller, err := zenject.Resolve[T](c)
		if err != nil {
			cfg.ResolutionErrorHandler(w, r, err)
			return
		}

		method(controller, w, r)
	}
}
