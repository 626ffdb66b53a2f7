// Package gin runs every request of a Gin engine in its own sub-container.
//
// Example usage:
//
//	g := gin.New()
//	g.Use(zenjectgin.SubContainerMiddleware(app))
//	g.GET("/users/:id", zenjectgin.Handle((*UserController).GetByID))
package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aerialflame7125/zenject"
)

// Config holds the configuration for the sub-container middleware.
type Config struct {
	// ErrorHandler is called when the request container cannot be built.
	ErrorHandler func(*gin.Context, error)

	// Installers add request-local bindings to each request container.
	Installers []zenject.Installer

	// Middlewares run after the request container is ready, in order.
	Middlewares []func(*zenject.Container, *gin.Context) error
}

// Option configures the sub-container middleware.
type Option func(*Config)

func WithErrorHandler(h func(*gin.Context, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

func WithInstaller(installers ...zenject.Installer) Option {
	return func(c *Config) {
		c.Installers = append(c.Installers, installers...)
	}
}

func WithMiddleware(mw func(*zenject.Container, *gin.Context) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": "Internal Server Error",
	})
}

func defaultConfig(parent *zenject.Container) *Config {
	logger := parent.Logger()
	return &Config{
		ErrorHandler: func(c *gin.Context, err error) {
			logger.Error().Err(err).Str("path", c.FullPath()).Msg("failed to build request container")
			abortInternal(c)
		},
	}
}

// SubContainerMiddleware creates a Gin middleware that builds a child of
// parent for each request. The child binds *gin.Context and *http.Request and
// is attached to the request context.
func SubContainerMiddleware(parent *zenject.Container, opts ...Option) gin.HandlerFunc {
	cfg := defaultConfig(parent)
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		sub, err := parent.CreateSubContainer()
		if err != nil {
			cfg.ErrorHandler(c, err)
			return
		}

		c.Request = c.Request.WithContext(zenject.WithContainer(c.Request.Context(), sub))
		zenject.BindInstanceAs(sub, c)
		zenject.BindInstanceAs(sub, c.Request)

		if err := sub.Install(cfg.Installers...); err != nil {
			cfg.ErrorHandler(c, err)
			return
		}

		for _, mw := range cfg.Middlewares {
			if err := mw(sub, c); err != nil {
				cfg.ErrorHandler(c, err)
				return
			}
		}

		c.Next()
	}
}

// Container returns the request container attached by SubContainerMiddleware.
func Container(c *gin.Context) (*zenject.Container, error) {
	return zenject.FromContext(c.Request.Context())
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	PanicRecovery bool

	PanicHandler func(*gin.Context, any)

	ContainerErrorHandler func(*gin.Context, error)

	ResolutionErrorHandler func(*gin.Context, error)
}

// HandlerOption configures the Handle wrapper.
type HandlerOption func(*HandlerConfig)

func WithPanicRecovery(enabled bool) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicRecovery = enabled
	}
}

// WithPanicHandler sets the handler for panics (requires WithPanicRecovery(true)).
func WithPanicHandler(h func(*gin.Context, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

func WithContainerErrorHandler(h func(*gin.Context, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ContainerErrorHandler = h
	}
}

func WithResolutionErrorHandler(h func(*gin.Context, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

func defaultHandlerConfig() *HandlerConfig {
	logged := func(msg string) func(*gin.Context, error) {
		return func(c *gin.Context, err error) {
			if sub, cerr := Container(c); cerr == nil {
				logger := sub.Logger()
				logger.Error().Err(err).Msg(msg)
			}
			abortInternal(c)
		}
	}
	return &HandlerConfig{
		PanicHandler: func(c *gin.Context, v any) {
			if sub, err := Container(c); err == nil {
				logger := sub.Logger()
				logger.Error().Interface("panic", v).Msg("panic in handler")
			}
			abortInternal(c)
		},
		ContainerErrorHandler:  logged("failed to get container from context"),
		ResolutionErrorHandler: logged("failed to resolve controller"),
	}
}

// Handle wraps a controller method so the controller is resolved from the
// request container on every call.
//
// The method signature should be: func(T, *gin.Context)
func Handle[T any](method func(T, *gin.Context), opts ...HandlerOption) gin.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		if cfg.PanicRecovery {
			defer func() {
				if r := recover(); r != nil {
					cfg.PanicHandler(c, r)
				}
			}()
		}

		sub, err := Container(c)
		if err != nil {
			cfg.ContainerErrorHandler(c, err)
			return
		}

		controller, err := zenject.Resolve[T](sub)
		if err != nil {
			cfg.ResolutionErrorHandler(c, err)
			return
		}

		method(controller, c)
	}
}
