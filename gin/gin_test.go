package gin

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerialflame7125/zenject"
	"github.com/aerialflame7125/zenject/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testService struct {
	ID string
}

type testController struct {
	Service *testService
	Ctx     *gin.Context
}

func (c *testController) GetValue(ctx *gin.Context) {
	ctx.String(http.StatusOK, c.Ctx.Param("id")+":"+c.Service.ID)
}

func (c *testController) Panic(*gin.Context) {
	panic("test panic")
}

func newApp(t *testing.T) *zenject.Container {
	t.Helper()

	types := zenject.NewTypeRegistry()
	zenject.Describe[*testService]().
		Constructor(func() *testService { return &testService{ID: "app"} }).
		MustRegister(types)
	zenject.Describe[*testController]().
		Constructor(func(svc *testService, ctx *gin.Context) *testController {
			return &testController{Service: svc, Ctx: ctx}
		}).
		MustRegister(types)

	app := zenject.New(zenject.WithTypes(types))
	zenject.Bind[*testService](app).AsSingle()
	return app
}

func installController(c *zenject.Container) error {
	zenject.Bind[*testController](c).AsTransient()
	return nil
}

func TestSubContainerMiddleware(t *testing.T) {
	t.Run("attaches a child of the application container", func(t *testing.T) {
		app := newApp(t)

		var reqContainer *zenject.Container
		var boundCtx *gin.Context
		var handlerCtx *gin.Context

		g := gin.New()
		g.Use(SubContainerMiddleware(app))
		g.GET("/test", func(c *gin.Context) {
			handlerCtx = c
			var err error
			reqContainer, err = Container(c)
			require.NoError(t, err)
			boundCtx, err = zenject.Resolve[*gin.Context](reqContainer)
			require.NoError(t, err)
			c.Status(http.StatusOK)
		})

		rec := httptest.NewRecorder()
		g.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []*zenject.Container{app}, reqContainer.Parents())
		assert.Same(t, handlerCtx, boundCtx)
	})

	t.Run("concurrent requests share one application singleton", func(t *testing.T) {
		var built atomic.Int32
		types := zenject.NewTypeRegistry()
		zenject.Describe[*testService]().
			Constructor(func() *testService {
				n := built.Add(1)
				time.Sleep(time.Millisecond)
				return &testService{ID: strconv.Itoa(int(n))}
			}).
			MustRegister(types)
		zenject.Describe[*testController]().
			Constructor(func(svc *testService, ctx *gin.Context) *testController {
				return &testController{Service: svc, Ctx: ctx}
			}).
			MustRegister(types)
		app := zenject.New(zenject.WithTypes(types))
		zenject.Bind[*testService](app).AsSingle()

		g := gin.New()
		g.Use(SubContainerMiddleware(app, WithInstaller(zenject.InstallerFunc(installController))))
		g.GET("/value/:id", Handle((*testController).GetValue))

		const requests = 32
		bodies := make(chan string, requests)
		var wg sync.WaitGroup
		for i := range requests {
			wg.Go(func() {
				rec := httptest.NewRecorder()
				g.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/value/"+strconv.Itoa(i), nil))
				if assert.Equal(t, http.StatusOK, rec.Code) {
					bodies <- rec.Body.String()
				}
			})
		}
		wg.Wait()
		close(bodies)

		got := map[string]bool{}
		for body := range bodies {
			got[body] = true
		}
		assert.Len(t, got, requests, "each request binds its own context")
		for i := range requests {
			assert.True(t, got[strconv.Itoa(i)+":1"], "request %d", i)
		}
		assert.Equal(t, int32(1), built.Load())
	})

	t.Run("installer failures abort the request", func(t *testing.T) {
		app := newApp(t)

		var handled error
		called := false
		g := gin.New()
		g.Use(SubContainerMiddleware(app,
			WithInstaller(zenject.InstallerFunc(func(*zenject.Container) error { return testutil.ErrTest })),
			WithErrorHandler(func(c *gin.Context, err error) {
				handled = err
				c.AbortWithStatus(http.StatusServiceUnavailable)
			}),
		))
		g.GET("/test", func(*gin.Context) { called = true })

		rec := httptest.NewRecorder()
		g.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.ErrorIs(t, handled, testutil.ErrTest)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.False(t, called)
	})

	t.Run("middleware errors use the default handler", func(t *testing.T) {
		app := newApp(t)

		var order []int
		g := gin.New()
		g.Use(SubContainerMiddleware(app,
			WithMiddleware(func(*zenject.Container, *gin.Context) error {
				order = append(order, 1)
				return nil
			}),
			WithMiddleware(func(*zenject.Container, *gin.Context) error {
				order = append(order, 2)
				return testutil.ErrTest
			}),
		))
		g.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := httptest.NewRecorder()
		g.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, []int{1, 2}, order)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
	})
}

func TestHandle(t *testing.T) {
	t.Run("resolves the controller per request", func(t *testing.T) {
		g := gin.New()
		g.Use(SubContainerMiddleware(newApp(t), WithInstaller(zenject.InstallerFunc(installController))))
		g.GET("/users/:id", Handle((*testController).GetValue))

		for _, id := range []string{"1", "2"} {
			rec := httptest.NewRecorder()
			g.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, id+":app", rec.Body.String())
		}
	})

	t.Run("missing container", func(t *testing.T) {
		var handled error
		g := gin.New()
		g.GET("/users/:id", Handle((*testController).GetValue, WithContainerErrorHandler(func(c *gin.Context, err error) {
			handled = err
			c.AbortWithStatus(http.StatusServiceUnavailable)
		})))

		rec := httptest.NewRecorder()
		g.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/1", nil))

		assert.ErrorIs(t, handled, zenject.ErrNoContainer)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("resolution failure", func(t *testing.T) {
		g := gin.New()
		g.Use(SubContainerMiddleware(newApp(t)))
		g.GET("/users/:id", Handle((*testController).GetValue))

		rec := httptest.NewRecorder()
		g.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/1", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("panic recovery", func(t *testing.T) {
		var recovered any
		g := gin.New()
		g.Use(SubContainerMiddleware(newApp(t), WithInstaller(zenject.InstallerFunc(installController))))
		g.GET("/panic", Handle((*testController).Panic,
			WithPanicRecovery(true),
			WithPanicHandler(func(c *gin.Context, v any) {
				recovered = v
				c.AbortWithStatus(http.StatusTeapot)
			}),
		))

		rec := httptest.NewRecorder()
		g.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, "test panic", recovered)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}
