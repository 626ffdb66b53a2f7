package zenject_test

import (
	"fmt"
	"testing"

	"github.com/aerialflame7125/zenject"
	"github.com/aerialflame7125/zenject/internal/testutil"
)

// setupBenchContainer binds the UserService graph with the given scope.
func setupBenchContainer(b *testing.B, scope zenject.ScopeType) *zenject.Container {
	b.Helper()

	c := zenject.New(zenject.WithTypes(testutil.NewRegistry()))
	bindScoped := func(sb zenject.ScopeBinder) {
		if scope == zenject.ScopeSingleton {
			sb.AsSingle()
		} else {
			sb.AsTransient()
		}
	}
	bindScoped(zenject.Bind[testutil.Logger](c).To(zenject.TypeOf[*testutil.ConsoleLogger]()))
	bindScoped(zenject.Bind[*testutil.Database](c))
	bindScoped(zenject.Bind[*testutil.Cache](c))
	bindScoped(zenject.Bind[*testutil.UserService](c))

	if err := c.FlushBindings(); err != nil {
		b.Fatal(err)
	}
	return c
}

func BenchmarkResolution(b *testing.B) {
	for _, scope := range []zenject.ScopeType{zenject.ScopeSingleton, zenject.ScopeTransient} {
		b.Run(scope.String(), func(b *testing.B) {
			c := setupBenchContainer(b, scope)

			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				if _, err := zenject.Resolve[*testutil.UserService](c); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkResolveAll(b *testing.B) {
	c := zenject.New(zenject.WithTypes(testutil.NewRegistry()))
	zenject.Bind[testutil.Handler](c).To(zenject.TypeOf[*testutil.HandlerA]()).AsSingle()
	zenject.Bind[testutil.Handler](c).To(zenject.TypeOf[*testutil.HandlerB]()).AsSingle()
	zenject.Bind[testutil.Handler](c).To(zenject.TypeOf[*testutil.HandlerC]()).AsSingle()

	b.ReportAllocs()
	for b.Loop() {
		if _, err := zenject.ResolveAll[testutil.Handler](c); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSubContainerResolution(b *testing.B) {
	for _, depth := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("depth=%d", depth), func(b *testing.B) {
			c := setupBenchContainer(b, zenject.ScopeSingleton)
			for range depth {
				child, err := c.CreateSubContainer()
				if err != nil {
					b.Fatal(err)
				}
				c = child
			}

			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				if _, err := zenject.Resolve[*testutil.UserService](c); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSubContainerCreation(b *testing.B) {
	root := setupBenchContainer(b, zenject.ScopeSingleton)
	zenject.Bind[*testutil.Greeter](root).AsTransient().WithArguments("Hi").CopyIntoAllSubContainers()

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := root.CreateSubContainer(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkInstantiate(b *testing.B) {
	c := setupBenchContainer(b, zenject.ScopeSingleton)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := zenject.Instantiate[*testutil.Greeter](c, "Hi"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPooledFactory(b *testing.B) {
	c := zenject.New(zenject.WithTypes(testutil.NewRegistry()))
	zenject.BindFactory[*testutil.Counter](c).FromPoolableMemoryPool(func(mb *zenject.MemoryPoolBinder[*testutil.Counter]) {
		mb.WithInitialSize(8)
	})
	factory, err := zenject.Resolve[zenject.Factory[*testutil.Counter]](c)
	if err != nil {
		b.Fatal(err)
	}
	pooled := factory.(*zenject.PooledFactory[*testutil.Counter])

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		item, err := pooled.Create()
		if err != nil {
			b.Fatal(err)
		}
		if err := pooled.Despawn(item); err != nil {
			b.Fatal(err)
		}
	}
}
