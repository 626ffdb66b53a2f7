// Package zenject is a hierarchical dependency injection container.
//
// Bindings map a contract type, optionally qualified by an identifier, to a
// provider that knows how to produce instances. Containers form a tree (or a
// DAG when a sub-container has several parents); a lookup walks from the
// requesting container towards the root and the nearest binding wins.
//
// # Overview
//
// The package provides:
//   - A fluent binder: Bind, To, FromNew, FromInstance, FromMethod, FromResolve,
//     FromSubContainerResolve, AsSingle, AsTransient, AsCached, When, NonLazy
//   - Constructor, member and method injection driven by type descriptors
//   - Sub-containers with copy and move inheritance of bindings
//   - Factories and memory pools bound like any other contract
//   - Decorators, lazy handles and installers
//   - Validation mode, which walks the object graph without calling constructors
//   - Static dependency graph diagnostics with DOT and text output
//
// No struct tags are read and no code is generated. Injection sites are
// declared once per type through Describe.
//
// # Basic Usage
//
// Describe your types, bind them, and resolve:
//
//	types := zenject.NewTypeRegistry()
//	zenject.Describe[*ConsoleLogger]().Constructor(NewConsoleLogger).Implements(zenject.TypeOf[Logger]()).MustRegister(types)
//	zenject.Describe[*UserService]().Constructor(NewUserService).MustRegister(types)
//
//	c := zenject.New(zenject.WithTypes(types))
//	zenject.Bind[Logger](c).To(zenject.TypeOf[*ConsoleLogger]()).AsSingle()
//	zenject.Bind[*UserService](c).AsTransient()
//
//	svc, err := zenject.Resolve[*UserService](c)
//
// # Scopes
//
//   - AsTransient: a new instance on every lookup
//   - AsSingle: one instance per concrete type and container; binding the same
//     concrete type AsSingle twice is a configuration error
//   - AsCached: one instance per binding statement
//
// # Sub-containers
//
// A sub-container sees every binding of its ancestors and may override them:
//
//	child, err := c.CreateSubContainer()
//	zenject.Bind[Logger](child).To(zenject.TypeOf[*FileLogger]()).AsSingle().WithArguments("/tmp/app.log")
//
// Bindings marked CopyIntoAllSubContainers are re-registered in every
// descendant; MoveIntoAllSubContainers removes them from the owner once the
// first child exists.
//
// # Error Handling
//
// Fluent binding calls record errors on the statement. They surface from
// FlushBindings, Install or the next lookup as BindingError values. Lookup
// failures are typed (NotFoundError, AmbiguousBindingError,
// CircularDependencyError and others) and wrap sentinel values:
//
//	svc, err := zenject.Resolve[*UserService](c)
//	if zenject.IsNotFound(err) {
//	    // a dependency is missing
//	}
//
// # Validation
//
// Validate builds a validating sub-container, runs an install function on it
// and resolves every binding without calling constructors:
//
//	err := zenject.Validate(c, func(sub *zenject.Container) error {
//	    return sub.Install(AppModule)
//	})
//
// # Thread Safety
//
// A Container is safe for concurrent use. Every container tree shares one
// lock, taken by each public method. The goroutine holding it may call back
// into the tree, so constructors, factories and installers can resolve
// freely. Requests served from sub-containers of one application container
// are therefore serialized while they touch the container. Pools, type
// registries and Lazy values are safe for concurrent use as well.
package zenject
