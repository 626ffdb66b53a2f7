package zenject_test

import (
	"fmt"

	"github.com/aerialflame7125/zenject"
)

type Store interface {
	Name() string
}

type diskStore struct{ path string }

func (s *diskStore) Name() string { return "disk:" + s.path }

type memoryStore struct{}

func (*memoryStore) Name() string { return "memory" }

type Reporter struct {
	store Store
}

func (r *Reporter) Report() string { return "reporting to " + r.store.Name() }

func exampleTypes() *zenject.TypeRegistry {
	r := zenject.NewTypeRegistry()
	storeType := zenject.TypeOf[Store]()
	zenject.Describe[*diskStore]().
		Constructor(func(path string) *diskStore { return &diskStore{path: path} }).
		Implements(storeType).
		MustRegister(r)
	zenject.Describe[*memoryStore]().
		Constructor(func() *memoryStore { return &memoryStore{} }).
		Implements(storeType).
		MustRegister(r)
	zenject.Describe[*Reporter]().
		Constructor(func(s Store) *Reporter { return &Reporter{store: s} }).
		MustRegister(r)
	return r
}

func Example() {
	c := zenject.New(zenject.WithTypes(exampleTypes()))

	zenject.Bind[Store](c).To(zenject.TypeOf[*diskStore]()).AsSingle().WithArguments("/var/data")
	zenject.Bind[*Reporter](c).AsTransient()

	reporter, err := zenject.Resolve[*Reporter](c)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(reporter.Report())

	// Output:
	// reporting to disk:/var/data
}

func ExampleContainer_CreateSubContainer() {
	root := zenject.New(zenject.WithTypes(exampleTypes()))
	zenject.Bind[Store](root).To(zenject.TypeOf[*diskStore]()).AsSingle().WithArguments("/var/data")
	zenject.Bind[*Reporter](root).AsTransient().CopyIntoAllSubContainers()

	test, _ := root.CreateSubContainer()
	zenject.Bind[Store](test).To(zenject.TypeOf[*memoryStore]()).AsSingle()

	fromRoot, _ := zenject.Resolve[*Reporter](root)
	fromTest, _ := zenject.Resolve[*Reporter](test)
	fmt.Println(fromRoot.Report())
	fmt.Println(fromTest.Report())

	// Output:
	// reporting to disk:/var/data
	// reporting to memory
}

func ExampleBindFactory() {
	c := zenject.New(zenject.WithTypes(exampleTypes()))
	zenject.BindFactory[Store](c).To(zenject.TypeOf[*diskStore]())

	factory, _ := zenject.Resolve[zenject.Factory[Store]](c)
	for _, path := range []string{"/a", "/b"} {
		store, _ := factory.CreateWith(path)
		fmt.Println(store.Name())
	}

	// Output:
	// disk:/a
	// disk:/b
}

func ExampleValidate() {
	c := zenject.New(zenject.WithTypes(exampleTypes()))

	err := zenject.Validate(c, func(sub *zenject.Container) error {
		zenject.Bind[*Reporter](sub).AsSingle()
		return nil
	})
	fmt.Println(zenject.IsNotFound(err))

	// Output:
	// true
}
