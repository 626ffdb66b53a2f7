package testutil

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aerialflame7125/zenject"
)

// RegisterFixtures describes every fixture type in r.
func RegisterFixtures(r *zenject.TypeRegistry) {
	loggerType := zenject.TypeOf[Logger]()
	handlerType := zenject.TypeOf[Handler]()

	zenject.Describe[*ConsoleLogger]().Constructor(NewConsoleLogger).Implements(loggerType).MustRegister(r)
	zenject.Describe[*FileLogger]().Constructor(NewFileLogger).Implements(loggerType).MustRegister(r)
	zenject.Describe[*PrefixLogger]().Constructor(NewPrefixLogger).Implements(loggerType).MustRegister(r)
	zenject.Describe[*Database]().Constructor(NewDatabase).MustRegister(r)
	zenject.Describe[*Cache]().Constructor(NewCache).MustRegister(r)

	zenject.Describe[*UserService]().
		Constructor(NewUserService).
		ParamName(0, "logger").
		ParamName(1, "db").
		Member(zenject.InjectField("Cache", func(s *UserService, c *Cache) { s.Cache = c }, zenject.InjectOptional())).
		Method(zenject.InjectMethod("Init", []zenject.InjectableInfo{zenject.Param[Logger]()}, func(s *UserService, args []any) error {
			logger, _ := args[0].(Logger)
			s.Init(logger)
			return nil
		})).
		MustRegister(r)

	zenject.Describe[*Greeter]().Constructor(NewGreeter).ParamName(0, "greeting").MustRegister(r)

	zenject.Describe[*HandlerA]().Constructor(NewHandlerA).Implements(handlerType).MustRegister(r)
	zenject.Describe[*HandlerB]().Constructor(NewHandlerB).Implements(handlerType).MustRegister(r)
	zenject.Describe[*HandlerC]().Constructor(NewHandlerC).Implements(handlerType).MustRegister(r)
	zenject.Describe[*Dispatcher]().Constructor(NewDispatcher).MustRegister(r)

	zenject.Describe[*CycleA]().Constructor(NewCycleA).MustRegister(r)
	zenject.Describe[*CycleB]().Constructor(NewCycleB).MustRegister(r)

	zenject.Describe[*Parent]().
		Constructor(NewParent).
		Member(zenject.InjectField("Child", func(p *Parent, c *Child) { p.Child = c })).
		MustRegister(r)
	zenject.Describe[*Child]().
		Constructor(NewChild).
		Member(zenject.InjectField("Parent", func(c *Child, p *Parent) { c.Parent = p })).
		MustRegister(r)

	zenject.Describe[*Counter]().Constructor(NewCounter).MustRegister(r)
	zenject.Describe[*Box[int]]().Constructor(NewBox[int]).MustRegister(r)
	zenject.Describe[*Box[string]]().Constructor(NewBox[string]).MustRegister(r)
	zenject.Describe[*Failing]().Constructor(NewFailing).MustRegister(r)
}

// NewRegistry returns a registry holding every fixture descriptor.
func NewRegistry() *zenject.TypeRegistry {
	r := zenject.NewTypeRegistry()
	RegisterFixtures(r)
	return r
}

// NewContainer creates a root container over the fixture registry.
func NewContainer(t *testing.T, opts ...zenject.Option) *zenject.Container {
	t.Helper()
	opts = append([]zenject.Option{zenject.WithTypes(NewRegistry())}, opts...)
	return zenject.New(opts...)
}

// NewLoggedContainer is NewContainer with a debug logger writing to the
// returned buffer.
func NewLoggedContainer(t *testing.T, opts ...zenject.Option) (*zenject.Container, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	opts = append([]zenject.Option{zenject.WithLogger(logger)}, opts...)
	return NewContainer(t, opts...), &buf
}

// NewSubContainer creates a sub-container of parent.
func NewSubContainer(t *testing.T, parent *zenject.Container, opts ...zenject.Option) *zenject.Container {
	t.Helper()
	child, err := parent.CreateSubContainer(opts...)
	require.NoError(t, err)
	return child
}
