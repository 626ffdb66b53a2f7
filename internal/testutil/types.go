package testutil

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Common test errors
var (
	ErrTest        = errors.New("test error")
	ErrConstructor = errors.New("constructor error")
)

// Logger is the contract most fixtures depend on.
type Logger interface {
	Log(msg string)
	Messages() []string
}

// ConsoleLogger implements Logger in memory.
type ConsoleLogger struct {
	ID string

	mu       sync.Mutex
	messages []string
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{ID: uuid.NewString()}
}

func (l *ConsoleLogger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *ConsoleLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

// FileLogger implements Logger and needs a path argument.
type FileLogger struct {
	ConsoleLogger
	Path string
}

func NewFileLogger(path string) *FileLogger {
	return &FileLogger{ConsoleLogger: ConsoleLogger{ID: uuid.NewString()}, Path: path}
}

// PrefixLogger decorates another Logger.
type PrefixLogger struct {
	Inner  Logger
	Prefix string
}

func NewPrefixLogger(inner Logger) *PrefixLogger {
	return &PrefixLogger{Inner: inner, Prefix: "[decorated] "}
}

func (l *PrefixLogger) Log(msg string) { l.Inner.Log(l.Prefix + msg) }

func (l *PrefixLogger) Messages() []string { return l.Inner.Messages() }

// Database is a dependency without dependencies.
type Database struct {
	ID  string
	DSN string
}

func NewDatabase() *Database {
	return &Database{ID: uuid.NewString(), DSN: "memory://test"}
}

// Cache is injected into UserService as an optional member.
type Cache struct {
	ID string
}

func NewCache() *Cache {
	return &Cache{ID: uuid.NewString()}
}

// UserService takes constructor parameters, an optional member and an
// injection method.
type UserService struct {
	ID     string
	Logger Logger
	DB     *Database
	Cache  *Cache

	Initialized     bool
	CacheBeforeInit bool
}

func NewUserService(logger Logger, db *Database) *UserService {
	return &UserService{ID: uuid.NewString(), Logger: logger, DB: db}
}

// Init is called after members are set.
func (s *UserService) Init(logger Logger) {
	s.Initialized = true
	s.CacheBeforeInit = s.Cache != nil
	if logger != nil {
		logger.Log("user service initialized")
	}
}

// Greeter mixes an explicit argument with a resolved dependency.
type Greeter struct {
	Greeting string
	Logger   Logger
}

func NewGreeter(greeting string, logger Logger) *Greeter {
	return &Greeter{Greeting: greeting, Logger: logger}
}

func (g *Greeter) Greet(name string) string {
	return g.Greeting + ", " + name
}

// Handler is bound several times to exercise multi-bindings.
type Handler interface {
	Name() string
}

type HandlerA struct{ ID string }
type HandlerB struct{ ID string }
type HandlerC struct{ ID string }

func NewHandlerA() *HandlerA { return &HandlerA{ID: uuid.NewString()} }
func NewHandlerB() *HandlerB { return &HandlerB{ID: uuid.NewString()} }
func NewHandlerC() *HandlerC { return &HandlerC{ID: uuid.NewString()} }

func (*HandlerA) Name() string { return "A" }
func (*HandlerB) Name() string { return "B" }
func (*HandlerC) Name() string { return "C" }

// Dispatcher receives every bound Handler through a slice parameter.
type Dispatcher struct {
	Handlers []Handler
}

func NewDispatcher(handlers []Handler) *Dispatcher {
	return &Dispatcher{Handlers: handlers}
}

// CycleA and CycleB depend on each other through their constructors.
type CycleA struct{ B *CycleB }
type CycleB struct{ A *CycleA }

func NewCycleA(b *CycleB) *CycleA { return &CycleA{B: b} }
func NewCycleB(a *CycleA) *CycleB { return &CycleB{A: a} }

// Parent and Child refer to each other through members only.
type Parent struct {
	ID    string
	Child *Child
}

type Child struct {
	ID     string
	Parent *Parent
}

func NewParent() *Parent { return &Parent{ID: uuid.NewString()} }
func NewChild() *Child   { return &Child{ID: uuid.NewString()} }

// Counter is a poolable item that counts its leases.
type Counter struct {
	ID     string
	Leases int
	Active bool
}

func NewCounter() *Counter {
	return &Counter{ID: uuid.NewString()}
}

func (c *Counter) OnSpawned() {
	c.Leases++
	c.Active = true
}

func (c *Counter) OnDespawned() {
	c.Active = false
}

// Box is a generic type used for open type bindings.
type Box[T any] struct {
	ID    string
	Value T
}

func NewBox[T any]() *Box[T] {
	return &Box[T]{ID: uuid.NewString()}
}

// Failing has a constructor that always fails.
type Failing struct{}

func NewFailing() (*Failing, error) {
	return nil, ErrConstructor
}
