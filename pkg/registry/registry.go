// Package registry holds the single live instance of each service type.
// Services are registered with a constructor and built on first use.
package registry

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
)

var (
	// ErrNotProvided is returned by Get for a type nobody registered
	ErrNotProvided = errors.New("registry: no provider")
	// ErrDuplicate is returned when a type is registered twice
	ErrDuplicate = errors.New("registry: duplicate provider")
	// ErrClosed is returned after Close
	ErrClosed = errors.New("registry: closed")
)

type entry struct {
	build func(*Container) (any, error)
	once  sync.Once
	value any
	err   error
}

// Container maps service types to instances. Constructors may call Get for
// their own dependencies but must not form a cycle.
type Container struct {
	mu      sync.Mutex
	entries map[reflect.Type]*entry
	built   []any // construction order, used by Close
	closed  bool
}

// New creates an empty container
func New() *Container {
	return &Container{entries: make(map[reflect.Type]*entry)}
}

func (c *Container) register(t reflect.Type, e *entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if _, exists := c.entries[t]; exists {
		return fmt.Errorf("%w for %v", ErrDuplicate, t)
	}
	c.entries[t] = e
	return nil
}

func (c *Container) lookup(t reflect.Type) (*entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	e, ok := c.entries[t]
	if !ok {
		return nil, fmt.Errorf("%w for %v", ErrNotProvided, t)
	}
	return e, nil
}

// Provide registers ctor as the way to build T
func Provide[T any](c *Container, ctor func(*Container) (T, error)) error {
	return c.register(reflect.TypeOf((*T)(nil)).Elem(), &entry{
		build: func(c *Container) (any, error) { return ctor(c) },
	})
}

// Set registers an already built value for T
func Set[T any](c *Container, value T) error {
	e := &entry{value: value}
	e.once.Do(func() {})
	if err := c.register(reflect.TypeOf((*T)(nil)).Elem(), e); err != nil {
		return err
	}
	c.mu.Lock()
	c.built = append(c.built, value)
	c.mu.Unlock()
	return nil
}

// Get returns the instance of T, constructing it on first access. A failed
// construction is remembered and returned on every later call.
func Get[T any](c *Container) (T, error) {
	var zero T
	e, err := c.lookup(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}

	e.once.Do(func() {
		e.value, e.err = e.build(c)
		if e.err == nil {
			c.mu.Lock()
			c.built = append(c.built, e.value)
			c.mu.Unlock()
		}
	})
	if e.err != nil {
		return zero, fmt.Errorf("build %v: %w", reflect.TypeOf((*T)(nil)).Elem(), e.err)
	}
	v, _ := e.value.(T)
	return v, nil
}

// MustGet is Get that panics on error
func MustGet[T any](c *Container) T {
	v, err := Get[T](c)
	if err != nil {
		panic(err)
	}
	return v
}

// Close closes every built instance implementing io.Closer, newest first,
// and returns the joined errors. The container is unusable afterwards.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	built := c.built
	c.built = nil
	c.mu.Unlock()

	var errs []error
	for i := len(built) - 1; i >= 0; i-- {
		if closer, ok := built[i].(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
