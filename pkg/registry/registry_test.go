package registry

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int }

type closeLog struct {
	name string
	log  *[]string
	err  error
}

func (c *closeLog) Close() error {
	*c.log = append(*c.log, c.name)
	return c.err
}

type first struct{ *closeLog }
type second struct{ *closeLog }

func TestGet_ConstructsOnce(t *testing.T) {
	c := New()
	var calls atomic.Int32
	require.NoError(t, Provide(c, func(*Container) (*counter, error) {
		calls.Add(1)
		return &counter{n: 42}, nil
	}))

	var wg sync.WaitGroup
	results := make([]*counter, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = MustGet[*counter](c)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, 42, results[0].n)
}

func TestGet_NotProvided(t *testing.T) {
	_, err := Get[*counter](New())
	assert.ErrorIs(t, err, ErrNotProvided)
	assert.Panics(t, func() { MustGet[*counter](New()) })
}

func TestProvide_Duplicate(t *testing.T) {
	c := New()
	ctor := func(*Container) (*counter, error) { return &counter{}, nil }
	require.NoError(t, Provide(c, ctor))
	assert.ErrorIs(t, Provide(c, ctor), ErrDuplicate)
	assert.ErrorIs(t, Set(c, &counter{}), ErrDuplicate)
}

func TestGet_ResolvesDependencies(t *testing.T) {
	c := New()
	require.NoError(t, Set(c, &counter{n: 3}))
	require.NoError(t, Provide(c, func(c *Container) (string, error) {
		n, err := Get[*counter](c)
		if err != nil {
			return "", err
		}
		return string(rune('a' + n.n)), nil
	}))

	s, err := Get[string](c)
	require.NoError(t, err)
	assert.Equal(t, "d", s)
}

func TestGet_ErrorIsRemembered(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	calls := 0
	require.NoError(t, Provide(c, func(*Container) (*counter, error) {
		calls++
		return nil, boom
	}))

	_, err := Get[*counter](c)
	assert.ErrorIs(t, err, boom)
	_, err = Get[*counter](c)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestClose_ReverseOrder(t *testing.T) {
	var log []string
	boom := errors.New("close failed")

	c := New()
	require.NoError(t, Provide(c, func(*Container) (first, error) {
		return first{&closeLog{name: "first", log: &log}}, nil
	}))
	require.NoError(t, Provide(c, func(c *Container) (second, error) {
		MustGet[first](c)
		return second{&closeLog{name: "second", log: &log, err: boom}}, nil
	}))

	MustGet[second](c)

	err := c.Close()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"second", "first"}, log)

	_, err = Get[first](c)
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, c.Close())
}
