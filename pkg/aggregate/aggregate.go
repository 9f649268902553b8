// Package aggregate runs independent store lookups concurrently and joins
// their results under the names they were registered with.
package aggregate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Lookup is a single read against the store.
type Lookup func(ctx context.Context) (any, error)

// Fetch adapts a typed lookup.
func Fetch[T any](fn func(ctx context.Context) (T, error)) Lookup {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

// Results maps each lookup name to its value.
type Results map[string]any

// Get returns the named result as a T, or T's zero value when the name is
// unknown or holds something else.
func Get[T any](results Results, name string) T {
	v, _ := results[name].(T)
	return v
}

// Group is a fixed set of named lookups. Build it with Add and run it once with
// Wait.
type Group struct {
	names   []string
	lookups []Lookup
}

func New() *Group {
	return &Group{}
}

// Add registers a lookup under name. Names must be unique within a group.
func (g *Group) Add(name string, lookup Lookup) *Group {
	for _, n := range g.names {
		if n == name {
			panic(fmt.Sprintf("aggregate: duplicate lookup name %q", name))
		}
	}
	g.names = append(g.names, name)
	g.lookups = append(g.lookups, lookup)
	return g
}

// Wait runs every lookup concurrently and returns once all of them have
// finished. If any lookup fails, the first error is returned and all results
// are discarded. Lookups that are still running when another fails are not
// cancelled.
func (g *Group) Wait(ctx context.Context) (Results, error) {
	// each lookup owns its slot, so no locking is needed
	values := make([]any, len(g.lookups))

	var eg errgroup.Group
	for i, lookup := range g.lookups {
		eg.Go(func() error {
			v, err := lookup(ctx)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	results := make(Results, len(values))
	for i, name := range g.names {
		results[name] = values[i]
	}
	return results, nil
}
