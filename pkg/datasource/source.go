// Package datasource provides memoized, single-flight dataset loading.
//
// A Source fetches its dataset at most once per process. Concurrent callers
// share the in-flight fetch, the result is cached forever, and a failed
// fetch is cached as an empty dataset. Callers never see an error.
package datasource

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/ppimalaysia/regform/pkg/loader"
)

// Source lazily loads and caches one dataset. It is safe for concurrent use
// and is meant to be shared by every control that needs the dataset.
type Source[T any] struct {
	name  string
	fetch loader.Fetcher

	group singleflight.Group

	mu      sync.RWMutex
	records []T
	loaded  bool

	fetches atomic.Int64
}

// New creates a Source that loads its records through f. The name is used
// in log messages only.
func New[T any](name string, f loader.Fetcher) *Source[T] {
	return &Source[T]{name: name, fetch: f}
}

// Static returns a Source that is already loaded with records.
func Static[T any](name string, records []T) *Source[T] {
	s := &Source[T]{name: name, loaded: true}
	s.records = append([]T{}, records...)
	return s
}

// Name returns the dataset name
func (s *Source[T]) Name() string {
	return s.name
}

// All returns the dataset, loading it on first use.
//
// The fetch is detached from ctx so one impatient caller cannot poison the
// cache for everyone else. If ctx ends while waiting, that caller gets an
// empty result and the fetch keeps going.
func (s *Source[T]) All(ctx context.Context) []T {
	if recs, ok := s.Peek(); ok {
		return recs
	}

	ch := s.group.DoChan(s.name, func() (any, error) {
		// A caller that missed the cache just before the previous flight
		// finished lands here; it must not fetch again.
		if recs, ok := s.Peek(); ok {
			return recs, nil
		}
		recs := s.load(context.WithoutCancel(ctx))

		s.mu.Lock()
		s.records = recs
		s.loaded = true
		s.mu.Unlock()
		return recs, nil
	})

	select {
	case res := <-ch:
		return res.Val.([]T)
	case <-ctx.Done():
		return []T{}
	}
}

// Peek returns the cached dataset without triggering a load.
func (s *Source[T]) Peek() ([]T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.loaded
}

// Loaded reports whether the dataset has settled (successfully or not).
func (s *Source[T]) Loaded() bool {
	_, ok := s.Peek()
	return ok
}

// Fetches returns how many times the underlying fetcher was invoked.
func (s *Source[T]) Fetches() int {
	return int(s.fetches.Load())
}

func (s *Source[T]) load(ctx context.Context) []T {
	if s.fetch == nil {
		return []T{}
	}
	s.fetches.Add(1)

	payload, err := s.fetch.Fetch(ctx)
	if err != nil {
		log.Printf("Warning: can't load %s: %v", s.name, err)
		return []T{}
	}

	recs, err := loader.DecodeArray[T](payload)
	if err != nil {
		log.Printf("Warning: can't decode %s: %v", s.name, err)
		return []T{}
	}
	return recs
}
