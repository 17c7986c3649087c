// Package storage keeps open editor scenes in memory. Nothing is persisted;
// restarting the process drops every scene.
package storage

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrSceneNotFound = errors.New("scene not found")

type entry[T any] struct {
	value   T
	touched time.Time
}

// Store is a concurrency-safe map of values keyed by id.
type Store[T any] struct {
	items map[string]*entry[T]
	mu    sync.RWMutex
	now   func() time.Time
}

func New[T any]() *Store[T] {
	return &Store[T]{
		items: make(map[string]*entry[T]),
		now:   time.Now,
	}
}

// Get returns the value for id and marks it as recently used.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, exists := s.items[id]
	if !exists {
		var zero T
		return zero, false
	}
	e.touched = s.now()
	return e.value, true
}

func (s *Store[T]) Set(id string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = &entry[T]{value: value, touched: s.now()}
}

// GetAll returns a copy of the stored values keyed by id.
func (s *Store[T]) GetAll() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]T, len(s.items))
	for k, v := range s.items {
		result[k] = v.value
	}
	return result
}

// IDs returns the stored ids in sorted order.
func (s *Store[T]) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.items))
	for k := range s.items {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// Expire removes every value not used within ttl and returns how many were
// removed.
func (s *Store[T]) Expire(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	removed := 0
	for k, v := range s.items {
		if v.touched.Before(cutoff) {
			delete(s.items, k)
			removed++
		}
	}
	return removed
}
