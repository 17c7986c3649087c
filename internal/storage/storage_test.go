package storage

import (
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestStoreSetGetDelete(t *testing.T) {
	s := New[string]()

	if _, ok := s.Get("missing"); ok {
		t.Error("Expected missing id to be absent")
	}

	s.Set("b", "two")
	s.Set("a", "one")

	if v, ok := s.Get("a"); !ok || v != "one" {
		t.Errorf("Expected one, got %q (%v)", v, ok)
	}
	if ids := s.IDs(); !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Errorf("Expected sorted ids, got %v", ids)
	}

	all := s.GetAll()
	all["c"] = "three"
	if s.Len() != 2 {
		t.Errorf("Expected GetAll to return a copy, store has %d items", s.Len())
	}

	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Error("Expected a to be deleted")
	}
}

func TestStoreExpire(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New[int]()
	s.now = func() time.Time { return now }

	s.Set("old", 1)
	now = now.Add(30 * time.Minute)
	s.Set("new", 2)
	now = now.Add(31 * time.Minute)

	if removed := s.Expire(time.Hour); removed != 1 {
		t.Errorf("Expected 1 expired scene, got %d", removed)
	}
	if _, ok := s.Get("new"); !ok {
		t.Error("Expected recent scene to survive")
	}

	// Get refreshes the last-used time
	now = now.Add(50 * time.Minute)
	if removed := s.Expire(time.Hour); removed != 0 {
		t.Errorf("Expected refreshed scene to survive, %d removed", removed)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			s.Set(id, i)
			s.Get(id)
			s.GetAll()
		}(i)
	}
	wg.Wait()
	if s.Len() != 26 {
		t.Errorf("Expected 26 ids, got %d", s.Len())
	}
}
