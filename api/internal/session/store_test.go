package session

import (
	"testing"
	"time"
)

func TestStore(t *testing.T) {
	s := NewStore()
	id := NewID()
	if _, ok := s.Get(id); ok {
		t.Fatal("unexpected machine for new id")
	}
	m := s.GetOrCreate(id)
	if s.GetOrCreate(id) != m {
		t.Error("GetOrCreate should return the same machine")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 session, got %d", s.Len())
	}
	s.Delete(id)
	if _, ok := s.Get(id); ok {
		t.Error("machine should be gone after Delete")
	}
}

func TestStoreSweep(t *testing.T) {
	s := NewStore()
	old := s.GetOrCreate("old")
	old.mu.Lock()
	old.touched = time.Now().Add(-3 * time.Hour)
	old.mu.Unlock()
	s.GetOrCreate("fresh")

	if n := s.Sweep(2 * time.Hour); n != 1 {
		t.Errorf("expected 1 swept session, got %d", n)
	}
	if _, ok := s.Get("old"); ok {
		t.Error("idle session should be swept")
	}
	if _, ok := s.Get("fresh"); !ok {
		t.Error("active session should survive")
	}
}
