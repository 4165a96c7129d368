package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps machines in memory keyed by session id. Nothing survives a restart.
type Store struct {
	m    sync.Map // id -> *Machine
	opts []Option
}

// NewStore creates a store whose machines are built with opts.
func NewStore(opts ...Option) *Store {
	return &Store{opts: opts}
}

func NewID() string { return uuid.NewString() }

func (s *Store) Get(id string) (*Machine, bool) {
	if v, ok := s.m.Load(id); ok {
		return v.(*Machine), true
	}
	return nil, false
}

func (s *Store) GetOrCreate(id string) *Machine {
	if m, ok := s.Get(id); ok {
		return m
	}
	v, _ := s.m.LoadOrStore(id, NewMachine(s.opts...))
	return v.(*Machine)
}

func (s *Store) Delete(id string) {
	if v, ok := s.m.LoadAndDelete(id); ok {
		v.(*Machine).Clear()
	}
}

// Sweep drops sessions idle for longer than idle and returns how many were removed.
func (s *Store) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	n := 0
	s.m.Range(func(k, v any) bool {
		m := v.(*Machine)
		if m.LastActive().Before(cutoff) {
			s.m.Delete(k)
			m.Clear()
			n++
		}
		return true
	})
	return n
}

func (s *Store) Len() int {
	n := 0
	s.m.Range(func(_, _ any) bool { n++; return true })
	return n
}
