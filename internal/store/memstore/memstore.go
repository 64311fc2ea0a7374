// Package memstore keeps tasks in process memory.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/fluxorio/todolist/internal/task"
)

// Store is an in-memory task.Store. List returns tasks in insertion order.
type Store struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]task.Task
	now   func() time.Time
}

// New returns an empty store
func New() *Store {
	return &Store{
		tasks: make(map[string]task.Task),
		now:   time.Now,
	}
}

func (s *Store) Create(_ context.Context, d task.Draft) (*task.Task, error) {
	t := task.New(d, s.now())

	s.mu.Lock()
	s.tasks[t.ID] = t
	s.order = append(s.order, t.ID)
	s.mu.Unlock()

	return &t, nil
}

func (s *Store) List(_ context.Context) ([]task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]task.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id])
	}
	return out, nil
}

func (s *Store) Update(_ context.Context, id string, p task.Patch) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	t = p.Apply(t)
	s.tasks[id] = t
	return &t, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return nil
	}
	delete(s.tasks, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
