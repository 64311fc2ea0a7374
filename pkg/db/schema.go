package db

import (
	"context"
	"sync/atomic"
)

// Schema runs idempotent DDL until it succeeds once. Callers that arrive
// before the first success each run the DDL themselves and never wait on
// one another, so a hung database only blocks the caller that hit it.
type Schema struct {
	ok   atomic.Bool
	exec func(ctx context.Context) error
}

// NewSchema wraps exec, which must be safe to run concurrently
func NewSchema(exec func(ctx context.Context) error) *Schema {
	return &Schema{exec: exec}
}

// Ensure runs the DDL unless an earlier call succeeded
func (s *Schema) Ensure(ctx context.Context) error {
	if s.ok.Load() {
		return nil
	}
	if err := s.exec(ctx); err != nil {
		return err
	}
	s.ok.Store(true)
	return nil
}
