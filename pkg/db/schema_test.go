package db

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchema_HungCallerDoesNotBlockOthers(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	s := NewSchema(func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			<-release
		}
		return nil
	})

	hung := make(chan error, 1)
	go func() { hung <- s.Ensure(context.Background()) }()
	for calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	done := make(chan error, 1)
	go func() { done <- s.Ensure(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Ensure() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second caller waited on the hung one")
	}

	close(release)
	if err := <-hung; err != nil {
		t.Errorf("hung Ensure() error = %v", err)
	}
	if err := s.Ensure(context.Background()); err != nil || calls.Load() != 2 {
		t.Errorf("Ensure() after success = %v, calls = %d", err, calls.Load())
	}
}

func TestSchema_RetriesAfterFailure(t *testing.T) {
	fail := errors.New("database is down")
	var calls int
	s := NewSchema(func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return fail
		}
		return nil
	})

	if err := s.Ensure(context.Background()); !errors.Is(err, fail) {
		t.Fatalf("first Ensure() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Ensure(context.Background()); err != nil {
			t.Fatalf("Ensure() error = %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
