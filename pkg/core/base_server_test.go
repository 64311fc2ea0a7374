package core

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestBaseServer_Start_RollbackStartedOnHookError(t *testing.T) {
	t.Parallel()

	bs := NewBaseServer("test", nil)
	bs.SetHooks(
		func() error { return errors.New("boom") },
		func() error { return nil },
	)

	if err := bs.Start(); err == nil {
		t.Fatalf("expected error")
	}
	if bs.IsStarted() {
		t.Fatalf("expected started=false after start hook error")
	}
}

func TestBaseServer_Start_Twice(t *testing.T) {
	bs := NewBaseServer("test", nil)

	if err := bs.Start(); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	err := bs.Start()
	if err == nil {
		t.Fatal("second Start() should fail")
	}
	if !errors.Is(err, &Error{Code: CodeAlreadyStart}) {
		t.Errorf("second Start() error = %v, want code %s", err, CodeAlreadyStart)
	}
}

func TestBaseServer_Stop_Once(t *testing.T) {
	bs := NewBaseServer("test", nil)
	var stops int64
	bs.SetHooks(nil, func() error {
		atomic.AddInt64(&stops, 1)
		return nil
	})

	_ = bs.Stop()
	_ = bs.Stop()

	if got := atomic.LoadInt64(&stops); got != 1 {
		t.Errorf("stop hook ran %d times, want 1", got)
	}
	if !bs.IsStopped() {
		t.Error("IsStopped() = false after Stop()")
	}
}

func TestBaseServer_Start_BlocksButMarksStarted(t *testing.T) {
	bs := NewBaseServer("test", nil)

	release := make(chan struct{})
	var entered int64
	bs.SetHooks(
		func() error {
			atomic.AddInt64(&entered, 1)
			<-release
			return nil
		},
		func() error { return nil },
	)

	errCh := make(chan error, 1)
	go func() { errCh <- bs.Start() }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt64(&entered) == 1 && bs.IsStarted() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !bs.IsStarted() {
		close(release)
		t.Fatalf("expected IsStarted()=true while start hook is blocking")
	}

	close(release)

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("unexpected start error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("start did not return after unblocking hook")
	}
}

func TestNewBaseServer_EmptyName(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for empty name")
		}
	}()
	NewBaseServer(" ", nil)
}
