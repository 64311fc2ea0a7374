package core

import (
	"sync"

	"github.com/fluxorio/todolist/pkg/core/failfast"
)

// BaseServer implements common lifecycle management for servers.
// Concrete servers register their start/stop behaviour with SetHooks.
type BaseServer struct {
	name string

	mu      sync.RWMutex
	started bool
	stopped bool

	logger Logger

	// Embedded-method "overrides" are not dispatched dynamically when the
	// embedded type calls its own methods, so hooks are stored explicitly.
	startHook func() error
	stopHook  func() error
}

// NewBaseServer creates a new BaseServer
func NewBaseServer(name string, logger Logger) *BaseServer {
	failfast.NotEmpty(name, "server name")
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &BaseServer{
		name:   name,
		logger: logger,
	}
}

// SetHooks configures hook functions for Start/Stop.
//
//	s.BaseServer.SetHooks(s.doStart, s.doStop)
func (bs *BaseServer) SetHooks(startHook func() error, stopHook func() error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.startHook = startHook
	bs.stopHook = stopHook
}

// Start runs the start hook. It may block for the lifetime of the server.
func (bs *BaseServer) Start() error {
	bs.mu.Lock()
	if bs.started {
		bs.mu.Unlock()
		return &Error{Code: CodeAlreadyStart, Message: "server already started"}
	}
	startHook := bs.startHook
	// Mark started before invoking the hook so IsStarted() reflects runtime
	// state even when the hook blocks.
	bs.started = true
	bs.mu.Unlock()

	if startHook == nil {
		return nil
	}
	if err := startHook(); err != nil {
		bs.mu.Lock()
		bs.started = false
		bs.mu.Unlock()
		return err
	}
	return nil
}

// Stop runs the stop hook once
func (bs *BaseServer) Stop() error {
	bs.mu.Lock()
	if bs.stopped {
		bs.mu.Unlock()
		return nil
	}
	stopHook := bs.stopHook
	bs.mu.Unlock()

	if stopHook != nil {
		if err := stopHook(); err != nil {
			return err
		}
	}

	bs.mu.Lock()
	bs.stopped = true
	bs.mu.Unlock()
	return nil
}

// Name returns the server name
func (bs *BaseServer) Name() string {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.name
}

// Logger returns the logger instance
func (bs *BaseServer) Logger() Logger {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.logger
}

// SetLogger sets a custom logger for this server
func (bs *BaseServer) SetLogger(logger Logger) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.logger = logger
}

// IsStarted returns whether the server has been started
func (bs *BaseServer) IsStarted() bool {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.started
}

// IsStopped returns whether the server has been stopped
func (bs *BaseServer) IsStopped() bool {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.stopped
}
