// Package fsm is a small synchronous finite state machine with guarded
// transitions and entry/exit actions.
package fsm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State identifies a state
type State string

// Event identifies a trigger
type Event string

// Action runs during a transition. A non-nil error aborts the transition.
type Action func(ctx context.Context, transition TransitionContext) error

// Guard decides whether a transition may occur
type Guard func(ctx context.Context, transition TransitionContext) bool

// TransitionType distinguishes state-changing from in-place transitions
type TransitionType int

const (
	// TransitionExternal exits the source and enters the target
	TransitionExternal TransitionType = iota
	// TransitionInternal runs its actions without exit/entry
	TransitionInternal
)

var (
	// ErrNoTransition is returned when the current state has no transition for the event
	ErrNoTransition = errors.New("fsm: no transition")
	// ErrGuardRejected is returned when a guard vetoes the transition
	ErrGuardRejected = errors.New("fsm: guard rejected transition")
)

// TransitionContext describes the transition in progress
type TransitionContext struct {
	Event Event
	From  State
	To    State
	Data  any
}

// StateMachine holds the current state and the configured transitions.
// Fire runs actions synchronously under the machine's lock, so actions
// must not call back into the same machine.
type StateMachine struct {
	id           string
	currentState State
	states       map[State]*StateConfig
	mu           sync.RWMutex

	onTransition []func(TransitionContext)
}

// StateConfig holds the actions and outgoing transitions of one state
type StateConfig struct {
	state       State
	onEntry     []Action
	onExit      []Action
	transitions map[Event]*Transition
}

// Transition is one outgoing edge
type Transition struct {
	trigger Event
	to      State
	guard   Guard
	actions []Action
	kind    TransitionType
}

// New creates a machine in initialState
func New(id string, initialState State) *StateMachine {
	return &StateMachine{
		id:           id,
		currentState: initialState,
		states:       make(map[State]*StateConfig),
	}
}

// ID returns the machine id
func (sm *StateMachine) ID() string {
	return sm.id
}

// CurrentState returns the current state
func (sm *StateMachine) CurrentState() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

// Is reports whether the machine is in state
func (sm *StateMachine) Is(state State) bool {
	return sm.CurrentState() == state
}

// Configure returns a builder for state, creating its config on first use
func (sm *StateMachine) Configure(state State) *StateConfigBuilder {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	config, ok := sm.states[state]
	if !ok {
		config = &StateConfig{
			state:       state,
			transitions: make(map[Event]*Transition),
		}
		sm.states[state] = config
	}

	return &StateConfigBuilder{config: config}
}

// CanFire reports whether event has a transition from the current state.
// Guards are not evaluated.
func (sm *StateMachine) CanFire(event Event) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	cfg, ok := sm.states[sm.currentState]
	if !ok {
		return false
	}
	_, ok = cfg.transitions[event]
	return ok
}

// Fire triggers event and returns the resulting state.
// Order: guard, exit actions, transition actions, state change, entry actions.
// If anything before the state change fails, the state is unchanged.
func (sm *StateMachine) Fire(ctx context.Context, event Event, data any) (State, error) {
	sm.mu.Lock()

	current := sm.currentState
	stateConfig, ok := sm.states[current]
	if !ok {
		sm.mu.Unlock()
		return current, fmt.Errorf("%w: state %s is not configured", ErrNoTransition, current)
	}

	transition, ok := stateConfig.transitions[event]
	if !ok {
		sm.mu.Unlock()
		return current, fmt.Errorf("%w: event %s in state %s", ErrNoTransition, event, current)
	}

	tCtx := TransitionContext{
		Event: event,
		From:  current,
		To:    transition.to,
		Data:  data,
	}

	if transition.guard != nil && !transition.guard(ctx, tCtx) {
		sm.mu.Unlock()
		return current, fmt.Errorf("%w: %s -> %s on %s", ErrGuardRejected, current, transition.to, event)
	}

	if transition.kind == TransitionExternal {
		for _, action := range stateConfig.onExit {
			if err := action(ctx, tCtx); err != nil {
				sm.mu.Unlock()
				return current, fmt.Errorf("exit action failed: %w", err)
			}
		}
	}

	for _, action := range transition.actions {
		if err := action(ctx, tCtx); err != nil {
			sm.mu.Unlock()
			return current, fmt.Errorf("transition action failed: %w", err)
		}
	}

	sm.currentState = transition.to

	if transition.kind == TransitionExternal {
		if next, ok := sm.states[transition.to]; ok {
			for _, action := range next.onEntry {
				if err := action(ctx, tCtx); err != nil {
					// the state has already changed
					sm.mu.Unlock()
					return transition.to, fmt.Errorf("entry action failed: %w", err)
				}
			}
		}
	}

	listeners := sm.onTransition
	sm.mu.Unlock()

	for _, listener := range listeners {
		listener(tCtx)
	}
	return transition.to, nil
}

// OnTransition registers a listener called after every successful transition
func (sm *StateMachine) OnTransition(listener func(TransitionContext)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onTransition = append(sm.onTransition, listener)
}
