package fsm

// StateConfigBuilder configures one state fluently
type StateConfigBuilder struct {
	config *StateConfig
}

// Permit allows event to move to nextState
func (b *StateConfigBuilder) Permit(event Event, nextState State) *StateConfigBuilder {
	return b.PermitIf(event, nextState, nil)
}

// PermitIf allows event to move to nextState when guard returns true
func (b *StateConfigBuilder) PermitIf(event Event, nextState State, guard Guard, actions ...Action) *StateConfigBuilder {
	b.config.transitions[event] = &Transition{
		trigger: event,
		to:      nextState,
		guard:   guard,
		actions: actions,
		kind:    TransitionExternal,
	}
	return b
}

// PermitWithAction allows event to move to nextState, running action on the way
func (b *StateConfigBuilder) PermitWithAction(event Event, nextState State, action Action) *StateConfigBuilder {
	return b.PermitIf(event, nextState, nil, action)
}

// InternalTransition runs action on event without leaving the state.
// OnEntry and OnExit handlers are not called.
func (b *StateConfigBuilder) InternalTransition(event Event, action Action) *StateConfigBuilder {
	b.config.transitions[event] = &Transition{
		trigger: event,
		to:      b.config.state,
		actions: []Action{action},
		kind:    TransitionInternal,
	}
	return b
}

// OnEntry adds an action run when entering this state
func (b *StateConfigBuilder) OnEntry(action Action) *StateConfigBuilder {
	b.config.onEntry = append(b.config.onEntry, action)
	return b
}

// OnExit adds an action run when leaving this state
func (b *StateConfigBuilder) OnExit(action Action) *StateConfigBuilder {
	b.config.onExit = append(b.config.onExit, action)
	return b
}
