package ui

import "github.com/fluxorio/todolist/internal/task"

// Op names a store operation issued by the UI
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Request is a network call the caller must perform
type Request struct {
	Op    Op
	ID    string
	Draft task.Draft
}

// Event is a user action or a request outcome
type Event interface {
	event()
}

// User actions
type (
	OpenCreate struct{}
	OpenEdit   struct{ ID string }
	Submit     struct{}
	Cancel     struct{}
	Delete     struct{ ID string }
	Reload     struct{}
)

// Request outcomes
type (
	Listed  struct{ Tasks []task.Task }
	Created struct{ Task *task.Task }
	// Updated carries nil when the service no longer knows the id
	Updated struct{ Task *task.Task }
	Deleted struct{ ID string }
	Failed  struct {
		Op  Op
		ID  string
		Err error
	}
)

func (OpenCreate) event() {}
func (OpenEdit) event()   {}
func (Submit) event()     {}
func (Cancel) event()     {}
func (Delete) event()     {}
func (Reload) event()     {}
func (Listed) event()     {}
func (Created) event()    {}
func (Updated) event()    {}
func (Deleted) event()    {}
func (Failed) event()     {}
