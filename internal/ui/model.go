// Package ui holds the client state: the task list, the form, and the
// List/Form screen machine. It performs no I/O; dispatching an event returns
// the requests the caller must issue, and their outcomes come back as events.
package ui

import (
	"context"
	"errors"

	"github.com/fluxorio/todolist/internal/richtext"
	"github.com/fluxorio/todolist/internal/task"
	"github.com/fluxorio/todolist/pkg/core"
	"github.com/fluxorio/todolist/pkg/fsm"
)

// Screens
const (
	ScreenList fsm.State = "list"
	ScreenForm fsm.State = "form"
)

// Screen events
const (
	evOpenCreate fsm.Event = "open_create"
	evOpenEdit   fsm.Event = "open_edit"
	evSubmit     fsm.Event = "submit"
	evCancel     fsm.Event = "cancel"
	evDelete     fsm.Event = "delete"
	evReload     fsm.Event = "reload"
)

// Mode tells whether the form creates a task or edits one
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Field is the focused form input
type Field int

const (
	FieldTitle Field = iota
	FieldDescription
)

// Form is the create/edit form state
type Form struct {
	Mode   Mode
	EditID string
	Title  string
	Focus  Field

	Description *richtext.Document
}

func (f *Form) clear() {
	f.Mode = ModeCreate
	f.EditID = ""
	f.Title = ""
	f.Focus = FieldTitle
	f.Description.Reset()
}

// Valid reports whether the form may be submitted: a non-empty title and
// a non-empty description.
func (f *Form) Valid() bool {
	return f.Title != "" && f.Description.Markup() != ""
}

// Model is the client state. It is not safe for concurrent use; the
// terminal front-end drives it from its single update loop.
type Model struct {
	machine *fsm.StateMachine
	tasks   []task.Task
	form    Form
	logger  core.Logger

	pending []Request
}

// New creates a model on the List screen with an empty list
func New(logger core.Logger) *Model {
	if logger == nil {
		logger = core.NewDefaultLogger()
	}
	m := &Model{
		tasks:  []task.Task{},
		form:   Form{Description: richtext.New()},
		logger: logger,
	}
	m.machine = m.buildMachine()
	return m
}

func (m *Model) buildMachine() *fsm.StateMachine {
	sm := fsm.New("todo-ui", ScreenList)

	sm.Configure(ScreenList).
		PermitWithAction(evOpenCreate, ScreenForm, m.openCreate).
		PermitIf(evOpenEdit, ScreenForm, m.knownID, m.openEdit).
		InternalTransition(evDelete, m.requestDelete).
		InternalTransition(evReload, m.requestList)

	sm.Configure(ScreenForm).
		PermitIf(evSubmit, ScreenList, m.formValid, m.submit).
		PermitWithAction(evCancel, ScreenList, m.cancel)

	return sm
}

// Init returns the initial load request
func (m *Model) Init() []Request {
	return []Request{{Op: OpList}}
}

// Screen returns the visible screen
func (m *Model) Screen() fsm.State { return m.machine.CurrentState() }

// Tasks returns the local list
func (m *Model) Tasks() []task.Task { return m.tasks }

// Form returns the form for input handling
func (m *Model) Form() *Form { return &m.form }

// Task returns the local task with id
func (m *Model) Task(id string) (task.Task, bool) {
	if i := m.indexOf(id); i >= 0 {
		return m.tasks[i], true
	}
	return task.Task{}, false
}

// Dispatch applies ev and returns the requests to issue. Events that do not
// apply to the current screen are ignored.
func (m *Model) Dispatch(ev Event) []Request {
	m.pending = nil

	switch e := ev.(type) {
	case OpenCreate:
		m.fire(evOpenCreate, nil)
	case OpenEdit:
		m.fire(evOpenEdit, e.ID)
	case Submit:
		m.fire(evSubmit, nil)
	case Cancel:
		m.fire(evCancel, nil)
	case Delete:
		m.fire(evDelete, e.ID)
	case Reload:
		m.fire(evReload, nil)

	case Listed:
		m.tasks = append([]task.Task{}, e.Tasks...)
	case Created:
		if e.Task != nil {
			m.tasks = append(m.tasks, *e.Task)
		}
	case Updated:
		if e.Task == nil {
			break
		}
		if i := m.indexOf(e.Task.ID); i >= 0 {
			m.tasks[i] = *e.Task
		}
	case Deleted:
		if i := m.indexOf(e.ID); i >= 0 {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
		}
	case Failed:
		if e.ID != "" {
			m.logger.Errorf("%s %s failed: %v", e.Op, e.ID, e.Err)
		} else {
			m.logger.Errorf("%s failed: %v", e.Op, e.Err)
		}
	}

	out := m.pending
	m.pending = nil
	return out
}

func (m *Model) fire(event fsm.Event, data any) {
	if _, err := m.machine.Fire(context.Background(), event, data); err != nil {
		if errors.Is(err, fsm.ErrNoTransition) || errors.Is(err, fsm.ErrGuardRejected) {
			m.logger.Debugf("ignored %s on %s screen", event, m.machine.CurrentState())
			return
		}
		m.logger.Errorf("%s: %v", event, err)
	}
}

func (m *Model) indexOf(id string) int {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) issue(r Request) { m.pending = append(m.pending, r) }

func (m *Model) openCreate(context.Context, fsm.TransitionContext) error {
	m.form.clear()
	return nil
}

func (m *Model) knownID(_ context.Context, tc fsm.TransitionContext) bool {
	id, _ := tc.Data.(string)
	return m.indexOf(id) >= 0
}

func (m *Model) openEdit(_ context.Context, tc fsm.TransitionContext) error {
	t, _ := m.Task(tc.Data.(string))
	m.form.clear()
	m.form.Mode = ModeEdit
	m.form.EditID = t.ID
	m.form.Title = t.Title
	m.form.Description.SetMarkup(t.Description)
	return nil
}

func (m *Model) formValid(context.Context, fsm.TransitionContext) bool {
	return m.form.Valid()
}

func (m *Model) submit(context.Context, fsm.TransitionContext) error {
	draft := task.Draft{Title: m.form.Title, Description: m.form.Description.Markup()}
	if m.form.Mode == ModeEdit {
		m.issue(Request{Op: OpUpdate, ID: m.form.EditID, Draft: draft})
	} else {
		m.issue(Request{Op: OpCreate, Draft: draft})
	}
	m.form.clear()
	return nil
}

func (m *Model) cancel(context.Context, fsm.TransitionContext) error {
	m.form.clear()
	return nil
}

func (m *Model) requestDelete(_ context.Context, tc fsm.TransitionContext) error {
	m.issue(Request{Op: OpDelete, ID: tc.Data.(string)})
	return nil
}

func (m *Model) requestList(context.Context, fsm.TransitionContext) error {
	m.issue(Request{Op: OpList})
	return nil
}
