// Package tui renders the todo client in the terminal with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fluxorio/todolist/internal/richtext"
	"github.com/fluxorio/todolist/internal/task"
	"github.com/fluxorio/todolist/internal/ui"
	"github.com/fluxorio/todolist/pkg/core/failfast"
)

// DateLayout renders createdAt in the list
const DateLayout = "January 2, 2006 03:04 PM"

// API is the subset of the HTTP client the terminal UI calls
type API interface {
	List() ([]task.Task, error)
	Create(d task.Draft) (*task.Task, error)
	Update(id string, d task.Draft) (*task.Task, error)
	Delete(id string) error
}

// toolbar maps F1, F2, ... to the formatting commands in toolbar order
var toolbar = func() map[string]richtext.Command {
	keys := make(map[string]richtext.Command, len(richtext.Commands))
	for i, c := range richtext.Commands {
		keys[fmt.Sprintf("f%d", i+1)] = c
	}
	return keys
}()

type resultMsg struct {
	event ui.Event
}

// Model is the bubbletea model over ui.Model
type Model struct {
	state  *ui.Model
	api    API
	cursor int
	width  int
	status string
}

// New creates the terminal model
func New(state *ui.Model, api API) *Model {
	failfast.NotNil(state, "state")
	failfast.NotNil(api, "api")
	return &Model{state: state, api: api, width: 80}
}

// Run starts the program and blocks until the user quits
func Run(ctx context.Context, m *Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}

// State exposes the underlying client state
func (m *Model) State() *ui.Model { return m.state }

// Selected returns the id under the cursor
func (m *Model) Selected() (string, bool) {
	tasks := m.state.Tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return "", false
	}
	return tasks[m.cursor].ID, true
}

func (m *Model) Init() tea.Cmd {
	return m.commands(m.state.Init())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case resultMsg:
		// failures only reach the diagnostic log
		return m, m.dispatch(msg.event)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.state.Screen() == ui.ScreenForm {
			return m, m.formKey(msg)
		}
		return m.listKey(msg)
	}
	return m, nil
}

func (m *Model) listKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Tasks())-1 {
			m.cursor++
		}
	case "n":
		m.status = ""
		return m, m.dispatch(ui.OpenCreate{})
	case "e", "enter":
		if id, ok := m.Selected(); ok {
			m.status = ""
			return m, m.dispatch(ui.OpenEdit{ID: id})
		}
	case "d":
		if id, ok := m.Selected(); ok {
			return m, m.dispatch(ui.Delete{ID: id})
		}
	case "r":
		return m, m.dispatch(ui.Reload{})
	}
	return m, nil
}

func (m *Model) formKey(msg tea.KeyMsg) tea.Cmd {
	form := m.state.Form()
	key := msg.String()

	if cmd, ok := toolbar[key]; ok {
		if err := form.Description.Apply(cmd); err != nil {
			m.status = err.Error()
		}
		return nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.status = ""
		return m.dispatch(ui.Cancel{})
	case tea.KeyCtrlS:
		// an incomplete form stays open without a message
		return m.dispatch(ui.Submit{})
	case tea.KeyTab, tea.KeyShiftTab:
		if form.Focus == ui.FieldTitle {
			form.Focus = ui.FieldDescription
		} else {
			form.Focus = ui.FieldTitle
		}
	case tea.KeyEnter:
		if form.Focus == ui.FieldTitle {
			form.Focus = ui.FieldDescription
		} else {
			form.Description.Break()
		}
	case tea.KeyBackspace:
		if form.Focus == ui.FieldTitle {
			if r := []rune(form.Title); len(r) > 0 {
				form.Title = string(r[:len(r)-1])
			}
		} else {
			form.Description.Backspace()
		}
	case tea.KeyRunes, tea.KeySpace:
		text := string(msg.Runes)
		if msg.Type == tea.KeySpace {
			text = " "
		}
		if form.Focus == ui.FieldTitle {
			form.Title += text
		} else {
			form.Description.Insert(text)
		}
	}
	return nil
}

func (m *Model) dispatch(ev ui.Event) tea.Cmd {
	cmd := m.commands(m.state.Dispatch(ev))
	if n := len(m.state.Tasks()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	return cmd
}

func (m *Model) commands(reqs []ui.Request) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(reqs))
	for _, r := range reqs {
		cmds = append(cmds, m.perform(r))
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// perform runs one request off the update loop and reports its outcome
func (m *Model) perform(r ui.Request) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		switch r.Op {
		case ui.OpList:
			tasks, err := api.List()
			if err != nil {
				return resultMsg{ui.Failed{Op: r.Op, Err: err}}
			}
			return resultMsg{ui.Listed{Tasks: tasks}}
		case ui.OpCreate:
			created, err := api.Create(r.Draft)
			if err != nil {
				return resultMsg{ui.Failed{Op: r.Op, Err: err}}
			}
			return resultMsg{ui.Created{Task: created}}
		case ui.OpUpdate:
			updated, err := api.Update(r.ID, r.Draft)
			if err != nil {
				return resultMsg{ui.Failed{Op: r.Op, ID: r.ID, Err: err}}
			}
			return resultMsg{ui.Updated{Task: updated}}
		case ui.OpDelete:
			if err := api.Delete(r.ID); err != nil {
				return resultMsg{ui.Failed{Op: r.Op, ID: r.ID, Err: err}}
			}
			return resultMsg{ui.Deleted{ID: r.ID}}
		}
		return resultMsg{ui.Failed{Op: r.Op, ID: r.ID, Err: fmt.Errorf("unknown operation %q", r.Op)}}
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	focusStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63"))
	blurStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

func (m *Model) View() string {
	var b strings.Builder
	if m.state.Screen() == ui.ScreenForm {
		m.viewForm(&b)
	} else {
		m.viewList(&b)
	}
	if m.status != "" {
		b.WriteString("\n" + errorStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m *Model) viewList(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Todo List") + "\n\n")

	tasks := m.state.Tasks()
	if len(tasks) == 0 {
		b.WriteString(dimStyle.Render("No tasks yet. Press n to add one.") + "\n")
	}
	for i, t := range tasks {
		line := t.Title
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
			line = selectedStyle.Render(line)
		}
		b.WriteString(prefix + line + "\n")
		if first, _, _ := strings.Cut(richtext.PlainText(t.Description), "\n"); first != "" {
			b.WriteString("    " + first + "\n")
		}
		b.WriteString("    " + dimStyle.Render(t.CreatedAt.Local().Format(DateLayout)) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("↑/↓ select • n new • e edit • d delete • r reload • q quit") + "\n")
}

func (m *Model) viewForm(b *strings.Builder) {
	form := m.state.Form()
	heading := "New Task"
	if form.Mode == ui.ModeEdit {
		heading = "Edit Task"
	}
	b.WriteString(titleStyle.Render(heading) + "\n\n")

	width := max(m.width-4, 20)
	titleBox, descBox := blurStyle, blurStyle
	if form.Focus == ui.FieldTitle {
		titleBox = focusStyle
	} else {
		descBox = focusStyle
	}

	b.WriteString("Title\n")
	b.WriteString(titleBox.Width(width).Render(form.Title) + "\n")
	b.WriteString("Description " + dimStyle.Render(styleLabel(form.Description.Style())) + "\n")
	b.WriteString(descBox.Width(width).Render(renderBlocks(form.Description.Blocks(), width)) + "\n")

	b.WriteString("\n" + dimStyle.Render("tab field • F1 bold • F2 italic • F3 underline • F4 list • F5-F7 align • ctrl+s save • esc cancel") + "\n")
}

func styleLabel(s richtext.Style) string {
	var parts []string
	if s.Has(richtext.StyleBold) {
		parts = append(parts, "bold")
	}
	if s.Has(richtext.StyleItalic) {
		parts = append(parts, "italic")
	}
	if s.Has(richtext.StyleUnderline) {
		parts = append(parts, "underline")
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// renderBlocks draws the editor document with terminal styling
func renderBlocks(blocks []richtext.Block, width int) string {
	lines := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		var sb strings.Builder
		if blk.List {
			sb.WriteString("• ")
		}
		for _, r := range blk.Runs {
			st := lipgloss.NewStyle().
				Bold(r.Style.Has(richtext.StyleBold)).
				Italic(r.Style.Has(richtext.StyleItalic)).
				Underline(r.Style.Has(richtext.StyleUnderline))
			sb.WriteString(st.Render(r.Text))
		}

		line := lipgloss.NewStyle().Width(width)
		switch blk.Align {
		case richtext.AlignCenter:
			line = line.Align(lipgloss.Center)
		case richtext.AlignRight:
			line = line.Align(lipgloss.Right)
		}
		lines = append(lines, line.Render(sb.String()))
	}
	return strings.Join(lines, "\n")
}
