// Package tui is the interactive Bubble Tea view of the remote to-do list.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada-client/internal/app"
	"github.com/Makepad-fr/tada-client/internal/model"
)

// Options tune the interactive view.
type Options struct {
	Theme   string
	Logger  *log.Logger
	Timeout time.Duration // per request; zero means no deadline
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, b app.Backend, opts Options) error {
	p := tea.NewProgram(New(b, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// listItem adapts a Todo to bubbles/list.Item
type listItem struct {
	todo model.Todo
}

func (i listItem) Title() string {
	box := boxUnchecked
	if i.todo.Completed {
		box = boxChecked
	}
	return fmt.Sprintf("%s %s", box, i.todo.Title)
}

func (i listItem) Description() string { return i.todo.Description }
func (i listItem) FilterValue() string { return i.todo.Title + " " + i.todo.Description }

// itemDelegate renders a todo on two lines: title, then description and timestamps.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 2 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := it.todo

	box := mutedStyle.Render(boxUnchecked)
	title := t.Title
	if t.Completed {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render(">") + " "
	}

	var meta []string
	if t.Description != "" {
		meta = append(meta, t.Description)
	}
	if t.UpdatedAt != "" {
		meta = append(meta, "updated "+t.UpdatedAt)
	} else if t.CreatedAt != "" {
		meta = append(meta, "created "+t.CreatedAt)
	}

	fmt.Fprintf(w, "%s%s %s %s\n", prefix, box, mutedStyle.Render(fmt.Sprintf("#%d", t.ID)), title)
	fmt.Fprint(w, "    "+mutedStyle.Render(strings.Join(meta, " · ")))
}

type keyMap struct {
	Add, Edit, Delete, Toggle, Undo, View, Refresh, Quit key.Binding
	ViewAll, ViewDone, ViewOpen                          key.Binding
	Submit, Cancel, NextField, PrevField                 key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Undo:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo delete")),
		View:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "cycle view")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		ViewAll:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		ViewDone:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "completed")),
		ViewOpen:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "uncompleted")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
	}
}

// action is the write a doneMsg reports on.
type action int

const (
	actCreate action = iota
	actUpdate
	actToggle
	actDelete
	actRestore
)

var actionVerbs = [...]string{"added", "updated", "toggled", "removed", "restored"}

func (a action) String() string { return actionVerbs[a] }

// messages produced by commands
type (
	listMsg struct {
		todos []model.Todo
		err   error
	}
	doneMsg struct {
		action action
		err    error
		// editID is the form's EditID at submit time.
		editID int
		// deleted carries the removed todo so it can be restored with undo.
		deleted *model.Input
	}
)

const (
	fieldTitle = iota
	fieldDescription
)

// Model is the Bubble Tea model. State is only touched from Update, so the
// last response processed is what the user sees.
type Model struct {
	state   *app.State
	backend app.Backend
	logger  *log.Logger
	timeout time.Duration
	keys    keyMap

	list list.Model

	// Inline add/edit form
	form    bool
	inputs  [2]textinput.Model
	focus   int
	formErr string

	loading   bool
	status    string
	statusErr bool

	// Undo support (single-level)
	undo *model.Input

	width, height int
}

// New builds the model. Call Init (or Run) to trigger the first fetch.
func New(b app.Backend, opts Options) Model {
	applyTheme(opts.Theme)
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	keys := newKeyMap()
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.DisableQuitKeybindings()
	extra := func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete, keys.Toggle, keys.View, keys.Refresh, keys.Undo, keys.Quit}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	m := Model{
		state:   &app.State{},
		backend: b,
		logger:  logger,
		timeout: opts.Timeout,
		keys:    keys,
		list:    l,
		loading: true,
		width:   80,
		height:  24,
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 200
		m.inputs[i] = ti
	}
	m.inputs[fieldTitle].Placeholder = "Title (required)"
	m.inputs[fieldDescription].Placeholder = "Description"
	m.inputs[fieldDescription].CharLimit = 1000
	m.refreshTitle()
	m.resize()
	return m
}

// State exposes the view state, mostly for tests.
func (m Model) State() *app.State { return m.state }

func (m Model) Init() tea.Cmd { return m.fetch() }

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(context.Background(), m.timeout)
	}
	return context.WithCancel(context.Background())
}

func (m Model) fetch() tea.Cmd {
	b := m.backend
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		todos, err := b.List(ctx)
		return listMsg{todos: todos, err: err}
	}
}

func (m Model) mutate(done doneMsg, fn func(ctx context.Context, b app.Backend) error) tea.Cmd {
	b := m.backend
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		done.err = fn(ctx, b)
		return done
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m *Model) refreshTitle() {
	done, pending := model.Stats(m.state.Todos)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d/%d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), len(m.state.Todos), model.MaxTodos,
	)
}

func (m *Model) refreshItems() tea.Cmd {
	shown := m.state.Displayed()
	items := make([]list.Item, 0, len(shown))
	for _, t := range shown {
		items = append(items, listItem{todo: t})
	}
	m.refreshTitle()
	return m.list.SetItems(items)
}

func (m *Model) resize() {
	reserved := 6 // border + view tabs + status line
	if m.form {
		reserved += 6
	}
	h := m.height - reserved
	if h < 4 {
		h = 4
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

func (m *Model) openForm() tea.Cmd {
	m.form = true
	m.formErr = ""
	m.focus = fieldTitle
	m.inputs[fieldTitle].SetValue(m.state.Title)
	m.inputs[fieldTitle].CursorEnd()
	m.inputs[fieldDescription].SetValue(m.state.Description)
	m.inputs[fieldDescription].CursorEnd()
	m.inputs[fieldDescription].Blur()
	m.resize()
	return m.inputs[fieldTitle].Focus()
}

func (m *Model) closeForm() {
	m.form = false
	m.formErr = ""
	for i := range m.inputs {
		m.inputs[i].Blur()
		m.inputs[i].SetValue("")
	}
	m.resize()
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	return m.inputs[m.focus].Focus()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case listMsg:
		m.loading = false
		if msg.err != nil {
			m.logger.Error("Error fetching todos", "err", msg.err)
			m.state.ApplyListError()
			m.setStatus("Error fetching todos: "+msg.err.Error(), true)
			return m, m.refreshItems()
		}
		m.state.ApplyList(msg.todos)
		return m, m.refreshItems()

	case doneMsg:
		if msg.err != nil {
			m.logger.Error("Request failed", "action", msg.action, "err", msg.err)
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		// a form reopened since the submit owns the state now
		submitted := msg.action == actCreate || msg.action == actUpdate
		if submitted && !m.form && m.state.EditID == msg.editID {
			m.state.FinishSubmit()
		}
		if msg.deleted != nil {
			m.undo = msg.deleted
		}
		m.setStatus(msg.action.String(), false)
		m.loading = true
		return m, m.fetch()
	}

	if m.form {
		return m.updateForm(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if next, cmd, handled := m.handleKey(km); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.fetch(), true

	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		in, err := m.state.ToggleInput(t.ID)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil, true
		}
		return m, m.mutate(doneMsg{action: actToggle}, func(ctx context.Context, b app.Backend) error {
			return b.Update(ctx, t.ID, in)
		}), true

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		in := t.Input()
		return m, m.mutate(doneMsg{action: actDelete, deleted: &in}, func(ctx context.Context, b app.Backend) error {
			if err := b.Delete(ctx, t.ID); err != nil {
				return fmt.Errorf("delete todo #%d: %w", t.ID, err)
			}
			return nil
		}), true

	case key.Matches(msg, m.keys.Undo):
		if m.undo == nil {
			return m, nil, true
		}
		if m.state.Full() {
			m.setStatus(app.ErrLimitReached.Error(), true)
			return m, nil, true
		}
		in := *m.undo
		m.undo = nil
		return m, m.mutate(doneMsg{action: actRestore}, func(ctx context.Context, b app.Backend) error {
			_, err := b.Create(ctx, in)
			return err
		}), true

	case key.Matches(msg, m.keys.Add):
		if m.state.Editing() {
			m.state.CancelEdit()
		}
		return m, m.openForm(), true

	case key.Matches(msg, m.keys.Edit):
		t, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		m.state.BeginEdit(t)
		return m, m.openForm(), true

	case key.Matches(msg, m.keys.View):
		m.state.SetView(m.state.View.Next())
		return m, m.refreshItems(), true
	case key.Matches(msg, m.keys.ViewAll):
		m.state.SetView(model.All)
		return m, m.refreshItems(), true
	case key.Matches(msg, m.keys.ViewDone):
		m.state.SetView(model.Completed)
		return m, m.refreshItems(), true
	case key.Matches(msg, m.keys.ViewOpen):
		m.state.SetView(model.Uncompleted)
		return m, m.refreshItems(), true
	}
	return m, nil, false
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Cancel):
			m.state.CancelEdit()
			m.closeForm()
			return m, nil
		case key.Matches(km, m.keys.NextField):
			return m, m.setFocus(m.focus + 1)
		case key.Matches(km, m.keys.PrevField):
			return m, m.setFocus(m.focus - 1)
		case key.Matches(km, m.keys.Submit):
			m.state.Title = m.inputs[fieldTitle].Value()
			m.state.Description = m.inputs[fieldDescription].Value()
			sub, err := m.state.PrepareSubmit()
			if err != nil {
				m.logger.Warn("Submit rejected", "err", err)
				m.formErr = err.Error()
				return m, nil
			}
			done := doneMsg{action: actUpdate, editID: sub.ID}
			if sub.Create {
				done.action = actCreate
			}
			m.closeForm()
			return m, m.mutate(done, func(ctx context.Context, b app.Backend) error {
				return app.Send(ctx, b, sub)
			})
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) viewTabs() string {
	var parts []string
	for _, v := range []model.View{model.All, model.Completed, model.Uncompleted} {
		label := fmt.Sprintf("%d %s", int(v)+1, v)
		if v == m.state.View {
			parts = append(parts, viewActiveStyle.Render(label))
		} else {
			parts = append(parts, mutedStyle.Render(label))
		}
	}
	return strings.Join(parts, mutedStyle.Render("  ·  "))
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewTabs())
	if m.state.Full() {
		b.WriteString("  " + pendingStyle.Render("limit reached"))
	}
	b.WriteString("\n")

	switch {
	case m.loading && !m.state.Available():
		b.WriteString(mutedStyle.Render("loading…"))
	case !m.state.Available():
		b.WriteString(errorStyle.Render("todos unavailable") + mutedStyle.Render(" (press r to retry)"))
	default:
		done, _ := model.Stats(m.state.Todos)
		b.WriteString(mutedStyle.Render(progressBar(done, len(m.state.Todos), 28)) + "\n")
		b.WriteString(m.list.View())
	}

	if m.form {
		title := "Add todo"
		if m.state.Editing() {
			title = fmt.Sprintf("Edit todo #%d", m.state.EditID)
		}
		if m.formErr != "" {
			title += ": " + errorStyle.Render(m.formErr)
		}
		inner := lipgloss.JoinVertical(lipgloss.Left,
			title,
			m.inputs[fieldTitle].View(),
			m.inputs[fieldDescription].View(),
			helpStyle.Render("enter save · tab switch field · esc cancel"),
		)
		b.WriteString("\n" + borderStyle.Render(inner))
	}

	if m.status != "" {
		st := successStyle.Render("✔ " + m.status)
		if m.statusErr {
			st = errorStyle.Render("✖ " + m.status)
		}
		b.WriteString("\n" + st)
	}
	return borderStyle.Render(b.String())
}
