// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/task-tracker/internal/task"
)

// ErrNotTTY is returned by RunTUI when stdout is not a terminal.
var ErrNotTTY = errors.New("tui requires a TTY")

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	save   func() error
	logger *log.Logger
	title  string
}

// WithSaveFunc sets the function the "w" key calls to persist the collection.
func WithSaveFunc(fn func() error) TUIOption {
	return func(c *tuiConfig) {
		c.save = fn
	}
}

// WithLogger sets the logger used for TUI actions.
func WithLogger(logger *log.Logger) TUIOption {
	return func(c *tuiConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTitle sets the header line, usually the task file path.
func WithTitle(title string) TUIOption {
	return func(c *tuiConfig) {
		c.title = title
	}
}

func newTUIConfig(opts []TUIOption) *tuiConfig {
	c := &tuiConfig{
		logger: log.New(io.Discard),
		title:  "Tasks",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunTUI runs the interactive view over tasks until the user quits or ctx is
// cancelled. Changes are applied to tasks in place.
func RunTUI(ctx context.Context, tasks *task.Collection, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return ErrNotTTY
	}
	model := newTUIModel(tasks, newTUIConfig(opts))
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAddName
	modeAddDescription
	modeEditName
	modeEditDescription
	modeConfirmDelete
)

type tuiModel struct {
	tasks *task.Collection
	cfg   *tuiConfig

	list  list.Model
	input textinput.Model
	mode  inputMode

	filter   task.Status
	showHelp bool
	dirty    bool

	// Pending edit state.
	targetID    uint64
	pendingName string

	message string
	err     error

	width  int
	height int
}

// taskItem adapts a task to list.Item.
type taskItem struct {
	task task.Task
}

func (i taskItem) Title() string {
	return fmt.Sprintf("[%s] #%d %s", StatusIcon(i.task.Status), i.task.ID, i.task.Name)
}

func (i taskItem) Description() string {
	if i.task.Description == "" {
		return i.task.Status.Label()
	}
	return i.task.Status.Label() + " · " + i.task.Description
}

func (i taskItem) FilterValue() string { return i.task.Name }

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD166"))
	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06D6A0"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	helpStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

func newTUIModel(tasks *task.Collection, cfg *tuiConfig) *tuiModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("task", "tasks")

	in := textinput.New()
	in.CharLimit = 256
	in.Width = 60

	m := &tuiModel{
		tasks: tasks,
		cfg:   cfg,
		list:  l,
		input: in,
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(max(0, msg.Width-2), max(0, msg.Height-8))
		m.input.Width = max(10, msg.Width-20)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeBrowse:
			return m.updateBrowse(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateInput(msg)
		}
	}

	var cmd tea.Cmd
	if m.mode == modeBrowse {
		m.list, cmd = m.list.Update(msg)
	} else if m.mode != modeConfirmDelete {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *tuiModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.showHelp {
		switch key {
		case "q":
			return m, tea.Quit
		case "?", "h", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "?", "h":
		m.showHelp = true
		return m, nil
	case "esc":
		m.clearStatus()
		return m, nil
	case "1", "2", "3", "4":
		m.setFilter(task.Statuses()[key[0]-'1'])
		return m, nil
	case "0":
		m.setFilter("")
		return m, nil
	case "a":
		m.targetID = 0
		m.pendingName = ""
		return m, m.startInput(modeAddName, "")
	case "e":
		t, ok := m.selected()
		if !ok {
			m.setError(errors.New("no task selected"))
			return m, nil
		}
		m.targetID = t.ID
		return m, m.startInput(modeEditName, t.Name)
	case "d":
		t, ok := m.selected()
		if !ok {
			m.setError(errors.New("no task selected"))
			return m, nil
		}
		m.targetID = t.ID
		m.mode = modeConfirmDelete
		m.clearStatus()
		return m, nil
	case "t":
		m.markSelected(task.StatusTodo)
		return m, nil
	case "s":
		m.markSelected(task.StatusSkip)
		return m, nil
	case "p":
		m.markSelected(task.StatusInProgress)
		return m, nil
	case "x":
		m.markSelected(task.StatusDone)
		return m, nil
	case "w":
		m.save()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *tuiModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		removed, err := m.tasks.Delete(m.targetID)
		m.mode = modeBrowse
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.dirty = true
		m.cfg.logger.Debug("deleted task", "task_id", removed.ID)
		m.refresh()
		m.setMessage(fmt.Sprintf("Deleted task #%d", removed.ID))
	case "n", "N", "esc":
		m.mode = modeBrowse
		m.setMessage("Delete cancelled")
	}
	return m, nil
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopInput()
		m.setMessage("Cancelled")
		return m, nil
	case "enter":
		return m, m.submitInput(strings.TrimSpace(m.input.Value()))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput advances the add/edit flow with the entered value.
func (m *tuiModel) submitInput(value string) tea.Cmd {
	switch m.mode {
	case modeAddName:
		if value == "" {
			m.setError(errors.New("name must not be empty"))
			return nil
		}
		m.pendingName = value
		return m.startInput(modeAddDescription, "")
	case modeAddDescription:
		t := m.tasks.Add(m.pendingName, value)
		m.dirty = true
		m.stopInput()
		m.cfg.logger.Debug("added task", "task_id", t.ID)
		m.refresh()
		m.selectID(t.ID)
		m.setMessage(fmt.Sprintf("Added task #%d", t.ID))
	case modeEditName:
		m.pendingName = value
		t, err := m.tasks.Get(m.targetID)
		if err != nil {
			m.stopInput()
			m.setError(err)
			return nil
		}
		return m.startInput(modeEditDescription, t.Description)
	case modeEditDescription:
		m.stopInput()
		current, err := m.tasks.Get(m.targetID)
		if err != nil {
			m.setError(err)
			return nil
		}
		var name, description *string
		if m.pendingName != "" && m.pendingName != current.Name {
			name = &m.pendingName
		}
		if value != "" && value != current.Description {
			description = &value
		}
		if name == nil && description == nil {
			m.setMessage("No changes")
			return nil
		}
		t, err := m.tasks.Update(m.targetID, name, description)
		if err != nil {
			m.setError(err)
			return nil
		}
		m.dirty = true
		m.cfg.logger.Debug("updated task", "task_id", t.ID)
		m.refresh()
		m.selectID(t.ID)
		m.setMessage(fmt.Sprintf("Updated task #%d", t.ID))
	}
	return nil
}

func (m *tuiModel) startInput(mode inputMode, value string) tea.Cmd {
	m.mode = mode
	m.clearStatus()
	switch mode {
	case modeAddName, modeEditName:
		m.input.Placeholder = "name"
	default:
		m.input.Placeholder = "description"
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *tuiModel) stopInput() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.SetValue("")
}

func (m *tuiModel) markSelected(status task.Status) {
	t, ok := m.selected()
	if !ok {
		m.setError(errors.New("no task selected"))
		return
	}
	updated, err := m.tasks.Mark(t.ID, status)
	if err != nil {
		m.setError(err)
		return
	}
	m.dirty = true
	m.cfg.logger.Debug("marked task", "task_id", updated.ID, "status", updated.Status)
	m.refresh()
	m.selectID(updated.ID)
	m.setMessage(fmt.Sprintf("Marked task #%d as %s", updated.ID, status.Label()))
}

func (m *tuiModel) save() {
	if m.cfg.save == nil {
		m.setError(errors.New("saving is not available"))
		return
	}
	if err := m.cfg.save(); err != nil {
		m.cfg.logger.Error("save failed", "err", err)
		m.setError(err)
		return
	}
	m.dirty = false
	m.setMessage("Saved")
}

func (m *tuiModel) setFilter(status task.Status) {
	m.filter = status
	m.refresh()
	m.list.Select(0)
}

// refresh rebuilds the list items from the collection, keeping the cursor in range.
func (m *tuiModel) refresh() {
	tasks := m.tasks.ListByStatus(m.filter)
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = taskItem{task: t}
	}
	index := m.list.Index()
	m.list.SetItems(items)
	if index >= len(items) {
		index = len(items) - 1
	}
	if index >= 0 {
		m.list.Select(index)
	}
}

func (m *tuiModel) selectID(id uint64) {
	for i, item := range m.list.Items() {
		if ti, ok := item.(taskItem); ok && ti.task.ID == id {
			m.list.Select(i)
			return
		}
	}
}

func (m *tuiModel) selected() (task.Task, bool) {
	item, ok := m.list.SelectedItem().(taskItem)
	if !ok {
		return task.Task{}, false
	}
	return item.task, true
}

func (m *tuiModel) setMessage(msg string) {
	m.message = msg
	m.err = nil
}

func (m *tuiModel) setError(err error) {
	m.err = err
	m.message = ""
}

func (m *tuiModel) clearStatus() {
	m.message = ""
	m.err = nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	title := m.cfg.title
	if m.dirty {
		title += " *"
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(countStyle.Render(formatCounts(m.tasks.Counts(), m.filter)) + "\n\n")

	if m.showHelp {
		b.WriteString(helpStyle.Render(helpText()) + "\n")
		b.WriteString(footerStyle.Render("Press ? or esc to close help | q to quit") + "\n")
		return b.String()
	}

	if len(m.list.Items()) == 0 {
		if m.filter != "" {
			b.WriteString(fmt.Sprintf("  No %s tasks.\n\n", strings.ToLower(m.filter.Label())))
		} else {
			b.WriteString("  No tasks yet. Press a to add one.\n\n")
		}
	} else {
		b.WriteString(m.list.View() + "\n")
	}

	switch m.mode {
	case modeAddName:
		b.WriteString(promptStyle.Render("New task name:") + " " + m.input.View() + "\n")
	case modeAddDescription:
		b.WriteString(promptStyle.Render(fmt.Sprintf("Description for %q:", m.pendingName)) + " " + m.input.View() + "\n")
	case modeEditName:
		b.WriteString(promptStyle.Render(fmt.Sprintf("Rename #%d (empty keeps name):", m.targetID)) + " " + m.input.View() + "\n")
	case modeEditDescription:
		b.WriteString(promptStyle.Render(fmt.Sprintf("Describe #%d (empty keeps description):", m.targetID)) + " " + m.input.View() + "\n")
	case modeConfirmDelete:
		b.WriteString(promptStyle.Render(fmt.Sprintf("Delete task #%d? (y/n)", m.targetID)) + "\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	} else if m.message != "" {
		b.WriteString(messageStyle.Render(m.message) + "\n")
	}

	b.WriteString(footerStyle.Render("a add | e edit | d delete | t/s/p/x mark | 1-4 filter | w save | ? help | q quit") + "\n")
	return b.String()
}

func formatCounts(counts map[task.Status]int, filter task.Status) string {
	parts := make([]string, 0, len(counts)+1)
	for _, status := range task.Statuses() {
		parts = append(parts, fmt.Sprintf("%s: %d", status.Label(), counts[status]))
	}
	line := strings.Join(parts, "  ")
	if filter != "" {
		line += fmt.Sprintf("  | Filter: %s (0 to clear)", filter.Label())
	}
	return line
}

func helpText() string {
	var b strings.Builder
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up/down, j/k  Move selection\n")
	b.WriteString("  a             Add a task\n")
	b.WriteString("  e             Edit name and description\n")
	b.WriteString("  d             Delete the selected task\n")
	b.WriteString("  t             Mark todo\n")
	b.WriteString("  s             Mark skip\n")
	b.WriteString("  p             Mark in progress\n")
	b.WriteString("  x             Mark done\n")
	b.WriteString("  1-4           Filter by todo, skip, in progress, done\n")
	b.WriteString("  0             Clear filter\n")
	b.WriteString("  w             Save now\n")
	b.WriteString("  esc           Cancel input or dismiss message\n")
	b.WriteString("  h, ?          Toggle this help screen\n")
	b.WriteString("  q, ctrl+c     Quit")
	return b.String()
}

// StatusIcon returns the one-character marker shown for a status.
func StatusIcon(s task.Status) string {
	switch s {
	case task.StatusSkip:
		return "-"
	case task.StatusInProgress:
		return ">"
	case task.StatusDone:
		return "x"
	default:
		return " "
	}
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
