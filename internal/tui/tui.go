// Package tui is the interactive todo list. Every action is a tea.Cmd that
// calls the API; Update applies the result to a listview.State, so actions
// never block each other and land in completion order.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/listview"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item.
type listItem struct {
	item model.Item
}

func (i listItem) Title() string       { return i.item.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.item.Text }

// itemDelegate renders one item per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.Current().Selected.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, ui.Checkbox(it.item.Completed), ui.ItemText(it.item.Text, it.item.Completed))
}

type inputMode int

const (
	browsing inputMode = iota
	adding
	renaming
)

// Result messages, one per API operation.
type (
	loadedMsg  struct{ res api.Result[[]model.Item] }
	createdMsg struct{ res api.Result[model.Item] }
	updatedMsg struct {
		id  string
		res api.Result[model.Item]
	}
	deletedMsg struct {
		id  string
		res api.Result[model.DeleteResponse]
	}
)

// Model is the bubbletea model for the list view.
type Model struct {
	ctx    context.Context
	client api.Client
	logger *log.Logger
	state  *listview.State

	list    list.Model
	spinner spinner.Model
	ti      textinput.Model

	mode     inputMode
	renameID string
	hint     string // inline validation message for the input bar

	width, height int
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger for action tracing.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithContext sets the context passed to API calls.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// New builds the model in its initial (not yet loaded) state.
func New(c api.Client, opts ...Option) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = ui.Header(0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Help
	l.Styles.PaginationStyle = ui.Current().Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")

	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
	l.AdditionalShortHelpKeys = func() []key.Binding { return bindings }
	l.AdditionalFullHelpKeys = func() []key.Binding { return bindings }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 200

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = ui.Current().Accent

	m := Model{
		ctx:     context.Background(),
		client:  c,
		logger:  log.New(io.Discard),
		state:   listview.New(),
		list:    l,
		spinner: sp,
		ti:      ti,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.resize(80, 24)
	return m
}

// State exposes the underlying list view state.
func (m Model) State() *listview.State { return m.state }

// Run starts the program on the alternate screen and blocks until quit.
func Run(ctx context.Context, c api.Client, opts ...Option) error {
	opts = append(opts, WithContext(ctx))
	p := tea.NewProgram(New(c, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// ---------------------------------------------------
// Commands
// ---------------------------------------------------

func (m Model) loadCmd() tea.Cmd {
	ctx, c := m.ctx, m.client
	return func() tea.Msg { return loadedMsg{res: c.List(ctx)} }
}

func (m Model) createCmd(req model.CreateRequest) tea.Cmd {
	ctx, c := m.ctx, m.client
	return func() tea.Msg { return createdMsg{res: c.Create(ctx, req)} }
}

func (m Model) updateCmd(id string, req model.UpdateRequest) tea.Cmd {
	ctx, c := m.ctx, m.client
	return func() tea.Msg { return updatedMsg{id: id, res: c.Update(ctx, id, req)} }
}

func (m Model) deleteCmd(id string) tea.Cmd {
	ctx, c := m.ctx, m.client
	return func() tea.Msg { return deletedMsg{id: id, res: c.Delete(ctx, id)} }
}

// ---------------------------------------------------
// Update
// ---------------------------------------------------

// Init triggers the initial load.
func (m Model) Init() tea.Cmd {
	m.state.BeginLoad()
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.state.ApplyLoad(msg.res)
		m.logResult("load", msg.res.Err())
		return m, m.syncList()

	case createdMsg:
		m.state.ApplyCreate(msg.res)
		m.logResult("create", msg.res.Err())
		if msg.res.IsOK() && m.mode == adding {
			m.closeInput()
		}
		return m, m.syncList()

	case updatedMsg:
		m.state.ApplyUpdate(msg.id, msg.res)
		m.logResult("update", msg.res.Err(), "id", msg.id)
		return m, m.syncList()

	case deletedMsg:
		m.state.ApplyDelete(msg.id, msg.res)
		m.logResult("delete", msg.res.Err(), "id", msg.id)
		return m, m.syncList()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case adding, renaming:
			return m.updateInput(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		if msg.String() == "esc" && m.list.FilterState() == list.FilterApplied {
			break
		}
		return m, tea.Quit
	case " ":
		if it, ok := m.selected(); ok {
			m.logger.Debug("toggle", "id", it.ID, "completed", !it.Completed)
			return m, m.updateCmd(it.ID, listview.ToggleRequest(it))
		}
		return m, nil
	case "d":
		if it, ok := m.selected(); ok {
			m.logger.Debug("delete", "id", it.ID)
			return m, m.deleteCmd(it.ID)
		}
		return m, nil
	case "a":
		m.mode = adding
		m.hint = ""
		m.ti.SetValue(m.state.Input)
		m.ti.CursorEnd()
		m.ti.Placeholder = "What needs to be done?"
		return m, m.ti.Focus()
	case "e":
		if it, ok := m.selected(); ok {
			m.mode = renaming
			m.renameID = it.ID
			m.hint = ""
			m.ti.SetValue(it.Text)
			m.ti.CursorEnd()
			m.ti.Placeholder = "New text..."
			return m, m.ti.Focus()
		}
		return m, nil
	case "r":
		m.state.BeginLoad()
		return m, tea.Batch(m.spinner.Tick, m.loadCmd())
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == adding {
			m.state.Input = m.ti.Value()
		}
		m.closeInput()
		return m, nil
	case "enter":
		if m.mode == adding {
			m.state.Input = m.ti.Value()
			req, ok := m.state.CreateRequest()
			if !ok {
				m.hint = "Text cannot be empty"
				return m, nil
			}
			m.hint = ""
			m.logger.Debug("create", "text", req.Text)
			// The bar stays open until the server answers.
			return m, m.createCmd(req)
		}
		req, ok := listview.RenameRequest(m.ti.Value())
		if !ok {
			m.hint = "Text cannot be empty"
			return m, nil
		}
		id := m.renameID
		m.closeInput()
		m.logger.Debug("rename", "id", id)
		return m, m.updateCmd(id, req)
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	if m.mode == adding {
		m.state.Input = m.ti.Value()
	}
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = browsing
	m.renameID = ""
	m.hint = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m Model) selected() (model.Item, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	// Prefer the cached copy; the list may lag one message behind.
	if it, found := m.state.Find(li.item.ID); found {
		return it, true
	}
	return li.item, true
}

// syncList rebuilds the list widget from the state.
func (m *Model) syncList() tea.Cmd {
	items := make([]list.Item, 0, len(m.state.Items))
	for _, it := range m.state.Items {
		items = append(items, listItem{item: it})
	}
	cmd := m.list.SetItems(items)
	if n := len(items); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	done, total := m.state.Stats()
	m.list.Title = ui.Header(done, total)
	return cmd
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	// frame, banner, input bar and stats line
	m.list.SetSize(max(w-4, 10), max(h-9, 3))
}

func (m Model) logResult(op, errMsg string, kv ...any) {
	if errMsg != "" {
		m.logger.Warn(op+" failed", append(kv, "error", errMsg)...)
		return
	}
	m.logger.Debug(op+" ok", kv...)
}

// ---------------------------------------------------
// View
// ---------------------------------------------------

func (m Model) View() string {
	t := ui.Current()
	var b strings.Builder

	if m.state.Err != "" {
		b.WriteString(ui.ErrorBanner(m.state.Err))
		b.WriteString("\n")
	}

	switch {
	case m.state.Loading:
		b.WriteString(m.spinner.View() + " Loading todos...")
	case m.state.Empty():
		done, total := m.state.Stats()
		b.WriteString(ui.Header(done, total) + "\n\n")
		b.WriteString(t.Muted.Render(listview.EmptyMessage))
		b.WriteString("\n\n" + t.Help.Render("a add • r reload • q quit"))
	default:
		b.WriteString(m.list.View())
	}

	if m.mode != browsing {
		title := "Add new item"
		if m.mode == renaming {
			title = "Rename item"
		}
		if m.hint != "" {
			title += " - " + t.Error.Render(m.hint)
		}
		b.WriteString("\n" + ui.Frame(title+"\n"+m.ti.View()))
	}

	if !m.state.Loading && !m.state.Empty() {
		b.WriteString("\n" + t.Muted.Render(m.state.Summary()))
	}
	return ui.Frame(b.String())
}
