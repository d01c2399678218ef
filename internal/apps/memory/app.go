// Package memory is the Memory sub-application: a list of people with their
// conversation notes and memory facts.
package memory

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rcliao/corelab/internal/api"
	"github.com/rcliao/corelab/internal/model"
	"github.com/rcliao/corelab/internal/state"
)

// AppInfo describes the Memory app to the shell.
var AppInfo = model.AppInfo{
	ID:          "memory",
	Name:        "Memory",
	Icon:        "🧠",
	Version:     "0.1.0",
	Description: "People, conversation notes and the things worth remembering about them",
}

type pane int

const (
	focusList pane = iota
	focusDetail
)

const sidebarWidth = 34

// Model is the Memory container. It owns the person list and the selection
// and applies backend confirmations to both panes.
type Model struct {
	ctx     context.Context
	backend api.Backend
	logger  *zap.Logger
	now     func() time.Time

	persons state.Persons
	list    ListPane
	detail  DetailPane
	spinner spinner.Model
	focus   pane

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithClock overrides the clock used to stamp confirmed records.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// New creates the Memory container over backend. A nil logger disables
// logging.
func New(ctx context.Context, backend api.Backend, logger *zap.Logger, opts ...Option) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	m := &Model{
		ctx:     ctx,
		backend: backend,
		logger:  logger.Named("memory"),
		now:     time.Now,
		list:    newListPane(),
		detail:  newDetailPane(),
		spinner: sp,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Info implements the shell's app contract.
func (m *Model) Info() model.AppInfo {
	return AppInfo
}

// Init loads all persons once.
func (m *Model) Init() tea.Cmd {
	m.persons.BeginLoad()
	return tea.Batch(loadPersonsCmd(m.ctx, m.backend), m.spinner.Tick)
}

// Persons returns the in-memory person list.
func (m *Model) Persons() []model.Person {
	return m.persons.Items
}

// Selected returns the selected person.
func (m *Model) Selected() (model.Person, bool) {
	return m.persons.Selected()
}

// LoadErr returns the error of the last full load.
func (m *Model) LoadErr() error {
	return m.persons.Err
}

// Loading reports whether the full load is in flight.
func (m *Model) Loading() bool {
	return m.persons.Loading
}

// List returns the list pane.
func (m *Model) List() *ListPane {
	return &m.list
}

// Detail returns the detail pane.
func (m *Model) Detail() *DetailPane {
	return &m.detail
}

// SetSize lays the panes out for a w x h area.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.setWidth(sidebarWidth)
	m.detail.setWidth(w - sidebarWidth - 4)
}

// Select makes id the selection. When the selected id changes the detail
// pane is reset and one conversations load and one memories load are issued
// for the new id.
func (m *Model) Select(id int64) tea.Cmd {
	changed, ok := m.persons.Select(id)
	if !ok {
		return nil
	}
	p, _ := m.persons.Selected()
	if !changed {
		m.detail.refresh(p)
		return nil
	}
	m.detail.switchTo(p)
	m.detail.refresh(p)
	return tea.Batch(
		loadConversationsCmd(m.ctx, m.backend, p.ID),
		loadMemoriesCmd(m.ctx, m.backend, p.ID),
	)
}

// Retry reissues the full load after a failure.
func (m *Model) Retry() tea.Cmd {
	if m.persons.Loading {
		return nil
	}
	m.persons.BeginLoad()
	return tea.Batch(loadPersonsCmd(m.ctx, m.backend), m.spinner.Tick)
}

// SubmitPerson sends the drafted name as a new person. It returns nil when
// the create control is disabled.
func (m *Model) SubmitPerson() tea.Cmd {
	f, ok := m.list.beginCreate()
	if !ok {
		return nil
	}
	return tea.Batch(createPersonCmd(m.ctx, m.backend, f), m.spinner.Tick)
}

// SaveEdit submits the edit drafts of the shown person.
func (m *Model) SaveEdit() tea.Cmd {
	p, seq, ok := m.detail.beginSave()
	if !ok {
		return nil
	}
	return tea.Batch(updatePersonCmd(m.ctx, m.backend, p, actionEdit, seq), m.spinner.Tick)
}

// Deactivate marks the shown person inactive.
func (m *Model) Deactivate() tea.Cmd {
	if _, ok := m.persons.Selected(); !ok {
		return nil
	}
	p, seq, ok := m.detail.beginDeactivate()
	if !ok {
		return nil
	}
	return tea.Batch(updatePersonCmd(m.ctx, m.backend, p, actionDeactivate, seq), m.spinner.Tick)
}

// SubmitNote records the drafted note for the shown person.
func (m *Model) SubmitNote() tea.Cmd {
	if _, ok := m.persons.Selected(); !ok {
		return nil
	}
	f, seq, ok := m.detail.beginNote()
	if !ok {
		return nil
	}
	pid := m.detail.person.ID
	return tea.Batch(createConversationCmd(m.ctx, m.backend, pid, f, seq), m.spinner.Tick)
}

// Update applies msg and returns the follow-up command.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy() {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return nil

	case personsLoadedMsg:
		m.handlePersonsLoaded(msg)
		return nil

	case personCreatedMsg:
		m.list.createResolved(msg.err)
		if msg.err != nil {
			m.logger.Error("create person failed", zap.String("name", msg.fields.Name), zap.Error(msg.err))
			return nil
		}
		m.persons.Created(state.ApplyPersonCreate(msg.fields, msg.id, m.now()))
		return nil

	case personUpdatedMsg:
		m.handlePersonUpdated(msg)
		return nil

	case conversationsLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("load conversations failed", zap.Int64("person_id", msg.personID), zap.Error(msg.err))
			return nil
		}
		if !m.detail.data.ConversationsLoaded(msg.personID, msg.conversations) {
			m.logger.Debug("discarded stale conversations", zap.Int64("person_id", msg.personID))
		}
		return nil

	case memoriesLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("load memories failed", zap.Int64("person_id", msg.personID), zap.Error(msg.err))
			return nil
		}
		if !m.detail.data.MemoriesLoaded(msg.personID, msg.memories) {
			m.logger.Debug("discarded stale memories", zap.Int64("person_id", msg.personID))
		}
		return nil

	case conversationCreatedMsg:
		var c *model.Conversation
		if msg.err != nil {
			m.logger.Error("create conversation failed", zap.Int64("person_id", msg.personID), zap.Error(msg.err))
		} else {
			conv := state.ApplyConversationCreate(msg.personID, msg.fields, msg.id, m.now())
			c = &conv
		}
		m.detail.noteResolved(msg, c)
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocusedInput(msg)
}

func (m *Model) handlePersonsLoaded(msg personsLoadedMsg) {
	if msg.err != nil {
		m.persons.LoadFailed(msg.err)
		m.logger.Error("load persons failed", zap.Error(msg.err))
		return
	}
	m.persons.Loaded(msg.persons)
	m.list.moveCursor(0, m.persons.Len())
	if p, ok := m.persons.Selected(); ok {
		m.detail.refresh(p)
	} else if m.detail.person.ID != 0 {
		m.detail.switchTo(model.Person{})
	}
}

func (m *Model) handlePersonUpdated(msg personUpdatedMsg) {
	m.detail.updateResolved(msg)
	if msg.err != nil {
		m.logger.Error("update person failed",
			zap.Int64("person_id", msg.person.ID),
			zap.String("action", string(msg.action)),
			zap.Error(msg.err))
		return
	}
	if !m.persons.Updated(msg.person) {
		return
	}
	if p, ok := m.persons.Selected(); ok && p.ID == msg.person.ID {
		m.detail.refresh(p)
	}
}

func (m *Model) busy() bool {
	return m.persons.Loading || m.list.creating || m.detail.saving ||
		m.detail.deactivating || m.detail.savingNote
}

// CapturesInput reports whether a text field has focus. The shell then leaves
// its own navigation keys to the app.
func (m *Model) CapturesInput() bool {
	return m.list.InputFocused() || m.detail.editing || m.detail.noteFocused()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.persons.Err != nil {
		if key.Matches(msg, keys.Retry) {
			return m.Retry()
		}
		return nil
	}

	if m.list.InputFocused() {
		switch {
		case key.Matches(msg, keys.Submit):
			return m.SubmitPerson()
		case key.Matches(msg, keys.Cancel):
			m.list.blurInput()
			return nil
		}
		return m.list.updateInput(msg)
	}

	if m.focus == focusDetail {
		return m.handleDetailKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Up):
		m.list.moveCursor(-1, m.persons.Len())
	case key.Matches(msg, keys.Down):
		m.list.moveCursor(1, m.persons.Len())
	case key.Matches(msg, keys.Select):
		if m.persons.Len() == 0 {
			return nil
		}
		return m.Select(m.persons.Items[m.list.cursor].ID)
	case key.Matches(msg, keys.New):
		return m.list.focusInput()
	case key.Matches(msg, keys.SwitchPane):
		if _, ok := m.persons.Selected(); ok {
			m.focus = focusDetail
		}
	}
	return nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case m.detail.editing:
		switch {
		case key.Matches(msg, keys.Save):
			return m.SaveEdit()
		case key.Matches(msg, keys.Cancel):
			m.detail.CancelEdit()
			return nil
		case key.Matches(msg, keys.NextField):
			return m.detail.nextField()
		}
		return m.detail.updateInputs(msg)

	case m.detail.noteFocused():
		switch {
		case key.Matches(msg, keys.Save):
			return m.SubmitNote()
		case key.Matches(msg, keys.Cancel):
			m.detail.blurNote()
			return nil
		}
		return m.detail.updateInputs(msg)
	}

	switch {
	case key.Matches(msg, keys.Edit):
		return m.detail.BeginEdit()
	case key.Matches(msg, keys.Deactivate):
		return m.Deactivate()
	case key.Matches(msg, keys.Note):
		return m.detail.focusNote()
	case key.Matches(msg, keys.SwitchPane, keys.Cancel):
		m.focus = focusList
	}
	return nil
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	if m.list.InputFocused() {
		return m.list.updateInput(msg)
	}
	return m.detail.updateInputs(msg)
}

// View renders both panes side by side.
func (m *Model) View() string {
	spin := m.spinner.View()

	if m.persons.Err != nil {
		var b strings.Builder
		b.WriteString(errorStyle.Render("Could not load people"))
		b.WriteString("\n\n")
		b.WriteString(m.persons.Err.Error())
		b.WriteString("\n\n")
		if m.persons.Loading {
			b.WriteString(spin + " Retrying...")
		} else {
			b.WriteString(helpLine(keys.Retry))
		}
		return mainStyle.Render(b.String())
	}

	sel, hasSel := m.persons.Selected()
	sidebar := m.list.view(m.persons.Items, sel.ID, m.persons.Loading, spin, m.focus == focusList)

	var main string
	if hasSel {
		main = m.detail.view(spin)
	} else {
		main = emptyStyle.Render("Select a person to see their details")
	}

	height := m.height - 1
	if height < 1 {
		height = 1
	}
	mainWidth := m.width - sidebarWidth - 2
	if mainWidth < 20 {
		mainWidth = 20
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Width(sidebarWidth).Height(height).Render(sidebar),
		mainStyle.Width(mainWidth).Render(main),
	)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.help())
}

func (m *Model) help() string {
	switch {
	case m.list.InputFocused():
		return helpLine(keys.Submit, keys.Cancel)
	case m.focus == focusList:
		return helpLine(keys.Up, keys.Down, keys.Select, keys.New, keys.SwitchPane)
	case m.detail.editing:
		return helpLine(keys.Save, keys.NextField, keys.Cancel)
	case m.detail.noteFocused():
		return helpLine(keys.Save, keys.Cancel)
	default:
		return helpLine(keys.Edit, keys.Deactivate, keys.Note, keys.SwitchPane)
	}
}
