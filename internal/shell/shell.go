package shell

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Version is shown in the navigation footer.
var Version = "0.1.0"

const navWidth = 18

var (
	navStyle = lipgloss.NewStyle().
			Width(navWidth).
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("#6B7280"))

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB3BA")).
			Bold(true).
			MarginBottom(1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9FAFB"))

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB3BA")).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			MarginTop(1)
)

type keyMap struct {
	Quit    key.Binding
	NextApp key.Binding
	PrevApp key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	NextApp: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "next app"),
	),
	PrevApp: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("ctrl+p", "previous app"),
	),
}

// Shell renders the tab navigation and the active app. Apps are mounted the
// first time they become active.
type Shell struct {
	registry *Registry
	logger   *zap.Logger
	active   string
	mounted  map[string]bool

	width  int
	height int
}

// New creates a shell over registry with the first registered app active.
func New(registry *Registry, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Shell{
		registry: registry,
		logger:   logger.Named("shell"),
		mounted:  make(map[string]bool),
	}
	if infos := registry.List(); len(infos) > 0 {
		s.active = infos[0].ID
	}
	return s
}

// Active returns the id of the active app.
func (s *Shell) Active() string {
	return s.active
}

// Init mounts the active app.
func (s *Shell) Init() tea.Cmd {
	return s.mount(s.active)
}

// Activate switches to the app registered under id, mounting it if needed.
func (s *Shell) Activate(id string) tea.Cmd {
	if _, ok := s.registry.Get(id); !ok || id == s.active {
		return nil
	}
	s.logger.Debug("activate app", zap.String("app", id))
	s.active = id
	return s.mount(id)
}

func (s *Shell) mount(id string) tea.Cmd {
	app, ok := s.registry.Get(id)
	if !ok || s.mounted[id] {
		return nil
	}
	s.mounted[id] = true
	if s.width > 0 {
		app.SetSize(s.contentSize())
	}
	s.logger.Info("mount app", zap.String("app", id))
	return app.Init()
}

func (s *Shell) step(delta int) tea.Cmd {
	infos := s.registry.List()
	if len(infos) < 2 {
		return nil
	}
	cur := 0
	for i, info := range infos {
		if info.ID == s.active {
			cur = i
			break
		}
	}
	next := (cur + delta + len(infos)) % len(infos)
	return s.Activate(infos[next].ID)
}

func (s *Shell) contentSize() (int, int) {
	return s.width - navWidth - 3, s.height
}

// Update routes keys to the active app and every other message to all
// mounted apps.
func (s *Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		app, ok := s.registry.Get(s.active)
		switch {
		case key.Matches(msg, keys.Quit):
			return s, tea.Quit
		case ok && capturing(app):
			// ctrl+n and ctrl+p move the cursor in a focused text area.
		case key.Matches(msg, keys.NextApp):
			return s, s.step(1)
		case key.Matches(msg, keys.PrevApp):
			return s, s.step(-1)
		}
		if ok {
			return s, app.Update(msg)
		}
		return s, nil

	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		w, h := s.contentSize()
		for id := range s.mounted {
			if app, ok := s.registry.Get(id); ok {
				app.SetSize(w, h)
			}
		}
		return s, nil
	}

	var cmds []tea.Cmd
	for id := range s.mounted {
		if app, ok := s.registry.Get(id); ok {
			cmds = append(cmds, app.Update(msg))
		}
	}
	return s, tea.Batch(cmds...)
}

func capturing(app App) bool {
	c, ok := app.(InputCapturer)
	return ok && c.CapturesInput()
}

// View renders the navigation next to the active app.
func (s *Shell) View() string {
	var nav strings.Builder
	nav.WriteString(logoStyle.Render("⚛ CoreLab"))
	nav.WriteString("\n")
	for _, info := range s.registry.List() {
		label := info.Icon + " " + info.Name
		if info.ID == s.active {
			nav.WriteString(activeTabStyle.Render("› " + label))
		} else {
			nav.WriteString(tabStyle.Render("  " + label))
		}
		nav.WriteString("\n")
	}
	nav.WriteString(footerStyle.Render("v" + Version))

	var body string
	if app, ok := s.registry.Get(s.active); ok {
		body = app.View()
	} else {
		body = "No apps registered"
	}

	navBox := navStyle
	if s.height > 0 {
		navBox = navBox.Height(s.height)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, navBox.Render(nav.String()), body)
}
