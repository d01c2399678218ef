package memory

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/rcliao/corelab/internal/model"
	"github.com/rcliao/corelab/internal/state"
)

// ListPane renders all persons and owns the inline create form.
type ListPane struct {
	input    textinput.Model
	cursor   int
	creating bool
}

func newListPane() ListPane {
	ti := textinput.New()
	ti.Placeholder = "New person..."
	ti.CharLimit = 200
	ti.Prompt = "+ "
	return ListPane{input: ti}
}

// Creating reports whether a create request is outstanding.
func (l *ListPane) Creating() bool {
	return l.creating
}

// CanCreate reports whether the create control is enabled.
func (l *ListPane) CanCreate() bool {
	return !l.creating && strings.TrimSpace(l.input.Value()) != ""
}

// InputFocused reports whether the name input has focus.
func (l *ListPane) InputFocused() bool {
	return l.input.Focused()
}

// SetName replaces the draft name.
func (l *ListPane) SetName(name string) {
	l.input.SetValue(name)
}

// Name returns the draft name.
func (l *ListPane) Name() string {
	return l.input.Value()
}

// beginCreate returns the fields to submit and marks the form pending, or
// false when the control is disabled.
func (l *ListPane) beginCreate() (state.PersonFields, bool) {
	if !l.CanCreate() {
		return state.PersonFields{}, false
	}
	l.creating = true
	return state.PersonFields{Name: strings.TrimSpace(l.input.Value())}, true
}

// createResolved re-enables the form and clears it on success.
func (l *ListPane) createResolved(err error) {
	l.creating = false
	if err == nil {
		l.input.Reset()
	}
}

func (l *ListPane) moveCursor(delta, n int) {
	if n == 0 {
		l.cursor = 0
		return
	}
	l.cursor += delta
	if l.cursor < 0 {
		l.cursor = 0
	}
	if l.cursor >= n {
		l.cursor = n - 1
	}
}

func (l *ListPane) focusInput() tea.Cmd {
	return l.input.Focus()
}

func (l *ListPane) blurInput() {
	l.input.Blur()
}

func (l *ListPane) updateInput(msg tea.Msg) tea.Cmd {
	if l.creating {
		return nil
	}
	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return cmd
}

func (l *ListPane) setWidth(w int) {
	if w > 4 {
		l.input.Width = w - 4
	}
}

func (l *ListPane) view(persons []model.Person, selectedID int64, loading bool, spin string, focused bool) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("People"))
	b.WriteString(" ")
	b.WriteString(countStyle.Render(fmt.Sprintf("%d", len(persons))))
	b.WriteString("\n\n")

	b.WriteString(l.input.View())
	if l.creating {
		b.WriteString(" " + spin)
	}
	b.WriteString("\n\n")

	switch {
	case loading:
		b.WriteString(spin + " Loading...")
	case len(persons) == 0:
		b.WriteString(emptyStyle.Render("No people yet"))
	default:
		for i, p := range persons {
			prefix := "  "
			if focused && i == l.cursor && !l.input.Focused() {
				prefix = cursorStyle.Render("› ")
			}
			style := itemStyle
			if p.ID == selectedID {
				style = selectedItemStyle
			}
			b.WriteString(prefix)
			b.WriteString(style.Render(avatar(p.Name) + " " + p.Name))
			if !p.CreatedAt.IsZero() {
				b.WriteString(" " + dateStyle.Render(humanize.Time(p.CreatedAt)))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func avatar(name string) string {
	for _, r := range name {
		return "[" + strings.ToUpper(string(r)) + "]"
	}
	return "[?]"
}
