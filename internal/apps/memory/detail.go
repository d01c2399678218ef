package memory

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rcliao/corelab/internal/model"
	"github.com/rcliao/corelab/internal/state"
)

const (
	fieldName = iota
	fieldNotes
)

// DetailPane shows one person with their conversations and memories and
// owns the edit, deactivate and new-note forms.
type DetailPane struct {
	person model.Person
	data   state.Detail

	editing    bool
	editField  int
	nameInput  textinput.Model
	notesInput textarea.Model
	saving     bool
	saveSeq    int

	deactivating  bool
	deactivateSeq int

	noteInput  textarea.Model
	savingNote bool
	noteSeq    int
	// noteFloor is noteSeq at the last switch; replies at or below it
	// predate the reload of the collections.
	noteFloor int
}

func newDetailPane() DetailPane {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 200

	notes := textarea.New()
	notes.Placeholder = "Notes..."
	notes.ShowLineNumbers = false
	notes.SetHeight(3)

	note := textarea.New()
	note.Placeholder = "Add a conversation note..."
	note.ShowLineNumbers = false
	note.SetHeight(3)

	return DetailPane{
		nameInput:  name,
		notesInput: notes,
		noteInput:  note,
	}
}

// Person returns the person shown.
func (d *DetailPane) Person() model.Person {
	return d.person
}

// Conversations returns the loaded conversations, newest first.
func (d *DetailPane) Conversations() []model.Conversation {
	return d.data.Conversations
}

// Memories returns the loaded memories.
func (d *DetailPane) Memories() []model.Memory {
	return d.data.Memories
}

// Populated reports whether both detail collections have arrived.
func (d *DetailPane) Populated() bool {
	return d.data.Populated()
}

// Editing reports whether the edit form is open.
func (d *DetailPane) Editing() bool {
	return d.editing
}

// Saving reports whether an edit save is outstanding.
func (d *DetailPane) Saving() bool {
	return d.saving
}

// Deactivating reports whether a deactivation is outstanding.
func (d *DetailPane) Deactivating() bool {
	return d.deactivating
}

// SavingNote reports whether a note submission is outstanding.
func (d *DetailPane) SavingNote() bool {
	return d.savingNote
}

// Drafts returns the current edit drafts.
func (d *DetailPane) Drafts() (name, notes string) {
	return d.nameInput.Value(), d.notesInput.Value()
}

// SetDrafts replaces the edit drafts.
func (d *DetailPane) SetDrafts(name, notes string) {
	d.nameInput.SetValue(name)
	d.notesInput.SetValue(notes)
}

// NoteDraft returns the pending note text.
func (d *DetailPane) NoteDraft() string {
	return d.noteInput.Value()
}

// SetNoteDraft replaces the pending note text.
func (d *DetailPane) SetNoteDraft(s string) {
	d.noteInput.SetValue(s)
}

// switchTo shows a different person. Previous detail collections, drafts
// and pending flags are dropped; results still in flight for the previous
// person are discarded when they arrive.
func (d *DetailPane) switchTo(p model.Person) {
	d.person = p
	d.data.Reset(p.ID)
	d.editing = false
	d.saving = false
	d.deactivating = false
	d.savingNote = false
	d.noteFloor = d.noteSeq
	d.nameInput.Blur()
	d.notesInput.Blur()
	d.noteInput.Blur()
	d.noteInput.Reset()
}

// refresh adopts a new authoritative copy of the same person.
func (d *DetailPane) refresh(p model.Person) {
	d.person = p
	if !d.editing {
		d.SetDrafts(p.Name, p.Notes)
	}
}

// BeginEdit opens the edit form seeded from the authoritative record. The
// form stays closed while a deactivation is outstanding.
func (d *DetailPane) BeginEdit() tea.Cmd {
	if d.editing || d.saving || d.deactivating {
		return nil
	}
	d.editing = true
	d.editField = fieldName
	d.SetDrafts(d.person.Name, d.person.Notes)
	d.notesInput.Blur()
	return d.nameInput.Focus()
}

// CancelEdit closes the edit form and discards the drafts.
func (d *DetailPane) CancelEdit() {
	if d.saving {
		return
	}
	d.editing = false
	d.nameInput.Blur()
	d.notesInput.Blur()
	d.SetDrafts(d.person.Name, d.person.Notes)
}

func (d *DetailPane) nextField() tea.Cmd {
	if d.editField == fieldName {
		d.editField = fieldNotes
		d.nameInput.Blur()
		return d.notesInput.Focus()
	}
	d.editField = fieldName
	d.notesInput.Blur()
	return d.nameInput.Focus()
}

// beginSave returns the record to submit for the edit form, or false when
// the form is closed or the name is empty, or while any update of the
// person is outstanding.
func (d *DetailPane) beginSave() (model.Person, int, bool) {
	if !d.editing || d.saving || d.deactivating {
		return model.Person{}, 0, false
	}
	name := strings.TrimSpace(d.nameInput.Value())
	if name == "" {
		return model.Person{}, 0, false
	}
	d.saving = true
	d.saveSeq++
	return state.ApplyPersonEdit(d.person, name, d.notesInput.Value()), d.saveSeq, true
}

// beginDeactivate returns the deactivated record to submit.
func (d *DetailPane) beginDeactivate() (model.Person, int, bool) {
	if d.deactivating || d.saving {
		return model.Person{}, 0, false
	}
	d.deactivating = true
	d.deactivateSeq++
	return state.ApplyDeactivate(d.person), d.deactivateSeq, true
}

// updateResolved clears the pending flag of the matching request. A
// successful edit closes the form; a failed one keeps the drafts.
func (d *DetailPane) updateResolved(msg personUpdatedMsg) {
	if msg.person.ID != d.person.ID {
		return
	}
	switch msg.action {
	case actionEdit:
		if !d.saving || msg.seq != d.saveSeq {
			return
		}
		d.saving = false
		if msg.err == nil {
			d.editing = false
			d.nameInput.Blur()
			d.notesInput.Blur()
		}
	case actionDeactivate:
		if d.deactivating && msg.seq == d.deactivateSeq {
			d.deactivating = false
		}
	}
}

func (d *DetailPane) focusNote() tea.Cmd {
	return d.noteInput.Focus()
}

func (d *DetailPane) blurNote() {
	d.noteInput.Blur()
}

func (d *DetailPane) noteFocused() bool {
	return d.noteInput.Focused()
}

// beginNote returns the note to submit, or false when pending or empty.
func (d *DetailPane) beginNote() (state.ConversationFields, int, bool) {
	if d.savingNote {
		return state.ConversationFields{}, 0, false
	}
	content := strings.TrimSpace(d.noteInput.Value())
	if content == "" {
		return state.ConversationFields{}, 0, false
	}
	d.savingNote = true
	d.noteSeq++
	return state.ConversationFields{Content: content}, d.noteSeq, true
}

// noteResolved applies a confirmed note to the collection when it belongs to
// the shown person, and re-enables the form. Replies issued before the last
// switch are dropped since the reload already holds them.
func (d *DetailPane) noteResolved(msg conversationCreatedMsg, c *model.Conversation) {
	if msg.personID != d.person.ID || msg.seq <= d.noteFloor {
		return
	}
	if c != nil {
		d.data.ConversationCreated(*c)
	}
	if d.savingNote && msg.seq == d.noteSeq {
		d.savingNote = false
		if msg.err == nil {
			d.noteInput.Reset()
		}
	}
}

func (d *DetailPane) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case d.editing && !d.saving:
		if d.editField == fieldName {
			d.nameInput, cmd = d.nameInput.Update(msg)
		} else {
			d.notesInput, cmd = d.notesInput.Update(msg)
		}
	case d.noteInput.Focused() && !d.savingNote:
		d.noteInput, cmd = d.noteInput.Update(msg)
	}
	return cmd
}

func (d *DetailPane) setWidth(w int) {
	if w <= 6 {
		return
	}
	d.nameInput.Width = w - 6
	d.notesInput.SetWidth(w - 4)
	d.noteInput.SetWidth(w - 4)
}

func (d *DetailPane) view(spin string) string {
	var b strings.Builder

	if d.editing {
		b.WriteString(headerStyle.Render("Edit person"))
		b.WriteString("\n\n")
		b.WriteString(d.nameInput.View())
		b.WriteString("\n")
		b.WriteString(d.notesInput.View())
		b.WriteString("\n")
		if d.saving {
			b.WriteString(spin + " Saving...")
		} else {
			b.WriteString(helpLine(keys.Save, keys.NextField, keys.Cancel))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(titleStyle.Render(d.person.Name))
		if d.deactivating {
			b.WriteString(" " + spin)
		}
		b.WriteString("\n")
		if d.person.Notes != "" {
			b.WriteString(d.person.Notes)
			b.WriteString("\n")
		}
	}

	b.WriteString(sectionStyle.Render("Conversation notes"))
	b.WriteString("\n")
	b.WriteString(d.noteInput.View())
	b.WriteString("\n")
	if d.savingNote {
		b.WriteString(spin + " Saving note...\n")
	}
	if len(d.data.Conversations) == 0 {
		b.WriteString(emptyStyle.Render("No conversation notes yet"))
		b.WriteString("\n")
	}
	for _, c := range d.data.Conversations {
		b.WriteString("• " + c.Content)
		if !c.CreatedAt.IsZero() {
			b.WriteString("  " + dateStyle.Render(c.CreatedAt.Local().Format("2006-01-02 15:04")))
		}
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Memories"))
	b.WriteString("\n")
	if len(d.data.Memories) == 0 {
		b.WriteString(emptyStyle.Render("No memories extracted yet"))
		b.WriteString("\n")
	}
	for _, m := range d.data.Memories {
		b.WriteString(titleStyle.Render(m.Key) + " " + starStyle.Render(m.Stars()) + "\n")
		b.WriteString("  " + m.Value + "\n")
	}

	return b.String()
}
