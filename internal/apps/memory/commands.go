package memory

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rcliao/corelab/internal/api"
	"github.com/rcliao/corelab/internal/model"
	"github.com/rcliao/corelab/internal/state"
)

// Each command issues exactly one backend call and reports its outcome as a
// message; nothing is applied to view state until that message is handled.

func loadPersonsCmd(ctx context.Context, b api.Backend) tea.Cmd {
	return func() tea.Msg {
		persons, err := b.GetPersons(ctx)
		return personsLoadedMsg{persons: persons, err: err}
	}
}

func createPersonCmd(ctx context.Context, b api.Backend, f state.PersonFields) tea.Cmd {
	return func() tea.Msg {
		id, err := b.CreatePerson(ctx, f.Name, f.Notes)
		return personCreatedMsg{fields: f, id: id, err: err}
	}
}

func updatePersonCmd(ctx context.Context, b api.Backend, p model.Person, action updateAction, seq int) tea.Cmd {
	return func() tea.Msg {
		err := b.UpdatePerson(ctx, p.ID, p.Name, p.Notes, p.IsActive)
		return personUpdatedMsg{person: p, action: action, seq: seq, err: err}
	}
}

func loadConversationsCmd(ctx context.Context, b api.Backend, personID int64) tea.Cmd {
	return func() tea.Msg {
		convs, err := b.GetConversations(ctx, personID)
		return conversationsLoadedMsg{personID: personID, conversations: convs, err: err}
	}
}

func loadMemoriesCmd(ctx context.Context, b api.Backend, personID int64) tea.Cmd {
	return func() tea.Msg {
		mems, err := b.GetMemories(ctx, personID)
		return memoriesLoadedMsg{personID: personID, memories: mems, err: err}
	}
}

func createConversationCmd(ctx context.Context, b api.Backend, personID int64, f state.ConversationFields, seq int) tea.Cmd {
	return func() tea.Msg {
		id, err := b.CreateConversation(ctx, personID, f.Content, f.Context)
		return conversationCreatedMsg{personID: personID, fields: f, id: id, seq: seq, err: err}
	}
}
