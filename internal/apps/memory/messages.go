package memory

import (
	"github.com/rcliao/corelab/internal/model"
	"github.com/rcliao/corelab/internal/state"
)

// personsLoadedMsg carries the result of the full person reload.
type personsLoadedMsg struct {
	persons []model.Person
	err     error
}

// personCreatedMsg carries the result of a create_person submission.
type personCreatedMsg struct {
	fields state.PersonFields
	id     int64
	err    error
}

type updateAction string

const (
	actionEdit       updateAction = "edit"
	actionDeactivate updateAction = "deactivate"
)

// personUpdatedMsg carries the result of an update_person call. person is
// the record as it will be once the update is confirmed.
type personUpdatedMsg struct {
	person model.Person
	action updateAction
	seq    int
	err    error
}

// conversationsLoadedMsg carries one person's conversations.
type conversationsLoadedMsg struct {
	personID      int64
	conversations []model.Conversation
	err           error
}

// memoriesLoadedMsg carries one person's memories.
type memoriesLoadedMsg struct {
	personID int64
	memories []model.Memory
	err      error
}

// conversationCreatedMsg carries the result of a note submission.
type conversationCreatedMsg struct {
	personID int64
	fields   state.ConversationFields
	id       int64
	seq      int
	err      error
}
