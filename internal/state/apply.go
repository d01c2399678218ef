// Package state holds the client-side synchronization rules between the
// Memory views and the backend: optimistic record synthesis and the
// reconciliation of confirmed writes into in-memory collections. It has no
// UI dependencies.
package state

import (
	"time"

	"github.com/rcliao/corelab/internal/model"
)

// PersonFields are the user-submitted fields of a new person.
type PersonFields struct {
	Name  string
	Notes string
}

// ConversationFields are the user-submitted fields of a new conversation.
type ConversationFields struct {
	Content string
	Context string
}

// MemoryFields are the submitted fields of a new memory.
type MemoryFields struct {
	Key        string
	Value      string
	Importance int
}

// ApplyPersonCreate synthesizes the record for a person the backend has just
// accepted. Fields are taken exactly as submitted; CreatedAt is approximated
// with now and IsActive is true.
func ApplyPersonCreate(f PersonFields, id int64, now time.Time) model.Person {
	return model.Person{
		ID:        id,
		Name:      f.Name,
		Notes:     f.Notes,
		IsActive:  true,
		CreatedAt: now.UTC(),
	}
}

// ApplyConversationCreate synthesizes a confirmed conversation.
func ApplyConversationCreate(personID int64, f ConversationFields, id int64, now time.Time) model.Conversation {
	return model.Conversation{
		ID:        id,
		PersonID:  personID,
		Content:   f.Content,
		Context:   f.Context,
		CreatedAt: now.UTC(),
	}
}

// ApplyMemoryCreate synthesizes a confirmed memory.
func ApplyMemoryCreate(personID int64, f MemoryFields, id int64, now time.Time) model.Memory {
	return model.Memory{
		ID:         id,
		PersonID:   personID,
		Key:        f.Key,
		Value:      f.Value,
		Importance: f.Importance,
		CreatedAt:  now.UTC(),
	}
}

// ApplyPersonEdit returns p with name and notes replaced.
func ApplyPersonEdit(p model.Person, name, notes string) model.Person {
	p.Name = name
	p.Notes = notes
	return p
}

// ApplyDeactivate returns p with IsActive cleared.
func ApplyDeactivate(p model.Person) model.Person {
	p.IsActive = false
	return p
}
