// Package store provides the CoreLab persistence interface and its SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/corelab/internal/model"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("not found")

// CreatePersonParams holds parameters for creating a person.
type CreatePersonParams struct {
	Name  string
	Notes string
}

// UpdatePersonParams holds the full replacement state of a person.
type UpdatePersonParams struct {
	ID       int64
	Name     string
	Notes    string
	IsActive bool
}

// ListPersonsParams holds parameters for listing persons.
type ListPersonsParams struct {
	IncludeInactive bool
}

// CreateConversationParams holds parameters for creating a conversation.
type CreateConversationParams struct {
	PersonID int64
	Content  string
	Context  string
}

// CreateMemoryParams holds parameters for creating a memory.
type CreateMemoryParams struct {
	PersonID   int64
	Key        string
	Value      string
	Importance int
}

// Store defines the persistence interface behind the binding layer.
type Store interface {
	// ListPersons returns persons in insertion order. Inactive persons are
	// skipped unless IncludeInactive is set.
	ListPersons(ctx context.Context, p ListPersonsParams) ([]model.Person, error)

	// CreatePerson inserts a person and returns its id.
	CreatePerson(ctx context.Context, p CreatePersonParams) (int64, error)

	// UpdatePerson replaces name, notes and is_active of an existing person.
	UpdatePerson(ctx context.Context, p UpdatePersonParams) error

	// ListConversations returns a person's conversations, newest first.
	ListConversations(ctx context.Context, personID int64) ([]model.Conversation, error)

	// CreateConversation inserts a conversation and returns its id.
	CreateConversation(ctx context.Context, p CreateConversationParams) (int64, error)

	// ListMemories returns a person's memories, most important first.
	ListMemories(ctx context.Context, personID int64) ([]model.Memory, error)

	// CreateMemory inserts a memory and returns its id.
	CreateMemory(ctx context.Context, p CreateMemoryParams) (int64, error)

	// Close closes the store.
	Close() error
}
