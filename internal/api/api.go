// Package api is the binding layer between CoreLab views and the persistence
// backend. Each Backend method forwards exactly one backend operation: no
// retries, no caching, no validation.
package api

import (
	"context"
	"errors"

	"github.com/rcliao/corelab/internal/model"
)

// Operation names, as exposed by the backend.
const (
	OpGetPersons         = "get_persons"
	OpCreatePerson       = "create_person"
	OpUpdatePerson       = "update_person"
	OpGetConversations   = "get_conversations"
	OpCreateConversation = "create_conversation"
	OpGetMemories        = "get_memories"
	OpCreateMemory       = "create_memory"
)

// Backend is the set of resource operations the views depend on.
type Backend interface {
	// GetPersons returns persons in backend order.
	GetPersons(ctx context.Context) ([]model.Person, error)

	// CreatePerson returns the id assigned to the new person.
	CreatePerson(ctx context.Context, name, notes string) (int64, error)

	// UpdatePerson replaces name, notes and is_active.
	UpdatePerson(ctx context.Context, id int64, name, notes string, isActive bool) error

	GetConversations(ctx context.Context, personID int64) ([]model.Conversation, error)
	CreateConversation(ctx context.Context, personID int64, content, convContext string) (int64, error)

	GetMemories(ctx context.Context, personID int64) ([]model.Memory, error)

	// CreateMemory is served but not invoked by any view.
	CreateMemory(ctx context.Context, personID int64, key, value string, importance int) (int64, error)
}

// Error is the failure value returned by every Backend operation. Callers
// should rely on Message only.
type Error struct {
	Op      string
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Op + ": failed"
	}
	return e.Op + ": " + e.Message
}

// Unwrap exposes the underlying cause for in-process callers.
func (e *Error) Unwrap() error {
	return e.err
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Op: op, Message: err.Error(), err: err}
}
