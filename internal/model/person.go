// Package model defines the CoreLab record types.
package model

import "time"

// Person is a tracked individual. Persons are never deleted; IsActive is a
// soft-delete flag.
type Person struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Notes     string    `json:"notes,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation is a timestamped free-text note attached to a Person.
type Conversation struct {
	ID        int64     `json:"id"`
	PersonID  int64     `json:"person_id"`
	Content   string    `json:"content"`
	Context   string    `json:"context,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
