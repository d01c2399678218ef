package model

import (
	"strings"
	"time"
)

// MaxImportance is the upper bound of the importance rating.
const MaxImportance = 5

// Memory is a key/value fact about a Person with an importance rating.
type Memory struct {
	ID         int64     `json:"id"`
	PersonID   int64     `json:"person_id"`
	Key        string    `json:"key"`
	Value      string    `json:"value"`
	Importance int       `json:"importance"`
	CreatedAt  time.Time `json:"created_at"`
}

// Stars renders the importance as a repeated glyph count.
func (m Memory) Stars() string {
	n := m.Importance
	if n < 0 {
		n = 0
	}
	return strings.Repeat("★", n)
}
