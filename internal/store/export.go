package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/corelab/internal/model"
)

// Snapshot is a full export of all records.
type Snapshot struct {
	Persons       []model.Person       `json:"persons"`
	Conversations []model.Conversation `json:"conversations"`
	Memories      []model.Memory       `json:"memories"`
}

// ImportResult counts records written by Import.
type ImportResult struct {
	Persons       int `json:"persons"`
	Conversations int `json:"conversations"`
	Memories      int `json:"memories"`
}

// ExportAll returns every record, including inactive persons.
func (s *SQLiteStore) ExportAll(ctx context.Context) (*Snapshot, error) {
	persons, err := s.ListPersons(ctx, ListPersonsParams{IncludeInactive: true})
	if err != nil {
		return nil, fmt.Errorf("persons: %w", err)
	}

	snap := &Snapshot{
		Persons:       persons,
		Conversations: []model.Conversation{},
		Memories:      []model.Memory{},
	}

	convRows, err := s.db.QueryContext(ctx,
		`SELECT id, person_id, content, context, created_at FROM conversations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("conversations: %w", err)
	}
	defer convRows.Close()
	for convRows.Next() {
		c, err := scanConversation(convRows)
		if err != nil {
			return nil, err
		}
		snap.Conversations = append(snap.Conversations, c)
	}
	if err := convRows.Err(); err != nil {
		return nil, err
	}

	memRows, err := s.db.QueryContext(ctx,
		`SELECT id, person_id, key, value, importance, created_at FROM memories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("memories: %w", err)
	}
	defer memRows.Close()
	for memRows.Next() {
		m, err := scanMemory(memRows)
		if err != nil {
			return nil, err
		}
		snap.Memories = append(snap.Memories, m)
	}
	return snap, memRows.Err()
}

// Import writes a snapshot in one transaction. Ids are reassigned by the
// database; person references are remapped to the new ids. Original
// created_at values are kept.
func (s *SQLiteStore) Import(ctx context.Context, snap *Snapshot) (*ImportResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res := &ImportResult{}
	personIDs := make(map[int64]int64, len(snap.Persons))

	for _, p := range snap.Persons {
		r, err := tx.ExecContext(ctx,
			`INSERT INTO persons (name, notes, is_active, created_at) VALUES (?, ?, ?, ?)`,
			p.Name, nullString(p.Notes), p.IsActive, s.importTime(p.CreatedAt))
		if err != nil {
			return nil, fmt.Errorf("insert person %d: %w", p.ID, err)
		}
		newID, err := r.LastInsertId()
		if err != nil {
			return nil, err
		}
		personIDs[p.ID] = newID
		res.Persons++
	}

	for _, c := range snap.Conversations {
		pid, ok := personIDs[c.PersonID]
		if !ok {
			return nil, fmt.Errorf("conversation %d: person %d: %w", c.ID, c.PersonID, ErrNotFound)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO conversations (person_id, content, context, created_at) VALUES (?, ?, ?, ?)`,
			pid, c.Content, nullString(c.Context), s.importTime(c.CreatedAt))
		if err != nil {
			return nil, fmt.Errorf("insert conversation %d: %w", c.ID, err)
		}
		res.Conversations++
	}

	for _, m := range snap.Memories {
		pid, ok := personIDs[m.PersonID]
		if !ok {
			return nil, fmt.Errorf("memory %d: person %d: %w", m.ID, m.PersonID, ErrNotFound)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO memories (person_id, key, value, importance, created_at) VALUES (?, ?, ?, ?, ?)`,
			pid, m.Key, m.Value, m.Importance, s.importTime(m.CreatedAt))
		if err != nil {
			return nil, fmt.Errorf("insert memory %d: %w", m.ID, err)
		}
		res.Memories++
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SQLiteStore) importTime(t time.Time) string {
	if t.IsZero() {
		return s.timestamp()
	}
	return t.UTC().Format(time.RFC3339)
}
