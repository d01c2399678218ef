package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string   `json:"db_path"`
	DBSizeBytes   int64    `json:"db_size_bytes"`
	DBSize        string   `json:"db_size,omitempty"`
	TotalPersons  int      `json:"total_persons"`
	ActivePersons int      `json:"active_persons"`
	Conversations int      `json:"conversations"`
	Memories      int      `json:"memories"`
	Migrations    []string `json:"migrations"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM persons`, &st.TotalPersons},
		{`SELECT COUNT(*) FROM persons WHERE is_active = 1`, &st.ActivePersons},
		{`SELECT COUNT(*) FROM conversations`, &st.Conversations},
		{`SELECT COUNT(*) FROM memories`, &st.Memories},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return st, err
		}
	}

	migrations, err := s.AppliedMigrations(ctx)
	if err != nil {
		return st, err
	}
	st.Migrations = migrations

	return st, nil
}
