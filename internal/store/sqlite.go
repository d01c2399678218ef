package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rcliao/corelab/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// migration is a named schema change applied at most once.
type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "001_initial",
		sql: `
		CREATE TABLE IF NOT EXISTS persons (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			notes       TEXT,
			is_active   INTEGER NOT NULL DEFAULT 1,
			created_at  TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS conversations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			person_id   INTEGER NOT NULL REFERENCES persons(id),
			content     TEXT NOT NULL,
			context     TEXT,
			created_at  TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS memories (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			person_id   INTEGER NOT NULL REFERENCES persons(id),
			key         TEXT NOT NULL,
			value       TEXT NOT NULL,
			importance  INTEGER NOT NULL DEFAULT 1,
			created_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_conversations_person ON conversations(person_id);
		CREATE INDEX IF NOT EXISTS idx_memories_person ON memories(person_id);
		`,
	},
	{
		version: "002_persons_active",
		sql:     `CREATE INDEX IF NOT EXISTS idx_persons_active ON persons(is_active);`,
	},
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:  db,
		now: time.Now,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS _migrations (
		id          INTEGER PRIMARY KEY,
		version     TEXT NOT NULL UNIQUE,
		applied_at  TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if err := s.applyMigration(m); err != nil {
			return fmt.Errorf("%s: %w", m.version, err)
		}
	}
	return nil
}

func (s *SQLiteStore) applyMigration(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM _migrations WHERE version = ?`, m.version).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := tx.Exec(m.sql); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO _migrations (version, applied_at) VALUES (?, ?)`,
		m.version, s.timestamp()); err != nil {
		return err
	}
	return tx.Commit()
}

// AppliedMigrations returns the applied migration versions in order.
func (s *SQLiteStore) AppliedMigrations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM _migrations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *SQLiteStore) ListPersons(ctx context.Context, p ListPersonsParams) ([]model.Person, error) {
	query := `SELECT id, name, notes, is_active, created_at FROM persons`
	if !p.IncludeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	persons := []model.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

func (s *SQLiteStore) CreatePerson(ctx context.Context, p CreatePersonParams) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO persons (name, notes, is_active, created_at) VALUES (?, ?, 1, ?)`,
		p.Name, nullString(p.Notes), s.timestamp())
	if err != nil {
		return 0, fmt.Errorf("insert person: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) UpdatePerson(ctx context.Context, p UpdatePersonParams) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE persons SET name = ?, notes = ?, is_active = ? WHERE id = ?`,
		p.Name, nullString(p.Notes), p.IsActive, p.ID)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("person %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

// GetPerson returns a single person regardless of its active flag.
func (s *SQLiteStore) GetPerson(ctx context.Context, id int64) (*model.Person, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, notes, is_active, created_at FROM persons WHERE id = ?`, id)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("person %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) ListConversations(ctx context.Context, personID int64) ([]model.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, person_id, content, context, created_at FROM conversations
		 WHERE person_id = ? ORDER BY created_at DESC, id DESC`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	convs := []model.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (s *SQLiteStore) CreateConversation(ctx context.Context, p CreateConversationParams) (int64, error) {
	if err := s.requirePerson(ctx, p.PersonID); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (person_id, content, context, created_at) VALUES (?, ?, ?, ?)`,
		p.PersonID, p.Content, nullString(p.Context), s.timestamp())
	if err != nil {
		return 0, fmt.Errorf("insert conversation: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) ListMemories(ctx context.Context, personID int64) ([]model.Memory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, person_id, key, value, importance, created_at FROM memories
		 WHERE person_id = ? ORDER BY importance DESC, id`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mems := []model.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		mems = append(mems, m)
	}
	return mems, rows.Err()
}

func (s *SQLiteStore) CreateMemory(ctx context.Context, p CreateMemoryParams) (int64, error) {
	if err := s.requirePerson(ctx, p.PersonID); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (person_id, key, value, importance, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.PersonID, p.Key, p.Value, p.Importance, s.timestamp())
	if err != nil {
		return 0, fmt.Errorf("insert memory: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) requirePerson(ctx context.Context, id int64) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM persons WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("person %d: %w", id, ErrNotFound)
	}
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPerson(row scanner) (model.Person, error) {
	var p model.Person
	var notes sql.NullString
	var createdAt string

	if err := row.Scan(&p.ID, &p.Name, &notes, &p.IsActive, &createdAt); err != nil {
		return p, err
	}
	p.Notes = notes.String
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return p, nil
}

func scanConversation(row scanner) (model.Conversation, error) {
	var c model.Conversation
	var convContext sql.NullString
	var createdAt string

	if err := row.Scan(&c.ID, &c.PersonID, &c.Content, &convContext, &createdAt); err != nil {
		return c, err
	}
	c.Context = convContext.String
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return c, nil
}

func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var createdAt string

	if err := row.Scan(&m.ID, &m.PersonID, &m.Key, &m.Value, &m.Importance, &createdAt); err != nil {
		return m, err
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return m, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
