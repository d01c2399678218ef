package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndListPersons(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id1, err := s.CreatePerson(ctx, CreatePersonParams{Name: "Ayşe", Notes: "met at the conference"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id2, _ := s.CreatePerson(ctx, CreatePersonParams{Name: "Mehmet"})
	if id1 == 0 || id2 <= id1 {
		t.Fatalf("expected increasing ids, got %d, %d", id1, id2)
	}

	persons, err := s.ListPersons(ctx, ListPersonsParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(persons) != 2 {
		t.Fatalf("expected 2 persons, got %d", len(persons))
	}
	if persons[0].Name != "Ayşe" || persons[1].Name != "Mehmet" {
		t.Errorf("expected insertion order, got %q, %q", persons[0].Name, persons[1].Name)
	}
	if !persons[0].IsActive {
		t.Error("expected new person to be active")
	}
	if persons[0].Notes != "met at the conference" {
		t.Errorf("notes not persisted, got %q", persons[0].Notes)
	}
	if persons[1].Notes != "" {
		t.Errorf("expected empty notes, got %q", persons[1].Notes)
	}
	if persons[0].CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestListPersonsEmpty(t *testing.T) {
	s := newTestStore(t)

	persons, err := s.ListPersons(context.Background(), ListPersonsParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if persons == nil || len(persons) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", persons)
	}
}

func TestUpdatePersonFullReplace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.CreatePerson(ctx, CreatePersonParams{Name: "Ali", Notes: "old"})
	err := s.UpdatePerson(ctx, UpdatePersonParams{ID: id, Name: "Ali Veli", Notes: "", IsActive: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	p, err := s.GetPerson(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Name != "Ali Veli" {
		t.Errorf("expected name 'Ali Veli', got %q", p.Name)
	}
	if p.Notes != "" {
		t.Errorf("expected notes cleared, got %q", p.Notes)
	}
}

func TestDeactivatedPersonHiddenFromDefaultList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.CreatePerson(ctx, CreatePersonParams{Name: "Zeynep"})
	s.CreatePerson(ctx, CreatePersonParams{Name: "Can"})

	if err := s.UpdatePerson(ctx, UpdatePersonParams{ID: id, Name: "Zeynep", IsActive: false}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active, _ := s.ListPersons(ctx, ListPersonsParams{})
	if len(active) != 1 || active[0].Name != "Can" {
		t.Errorf("expected only 'Can', got %+v", active)
	}

	all, _ := s.ListPersons(ctx, ListPersonsParams{IncludeInactive: true})
	if len(all) != 2 {
		t.Fatalf("expected 2 with inactive, got %d", len(all))
	}
	if all[0].IsActive {
		t.Error("expected Zeynep to be inactive")
	}
}

func TestUpdateUnknownPerson(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdatePerson(context.Background(), UpdatePersonParams{ID: 42, Name: "ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConversationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	pid, _ := s.CreatePerson(ctx, CreatePersonParams{Name: "Elif"})
	other, _ := s.CreatePerson(ctx, CreatePersonParams{Name: "Deniz"})

	s.CreateConversation(ctx, CreateConversationParams{PersonID: pid, Content: "first"})
	clock = clock.Add(time.Hour)
	s.CreateConversation(ctx, CreateConversationParams{PersonID: pid, Content: "second", Context: "coffee"})
	s.CreateConversation(ctx, CreateConversationParams{PersonID: other, Content: "unrelated"})

	convs, err := s.ListConversations(ctx, pid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}
	if convs[0].Content != "second" || convs[1].Content != "first" {
		t.Errorf("expected newest first, got %q, %q", convs[0].Content, convs[1].Content)
	}
	if convs[0].Context != "coffee" {
		t.Errorf("expected context 'coffee', got %q", convs[0].Context)
	}
	if !convs[0].CreatedAt.Equal(clock) {
		t.Errorf("expected created_at %v, got %v", clock, convs[0].CreatedAt)
	}
}

func TestConversationSameSecondOrderedByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	pid, _ := s.CreatePerson(ctx, CreatePersonParams{Name: "Elif"})
	s.CreateConversation(ctx, CreateConversationParams{PersonID: pid, Content: "a"})
	s.CreateConversation(ctx, CreateConversationParams{PersonID: pid, Content: "b"})

	convs, _ := s.ListConversations(ctx, pid)
	if len(convs) != 2 || convs[0].Content != "b" {
		t.Errorf("expected later insert first, got %+v", convs)
	}
}

func TestCreateConversationUnknownPerson(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateConversation(context.Background(), CreateConversationParams{PersonID: 99, Content: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoriesByImportance(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	pid, _ := s.CreatePerson(ctx, CreatePersonParams{Name: "Selin"})
	s.CreateMemory(ctx, CreateMemoryParams{PersonID: pid, Key: "city", Value: "Izmir", Importance: 2})
	s.CreateMemory(ctx, CreateMemoryParams{PersonID: pid, Key: "allergy", Value: "peanuts", Importance: 5})
	s.CreateMemory(ctx, CreateMemoryParams{PersonID: pid, Key: "team", Value: "platform", Importance: 2})

	mems, err := s.ListMemories(ctx, pid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mems) != 3 {
		t.Fatalf("expected 3 memories, got %d", len(mems))
	}
	if mems[0].Key != "allergy" {
		t.Errorf("expected most important first, got %q", mems[0].Key)
	}
	if mems[1].Key != "city" || mems[2].Key != "team" {
		t.Errorf("expected ties in insertion order, got %q, %q", mems[1].Key, mems[2].Key)
	}
}

func TestMigrationsAppliedOnce(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "m.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.CreatePerson(ctx, CreatePersonParams{Name: "kept"})
	s.Close()

	s2, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s2.Close()

	versions, err := s2.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if len(versions) != len(migrations) {
		t.Errorf("expected %d migrations, got %v", len(migrations), versions)
	}
	persons, _ := s2.ListPersons(ctx, ListPersonsParams{})
	if len(persons) != 1 {
		t.Errorf("expected data to survive reopen, got %d persons", len(persons))
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}
