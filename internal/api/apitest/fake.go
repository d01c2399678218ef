// Package apitest provides an in-memory api.Backend for tests.
package apitest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rcliao/corelab/internal/api"
	"github.com/rcliao/corelab/internal/model"
)

// Call records one backend invocation.
type Call struct {
	Op       string
	PersonID int64
}

// Fake is a thread-safe in-memory Backend. Set Fail[op] to make an operation
// return an error.
type Fake struct {
	mu            sync.Mutex
	nextID        int64
	persons       []model.Person
	conversations map[int64][]model.Conversation
	memories      map[int64][]model.Memory
	calls         []Call

	Fail map[string]error
	Now  func() time.Time
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{
		conversations: make(map[int64][]model.Conversation),
		memories:      make(map[int64][]model.Memory),
		Fail:          make(map[string]error),
		Now:           time.Now,
	}
}

var _ api.Backend = (*Fake)(nil)

// Seed adds a person directly and returns it.
func (f *Fake) Seed(name string) model.Person {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := model.Person{ID: f.nextID, Name: name, IsActive: true, CreatedAt: f.Now().UTC()}
	f.persons = append(f.persons, p)
	return p
}

// SeedConversation adds a conversation directly.
func (f *Fake) SeedConversation(personID int64, content string) model.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := model.Conversation{ID: f.nextID, PersonID: personID, Content: content, CreatedAt: f.Now().UTC()}
	f.conversations[personID] = append([]model.Conversation{c}, f.conversations[personID]...)
	return c
}

// SeedMemory adds a memory directly.
func (f *Fake) SeedMemory(personID int64, key, value string, importance int) model.Memory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m := model.Memory{ID: f.nextID, PersonID: personID, Key: key, Value: value, Importance: importance, CreatedAt: f.Now().UTC()}
	f.memories[personID] = append(f.memories[personID], m)
	return m
}

// Calls returns the recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CountCalls returns how many times op was invoked for personID. A zero
// personID matches any.
func (f *Fake) CountCalls(op string, personID int64) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Op == op && (personID == 0 || c.PersonID == personID) {
			n++
		}
	}
	return n
}

// Person returns the stored copy of a person.
func (f *Fake) Person(id int64) (model.Person, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.persons {
		if p.ID == id {
			return p, true
		}
	}
	return model.Person{}, false
}

func (f *Fake) record(op string, personID int64) error {
	f.calls = append(f.calls, Call{Op: op, PersonID: personID})
	if err := f.Fail[op]; err != nil {
		return &api.Error{Op: op, Message: err.Error()}
	}
	return nil
}

func (f *Fake) GetPersons(ctx context.Context) ([]model.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(api.OpGetPersons, 0); err != nil {
		return nil, err
	}
	return append([]model.Person{}, f.persons...), nil
}

func (f *Fake) CreatePerson(ctx context.Context, name, notes string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(api.OpCreatePerson, 0); err != nil {
		return 0, err
	}
	f.nextID++
	f.persons = append(f.persons, model.Person{
		ID: f.nextID, Name: name, Notes: notes, IsActive: true, CreatedAt: f.Now().UTC(),
	})
	return f.nextID, nil
}

func (f *Fake) UpdatePerson(ctx context.Context, id int64, name, notes string, isActive bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(api.OpUpdatePerson, id); err != nil {
		return err
	}
	for i := range f.persons {
		if f.persons[i].ID == id {
			f.persons[i].Name = name
			f.persons[i].Notes = notes
			f.persons[i].IsActive = isActive
			return nil
		}
	}
	return &api.Error{Op: api.OpUpdatePerson, Message: fmt.Sprintf("person %d not found", id)}
}

func (f *Fake) GetConversations(ctx context.Context, personID int64) ([]model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(api.OpGetConversations, personID); err != nil {
		return nil, err
	}
	return append([]model.Conversation{}, f.conversations[personID]...), nil
}

func (f *Fake) CreateConversation(ctx context.Context, personID int64, content, convContext string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(api.OpCreateConversation, personID); err != nil {
		return 0, err
	}
	f.nextID++
	c := model.Conversation{ID: f.nextID, PersonID: personID, Content: content, Context: convContext, CreatedAt: f.Now().UTC()}
	f.conversations[personID] = append([]model.Conversation{c}, f.conversations[personID]...)
	return f.nextID, nil
}

func (f *Fake) GetMemories(ctx context.Context, personID int64) ([]model.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(api.OpGetMemories, personID); err != nil {
		return nil, err
	}
	return append([]model.Memory{}, f.memories[personID]...), nil
}

func (f *Fake) CreateMemory(ctx context.Context, personID int64, key, value string, importance int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(api.OpCreateMemory, personID); err != nil {
		return 0, err
	}
	f.nextID++
	f.memories[personID] = append(f.memories[personID], model.Memory{
		ID: f.nextID, PersonID: personID, Key: key, Value: value, Importance: importance, CreatedAt: f.Now().UTC(),
	})
	return f.nextID, nil
}

// ErrBoom is a convenience failure for Fail.
var ErrBoom = errors.New("boom")
