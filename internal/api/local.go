package api

import (
	"context"

	"github.com/rcliao/corelab/internal/events"
	"github.com/rcliao/corelab/internal/model"
	"github.com/rcliao/corelab/internal/store"
)

// Local invokes the store in-process and publishes an event after each
// successful write.
type Local struct {
	store store.Store
	bus   *events.Bus
}

// NewLocal creates a Local backend. bus may be nil.
func NewLocal(s store.Store, bus *events.Bus) *Local {
	return &Local{store: s, bus: bus}
}

func (l *Local) publish(kind events.Kind, data map[string]interface{}) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(events.Event{Kind: kind, Source: "memory", Data: data})
}

func (l *Local) GetPersons(ctx context.Context) ([]model.Person, error) {
	persons, err := l.store.ListPersons(ctx, store.ListPersonsParams{})
	return persons, wrapErr(OpGetPersons, err)
}

func (l *Local) CreatePerson(ctx context.Context, name, notes string) (int64, error) {
	id, err := l.store.CreatePerson(ctx, store.CreatePersonParams{Name: name, Notes: notes})
	if err != nil {
		return 0, wrapErr(OpCreatePerson, err)
	}
	l.publish(events.PersonCreated, map[string]interface{}{"id": id, "name": name})
	return id, nil
}

func (l *Local) UpdatePerson(ctx context.Context, id int64, name, notes string, isActive bool) error {
	err := l.store.UpdatePerson(ctx, store.UpdatePersonParams{
		ID:       id,
		Name:     name,
		Notes:    notes,
		IsActive: isActive,
	})
	if err != nil {
		return wrapErr(OpUpdatePerson, err)
	}
	l.publish(events.PersonUpdated, map[string]interface{}{"id": id, "is_active": isActive})
	return nil
}

func (l *Local) GetConversations(ctx context.Context, personID int64) ([]model.Conversation, error) {
	convs, err := l.store.ListConversations(ctx, personID)
	return convs, wrapErr(OpGetConversations, err)
}

func (l *Local) CreateConversation(ctx context.Context, personID int64, content, convContext string) (int64, error) {
	id, err := l.store.CreateConversation(ctx, store.CreateConversationParams{
		PersonID: personID,
		Content:  content,
		Context:  convContext,
	})
	if err != nil {
		return 0, wrapErr(OpCreateConversation, err)
	}
	l.publish(events.ConversationCreated, map[string]interface{}{"id": id, "person_id": personID})
	return id, nil
}

func (l *Local) GetMemories(ctx context.Context, personID int64) ([]model.Memory, error) {
	mems, err := l.store.ListMemories(ctx, personID)
	return mems, wrapErr(OpGetMemories, err)
}

func (l *Local) CreateMemory(ctx context.Context, personID int64, key, value string, importance int) (int64, error) {
	id, err := l.store.CreateMemory(ctx, store.CreateMemoryParams{
		PersonID:   personID,
		Key:        key,
		Value:      value,
		Importance: importance,
	})
	if err != nil {
		return 0, wrapErr(OpCreateMemory, err)
	}
	l.publish(events.MemoryCreated, map[string]interface{}{"id": id, "person_id": personID, "key": key})
	return id, nil
}
