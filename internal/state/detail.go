package state

import "github.com/rcliao/corelab/internal/model"

// Detail holds the conversations and memories of one person. Results are
// tagged with the person id they were requested for; results for any other
// person are discarded.
type Detail struct {
	PersonID      int64
	Conversations []model.Conversation
	Memories      []model.Memory

	conversationsLoaded bool
	memoriesLoaded      bool
}

// Reset switches the detail to personID and discards the previous
// collections.
func (d *Detail) Reset(personID int64) {
	d.PersonID = personID
	d.Conversations = nil
	d.Memories = nil
	d.conversationsLoaded = false
	d.memoriesLoaded = false
}

// ConversationsLoaded replaces the conversations when personID is current.
func (d *Detail) ConversationsLoaded(personID int64, items []model.Conversation) bool {
	if personID != d.PersonID {
		return false
	}
	d.Conversations = items
	d.conversationsLoaded = true
	return true
}

// MemoriesLoaded replaces the memories when personID is current.
func (d *Detail) MemoriesLoaded(personID int64, items []model.Memory) bool {
	if personID != d.PersonID {
		return false
	}
	d.Memories = items
	d.memoriesLoaded = true
	return true
}

// ConversationCreated prepends a confirmed conversation when it belongs to
// the current person and is not already present.
func (d *Detail) ConversationCreated(c model.Conversation) bool {
	if c.PersonID != d.PersonID {
		return false
	}
	for _, have := range d.Conversations {
		if have.ID == c.ID {
			return false
		}
	}
	convs := make([]model.Conversation, 0, len(d.Conversations)+1)
	convs = append(convs, c)
	d.Conversations = append(convs, d.Conversations...)
	return true
}

// Populated reports whether both collections have been loaded.
func (d *Detail) Populated() bool {
	return d.conversationsLoaded && d.memoriesLoaded
}
