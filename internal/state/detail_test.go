package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/corelab/internal/model"
)

func TestDetailResetDiscardsPrevious(t *testing.T) {
	d := &Detail{}
	d.Reset(1)
	d.ConversationsLoaded(1, []model.Conversation{{ID: 1, PersonID: 1}})
	d.MemoriesLoaded(1, []model.Memory{{ID: 2, PersonID: 1}})
	require.True(t, d.Populated())

	d.Reset(2)

	assert.Equal(t, int64(2), d.PersonID)
	assert.Empty(t, d.Conversations)
	assert.Empty(t, d.Memories)
	assert.False(t, d.Populated())
}

func TestDetailDiscardsStaleResults(t *testing.T) {
	d := &Detail{}
	d.Reset(1)
	d.Reset(2)

	assert.False(t, d.ConversationsLoaded(1, []model.Conversation{{ID: 9, PersonID: 1}}))
	assert.False(t, d.MemoriesLoaded(1, []model.Memory{{ID: 10, PersonID: 1}}))
	assert.Empty(t, d.Conversations)
	assert.Empty(t, d.Memories)

	assert.True(t, d.ConversationsLoaded(2, []model.Conversation{{ID: 11, PersonID: 2}}))
	assert.Len(t, d.Conversations, 1)
}

func TestDetailPartialPopulation(t *testing.T) {
	d := &Detail{}
	d.Reset(3)

	d.MemoriesLoaded(3, nil)
	assert.False(t, d.Populated())

	d.ConversationsLoaded(3, nil)
	assert.True(t, d.Populated())
}

func TestDetailConversationCreatedPrepends(t *testing.T) {
	d := &Detail{}
	d.Reset(5)
	d.ConversationsLoaded(5, []model.Conversation{{ID: 1, PersonID: 5, Content: "old"}})

	ok := d.ConversationCreated(ApplyConversationCreate(5, ConversationFields{Content: "new"}, 2, fixedNow))

	require.True(t, ok)
	require.Len(t, d.Conversations, 2)
	assert.Equal(t, "new", d.Conversations[0].Content)
	assert.Equal(t, "old", d.Conversations[1].Content)
}

func TestDetailConversationCreatedSkipsKnownID(t *testing.T) {
	d := &Detail{}
	d.Reset(5)
	d.ConversationsLoaded(5, []model.Conversation{{ID: 3, PersonID: 5, Content: "hello"}})

	ok := d.ConversationCreated(model.Conversation{ID: 3, PersonID: 5, Content: "hello"})

	assert.False(t, ok)
	assert.Len(t, d.Conversations, 1)
}

func TestDetailConversationForOtherPersonIgnored(t *testing.T) {
	d := &Detail{}
	d.Reset(5)
	d.ConversationsLoaded(5, []model.Conversation{{ID: 1, PersonID: 5}})

	ok := d.ConversationCreated(model.Conversation{ID: 2, PersonID: 6, Content: "elsewhere"})

	assert.False(t, ok)
	assert.Len(t, d.Conversations, 1)
}
