package memory

import (
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rcliao/corelab/internal/api"
	"github.com/rcliao/corelab/internal/api/apitest"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestModel(t *testing.T, fake *apitest.Fake) (*Model, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	m := New(context.Background(), fake, zap.New(core), WithClock(func() time.Time { return fixedNow }))
	m.SetSize(120, 40)
	drain(t, m, m.Init())
	return m, logs
}

// drain runs cmd and feeds every resulting message back into the model until
// nothing is left. Spinner ticks are dropped so the loop terminates.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			drain(t, m, c)
		}
	default:
		drain(t, m, m.Update(msg))
	}
}

// split separates a batched command into its parts without running the
// backend calls.
func split(cmd tea.Cmd) []tea.Cmd {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		return batch
	}
	return []tea.Cmd{func() tea.Msg { return msg }}
}

// reply runs the backend call of a batched command and returns its result
// without applying it.
func reply(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	for _, c := range split(cmd) {
		if msg := c(); msg != nil {
			if _, tick := msg.(spinner.TickMsg); !tick {
				return msg
			}
		}
	}
	t.Fatal("no backend reply in command")
	return nil
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEmptyListThenCreate(t *testing.T) {
	fake := apitest.NewFake()
	m, _ := newTestModel(t, fake)

	require.NoError(t, m.LoadErr())
	assert.False(t, m.Loading())
	assert.Empty(t, m.Persons())
	assert.Contains(t, m.View(), "No people yet")
	assert.False(t, m.List().Creating())

	m.List().SetName("  Ayşe  ")
	assert.True(t, m.List().CanCreate())
	drain(t, m, m.SubmitPerson())

	require.Len(t, m.Persons(), 1)
	p := m.Persons()[0]
	assert.Equal(t, "Ayşe", p.Name)
	assert.True(t, p.IsActive)
	assert.Equal(t, fixedNow, p.CreatedAt)
	assert.Equal(t, 1, fake.CountCalls(api.OpCreatePerson, 0))

	_, selected := m.Selected()
	assert.False(t, selected, "creating must not change the selection")
	assert.Equal(t, "", m.List().Name())
	assert.False(t, m.List().Creating())
}

func TestCreateKeepsExistingSelection(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Ali")
	m, _ := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))

	m.List().SetName("Bora")
	drain(t, m, m.SubmitPerson())

	require.Len(t, m.Persons(), 2)
	assert.Equal(t, "Bora", m.Persons()[1].Name)
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, a.ID, sel.ID)
}

func TestCreateEmptyNameIssuesNoRequest(t *testing.T) {
	fake := apitest.NewFake()
	m, _ := newTestModel(t, fake)

	m.List().SetName("   ")
	assert.False(t, m.List().CanCreate())
	assert.Nil(t, m.SubmitPerson())
	assert.Equal(t, 0, fake.CountCalls(api.OpCreatePerson, 0))
}

func TestCreateFailureKeepsListAndReenables(t *testing.T) {
	fake := apitest.NewFake()
	fake.Seed("Cem")
	m, logs := newTestModel(t, fake)
	fake.Fail[api.OpCreatePerson] = apitest.ErrBoom

	m.List().SetName("Duru")
	cmd := m.SubmitPerson()
	require.NotNil(t, cmd)
	assert.True(t, m.List().Creating())
	assert.Nil(t, m.SubmitPerson(), "control is disabled while a create is pending")

	drain(t, m, cmd)

	assert.Len(t, m.Persons(), 1)
	assert.False(t, m.List().Creating())
	assert.True(t, m.List().CanCreate())
	assert.Equal(t, "Duru", m.List().Name())
	assert.Equal(t, 1, logs.FilterMessage("create person failed").Len())
}

func TestSelectLoadsDetailOncePerSwitch(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Ece")
	b := fake.Seed("Fırat")
	fake.SeedConversation(a.ID, "coffee")
	fake.SeedMemory(a.ID, "city", "Ankara", 3)
	fake.SeedConversation(b.ID, "climbing")
	m, _ := newTestModel(t, fake)

	drain(t, m, m.Select(a.ID))
	assert.Equal(t, 1, fake.CountCalls(api.OpGetConversations, a.ID))
	assert.Equal(t, 1, fake.CountCalls(api.OpGetMemories, a.ID))
	assert.True(t, m.Detail().Populated())
	require.Len(t, m.Detail().Memories(), 1)
	assert.Contains(t, m.View(), "★★★")

	assert.Nil(t, m.Select(a.ID), "reselecting the same person does not reload")

	drain(t, m, m.Select(b.ID))
	assert.Equal(t, 1, fake.CountCalls(api.OpGetConversations, b.ID))
	assert.Equal(t, 1, fake.CountCalls(api.OpGetMemories, b.ID))
	assert.Equal(t, 1, fake.CountCalls(api.OpGetConversations, a.ID))

	require.Len(t, m.Detail().Conversations(), 1)
	assert.Equal(t, "climbing", m.Detail().Conversations()[0].Content)
	assert.Empty(t, m.Detail().Memories())
	assert.Contains(t, m.View(), "No memories extracted yet")
}

func TestSelectUnknownPerson(t *testing.T) {
	m, _ := newTestModel(t, apitest.NewFake())
	assert.Nil(t, m.Select(99))
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestStaleDetailResultsDiscarded(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Gül")
	b := fake.Seed("Hakan")
	fake.SeedConversation(a.ID, "from a")
	fake.SeedConversation(b.ID, "from b")
	m, logs := newTestModel(t, fake)

	pendingA := split(m.Select(a.ID))
	require.Len(t, pendingA, 2)
	drain(t, m, m.Select(b.ID))

	for _, c := range pendingA {
		drain(t, m, c)
	}

	require.Len(t, m.Detail().Conversations(), 1)
	assert.Equal(t, "from b", m.Detail().Conversations()[0].Content)
	assert.Equal(t, b.ID, m.Detail().Person().ID)
	assert.Equal(t, 1, logs.FilterMessage("discarded stale conversations").Len())
}

func TestDetailLoadFailureIsLogged(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Irmak")
	m, logs := newTestModel(t, fake)
	fake.Fail[api.OpGetMemories] = apitest.ErrBoom

	drain(t, m, m.Select(a.ID))

	assert.False(t, m.Detail().Populated())
	assert.Empty(t, m.Detail().Memories())
	entries := logs.FilterMessage("load memories failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestNotePrependsToSelectedPersonOnly(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Kaan")
	b := fake.Seed("Lale")
	fake.SeedConversation(a.ID, "older")
	m, _ := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))

	m.Detail().SetNoteDraft("  lunch at the harbour  ")
	drain(t, m, m.SubmitNote())

	convs := m.Detail().Conversations()
	require.Len(t, convs, 2)
	assert.Equal(t, "lunch at the harbour", convs[0].Content)
	assert.Equal(t, a.ID, convs[0].PersonID)
	assert.Equal(t, fixedNow, convs[0].CreatedAt)
	assert.Equal(t, "older", convs[1].Content)
	assert.Equal(t, "", m.Detail().NoteDraft())
	assert.False(t, m.Detail().SavingNote())

	drain(t, m, m.Select(b.ID))
	assert.Empty(t, m.Detail().Conversations())
}

func TestNoteForPreviousPersonNotApplied(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Mert")
	b := fake.Seed("Nil")
	m, _ := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))

	m.Detail().SetNoteDraft("for Mert")
	pending := m.SubmitNote()
	require.NotNil(t, pending)
	drain(t, m, m.Select(b.ID))
	drain(t, m, pending)

	assert.Empty(t, m.Detail().Conversations())
	assert.False(t, m.Detail().SavingNote())
	assert.Equal(t, 1, fake.CountCalls(api.OpCreateConversation, a.ID))
}

func TestLateNoteReplyAfterReloadNotDuplicated(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Ada")
	b := fake.Seed("Bora")
	m, _ := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))

	m.Detail().SetNoteDraft("hello")
	created := reply(t, m.SubmitNote())
	drain(t, m, m.Select(b.ID))
	drain(t, m, m.Select(a.ID))
	require.Len(t, m.Detail().Conversations(), 1)

	drain(t, m, m.Update(created))

	convs := m.Detail().Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, "hello", convs[0].Content)
	assert.False(t, m.Detail().SavingNote())

	m.Detail().SetNoteDraft("again")
	drain(t, m, m.SubmitNote())
	assert.Len(t, m.Detail().Conversations(), 2)
}

func TestEmptyNoteIssuesNoRequest(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Oya")
	m, _ := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))

	m.Detail().SetNoteDraft(" \n ")
	assert.Nil(t, m.SubmitNote())
	assert.Equal(t, 0, fake.CountCalls(api.OpCreateConversation, 0))
}

func TestEditSaveReplacesMatchingPerson(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Pelin")
	b := fake.Seed("Rüzgar")
	m, _ := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))

	m.Detail().BeginEdit()
	name, notes := m.Detail().Drafts()
	assert.Equal(t, "Pelin", name)
	assert.Equal(t, "", notes)

	m.Detail().SetDrafts("Pelin Y.", "likes jazz")
	drain(t, m, m.SaveEdit())

	assert.False(t, m.Detail().Editing())
	assert.False(t, m.Detail().Saving())
	require.Len(t, m.Persons(), 2)
	assert.Equal(t, "Pelin Y.", m.Persons()[0].Name)
	assert.Equal(t, "likes jazz", m.Persons()[0].Notes)
	assert.Equal(t, b, m.Persons()[1])

	sel, _ := m.Selected()
	assert.Equal(t, "Pelin Y.", sel.Name)
	assert.Equal(t, "Pelin Y.", m.Detail().Person().Name)

	stored, _ := fake.Person(a.ID)
	assert.Equal(t, "likes jazz", stored.Notes)
	assert.True(t, stored.IsActive)
}

func TestEditFailureKeepsDraftsAndRecord(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Sena")
	m, logs := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))
	fake.Fail[api.OpUpdatePerson] = apitest.ErrBoom

	m.Detail().BeginEdit()
	m.Detail().SetDrafts("Sena K.", "")
	drain(t, m, m.SaveEdit())

	assert.True(t, m.Detail().Editing())
	assert.False(t, m.Detail().Saving())
	name, _ := m.Detail().Drafts()
	assert.Equal(t, "Sena K.", name)
	assert.Equal(t, "Sena", m.Persons()[0].Name)
	assert.Equal(t, 1, logs.FilterMessage("update person failed").Len())
}

func TestEditCancelDiscardsDrafts(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Tuna")
	m, _ := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))

	m.Detail().BeginEdit()
	m.Detail().SetDrafts("changed", "changed")
	m.Detail().CancelEdit()

	assert.False(t, m.Detail().Editing())
	assert.Nil(t, m.SaveEdit())
	assert.Equal(t, 0, fake.CountCalls(api.OpUpdatePerson, 0))

	m.Detail().BeginEdit()
	name, _ := m.Detail().Drafts()
	assert.Equal(t, "Tuna", name)
}

func TestEditEmptyNameNotSaved(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Umut")
	m, _ := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))

	m.Detail().BeginEdit()
	m.Detail().SetDrafts("  ", "notes")
	assert.Nil(t, m.SaveEdit())
	assert.True(t, m.Detail().Editing())
}

func TestDeactivateFlipsOnlyActiveFlag(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Volkan")
	fake.Seed("Yasemin")
	m, _ := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))
	before := m.Persons()[0]

	drain(t, m, m.Deactivate())

	require.Len(t, m.Persons(), 2)
	after := m.Persons()[0]
	assert.False(t, after.IsActive)
	after.IsActive = true
	assert.Equal(t, before, after)

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.False(t, sel.IsActive)
	assert.False(t, m.Detail().Deactivating())

	assert.Nil(t, m.Select(a.ID), "inactive person stays selectable")
	sel, ok = m.Selected()
	assert.True(t, ok)
	assert.Equal(t, a.ID, sel.ID)
}

func TestEditRefusedWhileDeactivating(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Ada")
	m, _ := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))

	pending := m.Deactivate()
	require.NotNil(t, pending)
	assert.Nil(t, m.Detail().BeginEdit())
	assert.False(t, m.Detail().Editing())
	assert.Nil(t, m.SaveEdit())

	drain(t, m, pending)
	m.Detail().BeginEdit()
	m.Detail().SetDrafts("Ada L.", "")
	drain(t, m, m.SaveEdit())

	stored, _ := fake.Person(a.ID)
	assert.Equal(t, "Ada L.", stored.Name)
	assert.False(t, stored.IsActive)
	assert.Equal(t, 2, fake.CountCalls(api.OpUpdatePerson, a.ID))
}

func TestOpenEditWaitsForDeactivate(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Ada")
	m, _ := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))

	m.Detail().BeginEdit()
	m.Detail().SetDrafts("Ada L.", "")
	pending := m.Deactivate()
	require.NotNil(t, pending)
	assert.Nil(t, m.SaveEdit())
	assert.True(t, m.Detail().Editing())

	drain(t, m, pending)
	drain(t, m, m.SaveEdit())

	stored, _ := fake.Person(a.ID)
	assert.Equal(t, "Ada L.", stored.Name)
	assert.False(t, stored.IsActive)
	sel, _ := m.Selected()
	assert.Equal(t, "Ada L.", sel.Name)
	assert.False(t, sel.IsActive)
}

func TestDeactivateRefusedWhileSaving(t *testing.T) {
	fake := apitest.NewFake()
	a := fake.Seed("Ada")
	m, _ := newTestModel(t, fake)
	drain(t, m, m.Select(a.ID))

	m.Detail().BeginEdit()
	m.Detail().SetDrafts("Ada L.", "")
	pending := m.SaveEdit()
	require.NotNil(t, pending)
	assert.Nil(t, m.Deactivate())

	drain(t, m, pending)
	drain(t, m, m.Deactivate())

	stored, _ := fake.Person(a.ID)
	assert.Equal(t, "Ada L.", stored.Name)
	assert.False(t, stored.IsActive)
}

func TestMountFailureShowsErrorAndRetries(t *testing.T) {
	fake := apitest.NewFake()
	fake.Seed("Zafer")
	fake.Fail[api.OpGetPersons] = apitest.ErrBoom
	m, _ := newTestModel(t, fake)

	require.Error(t, m.LoadErr())
	assert.Contains(t, m.View(), "Could not load people")
	assert.Nil(t, m.Update(keyPress("a")))

	delete(fake.Fail, api.OpGetPersons)
	retry := m.Update(keyPress("r"))
	require.NotNil(t, retry)
	assert.True(t, m.Loading())
	assert.Contains(t, m.View(), "Retrying...")
	assert.Nil(t, m.Update(keyPress("r")))
	drain(t, m, retry)

	assert.NoError(t, m.LoadErr())
	require.Len(t, m.Persons(), 1)
	assert.Equal(t, 2, fake.CountCalls(api.OpGetPersons, 0))
}

func TestListKeysSelectRow(t *testing.T) {
	fake := apitest.NewFake()
	fake.Seed("Ahmet")
	b := fake.Seed("Berk")
	m, _ := newTestModel(t, fake)

	m.Update(keyPress("j"))
	drain(t, m, m.Update(tea.KeyMsg{Type: tea.KeyEnter}))

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, b.ID, sel.ID)
	assert.Equal(t, 1, fake.CountCalls(api.OpGetConversations, b.ID))
}
