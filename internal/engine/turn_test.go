package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldric/regent/internal/entropy"
	"github.com/aldric/regent/internal/events"
	"github.com/aldric/regent/internal/ledger"
	"github.com/aldric/regent/internal/realm"
	"github.com/aldric/regent/internal/rules"
	"github.com/aldric/regent/internal/store"
)

// newTestOrchestrator wires an orchestrator over the in-memory store.
// catalogRng drives event and chain draws; growth variation is pinned
// to its midpoint.
func newTestOrchestrator(catalogRng entropy.Source) (*Orchestrator, store.Store) {
	st := store.NewMemory()
	balance := rules.DefaultBalance()
	led := ledger.New(st, balance, nil)
	cat := events.NewCatalog(balance, catalogRng, nil, nil)
	return New(st, balance, led, cat, entropy.Fixed(0.5), nil), st
}

func TestNewGame(t *testing.T) {
	o, st := newTestOrchestrator(entropy.Fixed(0.5))
	ctx := context.Background()

	k, err := o.NewGame(ctx, "tester", "Testmark", realm.DifficultyNormal)
	require.NoError(t, err)
	assert.Equal(t, realm.Stats{Population: 1000, Economy: 50, Military: 40, Happiness: 60}, k.Stats)
	assert.Equal(t, k.Stats, k.Previous)
	assert.Equal(t, 1, k.Turn)
	assert.Equal(t, realm.PhaseAwaitingAction, k.Phase)

	resources, err := st.ListResources(ctx, k.ID)
	require.NoError(t, err)
	assert.Len(t, resources, len(realm.ResourceTypes))
}

func TestNewGameRejectsEmptyName(t *testing.T) {
	o, _ := newTestOrchestrator(entropy.Fixed(0.5))

	_, err := o.NewGame(context.Background(), "tester", "", realm.DifficultyNormal)
	var verr *realm.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEndTurnAdvancesAndBlocks(t *testing.T) {
	o, _ := newTestOrchestrator(entropy.Fixed(0.5))
	ctx := context.Background()

	k, err := o.NewGame(ctx, "tester", "Testmark", realm.DifficultyNormal)
	require.NoError(t, err)

	result, err := o.EndTurn(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Before.Turn)
	assert.Equal(t, 2, result.After.Turn)
	assert.False(t, result.Outcome.GameOver)
	require.NotNil(t, result.Event)
	assert.Len(t, result.Resources, len(realm.ResourceTypes))

	k, err = o.Kingdom(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, k.Turn)
	assert.Equal(t, realm.PhaseEventPending, k.Phase)
	assert.Equal(t, result.Event.ID, k.PendingEventID)

	pending, err := o.PendingEvent(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Event.ID, pending.ID)

	// A second end-turn must wait for the event decision.
	_, err = o.EndTurn(ctx, k.ID)
	assert.ErrorContains(t, err, "event")
}

func TestResolveEventReturnsToAwaiting(t *testing.T) {
	o, _ := newTestOrchestrator(entropy.Fixed(0.5))
	ctx := context.Background()

	k, err := o.NewGame(ctx, "tester", "Testmark", realm.DifficultyNormal)
	require.NoError(t, err)
	turn, err := o.EndTurn(ctx, k.ID)
	require.NoError(t, err)

	result, err := o.ResolveEvent(ctx, k.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, turn.Event.Choices[0].Text, result.Choice.Text)
	assert.Nil(t, result.NextEvent)
	assert.Nil(t, result.ChainSummary)
	assert.False(t, result.Outcome.GameOver)

	k, err = o.Kingdom(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, realm.PhaseAwaitingAction, k.Phase)
	assert.Empty(t, k.PendingEventID)

	_, err = o.PendingEvent(ctx, k.ID)
	assert.ErrorIs(t, err, realm.ErrNotFound)

	// Nothing left to resolve.
	_, err = o.ResolveEvent(ctx, k.ID, 0)
	assert.Error(t, err)
}

func TestResolveEventRejectsBadChoice(t *testing.T) {
	o, _ := newTestOrchestrator(entropy.Fixed(0.5))
	ctx := context.Background()

	k, err := o.NewGame(ctx, "tester", "Testmark", realm.DifficultyNormal)
	require.NoError(t, err)
	_, err = o.EndTurn(ctx, k.ID)
	require.NoError(t, err)

	_, err = o.ResolveEvent(ctx, k.ID, 99)
	var verr *realm.ValidationError
	require.ErrorAs(t, err, &verr)

	// The kingdom is untouched by the rejected resolution.
	k, err = o.Kingdom(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, realm.PhaseEventPending, k.Phase)
	assert.NotEmpty(t, k.PendingEventID)
}

func TestEndTurnDefeat(t *testing.T) {
	o, st := newTestOrchestrator(entropy.Fixed(0.5))
	ctx := context.Background()

	k, err := o.NewGame(ctx, "tester", "Testmark", realm.DifficultyNormal)
	require.NoError(t, err)

	k.Stats.Happiness = 0
	require.NoError(t, st.UpdateKingdom(ctx, k))

	result, err := o.EndTurn(ctx, k.ID)
	require.NoError(t, err)
	require.True(t, result.Outcome.GameOver)
	assert.False(t, result.Outcome.Victory)
	assert.Nil(t, result.Event)

	k, err = o.Kingdom(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, realm.PhaseGameOver, k.Phase)
	assert.Empty(t, k.PendingEventID)

	_, err = o.EndTurn(ctx, k.ID)
	assert.ErrorContains(t, err, "over")
}

func TestChainFlow(t *testing.T) {
	// A low draw opens a storyline on the first end-turn.
	o, _ := newTestOrchestrator(entropy.Fixed(0.1))
	ctx := context.Background()

	k, err := o.NewGame(ctx, "tester", "Testmark", realm.DifficultyNormal)
	require.NoError(t, err)

	turn, err := o.EndTurn(ctx, k.ID)
	require.NoError(t, err)
	require.NotNil(t, turn.Event)
	assert.Equal(t, "The Envoy Arrives", turn.Event.Title)
	assert.Equal(t, 1, turn.Event.Step)

	chains, err := o.Chronicles(ctx, k.ID)
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, events.ChainDiplomatic, chains[0].Type)
	assert.False(t, chains[0].IsComplete)

	// Receiving the envoy continues the storyline immediately.
	result, err := o.ResolveEvent(ctx, k.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, result.NextEvent)
	assert.Equal(t, "Terms on the Table", result.NextEvent.Title)
	assert.Equal(t, 2, result.NextEvent.Step)
	assert.Nil(t, result.ChainSummary)

	k, err = o.Kingdom(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, realm.PhaseEventPending, k.Phase)
	assert.Equal(t, result.NextEvent.ID, k.PendingEventID)

	// Breaking off negotiations closes the storyline.
	result, err = o.ResolveEvent(ctx, k.ID, 2)
	require.NoError(t, err)
	assert.Nil(t, result.NextEvent)
	require.NotNil(t, result.ChainSummary)
	assert.Equal(t, events.ChainDiplomatic, result.ChainSummary.Type)
	assert.Equal(t, 2, result.ChainSummary.Steps)

	k, err = o.Kingdom(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, realm.PhaseAwaitingAction, k.Phase)

	chains, err = o.Chronicles(ctx, k.ID)
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.True(t, chains[0].IsComplete)
	assert.NotNil(t, chains[0].EndedAt)
	assert.Len(t, chains[0].Outcomes, 2)
}

func TestDeleteGameCascades(t *testing.T) {
	o, st := newTestOrchestrator(entropy.Fixed(0.5))
	ctx := context.Background()

	k, err := o.NewGame(ctx, "tester", "Testmark", realm.DifficultyNormal)
	require.NoError(t, err)
	_, err = o.EndTurn(ctx, k.ID)
	require.NoError(t, err)

	require.NoError(t, o.DeleteGame(ctx, k.ID))

	_, err = o.Kingdom(ctx, k.ID)
	assert.ErrorIs(t, err, realm.ErrNotFound)
	resources, err := st.ListResources(ctx, k.ID)
	require.NoError(t, err)
	assert.Empty(t, resources)
	history, err := o.History(ctx, k.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestOrchestratorResourceOperations(t *testing.T) {
	o, _ := newTestOrchestrator(entropy.Fixed(0.5))
	ctx := context.Background()

	k, err := o.NewGame(ctx, "tester", "Testmark", realm.DifficultyNormal)
	require.NoError(t, err)

	views, err := o.Resources(ctx, k.ID)
	require.NoError(t, err)
	require.Len(t, views, len(realm.ResourceTypes))

	r, err := o.AllocateWorkers(ctx, k.ID, views[0].ID, 250)
	require.NoError(t, err)
	assert.Equal(t, 250, r.WorkerAllocation)

	trend, err := o.Trend(ctx, views[0].ID, 4)
	require.NoError(t, err)
	assert.Len(t, trend, 4)
}

func TestChronicleFallsBackWithoutModel(t *testing.T) {
	o, _ := newTestOrchestrator(entropy.Fixed(0.5))
	ctx := context.Background()

	k, err := o.NewGame(ctx, "tester", "Testmark", realm.DifficultyNormal)
	require.NoError(t, err)
	_, err = o.EndTurn(ctx, k.ID)
	require.NoError(t, err)
	_, err = o.ResolveEvent(ctx, k.ID, 0)
	require.NoError(t, err)

	chronicle, err := o.Chronicle(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, chronicle.Turn)
	assert.Contains(t, chronicle.Content, "Testmark")
}

func TestAddImpactClamps(t *testing.T) {
	out := addImpact(realm.Stats{Population: 100, Economy: 95, Military: 5, Happiness: 50},
		realm.Impact{Population: -500, Economy: 20, Military: -10, Happiness: 5}, 10000)
	assert.Equal(t, realm.Stats{Population: 0, Economy: 100, Military: 0, Happiness: 55}, out)
}

func TestStatChangeNotes(t *testing.T) {
	before := realm.Stats{Population: 1000, Economy: 50, Military: 40, Happiness: 60}
	after := realm.Stats{Population: 1200, Economy: 44, Military: 41, Happiness: 60}

	notes := statChangeNotes(before, after)
	require.Len(t, notes, 2)
	assert.Equal(t, realm.NotifySuccess, notes[0].Type)
	assert.Contains(t, notes[0].Message, "Population")
	assert.Equal(t, realm.NotifyWarning, notes[1].Type)
	assert.Contains(t, notes[1].Message, "Economy")

	// Stats at zero can't report a percentage move.
	assert.Empty(t, statChangeNotes(realm.Stats{}, after))
}
