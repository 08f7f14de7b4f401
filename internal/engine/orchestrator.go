// Package engine drives the game loop: kingdom creation, the end-turn
// pipeline, and event resolution. The orchestrator owns phase
// transitions; every other package computes, this one decides.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/aldric/regent/internal/entropy"
	"github.com/aldric/regent/internal/events"
	"github.com/aldric/regent/internal/ledger"
	"github.com/aldric/regent/internal/llm"
	"github.com/aldric/regent/internal/realm"
	"github.com/aldric/regent/internal/rules"
	"github.com/aldric/regent/internal/store"
)

// Orchestrator serializes all state transitions per kingdom. Turns for
// different kingdoms proceed concurrently; two operations on the same
// kingdom never interleave.
type Orchestrator struct {
	store   store.Store
	balance *rules.Balance
	ledger  *ledger.Ledger
	catalog *events.Catalog
	rng     entropy.Source
	log     *slog.Logger

	// chronicler, when set, writes the optional narrative chronicle.
	chronicler *llm.Client

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New wires an orchestrator over its collaborators.
func New(st store.Store, balance *rules.Balance, led *ledger.Ledger, cat *events.Catalog, rng entropy.Source, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		store:   st,
		balance: balance,
		ledger:  led,
		catalog: cat,
		rng:     rng,
		log:     log,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lock acquires the per-kingdom mutex, creating it on first use.
func (o *Orchestrator) lock(kingdomID string) func() {
	o.mu.Lock()
	m, ok := o.locks[kingdomID]
	if !ok {
		m = &sync.Mutex{}
		o.locks[kingdomID] = m
	}
	o.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// NewGame creates a kingdom with difficulty-scaled starting stats and
// bootstraps its resources. If resource initialization fails after
// retries the kingdom record is removed again; a half-initialized game
// is never left behind.
func (o *Orchestrator) NewGame(ctx context.Context, owner, name string, difficulty realm.Difficulty) (*realm.Kingdom, error) {
	if name == "" {
		return nil, &realm.ValidationError{Field: "name", Reason: "empty"}
	}

	stats := o.balance.StartingStatsFor(difficulty)
	k := &realm.Kingdom{
		ID:          uuid.NewString(),
		Owner:       owner,
		Name:        name,
		Difficulty:  difficulty,
		Stats:       stats,
		Previous:    stats,
		Turn:        1,
		Phase:       realm.PhaseAwaitingAction,
		LastUpdated: time.Now().UTC(),
	}

	if err := o.store.CreateKingdom(ctx, k); err != nil {
		return nil, err
	}

	if err := o.ledger.Initialize(ctx, k); err != nil {
		if delErr := o.store.DeleteKingdom(ctx, k.ID); delErr != nil {
			o.log.Error("cleanup after failed init", "kingdom", k.ID, "error", delErr)
		}
		return nil, err
	}

	o.log.Info("game started", "kingdom", k.ID, "name", name, "owner", owner, "difficulty", difficulty)
	return k, nil
}

// Kingdom fetches one kingdom.
func (o *Orchestrator) Kingdom(ctx context.Context, id string) (*realm.Kingdom, error) {
	return o.store.GetKingdom(ctx, id)
}

// Kingdoms lists an owner's kingdoms.
func (o *Orchestrator) Kingdoms(ctx context.Context, owner string) ([]*realm.Kingdom, error) {
	return o.store.ListKingdoms(ctx, owner)
}

// DeleteGame removes a kingdom and everything attached to it.
func (o *Orchestrator) DeleteGame(ctx context.Context, kingdomID string) error {
	unlock := o.lock(kingdomID)
	defer unlock()

	if err := o.store.DeleteKingdom(ctx, kingdomID); err != nil {
		return err
	}
	o.log.Info("game deleted", "kingdom", kingdomID)
	return nil
}

// PendingEvent returns the unresolved event blocking a kingdom's next
// turn, or ErrNotFound when none is pending.
func (o *Orchestrator) PendingEvent(ctx context.Context, kingdomID string) (*realm.Event, error) {
	k, err := o.store.GetKingdom(ctx, kingdomID)
	if err != nil {
		return nil, err
	}
	if k.PendingEventID == "" {
		return nil, realm.ErrNotFound
	}
	return o.store.GetEvent(ctx, k.PendingEventID)
}

// History lists a kingdom's most recent events, newest first.
func (o *Orchestrator) History(ctx context.Context, kingdomID string, limit int) ([]*realm.Event, error) {
	return o.store.ListEvents(ctx, kingdomID, limit)
}

// Chronicles lists a kingdom's storylines with archival summaries for
// the completed ones.
func (o *Orchestrator) Chronicles(ctx context.Context, kingdomID string) ([]*realm.EventChain, error) {
	return o.store.ListChains(ctx, kingdomID)
}

// Resources reports the kingdom's stockpiles.
func (o *Orchestrator) Resources(ctx context.Context, kingdomID string) ([]ledger.ResourceView, error) {
	return o.ledger.Report(ctx, kingdomID)
}

// AllocateWorkers reassigns a resource's workforce.
func (o *Orchestrator) AllocateWorkers(ctx context.Context, kingdomID, resourceID string, workers int) (*realm.Resource, error) {
	unlock := o.lock(kingdomID)
	defer unlock()
	return o.ledger.AllocateWorkers(ctx, resourceID, workers)
}

// UpgradeResource raises a resource's quality tier, paying in gold.
func (o *Orchestrator) UpgradeResource(ctx context.Context, kingdomID, resourceID string) (*realm.Resource, error) {
	unlock := o.lock(kingdomID)
	defer unlock()
	return o.ledger.UpgradeQuality(ctx, kingdomID, resourceID)
}

// Trend projects a resource's trajectory.
func (o *Orchestrator) Trend(ctx context.Context, resourceID string, turns int) ([]rules.TrendPoint, error) {
	return o.ledger.Trend(ctx, resourceID, turns)
}

// phaseError rejects an operation invalid in the kingdom's phase.
func phaseError(k *realm.Kingdom, want realm.Phase) error {
	switch k.Phase {
	case want:
		return nil
	case realm.PhaseGameOver:
		return fmt.Errorf("the game is over")
	case realm.PhaseEventPending:
		return fmt.Errorf("an event awaits your decision")
	default:
		return fmt.Errorf("no event is pending")
	}
}
