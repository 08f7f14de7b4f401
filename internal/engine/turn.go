package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/aldric/regent/internal/realm"
	"github.com/aldric/regent/internal/rules"
)

// TurnResult is everything that happened during one end-turn: the
// before/after snapshots, stat deltas, advisory notifications, the
// terminal evaluation, and the next pending event when the game goes
// on.
type TurnResult struct {
	Before realm.Snapshot `json:"before"`
	After  realm.Snapshot `json:"after"`
	Deltas realm.Stats    `json:"deltas"`

	Resources     []*realm.Resource    `json:"resources"`
	Notifications []realm.Notification `json:"notifications"`

	Outcome rules.Outcome `json:"outcome"`
	Event   *realm.Event  `json:"event,omitempty"`
}

// significantChangePct marks a stat move worth calling out.
const significantChangePct = 10

// EndTurn advances a kingdom one turn: stat growth, resource
// processing, shortage penalties, outcome evaluation, and — if the
// game continues — the next narrative event. The kingdom record is
// persisted exactly once, at the end; a failed persist aborts the turn
// with the stored state unchanged.
func (o *Orchestrator) EndTurn(ctx context.Context, kingdomID string) (*TurnResult, error) {
	unlock := o.lock(kingdomID)
	defer unlock()

	k, err := o.store.GetKingdom(ctx, kingdomID)
	if err != nil {
		return nil, err
	}
	if err := phaseError(k, realm.PhaseAwaitingAction); err != nil {
		return nil, fmt.Errorf("cannot end turn: %w", err)
	}

	result := &TurnResult{Before: realm.SnapshotOf(k)}
	before := k.Stats

	// Stat growth.
	rates := o.balance.ComputeGrowthRates(k.Stats, k.Difficulty)
	growth := o.balance.ApplyGrowth(k.Stats, rates, o.rng)
	k.Stats = growth.Stats

	// Resource production, consumption and spoilage.
	turn, err := o.ledger.ProcessTurn(ctx, k)
	if err != nil {
		return nil, err
	}
	result.Resources = turn.Resources
	result.Notifications = append(result.Notifications, turn.Notifications...)

	// Shortage penalties and surplus boons feed back into stats,
	// unscaled by difficulty.
	penalty, notes := o.balance.StatusPenalties(turn.Resources)
	if !penalty.IsZero() {
		k.Stats = addImpact(k.Stats, penalty, o.balance.MaxPopulation)
		for _, n := range notes {
			result.Notifications = append(result.Notifications, realm.Notification{
				Type:    realm.NotifyWarning,
				Message: n,
			})
		}
	}

	result.Notifications = append(result.Notifications, statChangeNotes(before, k.Stats)...)

	result.Outcome = o.balance.EvaluateOutcome(k.Stats)
	for _, w := range result.Outcome.Warnings {
		result.Notifications = append(result.Notifications, realm.Notification{
			Type:    realm.NotifyWarning,
			Message: w,
		})
	}

	k.Previous = before
	k.Turn++
	k.LastUpdated = time.Now().UTC()
	result.Deltas = statDeltas(before, k.Stats)
	result.After = realm.SnapshotOf(k)

	if result.Outcome.GameOver {
		k.Phase = realm.PhaseGameOver
		k.PendingEventID = ""
		if err := o.store.UpdateKingdom(ctx, k); err != nil {
			return nil, err
		}
		o.log.Info("game over", "kingdom", k.ID, "turn", k.Turn, "victory", result.Outcome.Victory)
		return result, nil
	}

	// Next narrative event. A storyline already in progress suppresses
	// the chance of opening another.
	chainActive, err := o.hasActiveChain(ctx, k.ID)
	if err != nil {
		return nil, err
	}
	generated := o.catalog.Generate(ctx, k, chainActive)
	result.Notifications = append(result.Notifications, generated.Notifications...)

	if generated.Chain != nil {
		if err := o.store.CreateChain(ctx, generated.Chain); err != nil {
			return nil, err
		}
	}
	if err := o.store.CreateEvent(ctx, generated.Event); err != nil {
		return nil, err
	}

	k.Phase = realm.PhaseEventPending
	k.PendingEventID = generated.Event.ID
	if err := o.store.UpdateKingdom(ctx, k); err != nil {
		return nil, err
	}

	result.Event = generated.Event
	o.log.Info("turn processed", "kingdom", k.ID, "turn", k.Turn, "event", generated.Event.Title)
	return result, nil
}

func (o *Orchestrator) hasActiveChain(ctx context.Context, kingdomID string) (bool, error) {
	chains, err := o.store.ListChains(ctx, kingdomID)
	if err != nil {
		return false, err
	}
	for _, c := range chains {
		if !c.IsComplete {
			return true, nil
		}
	}
	return false, nil
}

// addImpact folds a raw stat impact into stats with domain clamping
// and no difficulty scaling.
func addImpact(s realm.Stats, i realm.Impact, maxPopulation int) realm.Stats {
	clamp := func(v, max int) int {
		if v < 0 {
			return 0
		}
		if v > max {
			return max
		}
		return v
	}
	return realm.Stats{
		Population: clamp(s.Population+i.Population, maxPopulation),
		Economy:    clamp(s.Economy+i.Economy, 100),
		Military:   clamp(s.Military+i.Military, 100),
		Happiness:  clamp(s.Happiness+i.Happiness, 100),
	}
}

func statDeltas(before, after realm.Stats) realm.Stats {
	return realm.Stats{
		Population: after.Population - before.Population,
		Economy:    after.Economy - before.Economy,
		Military:   after.Military - before.Military,
		Happiness:  after.Happiness - before.Happiness,
	}
}

// statChangeNotes flags stats that moved at least 10% in one turn.
func statChangeNotes(before, after realm.Stats) []realm.Notification {
	type entry struct {
		name     string
		from, to int
	}
	entries := []entry{
		{"Population", before.Population, after.Population},
		{"Economy", before.Economy, after.Economy},
		{"Military", before.Military, after.Military},
		{"Happiness", before.Happiness, after.Happiness},
	}

	var notes []realm.Notification
	for _, e := range entries {
		if e.from == 0 {
			continue
		}
		change := (e.to - e.from) * 100 / e.from
		switch {
		case change >= significantChangePct:
			notes = append(notes, realm.Notification{
				Type:    realm.NotifySuccess,
				Message: fmt.Sprintf("%s surged %d%% this turn", e.name, change),
			})
		case change <= -significantChangePct:
			notes = append(notes, realm.Notification{
				Type:    realm.NotifyWarning,
				Message: fmt.Sprintf("%s fell %d%% this turn", e.name, -change),
			})
		}
	}
	return notes
}
