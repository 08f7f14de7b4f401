package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/aldric/regent/internal/events"
	"github.com/aldric/regent/internal/realm"
	"github.com/aldric/regent/internal/rules"
)

// EventResult is the consequence of resolving a pending event.
type EventResult struct {
	Choice realm.Choice `json:"choice"`
	Stats  realm.Stats  `json:"stats"`

	Outcome rules.Outcome `json:"outcome"`

	// NextEvent is set when the resolved choice continued a storyline;
	// the kingdom stays in the event phase until it too is resolved.
	NextEvent *realm.Event `json:"next_event,omitempty"`

	// ChainSummary is set when this resolution completed a storyline.
	ChainSummary *events.ChainSummary `json:"chain_summary,omitempty"`
}

// ResolveEvent applies a player's choice to the pending event: the
// impact is folded into stats exactly as displayed (difficulty scaling
// happened when the event was formatted), the event is marked
// resolved, any storyline advances or closes, and the outcome is
// re-evaluated — an event can end the game.
func (o *Orchestrator) ResolveEvent(ctx context.Context, kingdomID string, choiceIndex int) (*EventResult, error) {
	unlock := o.lock(kingdomID)
	defer unlock()

	k, err := o.store.GetKingdom(ctx, kingdomID)
	if err != nil {
		return nil, err
	}
	if err := phaseError(k, realm.PhaseEventPending); err != nil {
		return nil, fmt.Errorf("cannot resolve event: %w", err)
	}
	if k.PendingEventID == "" {
		return nil, realm.ErrNotFound
	}

	event, err := o.store.GetEvent(ctx, k.PendingEventID)
	if err != nil {
		return nil, err
	}
	choice, err := events.ResolveChoice(event, choiceIndex)
	if err != nil {
		return nil, err
	}

	result := &EventResult{Choice: choice}
	result.Stats = o.balance.ApplyImpact(k.Stats, choice.Impact)

	event.Resolved = true
	if err := o.store.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}

	if event.ChainID != "" {
		next, summary, err := o.advanceChain(ctx, k, event, choice)
		if err != nil {
			return nil, err
		}
		result.NextEvent = next
		result.ChainSummary = summary
	}

	result.Outcome = o.balance.EvaluateOutcome(result.Stats)

	k.Stats = result.Stats
	k.LastUpdated = time.Now().UTC()
	switch {
	case result.Outcome.GameOver:
		k.Phase = realm.PhaseGameOver
		k.PendingEventID = ""
	case result.NextEvent != nil:
		k.PendingEventID = result.NextEvent.ID
	default:
		k.Phase = realm.PhaseAwaitingAction
		k.PendingEventID = ""
	}

	if err := o.store.UpdateKingdom(ctx, k); err != nil {
		return nil, err
	}

	o.log.Info("event resolved", "kingdom", k.ID, "event", event.Title, "choice", choice.Text)
	return result, nil
}

// advanceChain records the outcome on the event's storyline and either
// closes it or materializes the next step. A choice that neither
// continues nor ends the chain closes it.
func (o *Orchestrator) advanceChain(ctx context.Context, k *realm.Kingdom, event *realm.Event, choice realm.Choice) (*realm.Event, *events.ChainSummary, error) {
	chain, err := o.store.GetChain(ctx, event.ChainID)
	if err != nil {
		return nil, nil, err
	}
	if chain.IsComplete {
		return nil, nil, &realm.ValidationError{Field: "chain", Reason: "already complete"}
	}

	now := time.Now().UTC()
	chain.CurrentStep = event.Step
	chain.Outcomes = append(chain.Outcomes, realm.ChainOutcome{
		Step:      event.Step,
		Choice:    choice.Text,
		Impact:    choice.Impact,
		Timestamp: now,
	})

	continues := choice.ContinueChain && !choice.EndChain && event.Step < chain.MaxSteps
	if !continues {
		chain.IsComplete = true
		chain.EndedAt = &now
		if err := o.store.UpdateChain(ctx, chain); err != nil {
			return nil, nil, err
		}
		summary := events.Summarize(chain)
		o.log.Info("storyline complete", "kingdom", k.ID, "type", chain.Type, "steps", chain.CurrentStep)
		return nil, &summary, nil
	}

	if err := o.store.UpdateChain(ctx, chain); err != nil {
		return nil, nil, err
	}

	next, err := o.catalog.NextChainEvent(ctx, chain, k, choice.NextEvent)
	if err != nil {
		return nil, nil, err
	}
	if err := o.store.CreateEvent(ctx, next); err != nil {
		return nil, nil, err
	}
	return next, nil, nil
}
