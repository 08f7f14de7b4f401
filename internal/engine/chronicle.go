package engine

import (
	"context"
	"fmt"

	"github.com/aldric/regent/internal/events"
	"github.com/aldric/regent/internal/llm"
)

// WithChronicler attaches the narrative client used for chronicle
// entries. A nil client is fine; the chronicle degrades to a factual
// digest.
func (o *Orchestrator) WithChronicler(c *llm.Client) *Orchestrator {
	o.chronicler = c
	return o
}

// chronicleEvents is how many recent events feed one chronicle entry.
const chronicleEvents = 10

// Chronicle writes a court-historian account of the kingdom's recent
// history from its resolved events and completed storylines.
func (o *Orchestrator) Chronicle(ctx context.Context, kingdomID string) (*llm.Chronicle, error) {
	k, err := o.store.GetKingdom(ctx, kingdomID)
	if err != nil {
		return nil, err
	}

	history, err := o.store.ListEvents(ctx, kingdomID, chronicleEvents)
	if err != nil {
		return nil, err
	}
	chains, err := o.store.ListChains(ctx, kingdomID)
	if err != nil {
		return nil, err
	}

	data := &llm.ChronicleData{
		KingdomName: k.Name,
		Turn:        k.Turn,
		Difficulty:  string(k.Difficulty),
		Population:  k.Stats.Population,
		Economy:     k.Stats.Economy,
		Military:    k.Stats.Military,
		Happiness:   k.Stats.Happiness,
	}
	for _, e := range history {
		if e.Resolved {
			data.Decisions = append(data.Decisions, e.Title)
		}
	}
	for _, c := range chains {
		if c.IsComplete {
			s := events.Summarize(c)
			data.Storylines = append(data.Storylines,
				fmt.Sprintf("%s: %s (%d chapters)", s.Type, s.Trigger, s.Steps))
		}
	}

	return llm.GenerateChronicle(ctx, o.chronicler, data)
}
