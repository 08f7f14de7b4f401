package events

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/aldric/regent/internal/entropy"
	"github.com/aldric/regent/internal/realm"
	"github.com/aldric/regent/internal/rules"
)

// chainStartChance is the probability a standalone turn opens a new
// storyline instead of a one-off event.
const chainStartChance = 0.15

// Catalog selects and produces the event presented after each turn.
// With a proposer wired in it prefers model-generated content and
// falls back to templates on any failure; without one it serves
// templates directly.
type Catalog struct {
	balance  *rules.Balance
	rng      entropy.Source
	proposer Proposer
	log      *slog.Logger
}

// NewCatalog builds a catalog. proposer may be nil for template-only
// operation.
func NewCatalog(balance *rules.Balance, rng entropy.Source, proposer Proposer, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{balance: balance, rng: rng, proposer: proposer, log: log}
}

// Base category weights for the event draw. INTERNAL and EXTERNAL
// dominate; true randomness stays the rarity.
var categoryWeights = map[realm.EventCategory]float64{
	realm.EventInternal: 0.4,
	realm.EventExternal: 0.4,
	realm.EventRandom:   0.2,
}

// SelectCategory picks the event category for a kingdom's situation.
// Acute distress overrides the weighted draw: a desperate populace or
// an empty treasury forces INTERNAL, a dominant military invites
// EXTERNAL attention. Otherwise each category's base weight doubles
// for every associated stat below 50 — a weak economy or an unhappy
// populace boosts INTERNAL, a weak military boosts EXTERNAL.
func (c *Catalog) SelectCategory(s realm.Stats) realm.EventCategory {
	switch {
	case s.Happiness < 30 || s.Economy < 20:
		return realm.EventInternal
	case s.Military > 70:
		return realm.EventExternal
	}

	weights := map[realm.EventCategory]float64{
		realm.EventInternal: categoryWeights[realm.EventInternal],
		realm.EventExternal: categoryWeights[realm.EventExternal],
		realm.EventRandom:   categoryWeights[realm.EventRandom],
	}
	if s.Economy < 50 {
		weights[realm.EventInternal] *= 2
	}
	if s.Happiness < 50 {
		weights[realm.EventInternal] *= 2
	}
	if s.Military < 50 {
		weights[realm.EventExternal] *= 2
	}

	total := weights[realm.EventInternal] + weights[realm.EventExternal] + weights[realm.EventRandom]
	roll := c.rng.Float64() * total
	for _, cat := range []realm.EventCategory{realm.EventInternal, realm.EventExternal, realm.EventRandom} {
		roll -= weights[cat]
		if roll < 0 {
			return cat
		}
	}
	return realm.EventRandom
}

// Generated is the product of one event draw.
type Generated struct {
	Event *realm.Event

	// Chain is non-nil when this draw opened a new storyline; the
	// caller persists it alongside the event.
	Chain *realm.EventChain

	Notifications []realm.Notification
}

// Generate produces the pending event for a kingdom's new turn. When
// no storyline is active there is a small chance the draw opens one.
// A proposer failure is downgraded to an INFO notification and a
// template event — event generation itself never fails.
func (c *Catalog) Generate(ctx context.Context, k *realm.Kingdom, chainActive bool) *Generated {
	if !chainActive && c.rng.Float64() < chainStartChance {
		return c.startChain(k)
	}

	category := c.SelectCategory(k.Stats)
	out := &Generated{}

	if c.proposer != nil {
		proposal, err := c.proposer.Propose(ctx, Request{Kingdom: k, Category: category})
		if err == nil {
			err = proposal.Validate()
		}
		if err == nil {
			out.Event = &realm.Event{
				ID:          uuid.NewString(),
				KingdomID:   k.ID,
				Owner:       k.Owner,
				Title:       proposal.Title,
				Description: proposal.Description,
				Type:        category,
				Choices:     proposal.Choices,
				Timestamp:   time.Now().UTC(),
			}
			c.scaleChoices(out.Event, k.Difficulty)
			return out
		}
		c.log.Warn("event proposal rejected, using template", "kingdom", k.ID, "category", category, "error", err)
		out.Notifications = append(out.Notifications, realm.Notification{
			Type:    realm.NotifyInfo,
			Message: "The court scribes improvised this turn's event.",
		})
	}

	out.Event = c.fromTemplate(k, category)
	return out
}

// startChain opens a storyline: distressed kingdoms draw the CRISIS
// arc, stable ones the DIPLOMATIC arc.
func (c *Catalog) startChain(k *realm.Kingdom) *Generated {
	chainType := ChainDiplomatic
	if k.Stats.Happiness < 50 || k.Stats.Economy < 50 {
		chainType = ChainCrisis
	}

	chain := NewChain(chainType, k, c.balance.ChainMaxSteps)
	tpl := chainTemplates[chainType]
	event := chainEvent(tpl, tpl.Start, chain, k, 1)
	c.scaleChoices(event, k.Difficulty)

	c.log.Info("storyline opened", "kingdom", k.ID, "type", chainType)
	return &Generated{Event: event, Chain: chain}
}

// NextChainEvent materializes the follow-up step of an active
// storyline. With a proposer wired in the step is model-written
// against the chain context; otherwise, or on any proposer failure,
// nextKey selects the template scene — an empty or unknown key
// restarts from the template's first step.
func (c *Catalog) NextChainEvent(ctx context.Context, chain *realm.EventChain, k *realm.Kingdom, nextKey string) (*realm.Event, error) {
	tpl, ok := chainTemplates[chain.Type]
	if !ok {
		return nil, fmt.Errorf("unknown chain type %q", chain.Type)
	}

	step := chain.CurrentStep + 1
	if c.proposer != nil {
		proposal, err := c.proposer.Propose(ctx, Request{
			Kingdom:  k,
			Category: tpl.Category,
			Chain: &ChainContext{
				Type:     chain.Type,
				Step:     chain.CurrentStep,
				Outcomes: chain.Outcomes,
			},
		})
		if err == nil {
			err = proposal.Validate()
		}
		if err == nil {
			event := &realm.Event{
				ID:          uuid.NewString(),
				KingdomID:   k.ID,
				Owner:       k.Owner,
				Title:       proposal.Title,
				Description: proposal.Description,
				Type:        tpl.Category,
				Choices:     proposal.Choices,
				ChainID:     chain.ID,
				Step:        step,
				Timestamp:   time.Now().UTC(),
			}
			normalizeChainChoices(event, step, chain.MaxSteps)
			c.scaleChoices(event, k.Difficulty)
			return event, nil
		}
		c.log.Warn("chain proposal rejected, using template", "kingdom", k.ID, "chain", chain.Type, "error", err)
	}

	event := chainEvent(tpl, nextKey, chain, k, step)
	c.scaleChoices(event, k.Difficulty)
	return event, nil
}

// normalizeChainChoices fixes up storyline flags on proposed choices:
// a choice carrying neither flag continues the storyline, and at the
// step cap every choice closes it.
func normalizeChainChoices(e *realm.Event, step, maxSteps int) {
	for i := range e.Choices {
		ch := &e.Choices[i]
		if step >= maxSteps {
			ch.ContinueChain = false
			ch.EndChain = true
			continue
		}
		if !ch.ContinueChain && !ch.EndChain {
			ch.ContinueChain = true
		}
	}
}

// scaleChoices applies the difficulty's impact modifiers to an event's
// choices before the player sees them, so the displayed numbers are
// exactly what resolution applies.
func (c *Catalog) scaleChoices(e *realm.Event, d realm.Difficulty) {
	for i := range e.Choices {
		e.Choices[i].Impact = c.balance.ScaleImpact(e.Choices[i].Impact, d)
	}
}

// fromTemplate draws a template event of the given category.
func (c *Catalog) fromTemplate(k *realm.Kingdom, category realm.EventCategory) *realm.Event {
	pool := templates[category]
	if len(pool) == 0 {
		pool = []template{peaceful}
	}
	tpl := pool[int(c.rng.Float64()*float64(len(pool)))%len(pool)]

	event := &realm.Event{
		ID:          uuid.NewString(),
		KingdomID:   k.ID,
		Owner:       k.Owner,
		Title:       tpl.Title,
		Description: tpl.Description,
		Type:        tpl.Category,
		Choices:     append([]realm.Choice(nil), tpl.Choices...),
		Timestamp:   time.Now().UTC(),
	}
	c.scaleChoices(event, k.Difficulty)
	return event
}

// ResolveChoice validates a player's pick against a pending event and
// returns the chosen option. The event must be unresolved and the
// index in range.
func ResolveChoice(e *realm.Event, index int) (realm.Choice, error) {
	if e.Resolved {
		return realm.Choice{}, &realm.ValidationError{Field: "event", Reason: "already resolved"}
	}
	if index < 0 || index >= len(e.Choices) {
		return realm.Choice{}, &realm.ValidationError{Field: "choice", Reason: fmt.Sprintf("index %d out of range", index)}
	}
	return e.Choices[index], nil
}
