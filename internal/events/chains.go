package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/aldric/regent/internal/realm"
)

// chainStep is one scene of a storyline. Choices may name the next
// step (NextEvent), ask for a generic continuation (ContinueChain), or
// close the storyline early (EndChain).
type chainStep struct {
	Title       string
	Description string
	Choices     []realm.Choice
}

// chainTemplate is a complete storyline: a trigger line, a first step,
// and a keyed pool of scenes.
type chainTemplate struct {
	Type     string
	Category realm.EventCategory
	Trigger  string
	Start    string
	Steps    map[string]chainStep
}

const (
	ChainDiplomatic = "DIPLOMATIC"
	ChainCrisis     = "CRISIS"
)

var chainTemplates = map[string]chainTemplate{
	ChainDiplomatic: {
		Type:     ChainDiplomatic,
		Category: realm.EventExternal,
		Trigger:  "An envoy from the Eastern Compact has arrived at court",
		Start:    "envoy_arrives",
		Steps: map[string]chainStep{
			"envoy_arrives": {
				Title:       "The Envoy Arrives",
				Description: "An envoy from the Eastern Compact presents credentials and requests formal talks about an alliance.",
				Choices: []realm.Choice{
					{Text: "Receive the envoy with full honors", Impact: realm.Impact{Economy: -3, Happiness: 2}, ContinueChain: true, NextEvent: "terms_offered"},
					{Text: "Grant a brief, cool audience", Impact: realm.Impact{}, ContinueChain: true, NextEvent: "terms_offered"},
					{Text: "Turn the envoy away", Impact: realm.Impact{Military: 2, Economy: -2}, EndChain: true},
				},
			},
			"terms_offered": {
				Title:       "Terms on the Table",
				Description: "The Compact offers a trade pact, but demands a garrison reduction along the shared border.",
				Choices: []realm.Choice{
					{Text: "Accept the pact and thin the garrisons", Impact: realm.Impact{Economy: 10, Military: -8}, ContinueChain: true, NextEvent: "pact_tested"},
					{Text: "Counter with trade only, no military terms", Impact: realm.Impact{Economy: 5}, ContinueChain: true, NextEvent: "pact_tested"},
					{Text: "Break off negotiations", Impact: realm.Impact{Military: 3, Economy: -4}, EndChain: true},
				},
			},
			"pact_tested": {
				Title:       "The Pact Is Tested",
				Description: "Months later, Compact merchants are accused of smuggling. The envoy urges discretion; your magistrates urge a trial.",
				Choices: []realm.Choice{
					{Text: "Hold a public trial", Impact: realm.Impact{Happiness: 5, Economy: -6}, EndChain: true},
					{Text: "Settle the matter quietly", Impact: realm.Impact{Economy: 6, Happiness: -4}, EndChain: true},
				},
			},
		},
	},
	ChainCrisis: {
		Type:     ChainCrisis,
		Category: realm.EventInternal,
		Trigger:  "A sickness is spreading through the river district",
		Start:    "sickness_spreads",
		Steps: map[string]chainStep{
			"sickness_spreads": {
				Title:       "Sickness in the River District",
				Description: "Physicians report a spreading fever in the crowded river district. The council is divided on how hard to act.",
				Choices: []realm.Choice{
					{Text: "Quarantine the district at once", Impact: realm.Impact{Happiness: -8, Economy: -5}, ContinueChain: true, NextEvent: "quarantine_strain"},
					{Text: "Fund the physicians and wait", Impact: realm.Impact{Economy: -6, Population: -40}, ContinueChain: true, NextEvent: "fever_peaks"},
					{Text: "Downplay the reports", Impact: realm.Impact{Population: -80, Happiness: -5}, ContinueChain: true, NextEvent: "fever_peaks"},
				},
			},
			"quarantine_strain": {
				Title:       "The Quarantine Strains",
				Description: "The quarantine is holding, but trade through the river gate has stopped and tempers are fraying.",
				Choices: []realm.Choice{
					{Text: "Subsidize the shuttered merchants", Impact: realm.Impact{Economy: -8, Happiness: 6}, ContinueChain: true, NextEvent: "fever_breaks"},
					{Text: "Hold the line without relief", Impact: realm.Impact{Happiness: -6, Economy: 2}, ContinueChain: true, NextEvent: "fever_breaks"},
				},
			},
			"fever_peaks": {
				Title:       "The Fever Peaks",
				Description: "The fever has jumped the district walls. The physicians beg for emergency powers and coin.",
				Choices: []realm.Choice{
					{Text: "Grant everything they ask", Impact: realm.Impact{Economy: -12, Population: -50}, ContinueChain: true, NextEvent: "fever_breaks"},
					{Text: "Ration the response", Impact: realm.Impact{Economy: -5, Population: -120, Happiness: -5}, ContinueChain: true, NextEvent: "fever_breaks"},
				},
			},
			"fever_breaks": {
				Title:       "The Fever Breaks",
				Description: "The worst has passed. The city looks to the crown to mark the recovery.",
				Choices: []realm.Choice{
					{Text: "Declare a day of remembrance", Impact: realm.Impact{Happiness: 8}, EndChain: true},
					{Text: "Return to business without ceremony", Impact: realm.Impact{Economy: 3, Happiness: -2}, EndChain: true},
				},
			},
		},
	},
}

// NewChain opens a storyline record of the given template type for a
// kingdom. Returns nil for an unknown type.
func NewChain(chainType string, k *realm.Kingdom, maxSteps int) *realm.EventChain {
	tpl, ok := chainTemplates[chainType]
	if !ok {
		return nil
	}
	return &realm.EventChain{
		ID:        uuid.NewString(),
		KingdomID: k.ID,
		Owner:     k.Owner,
		Type:      tpl.Type,
		Trigger:   tpl.Trigger,
		MaxSteps:  maxSteps,
		StartedAt: time.Now().UTC(),
	}
}

// chainEvent materializes a storyline step as a playable event. The
// choices are copied so callers can adjust them without touching the
// template.
func chainEvent(tpl chainTemplate, key string, chain *realm.EventChain, k *realm.Kingdom, step int) *realm.Event {
	sc, ok := tpl.Steps[key]
	if !ok {
		sc = tpl.Steps[tpl.Start]
	}
	return &realm.Event{
		ID:          uuid.NewString(),
		KingdomID:   k.ID,
		Owner:       k.Owner,
		Title:       sc.Title,
		Description: sc.Description,
		Type:        tpl.Category,
		Choices:     append([]realm.Choice(nil), sc.Choices...),
		ChainID:     chain.ID,
		Step:        step,
		Timestamp:   time.Now().UTC(),
	}
}

// ChainSummary is the archival digest of a finished storyline.
type ChainSummary struct {
	Type        string       `json:"type"`
	Trigger     string       `json:"trigger"`
	Steps       int          `json:"steps"`
	TotalImpact realm.Impact `json:"total_impact"`
}

// Summarize digests a completed chain for history display.
func Summarize(c *realm.EventChain) ChainSummary {
	return ChainSummary{
		Type:        c.Type,
		Trigger:     c.Trigger,
		Steps:       c.CurrentStep,
		TotalImpact: c.TotalImpact(),
	}
}
