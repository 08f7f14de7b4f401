package realm

import "time"

// EventCategory is the coarse classification of a narrative event.
type EventCategory string

const (
	EventInternal EventCategory = "INTERNAL"
	EventExternal EventCategory = "EXTERNAL"
	EventRandom   EventCategory = "RANDOM"
)

// MaxImpactMagnitude caps any single choice impact on a normalized stat.
// Population impacts scale proportionally (×PopulationImpactScale).
const (
	MaxImpactMagnitude    = 20
	PopulationImpactScale = 10
)

// Impact is the structured stat delta carried by an event choice.
// Zero fields mean no effect on that stat. Impacts are validated once
// at the proposal boundary; internal code never re-parses them.
type Impact struct {
	Population int `json:"population,omitempty"`
	Economy    int `json:"economy,omitempty"`
	Military   int `json:"military,omitempty"`
	Happiness  int `json:"happiness,omitempty"`
}

// IsZero reports whether the impact changes nothing.
func (i Impact) IsZero() bool {
	return i == Impact{}
}

// Add returns the component-wise sum of two impacts.
func (i Impact) Add(o Impact) Impact {
	return Impact{
		Population: i.Population + o.Population,
		Economy:    i.Economy + o.Economy,
		Military:   i.Military + o.Military,
		Happiness:  i.Happiness + o.Happiness,
	}
}

// Clamp bounds each component to the configured maximum magnitude.
func (i Impact) Clamp() Impact {
	clamp := func(v, limit int) int {
		if v > limit {
			return limit
		}
		if v < -limit {
			return -limit
		}
		return v
	}
	return Impact{
		Population: clamp(i.Population, MaxImpactMagnitude*PopulationImpactScale),
		Economy:    clamp(i.Economy, MaxImpactMagnitude),
		Military:   clamp(i.Military, MaxImpactMagnitude),
		Happiness:  clamp(i.Happiness, MaxImpactMagnitude),
	}
}

// Choice is one selectable response to an event.
type Choice struct {
	Text   string `json:"text"`
	Impact Impact `json:"impact"`

	// Chain control. ContinueChain asks for a follow-up event from the
	// same chain; EndChain terminates it regardless of remaining steps.
	ContinueChain bool   `json:"continue_chain,omitempty"`
	EndChain      bool   `json:"end_chain,omitempty"`
	NextEvent     string `json:"next_event,omitempty"` // Key into the chain's event pool
}

// Event is a narrative prompt with discrete choices. Generated once per
// turn when none is pending, resolved exactly once.
type Event struct {
	ID          string        `json:"id" db:"id"`
	KingdomID   string        `json:"kingdom_id" db:"kingdom_id"`
	Owner       string        `json:"owner" db:"owner"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Type        EventCategory `json:"type" db:"type"`
	Choices     []Choice      `json:"choices"`

	// Chain linkage, empty for standalone events.
	ChainID string `json:"chain_id,omitempty" db:"chain_id"`
	Step    int    `json:"step,omitempty" db:"step"`

	Resolved  bool      `json:"resolved" db:"resolved"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// ChainOutcome records one resolved step of an event chain.
type ChainOutcome struct {
	Step      int       `json:"step"`
	Choice    string    `json:"choice"`
	Impact    Impact    `json:"impact"`
	Timestamp time.Time `json:"timestamp"`
}

// EventChain is a linked sequence of events continuing a storyline.
// Completed chains are archived read-only and never resume.
type EventChain struct {
	ID        string `json:"id" db:"id"`
	KingdomID string `json:"kingdom_id" db:"kingdom_id"`
	Owner     string `json:"owner" db:"owner"`
	Type      string `json:"type" db:"type"` // Chain template key, e.g. DIPLOMATIC
	Trigger   string `json:"trigger" db:"trigger"`

	CurrentStep int            `json:"current_step" db:"current_step"`
	MaxSteps    int            `json:"max_steps" db:"max_steps"`
	Outcomes    []ChainOutcome `json:"outcomes"`
	IsComplete  bool           `json:"is_complete" db:"is_complete"`

	StartedAt time.Time  `json:"started_at" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`
}

// TotalImpact sums the impacts of every resolved step.
func (c *EventChain) TotalImpact() Impact {
	var total Impact
	for _, o := range c.Outcomes {
		total = total.Add(o.Impact)
	}
	return total
}
