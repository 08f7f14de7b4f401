// Package realm provides the kingdom data model shared by every
// simulation component: stats, resources, events, and the domain
// error taxonomy.
package realm

import "time"

// Difficulty selects the balance modifiers applied to growth and events.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyNormal Difficulty = "NORMAL"
	DifficultyHard   Difficulty = "HARD"
)

// ParseDifficulty normalizes a difficulty string, falling back to NORMAL.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return Difficulty(s)
	default:
		return DifficultyNormal
	}
}

// Phase is the turn-cycle state of a kingdom.
// PROCESSING is transient and never persisted — a kingdom record is
// always in one of the three durable phases below.
type Phase string

const (
	PhaseAwaitingAction Phase = "AWAITING_TURN_ACTION"
	PhaseEventPending   Phase = "EVENT_PENDING"
	PhaseGameOver       Phase = "GAME_OVER"
)

// Stats holds the four core kingdom statistics.
// Economy, military and happiness live in [0,100]; population in
// [0, MaxPopulation].
type Stats struct {
	Population int `json:"population"`
	Economy    int `json:"economy"`
	Military   int `json:"military"`
	Happiness  int `json:"happiness"`
}

// Kingdom is the player's governed polity. One per owner per game.
type Kingdom struct {
	ID         string     `json:"id" db:"id"`
	Owner      string     `json:"owner" db:"owner"`
	Name       string     `json:"name" db:"name"`
	Difficulty Difficulty `json:"difficulty" db:"difficulty"`

	Stats    Stats `json:"stats"`
	Previous Stats `json:"previous"` // Stats as of the prior turn, for trend display

	Turn  int   `json:"turn" db:"turn"`
	Phase Phase `json:"phase" db:"phase"`

	// PendingEventID is the unresolved event blocking the next turn,
	// empty when no event is pending.
	PendingEventID string `json:"pending_event_id,omitempty" db:"pending_event_id"`

	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// Snapshot is an immutable copy of a kingdom's numeric state, taken
// before and after each turn so callers never rely on mutation order.
type Snapshot struct {
	Turn  int   `json:"turn"`
	Stats Stats `json:"stats"`
}

// SnapshotOf captures the current turn and stats of a kingdom.
func SnapshotOf(k *Kingdom) Snapshot {
	return Snapshot{Turn: k.Turn, Stats: k.Stats}
}
