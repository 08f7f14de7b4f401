package rules

import (
	"strings"

	"github.com/aldric/regent/internal/realm"
)

// Outcome is the terminal-state evaluation of a kingdom.
type Outcome struct {
	GameOver bool     `json:"game_over"`
	Victory  bool     `json:"victory"`
	Type     string   `json:"type,omitempty"`   // Victory type when won
	Reason   string   `json:"reason,omitempty"` // Victory or defeat narrative
	Warnings []string `json:"warnings,omitempty"`
}

// Defeat narratives per collapsed stat.
var defeatMessages = []struct {
	stat   string
	value  func(realm.Stats) int
	reason string
}{
	{"happiness", func(s realm.Stats) int { return s.Happiness }, "Your people have completely lost faith in your leadership. A rebellion has overthrown your rule!"},
	{"economy", func(s realm.Stats) int { return s.Economy }, "The kingdom's treasury is empty. Economic collapse has led to widespread chaos!"},
	{"military", func(s realm.Stats) int { return s.Military }, "With no military force remaining, your kingdom has been conquered by neighboring powers!"},
	{"population", func(s realm.Stats) int { return s.Population }, "Your kingdom has been completely depopulated. The once-great realm is now a ghost kingdom!"},
}

// EvaluateOutcome classifies a kingdom's state as defeat, victory, or
// ongoing. Defeat is checked first and enumerates every zeroed stat;
// victory takes the first matching configured condition. An ongoing
// game lists a warning for every stat at or below its critical
// threshold but above zero.
func (b *Balance) EvaluateOutcome(s realm.Stats) Outcome {
	var defeats []string
	for _, d := range defeatMessages {
		if d.value(s) <= 0 {
			defeats = append(defeats, d.reason)
		}
	}
	if len(defeats) > 0 {
		return Outcome{GameOver: true, Victory: false, Reason: strings.Join(defeats, "\n")}
	}

	for _, v := range b.Victories {
		if s.Economy >= v.Economy && s.Military >= v.Military &&
			s.Happiness >= v.Happiness && s.Population >= v.Population {
			return Outcome{GameOver: true, Victory: true, Type: v.Type, Reason: v.Message}
		}
	}

	var warnings []string
	t := b.CriticalThresholds
	if s.Happiness <= t.Happiness {
		warnings = append(warnings, "Civil unrest is reaching dangerous levels!")
	}
	if s.Economy <= t.Economy {
		warnings = append(warnings, "The treasury is running dangerously low!")
	}
	if s.Military <= t.Military {
		warnings = append(warnings, "Your military forces are critically weakened!")
	}
	if s.Population <= t.Population {
		warnings = append(warnings, "Population is reaching critical levels!")
	}

	return Outcome{Warnings: warnings}
}
