package rules

import (
	"fmt"

	"github.com/aldric/regent/internal/realm"
)

// Generic stat penalties applied for any resource in distress, on top
// of the per-type status effects configured in Balance.
var genericPenalties = map[realm.ResourceStatus]realm.Impact{
	realm.StatusCritical: {Happiness: -5, Economy: -3},
	realm.StatusWarning:  {Happiness: -2, Economy: -1},
}

// StatusPenalties folds the condition of every resource into one stat
// impact: a generic morale/economy hit per distressed resource plus the
// type-specific effects (food shortages starve population, supply
// shortages weaken the military, surpluses grant small boons).
// Returns the combined impact and a human-readable note per
// contributing resource.
func (b *Balance) StatusPenalties(resources []*realm.Resource) (realm.Impact, []string) {
	var total realm.Impact
	var notes []string

	for _, r := range resources {
		status := ClassifyStatus(r)

		if generic, ok := genericPenalties[status]; ok {
			total = total.Add(generic)
		}

		cfg, ok := b.Resources[r.Type]
		if !ok {
			continue
		}
		if effect, ok := cfg.StatusEffects[status]; ok {
			total = total.Add(effect)
			notes = append(notes, fmt.Sprintf("%s is %s and is affecting the kingdom", cfg.Name, status))
		}
	}

	return total, notes
}
