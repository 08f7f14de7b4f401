package rules

import (
	"math"

	"github.com/aldric/regent/internal/realm"
)

// Rates is the computed per-turn production and consumption for one
// resource. Both are non-negative.
type Rates struct {
	Production  int `json:"production"`
	Consumption int `json:"consumption"`
}

// ResourceRates computes the effective production and consumption of
// one resource from its quality level, worker allocation, the kingdom
// state, and the condition of the resources it depends on.
//
// Dependency cascades apply independently per dependency: each
// struggling (WARNING/CRITICAL) dependency cuts production by 20%, so
// multiple struggling dependencies compound multiplicatively.
func (b *Balance) ResourceRates(r *realm.Resource, s realm.Stats, all []*realm.Resource) Rates {
	cfg, ok := b.Resources[r.Type]
	if !ok {
		return Rates{}
	}

	tier := b.qualityTier(r.QualityLevel)
	production := float64(cfg.BaseProduction) * tier.Production
	consumption := float64(cfg.BaseConsumption) * tier.Consumption

	// Worker allocation scales production against the type's baseline
	// crew (default_workers × efficiency ≈ 100).
	if cfg.WorkerEfficiency > 0 {
		production *= float64(r.WorkerAllocation) * cfg.WorkerEfficiency / 100
	}

	// Inter-resource dependencies.
	for depType, effect := range cfg.Dependencies {
		dep := findResource(all, depType)
		if dep == nil {
			continue
		}
		depQuality := float64(dep.QualityLevel)
		if effect.Production != 0 {
			production *= 1 + effect.Production*depQuality/2
		}
		if effect.Consumption != 0 {
			consumption *= 1 + effect.Consumption*depQuality/2
		}
		// Cascading scarcity: a struggling dependency drags output down.
		if ClassifyStatus(dep).Urgent() {
			production *= 0.8
		}
	}

	// Consumption scales with population pressure.
	if s.Population > 0 {
		consumption *= math.Sqrt(float64(s.Population) / 1000)
	}

	// Kingdom stat modifiers: positive weights raise production,
	// negative weights raise consumption.
	productionMod := 1.0
	consumptionMod := 1.0
	for stat, weight := range cfg.Modifiers {
		fraction := statPercent(s, stat)
		if weight > 0 {
			productionMod += weight * fraction
		} else {
			consumptionMod += -weight * fraction
		}
	}

	out := Rates{
		Production:  int(math.Floor(production * productionMod)),
		Consumption: int(math.Floor(consumption * consumptionMod)),
	}
	if out.Production < 0 {
		out.Production = 0
	}
	if out.Consumption < 0 {
		out.Consumption = 0
	}
	return out
}

// statPercent is the 0–1 fraction of a normalized stat. Population is
// excluded here: resource modifiers reference the 0–100 stats only,
// population pressure is handled by the √(pop/1000) consumption scale.
func statPercent(s realm.Stats, name string) float64 {
	switch name {
	case "economy":
		return float64(s.Economy) / 100
	case "military":
		return float64(s.Military) / 100
	case "happiness":
		return float64(s.Happiness) / 100
	case "population":
		return float64(s.Population) / 1000
	default:
		return 0
	}
}

func (b *Balance) qualityTier(level int) QualityTier {
	if level < realm.MinQualityLevel || level > realm.MaxQualityLevel {
		level = realm.MinQualityLevel
	}
	return b.Quality[level]
}

func findResource(all []*realm.Resource, t realm.ResourceType) *realm.Resource {
	for _, r := range all {
		if r.Type == t {
			return r
		}
	}
	return nil
}

// ClassifyStatus derives the urgency classification of a resource from
// its quantity, thresholds and last computed rates. Evaluation order is
// significant: the most urgent classification wins.
func ClassifyStatus(r *realm.Resource) realm.ResourceStatus {
	net := r.NetChange()
	storagePct := r.StoragePercent()

	switch {
	case r.Quantity <= r.MinQuantity:
		return realm.StatusCritical
	case r.Quantity <= r.MinQuantity*3/2,
		net < 0 && r.Quantity <= r.MinQuantity*2:
		return realm.StatusWarning
	case net < 0 && r.Quantity <= r.MinQuantity*3:
		return realm.StatusCaution
	case storagePct >= 90:
		return realm.StatusSurplus
	case net >= 0 && storagePct > 30:
		return realm.StatusStable
	default:
		return realm.StatusNormal
	}
}

// TrendPoint is one projected turn of a resource's trajectory.
type TrendPoint struct {
	Turn     int                  `json:"turn"`
	Quantity int                  `json:"quantity"`
	Status   realm.ResourceStatus `json:"status"`
}

// ProjectTrend applies the current net change repeatedly, clamping each
// step to [0, maxStorage]. Always yields exactly `turns` points, even
// once the quantity is pinned at zero or at capacity.
func ProjectTrend(r *realm.Resource, turns int) []TrendPoint {
	net := r.NetChange()
	points := make([]TrendPoint, 0, turns)

	probe := *r
	for i := 1; i <= turns; i++ {
		q := probe.Quantity + net
		if q < 0 {
			q = 0
		}
		if q > r.MaxStorage {
			q = r.MaxStorage
		}
		probe.Quantity = q
		points = append(points, TrendPoint{Turn: i, Quantity: q, Status: ClassifyStatus(&probe)})
	}
	return points
}

// Efficiency scores a resource's throughput on a 0–100 scale: the
// production/consumption ratio, with a 20% penalty when storage is
// nearly full (excess production is wasted at the cap).
func Efficiency(r *realm.Resource) float64 {
	if r.Production == 0 {
		return 0
	}
	if r.Consumption == 0 {
		if r.MaxStorage <= 0 {
			return 0
		}
		return math.Min(100, float64(r.Production)/float64(r.MaxStorage)*100)
	}

	efficiency := float64(r.Production) / float64(r.Consumption) * 100
	if r.StoragePercent() > 90 {
		efficiency *= 0.8
	}
	return math.Min(100, math.Max(0, efficiency))
}

// Deterioration is the quantity lost to spoilage this turn, capped at
// the stockpile itself.
func Deterioration(r *realm.Resource, rate float64) int {
	if rate <= 0 {
		return 0
	}
	loss := int(math.Floor(float64(r.Quantity) * rate))
	if loss > r.Quantity {
		loss = r.Quantity
	}
	return loss
}

// MarketValue reprices a resource from its supply/demand balance:
// scarce resources (consumption outrunning production) appreciate,
// gluts depress the price. Clamped to [0.1, 5.0].
func MarketValue(base float64, production, consumption int) float64 {
	demand := consumption
	if demand == 0 {
		demand = 1
	}
	ratio := float64(production) / float64(demand)
	value := base * (1 + (1-ratio)*0.5)
	return math.Max(0.1, math.Min(5.0, value))
}
