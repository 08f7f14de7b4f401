package rules

import (
	"math"

	"github.com/aldric/regent/internal/entropy"
	"github.com/aldric/regent/internal/realm"
)

// Growth variation bounds: each stat's delta is scaled by a uniform
// sample from [variationMin, variationMin+variationSpan] per turn.
const (
	variationMin  = 0.8
	variationSpan = 0.4
)

// ComputeGrowthRates returns the per-turn rate for each stat given the
// kingdom's current state and difficulty. The output is a dimensionless
// rate, not an absolute delta.
//
// Each base rate is adjusted by the cross-stat dependency matrix
// (rate += base × weight × dependentFraction) and then scaled by the
// difficulty growth factor.
func (b *Balance) ComputeGrowthRates(s realm.Stats, d realm.Difficulty) GrowthRates {
	rates := b.BaseGrowth

	apply := func(stat string, base float64) float64 {
		rate := base
		for dep, weight := range b.StatDependencies[stat] {
			rate += base * weight * b.statFraction(s, dep)
		}
		return rate
	}

	rates.Population = apply("population", b.BaseGrowth.Population)
	rates.Economy = apply("economy", b.BaseGrowth.Economy)
	rates.Military = apply("military", b.BaseGrowth.Military)
	rates.Happiness = apply("happiness", b.BaseGrowth.Happiness)

	factors := b.Difficulty(d).Growth
	rates.Population *= factors.Population
	rates.Economy *= factors.Economy
	rates.Military *= factors.Military
	// Happiness drift is difficulty-independent.

	return rates
}

// GrowthResult carries the post-growth stats and the raw per-stat
// deltas that produced them (pre-clamping deltas are not exposed; the
// deltas here are the applied, clamped changes).
type GrowthResult struct {
	Stats  realm.Stats
	Deltas realm.Stats
}

// ApplyGrowth computes clamped new stat values from growth rates. Each
// delta is floor(current × rate × variation) with variation sampled
// independently per stat from [0.8, 1.2]. The input stats are not
// mutated; the caller persists the result.
func (b *Balance) ApplyGrowth(s realm.Stats, rates GrowthRates, rng entropy.Source) GrowthResult {
	grow := func(current int, rate float64, min, max int) (int, int) {
		variation := variationMin + rng.Float64()*variationSpan
		delta := int(math.Floor(float64(current) * rate * variation))
		next := current + delta
		if next < min {
			next = min
		}
		if next > max {
			next = max
		}
		return next, next - current
	}

	var out GrowthResult
	out.Stats.Population, out.Deltas.Population = grow(s.Population, rates.Population, 0, b.MaxPopulation)
	out.Stats.Economy, out.Deltas.Economy = grow(s.Economy, rates.Economy, 0, 100)
	out.Stats.Military, out.Deltas.Military = grow(s.Military, rates.Military, 0, 100)
	out.Stats.Happiness, out.Deltas.Happiness = grow(s.Happiness, rates.Happiness, 0, 100)
	return out
}

// ScaleImpact scales an event choice impact by the difficulty's
// modifiers: positive components by the positive modifier, negative by
// the negative, each rounded to the nearest integer. Scaling happens
// once, when the event is formatted, so the numbers shown with each
// choice are the numbers applied at resolution.
func (b *Balance) ScaleImpact(i realm.Impact, d realm.Difficulty) realm.Impact {
	mods := b.Difficulty(d).EventImpact

	scale := func(v int) int {
		if v >= 0 {
			return int(math.Round(float64(v) * mods.Positive))
		}
		return int(math.Round(float64(v) * mods.Negative))
	}

	return realm.Impact{
		Population: scale(i.Population),
		Economy:    scale(i.Economy),
		Military:   scale(i.Military),
		Happiness:  scale(i.Happiness),
	}
}

// ApplyImpact folds an already-scaled event choice impact into stats,
// clamping every stat to its domain.
func (b *Balance) ApplyImpact(s realm.Stats, impact realm.Impact) realm.Stats {
	clamp := func(v, min, max int) int {
		if v < min {
			return min
		}
		if v > max {
			return max
		}
		return v
	}

	return realm.Stats{
		Population: clamp(s.Population+impact.Population, 0, b.MaxPopulation),
		Economy:    clamp(s.Economy+impact.Economy, 0, 100),
		Military:   clamp(s.Military+impact.Military, 0, 100),
		Happiness:  clamp(s.Happiness+impact.Happiness, 0, 100),
	}
}
