package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldric/regent/internal/realm"
)

func testResource(t realm.ResourceType, qty int) *realm.Resource {
	cfg := DefaultBalance().Resources[t]
	return &realm.Resource{
		Type:             t,
		Name:             cfg.Name,
		Quantity:         qty,
		MinQuantity:      cfg.MinQuantity,
		MaxStorage:       cfg.MaxStorage,
		QualityLevel:     1,
		WorkerAllocation: cfg.DefaultWorkers,
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		name string
		r    realm.Resource
		want realm.ResourceStatus
	}{
		{"critical at minimum", realm.Resource{Quantity: 100, MinQuantity: 100, MaxStorage: 1000, Production: 50, Consumption: 10}, realm.StatusCritical},
		{"warning near minimum", realm.Resource{Quantity: 140, MinQuantity: 100, MaxStorage: 1000, Production: 50, Consumption: 10}, realm.StatusWarning},
		{"warning on negative trend", realm.Resource{Quantity: 190, MinQuantity: 100, MaxStorage: 1000, Production: 10, Consumption: 50}, realm.StatusWarning},
		{"caution on negative trend", realm.Resource{Quantity: 290, MinQuantity: 100, MaxStorage: 1000, Production: 10, Consumption: 50}, realm.StatusCaution},
		{"surplus when nearly full", realm.Resource{Quantity: 950, MinQuantity: 100, MaxStorage: 1000, Production: 50, Consumption: 10}, realm.StatusSurplus},
		{"stable when growing", realm.Resource{Quantity: 500, MinQuantity: 100, MaxStorage: 1000, Production: 50, Consumption: 10}, realm.StatusStable},
		{"normal otherwise", realm.Resource{Quantity: 310, MinQuantity: 100, MaxStorage: 1000, Production: 10, Consumption: 50}, realm.StatusNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyStatus(&tc.r))
		})
	}
}

func TestResourceRatesNonNegative(t *testing.T) {
	b := DefaultBalance()
	s := realm.Stats{Population: 1000, Economy: 50, Military: 40, Happiness: 60}

	for _, typ := range realm.ResourceTypes {
		r := testResource(typ, 500)
		rates := b.ResourceRates(r, s, nil)
		assert.GreaterOrEqual(t, rates.Production, 0, "%s production", typ)
		assert.GreaterOrEqual(t, rates.Consumption, 0, "%s consumption", typ)
	}
}

func TestResourceRatesQualityAndWorkers(t *testing.T) {
	b := DefaultBalance()
	s := realm.Stats{Population: 1000, Economy: 50, Military: 40, Happiness: 60}

	base := testResource(realm.ResourceGold, 500)
	baseline := b.ResourceRates(base, s, nil)

	upgraded := testResource(realm.ResourceGold, 500)
	upgraded.QualityLevel = 4
	assert.Greater(t, b.ResourceRates(upgraded, s, nil).Production, baseline.Production)

	idle := testResource(realm.ResourceGold, 500)
	idle.WorkerAllocation = 0
	assert.Equal(t, 0, b.ResourceRates(idle, s, nil).Production)
}

func TestResourceRatesDependencyPenalty(t *testing.T) {
	b := DefaultBalance()
	s := realm.Stats{Population: 1000, Economy: 50, Military: 40, Happiness: 60}

	// Gold leans on luxury goods and building materials.
	gold := testResource(realm.ResourceGold, 500)
	healthyLux := testResource(realm.ResourceLuxuryGoods, 1000)
	healthyLux.Production, healthyLux.Consumption = 20, 10
	healthyMat := testResource(realm.ResourceBuildingMaterials, 2000)
	healthyMat.Production, healthyMat.Consumption = 40, 20

	healthy := b.ResourceRates(gold, s, []*realm.Resource{gold, healthyLux, healthyMat})

	// Starve the luxury goods supply.
	starvedLux := testResource(realm.ResourceLuxuryGoods, 10)
	starved := b.ResourceRates(gold, s, []*realm.Resource{gold, starvedLux, healthyMat})

	assert.Less(t, starved.Production, healthy.Production)
}

func TestResourceRatesPopulationPressure(t *testing.T) {
	b := DefaultBalance()
	small := realm.Stats{Population: 1000, Economy: 50, Military: 40, Happiness: 60}
	large := realm.Stats{Population: 9000, Economy: 50, Military: 40, Happiness: 60}

	r := testResource(realm.ResourceFood, 1000)
	assert.Greater(t, b.ResourceRates(r, large, nil).Consumption, b.ResourceRates(r, small, nil).Consumption)
}

func TestProjectTrend(t *testing.T) {
	r := &realm.Resource{Quantity: 100, MinQuantity: 50, MaxStorage: 1000, Production: 10, Consumption: 50}

	points := ProjectTrend(r, 5)
	require.Len(t, points, 5)

	// Net -40/turn: 60, 20, 0, 0, 0 — pinned at zero, still 5 points.
	assert.Equal(t, 60, points[0].Quantity)
	assert.Equal(t, 20, points[1].Quantity)
	assert.Equal(t, 0, points[2].Quantity)
	assert.Equal(t, 0, points[4].Quantity)
	assert.Equal(t, realm.StatusCritical, points[4].Status)

	// The probe never mutates the input.
	assert.Equal(t, 100, r.Quantity)
}

func TestProjectTrendCapsAtStorage(t *testing.T) {
	r := &realm.Resource{Quantity: 900, MinQuantity: 50, MaxStorage: 1000, Production: 200, Consumption: 10}

	points := ProjectTrend(r, 3)
	require.Len(t, points, 3)
	assert.Equal(t, 1000, points[0].Quantity)
	assert.Equal(t, 1000, points[2].Quantity)
	assert.Equal(t, realm.StatusSurplus, points[0].Status)
}

func TestEfficiency(t *testing.T) {
	assert.Zero(t, Efficiency(&realm.Resource{Production: 0, Consumption: 10, MaxStorage: 100}))

	// No consumption: throughput relative to capacity.
	assert.InDelta(t, 10.0, Efficiency(&realm.Resource{Production: 10, Consumption: 0, MaxStorage: 100}), 0.001)

	// Balanced flow, penalized when storage is nearly full.
	half := &realm.Resource{Quantity: 50, Production: 50, Consumption: 50, MaxStorage: 100}
	assert.InDelta(t, 100.0, Efficiency(half), 0.001)
	full := &realm.Resource{Quantity: 95, Production: 50, Consumption: 50, MaxStorage: 100}
	assert.InDelta(t, 80.0, Efficiency(full), 0.001)
}

func TestDeterioration(t *testing.T) {
	r := &realm.Resource{Quantity: 100}
	assert.Equal(t, 5, Deterioration(r, 0.05))
	assert.Equal(t, 0, Deterioration(r, 0))
	assert.Equal(t, 100, Deterioration(r, 2.0)) // capped at the stockpile
}

func TestMarketValue(t *testing.T) {
	// Balanced supply and demand keeps the base price.
	assert.InDelta(t, 1.0, MarketValue(1.0, 50, 50), 0.001)
	// Scarcity appreciates, glut depresses.
	assert.Greater(t, MarketValue(1.0, 10, 50), 1.0)
	assert.Less(t, MarketValue(1.0, 100, 50), 1.0)
	// Clamped to [0.1, 5.0].
	assert.InDelta(t, 5.0, MarketValue(4.0, 0, 1000), 0.001)
	assert.InDelta(t, 0.1, MarketValue(0.2, 10000, 1), 0.001)
}

func TestStatusPenalties(t *testing.T) {
	b := DefaultBalance()

	// A critically low food stock hurts population and happiness, plus
	// the generic distress penalty.
	food := testResource(realm.ResourceFood, 100)
	food.Production, food.Consumption = 10, 50

	impact, notes := b.StatusPenalties([]*realm.Resource{food})
	assert.Equal(t, -100, impact.Population)
	assert.Equal(t, -15, impact.Happiness) // -10 type effect, -5 generic
	assert.Equal(t, -3, impact.Economy)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "Food")

	// Healthy stocks cost nothing.
	healthy := testResource(realm.ResourceGold, 5000)
	healthy.Production, healthy.Consumption = 50, 30
	impact, notes = b.StatusPenalties([]*realm.Resource{healthy})
	assert.True(t, impact.IsZero())
	assert.Empty(t, notes)
}
