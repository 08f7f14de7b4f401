// Package rules holds the pure simulation models: stat growth, outcome
// evaluation, and resource dynamics. Nothing here touches storage or
// performs I/O; every function computes from the snapshot it is given.
//
// All balance numbers live in Balance so they can be overridden from
// configuration — the thresholds are tuning, not law.
package rules

import "github.com/aldric/regent/internal/realm"

// GrowthRates is the per-turn dimensionless rate for each stat.
type GrowthRates struct {
	Population float64 `mapstructure:"population"`
	Economy    float64 `mapstructure:"economy"`
	Military   float64 `mapstructure:"military"`
	Happiness  float64 `mapstructure:"happiness"`
}

// GrowthFactors scales final growth rates per difficulty. Happiness
// drift is never scaled by difficulty.
type GrowthFactors struct {
	Population float64 `mapstructure:"population"`
	Economy    float64 `mapstructure:"economy"`
	Military   float64 `mapstructure:"military"`
}

// ImpactModifiers scales event choice impacts per difficulty.
type ImpactModifiers struct {
	Positive float64 `mapstructure:"positive"`
	Negative float64 `mapstructure:"negative"`
}

// DifficultySettings bundles every difficulty-dependent knob.
type DifficultySettings struct {
	Growth            GrowthFactors              `mapstructure:"growth"`
	EventImpact       ImpactModifiers            `mapstructure:"event_impact"`
	StartingResources map[realm.ResourceType]int `mapstructure:"starting_resources"`

	// StatScale multiplies the base starting stats at kingdom creation.
	StatScale float64 `mapstructure:"stat_scale"`
}

// VictoryCondition is one winning stat combination. Zero-valued fields
// are not required. Conditions are checked in declaration order.
type VictoryCondition struct {
	Type       string `mapstructure:"type"`
	Message    string `mapstructure:"message"`
	Economy    int    `mapstructure:"economy"`
	Military   int    `mapstructure:"military"`
	Happiness  int    `mapstructure:"happiness"`
	Population int    `mapstructure:"population"`
}

// Thresholds are the per-stat warning floors (stat ≤ threshold but > 0
// produces a warning, not a defeat).
type Thresholds struct {
	Population int `mapstructure:"population"`
	Economy    int `mapstructure:"economy"`
	Military   int `mapstructure:"military"`
	Happiness  int `mapstructure:"happiness"`
}

// QualityTier is one resource upgrade level.
type QualityTier struct {
	Name        string  `mapstructure:"name"`
	Production  float64 `mapstructure:"production"`
	Consumption float64 `mapstructure:"consumption"`
	Storage     float64 `mapstructure:"storage"`
}

// DependencyEffect describes how one resource type leans on another.
type DependencyEffect struct {
	Production  float64 `mapstructure:"production"`
	Consumption float64 `mapstructure:"consumption"`
}

// ResourceConfig is the balance sheet for one resource type.
type ResourceConfig struct {
	Name             string                                     `mapstructure:"name"`
	Category         realm.ResourceCategory                     `mapstructure:"category"`
	BaseProduction   int                                        `mapstructure:"base_production"`
	BaseConsumption  int                                        `mapstructure:"base_consumption"`
	MinQuantity      int                                        `mapstructure:"min_quantity"`
	MaxStorage       int                                        `mapstructure:"max_storage"`
	Deterioration    float64                                    `mapstructure:"deterioration"`
	WorkerEfficiency float64                                    `mapstructure:"worker_efficiency"`
	DefaultWorkers   int                                        `mapstructure:"default_workers"`
	BaseMarketValue  float64                                    `mapstructure:"base_market_value"`
	Modifiers        map[string]float64                         `mapstructure:"modifiers"`    // stat name → weight
	Dependencies     map[realm.ResourceType]DependencyEffect    `mapstructure:"dependencies"`
	StatusEffects    map[realm.ResourceStatus]realm.Impact      `mapstructure:"status_effects"`
}

// Balance is the complete tunable rule set for one game.
type Balance struct {
	MaxPopulation int `mapstructure:"max_population"`

	// StartingStats seed a new kingdom before difficulty scaling.
	StartingStats realm.Stats `mapstructure:"starting_stats"`

	BaseGrowth       GrowthRates                   `mapstructure:"base_growth"`
	StatDependencies map[string]map[string]float64 `mapstructure:"stat_dependencies"`

	Difficulties map[realm.Difficulty]DifficultySettings `mapstructure:"difficulties"`

	CriticalThresholds Thresholds         `mapstructure:"critical_thresholds"`
	Victories          []VictoryCondition `mapstructure:"victories"`

	Resources map[realm.ResourceType]ResourceConfig `mapstructure:"resources"`

	// Quality tiers indexed by level 1–4 (index 0 unused).
	Quality [realm.MaxQualityLevel + 1]QualityTier `mapstructure:"quality"`

	UpgradeBaseCost int `mapstructure:"upgrade_base_cost"`
	WorkerLimit     int `mapstructure:"worker_limit"`
	ChainMaxSteps   int `mapstructure:"chain_max_steps"`

	// Starting quantity as a fraction of max storage for types without
	// a difficulty starting package.
	StartingStockFraction float64 `mapstructure:"starting_stock_fraction"`
}

// Difficulty returns the settings for a difficulty, defaulting to NORMAL.
func (b *Balance) Difficulty(d realm.Difficulty) DifficultySettings {
	if s, ok := b.Difficulties[d]; ok {
		return s
	}
	return b.Difficulties[realm.DifficultyNormal]
}

// DefaultBalance returns the stock rule set.
func DefaultBalance() *Balance {
	return &Balance{
		MaxPopulation: 10000,

		StartingStats: realm.Stats{Population: 1000, Economy: 50, Military: 40, Happiness: 60},

		BaseGrowth: GrowthRates{
			Population: 0.05,
			Economy:    0.03,
			Military:   0.02,
			Happiness:  -0.01, // natural decline
		},

		StatDependencies: map[string]map[string]float64{
			"population": {"economy": 0.2, "happiness": 0.3},
			"economy":    {"population": 0.2, "military": 0.1},
			"military":   {"economy": 0.3, "population": 0.2},
			"happiness":  {"economy": 0.4, "military": -0.1},
		},

		Difficulties: map[realm.Difficulty]DifficultySettings{
			realm.DifficultyEasy: {
				Growth:      GrowthFactors{Population: 1.2, Economy: 1.2, Military: 1.2},
				EventImpact: ImpactModifiers{Positive: 1.2, Negative: 0.8},
				StartingResources: map[realm.ResourceType]int{
					realm.ResourceGold:             2000,
					realm.ResourceFood:             1000,
					realm.ResourceMilitarySupplies: 500,
				},
				StatScale: 1.2,
			},
			realm.DifficultyNormal: {
				Growth:      GrowthFactors{Population: 1.0, Economy: 1.0, Military: 1.0},
				EventImpact: ImpactModifiers{Positive: 1.0, Negative: 1.0},
				StartingResources: map[realm.ResourceType]int{
					realm.ResourceGold:             1500,
					realm.ResourceFood:             800,
					realm.ResourceMilitarySupplies: 400,
				},
				StatScale: 1.0,
			},
			realm.DifficultyHard: {
				Growth:      GrowthFactors{Population: 0.8, Economy: 0.8, Military: 0.8},
				EventImpact: ImpactModifiers{Positive: 0.8, Negative: 1.2},
				StartingResources: map[realm.ResourceType]int{
					realm.ResourceGold:             1000,
					realm.ResourceFood:             600,
					realm.ResourceMilitarySupplies: 300,
				},
				StatScale: 0.8,
			},
		},

		CriticalThresholds: Thresholds{Population: 200, Economy: 20, Military: 20, Happiness: 20},

		Victories: []VictoryCondition{
			{
				Type:       "ECONOMIC",
				Message:    "Your kingdom has become an economic powerhouse with happy citizens!",
				Economy:    90,
				Happiness:  80,
				Population: 5000,
			},
			{
				Type:       "MILITARY",
				Message:    "Your military might has made your kingdom a formidable power!",
				Military:   90,
				Economy:    70,
				Population: 3000,
			},
			{
				Type:       "CULTURAL",
				Message:    "Your kingdom has become a beacon of culture and prosperity!",
				Happiness:  90,
				Economy:    70,
				Population: 4000,
			},
		},

		Resources: map[realm.ResourceType]ResourceConfig{
			realm.ResourceGold: {
				Name:             "Gold",
				Category:         realm.CategoryEconomic,
				BaseProduction:   50,
				BaseConsumption:  30,
				MinQuantity:      100,
				MaxStorage:       10000,
				Deterioration:    0,
				WorkerEfficiency: 2.0,
				DefaultWorkers:   50,
				BaseMarketValue:  1.0,
				Modifiers:        map[string]float64{"economy": 0.5, "happiness": 0.2, "population": 0.3},
				Dependencies: map[realm.ResourceType]DependencyEffect{
					realm.ResourceLuxuryGoods:       {Production: 0.2, Consumption: 0.1},
					realm.ResourceBuildingMaterials: {Production: 0.1},
				},
				StatusEffects: map[realm.ResourceStatus]realm.Impact{
					realm.StatusCritical: {Economy: -10, Happiness: -5},
					realm.StatusSurplus:  {Economy: 5, Happiness: 2},
				},
			},
			realm.ResourceFood: {
				Name:             "Food",
				Category:         realm.CategorySocial,
				BaseProduction:   100,
				BaseConsumption:  50,
				MinQuantity:      200,
				MaxStorage:       5000,
				Deterioration:    0.05, // perishable
				WorkerEfficiency: 1.0,
				DefaultWorkers:   100,
				BaseMarketValue:  0.8,
				Modifiers:        map[string]float64{"economy": 0.3, "happiness": 0.4, "population": 0.5},
				Dependencies: map[realm.ResourceType]DependencyEffect{
					realm.ResourceBuildingMaterials: {Production: 0.15},
				},
				StatusEffects: map[realm.ResourceStatus]realm.Impact{
					realm.StatusCritical: {Population: -100, Happiness: -10},
					realm.StatusSurplus:  {Population: 50, Happiness: 5},
				},
			},
			realm.ResourceMilitarySupplies: {
				Name:             "Military Supplies",
				Category:         realm.CategoryMilitary,
				BaseProduction:   30,
				BaseConsumption:  20,
				MinQuantity:      100,
				MaxStorage:       3000,
				Deterioration:    0,
				WorkerEfficiency: 1.5,
				DefaultWorkers:   67,
				BaseMarketValue:  2.0,
				Modifiers:        map[string]float64{"military": 0.6, "economy": -0.2, "happiness": -0.1},
				Dependencies: map[realm.ResourceType]DependencyEffect{
					realm.ResourceBuildingMaterials: {Production: 0.2},
					realm.ResourceGold:              {Consumption: 0.2},
				},
				StatusEffects: map[realm.ResourceStatus]realm.Impact{
					realm.StatusCritical: {Military: -10, Happiness: -5},
					realm.StatusSurplus:  {Military: 5},
				},
			},
			realm.ResourceLuxuryGoods: {
				Name:             "Luxury Goods",
				Category:         realm.CategoryEconomic,
				BaseProduction:   20,
				BaseConsumption:  15,
				MinQuantity:      50,
				MaxStorage:       2000,
				Deterioration:    0,
				WorkerEfficiency: 1.8,
				DefaultWorkers:   56,
				BaseMarketValue:  2.5,
				Modifiers:        map[string]float64{"happiness": 0.7, "economy": 0.4, "military": -0.1},
				Dependencies: map[realm.ResourceType]DependencyEffect{
					realm.ResourceGold: {Production: 0.3},
				},
				StatusEffects: map[realm.ResourceStatus]realm.Impact{
					realm.StatusCritical: {Happiness: -15, Economy: -5},
					realm.StatusSurplus:  {Happiness: 10, Economy: 3},
				},
			},
			realm.ResourceBuildingMaterials: {
				Name:             "Building Materials",
				Category:         realm.CategoryInfrastructure,
				BaseProduction:   40,
				BaseConsumption:  25,
				MinQuantity:      150,
				MaxStorage:       4000,
				Deterioration:    0.02, // weathering
				WorkerEfficiency: 1.2,
				DefaultWorkers:   83,
				BaseMarketValue:  1.5,
				Modifiers:        map[string]float64{"economy": 0.4, "population": 0.3, "happiness": 0.2},
				Dependencies: map[realm.ResourceType]DependencyEffect{
					realm.ResourceGold: {Consumption: 0.1},
				},
				StatusEffects: map[realm.ResourceStatus]realm.Impact{
					realm.StatusCritical: {Economy: -8, Happiness: -3},
					realm.StatusSurplus:  {Economy: 4, Happiness: 2},
				},
			},
		},

		Quality: [realm.MaxQualityLevel + 1]QualityTier{
			{}, // level 0 unused
			{Name: "Basic", Production: 1.0, Consumption: 1.0, Storage: 1.0},
			{Name: "Improved", Production: 1.25, Consumption: 1.1, Storage: 1.2},
			{Name: "Advanced", Production: 1.5, Consumption: 1.2, Storage: 1.5},
			{Name: "Superior", Production: 2.0, Consumption: 1.3, Storage: 2.0},
		},

		UpgradeBaseCost:       100,
		WorkerLimit:           1000,
		ChainMaxSteps:         5,
		StartingStockFraction: 0.2,
	}
}

// StartingStatsFor scales the base starting stats by the difficulty's
// stat scale, flooring each value.
func (b *Balance) StartingStatsFor(d realm.Difficulty) realm.Stats {
	scale := b.Difficulty(d).StatScale
	if scale <= 0 {
		scale = 1
	}
	return realm.Stats{
		Population: int(float64(b.StartingStats.Population) * scale),
		Economy:    int(float64(b.StartingStats.Economy) * scale),
		Military:   int(float64(b.StartingStats.Military) * scale),
		Happiness:  int(float64(b.StartingStats.Happiness) * scale),
	}
}

// statValue resolves a stat-dependency name against a stats snapshot,
// normalized to a 0–1 fraction. Population normalizes against the
// population ceiling rather than 100.
func (b *Balance) statFraction(s realm.Stats, name string) float64 {
	switch name {
	case "population":
		if b.MaxPopulation <= 0 {
			return 0
		}
		return float64(s.Population) / float64(b.MaxPopulation)
	case "economy":
		return float64(s.Economy) / 100
	case "military":
		return float64(s.Military) / 100
	case "happiness":
		return float64(s.Happiness) / 100
	default:
		return 0
	}
}
