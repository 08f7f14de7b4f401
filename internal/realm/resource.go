package realm

import "time"

// ResourceType identifies a tracked stockpile.
type ResourceType string

const (
	ResourceGold              ResourceType = "GOLD"
	ResourceFood              ResourceType = "FOOD"
	ResourceMilitarySupplies  ResourceType = "MILITARY_SUPPLIES"
	ResourceLuxuryGoods       ResourceType = "LUXURY_GOODS"
	ResourceBuildingMaterials ResourceType = "BUILDING_MATERIALS"
)

// ResourceTypes lists every type in play, in creation order.
var ResourceTypes = []ResourceType{
	ResourceGold,
	ResourceFood,
	ResourceMilitarySupplies,
	ResourceLuxuryGoods,
	ResourceBuildingMaterials,
}

// ResourceCategory groups resource types for reporting.
type ResourceCategory string

const (
	CategoryEconomic       ResourceCategory = "ECONOMIC"
	CategoryMilitary       ResourceCategory = "MILITARY"
	CategorySocial         ResourceCategory = "SOCIAL"
	CategoryInfrastructure ResourceCategory = "INFRASTRUCTURE"
)

// ResourceStatus is the derived urgency classification of a stockpile.
// It is always recomputed from quantity and rates; the persisted value
// is a cache for display, never an input.
type ResourceStatus string

const (
	StatusNormal   ResourceStatus = "NORMAL"
	StatusCaution  ResourceStatus = "CAUTION"
	StatusWarning  ResourceStatus = "WARNING"
	StatusCritical ResourceStatus = "CRITICAL"
	StatusSurplus  ResourceStatus = "SURPLUS"
	StatusStable   ResourceStatus = "STABLE"
)

// Urgent reports whether the status indicates scarcity severe enough to
// penalize dependent resources and kingdom stats.
func (s ResourceStatus) Urgent() bool {
	return s == StatusWarning || s == StatusCritical
}

// MinQualityLevel and MaxQualityLevel bound resource upgrade tiers.
const (
	MinQualityLevel = 1
	MaxQualityLevel = 4
)

// Resource is one tracked stockpile belonging to a kingdom.
type Resource struct {
	ID        string       `json:"id" db:"id"`
	KingdomID string       `json:"kingdom_id" db:"kingdom_id"`
	Owner     string       `json:"owner" db:"owner"`
	Name      string       `json:"name" db:"name"`
	Type      ResourceType `json:"type" db:"type"`

	Category ResourceCategory `json:"category" db:"category"`

	Quantity    int `json:"quantity" db:"quantity"`
	Production  int `json:"production" db:"production"`   // Last computed per-turn rate
	Consumption int `json:"consumption" db:"consumption"` // Last computed per-turn rate

	MinQuantity int `json:"min_quantity" db:"min_quantity"`
	MaxStorage  int `json:"max_storage" db:"max_storage"`

	QualityLevel     int     `json:"quality_level" db:"quality_level"` // 1–4
	WorkerAllocation int     `json:"worker_allocation" db:"worker_allocation"`
	MarketValue      float64 `json:"market_value" db:"market_value"`

	Status ResourceStatus `json:"status" db:"status"`

	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// NetChange is production minus consumption, before deterioration.
func (r *Resource) NetChange() int {
	return r.Production - r.Consumption
}

// StoragePercent is how full the stockpile is, 0–100.
func (r *Resource) StoragePercent() int {
	if r.MaxStorage <= 0 {
		return 0
	}
	pct := r.Quantity * 100 / r.MaxStorage
	if pct > 100 {
		return 100
	}
	return pct
}
