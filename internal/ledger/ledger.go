// Package ledger manages kingdom stockpiles: bootstrap at game start,
// per-turn production and consumption, worker allocation, and quality
// upgrades. It is the only writer of resource records.
package ledger

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/aldric/regent/internal/realm"
	"github.com/aldric/regent/internal/rules"
	"github.com/aldric/regent/internal/store"
)

// Ledger coordinates resource state for every kingdom in a store.
type Ledger struct {
	store   store.Store
	balance *rules.Balance
	retry   store.RetryPolicy
	log     *slog.Logger
}

// New creates a ledger over the given store and rule set.
func New(st store.Store, balance *rules.Balance, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{
		store:   st,
		balance: balance,
		retry:   store.DefaultRetry,
		log:     log,
	}
}

// Initialize creates the full resource set for a new kingdom. It is
// idempotent: a kingdom that already has resources is left untouched.
// Each create is retried on transient failure; if any resource still
// cannot be created the whole bootstrap fails with an
// InitializationError and the game is not playable.
func (l *Ledger) Initialize(ctx context.Context, k *realm.Kingdom) error {
	existing, err := l.store.ListResources(ctx, k.ID)
	if err != nil {
		return &realm.InitializationError{Err: err}
	}
	if len(existing) > 0 {
		l.log.Info("resources already initialized", "kingdom", k.ID, "count", len(existing))
		return nil
	}

	settings := l.balance.Difficulty(k.Difficulty)
	now := time.Now().UTC()

	for _, t := range realm.ResourceTypes {
		cfg, ok := l.balance.Resources[t]
		if !ok {
			continue
		}

		qty, ok := settings.StartingResources[t]
		if !ok {
			qty = int(float64(cfg.MaxStorage) * l.balance.StartingStockFraction)
		}

		r := &realm.Resource{
			ID:               uuid.NewString(),
			KingdomID:        k.ID,
			Owner:            k.Owner,
			Name:             cfg.Name,
			Type:             t,
			Category:         cfg.Category,
			Quantity:         qty,
			MinQuantity:      cfg.MinQuantity,
			MaxStorage:       cfg.MaxStorage,
			QualityLevel:     realm.MinQualityLevel,
			WorkerAllocation: cfg.DefaultWorkers,
			MarketValue:      cfg.BaseMarketValue,
			LastUpdated:      now,
		}
		rates := l.balance.ResourceRates(r, k.Stats, nil)
		r.Production = rates.Production
		r.Consumption = rates.Consumption
		r.Status = rules.ClassifyStatus(r)

		err := l.retry.Do(ctx, func() error {
			return l.store.CreateResource(ctx, r)
		})
		if err != nil {
			l.log.Error("resource bootstrap failed", "kingdom", k.ID, "type", t, "error", err)
			return &realm.InitializationError{Err: fmt.Errorf("create %s: %w", t, err)}
		}
	}

	l.log.Info("resources initialized", "kingdom", k.ID, "difficulty", k.Difficulty)
	return nil
}

// TurnResult is the outcome of one resource turn: the updated records
// plus advisory notifications. Persist failures for individual
// resources appear as ERROR notifications and leave that resource's
// previous record in place; they never abort the turn.
type TurnResult struct {
	Resources     []*realm.Resource
	Notifications []realm.Notification
}

// ProcessTurn advances every resource of a kingdom by one turn:
// recompute rates, apply deterioration and the net change, clamp to
// [0, max storage], reprice, and reclassify. Rates are computed
// against the pre-turn state of the whole set so dependency effects
// see a consistent snapshot.
func (l *Ledger) ProcessTurn(ctx context.Context, k *realm.Kingdom) (*TurnResult, error) {
	resources, err := l.store.ListResources(ctx, k.ID)
	if err != nil {
		return nil, err
	}

	result := &TurnResult{}

	// Pass 1: rates from the pre-turn snapshot.
	computed := make([]rules.Rates, len(resources))
	for i, r := range resources {
		computed[i] = l.balance.ResourceRates(r, k.Stats, resources)
	}

	// Pass 2: apply.
	now := time.Now().UTC()
	for i, r := range resources {
		cfg := l.balance.Resources[r.Type]

		r.Production = computed[i].Production
		r.Consumption = computed[i].Consumption

		loss := rules.Deterioration(r, cfg.Deterioration)
		if loss > 0 {
			result.Notifications = append(result.Notifications, realm.Notification{
				Type:    realm.NotifyInfo,
				Message: fmt.Sprintf("%d %s lost to spoilage", loss, r.Name),
			})
		}

		q := r.Quantity + r.NetChange() - loss
		if q < 0 {
			q = 0
		}
		if q > r.MaxStorage {
			q = r.MaxStorage
		}
		r.Quantity = q

		r.MarketValue = rules.MarketValue(cfg.BaseMarketValue, r.Production, r.Consumption)
		r.Status = rules.ClassifyStatus(r)
		r.LastUpdated = now

		switch {
		case r.Quantity <= r.MinQuantity:
			result.Notifications = append(result.Notifications, realm.Notification{
				Type:    realm.NotifyCritical,
				Message: fmt.Sprintf("%s critically low: %d remaining", r.Name, r.Quantity),
			})
		case r.StoragePercent() >= 90:
			result.Notifications = append(result.Notifications, realm.Notification{
				Type:    realm.NotifyWarning,
				Message: fmt.Sprintf("%s storage nearly full (%d%%)", r.Name, r.StoragePercent()),
			})
		}
	}

	// Pass 3: persist concurrently; a failed write downgrades to an
	// ERROR notification for that resource only.
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, r := range resources {
		wg.Add(1)
		go func(r *realm.Resource) {
			defer wg.Done()
			if err := l.store.UpdateResource(ctx, r); err != nil {
				l.log.Error("resource persist failed", "kingdom", k.ID, "resource", r.Type, "error", err)
				mu.Lock()
				result.Notifications = append(result.Notifications, realm.Notification{
					Type:    realm.NotifyError,
					Message: fmt.Sprintf("failed to save %s, changes may be lost", r.Name),
				})
				mu.Unlock()
			}
		}(r)
	}
	wg.Wait()

	result.Resources = resources
	return result, nil
}

// AllocateWorkers sets the workforce assigned to a resource, clamped
// to [0, worker limit]. The new rates take effect next turn.
func (l *Ledger) AllocateWorkers(ctx context.Context, resourceID string, workers int) (*realm.Resource, error) {
	r, err := l.store.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	if workers < 0 {
		workers = 0
	}
	if workers > l.balance.WorkerLimit {
		workers = l.balance.WorkerLimit
	}

	r.WorkerAllocation = workers
	r.LastUpdated = time.Now().UTC()
	if err := l.store.UpdateResource(ctx, r); err != nil {
		return nil, err
	}

	l.log.Info("workers allocated", "resource", r.Type, "workers", workers)
	return r, nil
}

// UpgradeCost is the gold price of raising a resource from its current
// quality level: base cost doubled per level already attained.
func (l *Ledger) UpgradeCost(level int) int {
	return l.balance.UpgradeBaseCost * int(math.Pow(2, float64(level)))
}

// UpgradeQuality raises a resource one quality tier, paying from the
// kingdom's gold stockpile. Fails with ErrMaxLevel at the top tier and
// ErrInsufficientFunds when gold can't cover the cost. The gold
// deduction and the upgraded record are written in one atomic batch,
// with max storage, production and consumption recomputed from the new
// tier's multipliers.
func (l *Ledger) UpgradeQuality(ctx context.Context, kingdomID, resourceID string) (*realm.Resource, error) {
	k, err := l.store.GetKingdom(ctx, kingdomID)
	if err != nil {
		return nil, err
	}
	resources, err := l.store.ListResources(ctx, kingdomID)
	if err != nil {
		return nil, err
	}

	var r, gold *realm.Resource
	for _, res := range resources {
		if res.ID == resourceID {
			r = res
		}
		if res.Type == realm.ResourceGold {
			gold = res
		}
	}
	if r == nil || gold == nil {
		return nil, realm.ErrNotFound
	}
	if r.QualityLevel >= realm.MaxQualityLevel {
		return nil, realm.ErrMaxLevel
	}

	cost := l.UpgradeCost(r.QualityLevel)
	if gold.Quantity < cost {
		return nil, realm.ErrInsufficientFunds
	}

	gold.Quantity -= cost

	cfg := l.balance.Resources[r.Type]
	r.QualityLevel++
	tier := l.balance.Quality[r.QualityLevel]
	r.MaxStorage = int(float64(cfg.MaxStorage) * tier.Storage)

	rates := l.balance.ResourceRates(r, k.Stats, resources)
	r.Production = rates.Production
	r.Consumption = rates.Consumption

	updated := []*realm.Resource{r}
	if gold.ID != r.ID {
		updated = append(updated, gold)
	}
	now := time.Now().UTC()
	for _, res := range updated {
		res.Status = rules.ClassifyStatus(res)
		res.LastUpdated = now
	}
	if err := l.store.UpdateResources(ctx, updated); err != nil {
		return nil, err
	}

	l.log.Info("quality upgraded", "resource", r.Type, "level", r.QualityLevel, "cost", cost)
	return r, nil
}

// ResourceView is the reporting shape for one stockpile: the stored
// record plus derived figures the display layers need.
type ResourceView struct {
	realm.Resource
	NetChange   int                `json:"net_change"`
	StoragePct  int                `json:"storage_pct"`
	Efficiency  float64            `json:"efficiency"`
	UpgradeCost int                `json:"upgrade_cost,omitempty"` // 0 at max level
	Trend       []rules.TrendPoint `json:"trend"`
}

// TrendTurns is how many turns ahead Report projects each resource.
const TrendTurns = 5

// Report builds the resource views for a kingdom.
func (l *Ledger) Report(ctx context.Context, kingdomID string) ([]ResourceView, error) {
	resources, err := l.store.ListResources(ctx, kingdomID)
	if err != nil {
		return nil, err
	}

	views := make([]ResourceView, 0, len(resources))
	for _, r := range resources {
		v := ResourceView{
			Resource:   *r,
			NetChange:  r.NetChange(),
			StoragePct: r.StoragePercent(),
			Efficiency: rules.Efficiency(r),
			Trend:      rules.ProjectTrend(r, TrendTurns),
		}
		if r.QualityLevel < realm.MaxQualityLevel {
			v.UpgradeCost = l.UpgradeCost(r.QualityLevel)
		}
		views = append(views, v)
	}
	return views, nil
}

// Trend projects a single resource's trajectory over the given number
// of turns.
func (l *Ledger) Trend(ctx context.Context, resourceID string, turns int) ([]rules.TrendPoint, error) {
	r, err := l.store.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if turns <= 0 {
		turns = TrendTurns
	}
	return rules.ProjectTrend(r, turns), nil
}
