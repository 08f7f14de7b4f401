package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/aldric/regent/internal/realm"
)

// SQLite is the production Store backed by a single SQLite file.
type SQLite struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*SQLite, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &SQLite{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

func (db *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kingdoms (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		name TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		population INTEGER NOT NULL,
		economy INTEGER NOT NULL,
		military INTEGER NOT NULL,
		happiness INTEGER NOT NULL,
		prev_population INTEGER NOT NULL,
		prev_economy INTEGER NOT NULL,
		prev_military INTEGER NOT NULL,
		prev_happiness INTEGER NOT NULL,
		turn INTEGER NOT NULL,
		phase TEXT NOT NULL,
		pending_event_id TEXT NOT NULL DEFAULT '',
		last_updated TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		kingdom_id TEXT NOT NULL,
		owner TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		category TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		production INTEGER NOT NULL,
		consumption INTEGER NOT NULL,
		min_quantity INTEGER NOT NULL,
		max_storage INTEGER NOT NULL,
		quality_level INTEGER NOT NULL,
		worker_allocation INTEGER NOT NULL,
		market_value REAL NOT NULL,
		status TEXT NOT NULL,
		last_updated TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		kingdom_id TEXT NOT NULL,
		owner TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		type TEXT NOT NULL,
		choices_json TEXT NOT NULL,
		chain_id TEXT NOT NULL DEFAULT '',
		step INTEGER NOT NULL DEFAULT 0,
		resolved INTEGER NOT NULL DEFAULT 0,
		timestamp TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS event_chains (
		id TEXT PRIMARY KEY,
		kingdom_id TEXT NOT NULL,
		owner TEXT NOT NULL,
		type TEXT NOT NULL,
		"trigger" TEXT NOT NULL,
		current_step INTEGER NOT NULL,
		max_steps INTEGER NOT NULL,
		outcomes_json TEXT NOT NULL,
		is_complete INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		ended_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_kingdoms_owner ON kingdoms(owner);
	CREATE INDEX IF NOT EXISTS idx_resources_kingdom ON resources(kingdom_id);
	CREATE INDEX IF NOT EXISTS idx_events_kingdom ON events(kingdom_id);
	CREATE INDEX IF NOT EXISTS idx_chains_kingdom ON event_chains(kingdom_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// persistErr classifies a database error: missing rows become
// realm.ErrNotFound, everything else is a PersistenceError.
func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return realm.ErrNotFound
	}
	return &realm.PersistenceError{Op: op, Err: err}
}

// ── Kingdoms ─────────────────────────────────────────────────────────

type kingdomRow struct {
	ID             string `db:"id"`
	Owner          string `db:"owner"`
	Name           string `db:"name"`
	Difficulty     string `db:"difficulty"`
	Population     int    `db:"population"`
	Economy        int    `db:"economy"`
	Military       int    `db:"military"`
	Happiness      int    `db:"happiness"`
	PrevPopulation int    `db:"prev_population"`
	PrevEconomy    int    `db:"prev_economy"`
	PrevMilitary   int    `db:"prev_military"`
	PrevHappiness  int    `db:"prev_happiness"`
	Turn           int    `db:"turn"`
	Phase          string `db:"phase"`
	PendingEventID string `db:"pending_event_id"`
	LastUpdated    string `db:"last_updated"`
}

func (r kingdomRow) toKingdom() *realm.Kingdom {
	ts, _ := time.Parse(time.RFC3339, r.LastUpdated)
	return &realm.Kingdom{
		ID:         r.ID,
		Owner:      r.Owner,
		Name:       r.Name,
		Difficulty: realm.Difficulty(r.Difficulty),
		Stats: realm.Stats{
			Population: r.Population,
			Economy:    r.Economy,
			Military:   r.Military,
			Happiness:  r.Happiness,
		},
		Previous: realm.Stats{
			Population: r.PrevPopulation,
			Economy:    r.PrevEconomy,
			Military:   r.PrevMilitary,
			Happiness:  r.PrevHappiness,
		},
		Turn:           r.Turn,
		Phase:          realm.Phase(r.Phase),
		PendingEventID: r.PendingEventID,
		LastUpdated:    ts,
	}
}

func (db *SQLite) CreateKingdom(ctx context.Context, k *realm.Kingdom) error {
	_, err := db.conn.ExecContext(ctx, `INSERT INTO kingdoms
		(id, owner, name, difficulty,
		 population, economy, military, happiness,
		 prev_population, prev_economy, prev_military, prev_happiness,
		 turn, phase, pending_event_id, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		k.ID, k.Owner, k.Name, string(k.Difficulty),
		k.Stats.Population, k.Stats.Economy, k.Stats.Military, k.Stats.Happiness,
		k.Previous.Population, k.Previous.Economy, k.Previous.Military, k.Previous.Happiness,
		k.Turn, string(k.Phase), k.PendingEventID, k.LastUpdated.Format(time.RFC3339),
	)
	return persistErr("create kingdom", err)
}

func (db *SQLite) GetKingdom(ctx context.Context, id string) (*realm.Kingdom, error) {
	var row kingdomRow
	err := db.conn.GetContext(ctx, &row, "SELECT * FROM kingdoms WHERE id = ?", id)
	if err != nil {
		return nil, persistErr("get kingdom", err)
	}
	return row.toKingdom(), nil
}

func (db *SQLite) UpdateKingdom(ctx context.Context, k *realm.Kingdom) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE kingdoms SET
		name = ?, difficulty = ?,
		population = ?, economy = ?, military = ?, happiness = ?,
		prev_population = ?, prev_economy = ?, prev_military = ?, prev_happiness = ?,
		turn = ?, phase = ?, pending_event_id = ?, last_updated = ?
		WHERE id = ?`,
		k.Name, string(k.Difficulty),
		k.Stats.Population, k.Stats.Economy, k.Stats.Military, k.Stats.Happiness,
		k.Previous.Population, k.Previous.Economy, k.Previous.Military, k.Previous.Happiness,
		k.Turn, string(k.Phase), k.PendingEventID, k.LastUpdated.Format(time.RFC3339),
		k.ID,
	)
	if err != nil {
		return persistErr("update kingdom", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return realm.ErrNotFound
	}
	return nil
}

func (db *SQLite) DeleteKingdom(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return persistErr("delete kingdom", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM resources WHERE kingdom_id = ?",
		"DELETE FROM events WHERE kingdom_id = ?",
		"DELETE FROM event_chains WHERE kingdom_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return persistErr("delete kingdom", err)
		}
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM kingdoms WHERE id = ?", id)
	if err != nil {
		return persistErr("delete kingdom", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return realm.ErrNotFound
	}
	return persistErr("delete kingdom", tx.Commit())
}

func (db *SQLite) ListKingdoms(ctx context.Context, owner string) ([]*realm.Kingdom, error) {
	var rows []kingdomRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT * FROM kingdoms WHERE owner = ? ORDER BY last_updated DESC", owner)
	if err != nil {
		return nil, persistErr("list kingdoms", err)
	}
	out := make([]*realm.Kingdom, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toKingdom())
	}
	return out, nil
}

// ── Resources ────────────────────────────────────────────────────────

type resourceRow struct {
	ID               string  `db:"id"`
	KingdomID        string  `db:"kingdom_id"`
	Owner            string  `db:"owner"`
	Name             string  `db:"name"`
	Type             string  `db:"type"`
	Category         string  `db:"category"`
	Quantity         int     `db:"quantity"`
	Production       int     `db:"production"`
	Consumption      int     `db:"consumption"`
	MinQuantity      int     `db:"min_quantity"`
	MaxStorage       int     `db:"max_storage"`
	QualityLevel     int     `db:"quality_level"`
	WorkerAllocation int     `db:"worker_allocation"`
	MarketValue      float64 `db:"market_value"`
	Status           string  `db:"status"`
	LastUpdated      string  `db:"last_updated"`
}

func (r resourceRow) toResource() *realm.Resource {
	ts, _ := time.Parse(time.RFC3339, r.LastUpdated)
	return &realm.Resource{
		ID:               r.ID,
		KingdomID:        r.KingdomID,
		Owner:            r.Owner,
		Name:             r.Name,
		Type:             realm.ResourceType(r.Type),
		Category:         realm.ResourceCategory(r.Category),
		Quantity:         r.Quantity,
		Production:       r.Production,
		Consumption:      r.Consumption,
		MinQuantity:      r.MinQuantity,
		MaxStorage:       r.MaxStorage,
		QualityLevel:     r.QualityLevel,
		WorkerAllocation: r.WorkerAllocation,
		MarketValue:      r.MarketValue,
		Status:           realm.ResourceStatus(r.Status),
		LastUpdated:      ts,
	}
}

func (db *SQLite) CreateResource(ctx context.Context, r *realm.Resource) error {
	_, err := db.conn.ExecContext(ctx, `INSERT INTO resources
		(id, kingdom_id, owner, name, type, category,
		 quantity, production, consumption, min_quantity, max_storage,
		 quality_level, worker_allocation, market_value, status, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.KingdomID, r.Owner, r.Name, string(r.Type), string(r.Category),
		r.Quantity, r.Production, r.Consumption, r.MinQuantity, r.MaxStorage,
		r.QualityLevel, r.WorkerAllocation, r.MarketValue, string(r.Status),
		r.LastUpdated.Format(time.RFC3339),
	)
	return persistErr("create resource", err)
}

func (db *SQLite) GetResource(ctx context.Context, id string) (*realm.Resource, error) {
	var row resourceRow
	err := db.conn.GetContext(ctx, &row, "SELECT * FROM resources WHERE id = ?", id)
	if err != nil {
		return nil, persistErr("get resource", err)
	}
	return row.toResource(), nil
}

const updateResourceSQL = `UPDATE resources SET
	quantity = ?, production = ?, consumption = ?,
	min_quantity = ?, max_storage = ?,
	quality_level = ?, worker_allocation = ?, market_value = ?,
	status = ?, last_updated = ?
	WHERE id = ?`

func updateResourceArgs(r *realm.Resource) []any {
	return []any{
		r.Quantity, r.Production, r.Consumption,
		r.MinQuantity, r.MaxStorage,
		r.QualityLevel, r.WorkerAllocation, r.MarketValue,
		string(r.Status), r.LastUpdated.Format(time.RFC3339),
		r.ID,
	}
}

func (db *SQLite) UpdateResource(ctx context.Context, r *realm.Resource) error {
	res, err := db.conn.ExecContext(ctx, updateResourceSQL, updateResourceArgs(r)...)
	if err != nil {
		return persistErr("update resource", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return realm.ErrNotFound
	}
	return nil
}

func (db *SQLite) UpdateResources(ctx context.Context, rs []*realm.Resource) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return persistErr("update resources", err)
	}
	defer tx.Rollback()

	for _, r := range rs {
		res, err := tx.ExecContext(ctx, updateResourceSQL, updateResourceArgs(r)...)
		if err != nil {
			return persistErr("update resources", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return realm.ErrNotFound
		}
	}
	return persistErr("update resources", tx.Commit())
}

func (db *SQLite) ListResources(ctx context.Context, kingdomID string) ([]*realm.Resource, error) {
	var rows []resourceRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT * FROM resources WHERE kingdom_id = ? ORDER BY name", kingdomID)
	if err != nil {
		return nil, persistErr("list resources", err)
	}
	out := make([]*realm.Resource, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toResource())
	}
	return out, nil
}

// ── Events ───────────────────────────────────────────────────────────

type eventRow struct {
	ID          string `db:"id"`
	KingdomID   string `db:"kingdom_id"`
	Owner       string `db:"owner"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Type        string `db:"type"`
	ChoicesJSON string `db:"choices_json"`
	ChainID     string `db:"chain_id"`
	Step        int    `db:"step"`
	Resolved    bool   `db:"resolved"`
	Timestamp   string `db:"timestamp"`
}

func (r eventRow) toEvent() (*realm.Event, error) {
	var choices []realm.Choice
	if err := json.Unmarshal([]byte(r.ChoicesJSON), &choices); err != nil {
		return nil, fmt.Errorf("decode choices for event %s: %w", r.ID, err)
	}
	ts, _ := time.Parse(time.RFC3339, r.Timestamp)
	return &realm.Event{
		ID:          r.ID,
		KingdomID:   r.KingdomID,
		Owner:       r.Owner,
		Title:       r.Title,
		Description: r.Description,
		Type:        realm.EventCategory(r.Type),
		Choices:     choices,
		ChainID:     r.ChainID,
		Step:        r.Step,
		Resolved:    r.Resolved,
		Timestamp:   ts,
	}, nil
}

func (db *SQLite) CreateEvent(ctx context.Context, e *realm.Event) error {
	choicesJSON, err := json.Marshal(e.Choices)
	if err != nil {
		return fmt.Errorf("encode choices: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `INSERT INTO events
		(id, kingdom_id, owner, title, description, type,
		 choices_json, chain_id, step, resolved, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.KingdomID, e.Owner, e.Title, e.Description, string(e.Type),
		string(choicesJSON), e.ChainID, e.Step, e.Resolved,
		e.Timestamp.Format(time.RFC3339),
	)
	return persistErr("create event", err)
}

func (db *SQLite) GetEvent(ctx context.Context, id string) (*realm.Event, error) {
	var row eventRow
	err := db.conn.GetContext(ctx, &row, "SELECT * FROM events WHERE id = ?", id)
	if err != nil {
		return nil, persistErr("get event", err)
	}
	return row.toEvent()
}

func (db *SQLite) UpdateEvent(ctx context.Context, e *realm.Event) error {
	choicesJSON, err := json.Marshal(e.Choices)
	if err != nil {
		return fmt.Errorf("encode choices: %w", err)
	}
	res, err := db.conn.ExecContext(ctx,
		"UPDATE events SET choices_json = ?, resolved = ? WHERE id = ?",
		string(choicesJSON), e.Resolved, e.ID)
	if err != nil {
		return persistErr("update event", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return realm.ErrNotFound
	}
	return nil
}

func (db *SQLite) ListEvents(ctx context.Context, kingdomID string, limit int) ([]*realm.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []eventRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT * FROM events WHERE kingdom_id = ? ORDER BY timestamp DESC LIMIT ?",
		kingdomID, limit)
	if err != nil {
		return nil, persistErr("list events", err)
	}
	out := make([]*realm.Event, 0, len(rows))
	for _, r := range rows {
		e, err := r.toEvent()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ── Event chains ─────────────────────────────────────────────────────

type chainRow struct {
	ID           string  `db:"id"`
	KingdomID    string  `db:"kingdom_id"`
	Owner        string  `db:"owner"`
	Type         string  `db:"type"`
	Trigger      string  `db:"trigger"`
	CurrentStep  int     `db:"current_step"`
	MaxSteps     int     `db:"max_steps"`
	OutcomesJSON string  `db:"outcomes_json"`
	IsComplete   bool    `db:"is_complete"`
	StartedAt    string  `db:"started_at"`
	EndedAt      *string `db:"ended_at"`
}

func (r chainRow) toChain() (*realm.EventChain, error) {
	var outcomes []realm.ChainOutcome
	if err := json.Unmarshal([]byte(r.OutcomesJSON), &outcomes); err != nil {
		return nil, fmt.Errorf("decode outcomes for chain %s: %w", r.ID, err)
	}
	started, _ := time.Parse(time.RFC3339, r.StartedAt)
	c := &realm.EventChain{
		ID:          r.ID,
		KingdomID:   r.KingdomID,
		Owner:       r.Owner,
		Type:        r.Type,
		Trigger:     r.Trigger,
		CurrentStep: r.CurrentStep,
		MaxSteps:    r.MaxSteps,
		Outcomes:    outcomes,
		IsComplete:  r.IsComplete,
		StartedAt:   started,
	}
	if r.EndedAt != nil {
		ended, _ := time.Parse(time.RFC3339, *r.EndedAt)
		c.EndedAt = &ended
	}
	return c, nil
}

func (db *SQLite) CreateChain(ctx context.Context, c *realm.EventChain) error {
	outcomesJSON, err := json.Marshal(c.Outcomes)
	if err != nil {
		return fmt.Errorf("encode outcomes: %w", err)
	}
	var endedAt *string
	if c.EndedAt != nil {
		s := c.EndedAt.Format(time.RFC3339)
		endedAt = &s
	}
	_, err = db.conn.ExecContext(ctx, `INSERT INTO event_chains
		(id, kingdom_id, owner, type, "trigger",
		 current_step, max_steps, outcomes_json, is_complete, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.KingdomID, c.Owner, c.Type, c.Trigger,
		c.CurrentStep, c.MaxSteps, string(outcomesJSON), c.IsComplete,
		c.StartedAt.Format(time.RFC3339), endedAt,
	)
	return persistErr("create chain", err)
}

func (db *SQLite) GetChain(ctx context.Context, id string) (*realm.EventChain, error) {
	var row chainRow
	err := db.conn.GetContext(ctx, &row, "SELECT * FROM event_chains WHERE id = ?", id)
	if err != nil {
		return nil, persistErr("get chain", err)
	}
	return row.toChain()
}

func (db *SQLite) UpdateChain(ctx context.Context, c *realm.EventChain) error {
	outcomesJSON, err := json.Marshal(c.Outcomes)
	if err != nil {
		return fmt.Errorf("encode outcomes: %w", err)
	}
	var endedAt *string
	if c.EndedAt != nil {
		s := c.EndedAt.Format(time.RFC3339)
		endedAt = &s
	}
	res, err := db.conn.ExecContext(ctx, `UPDATE event_chains SET
		current_step = ?, outcomes_json = ?, is_complete = ?, ended_at = ?
		WHERE id = ?`,
		c.CurrentStep, string(outcomesJSON), c.IsComplete, endedAt, c.ID)
	if err != nil {
		return persistErr("update chain", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return realm.ErrNotFound
	}
	return nil
}

func (db *SQLite) ListChains(ctx context.Context, kingdomID string) ([]*realm.EventChain, error) {
	var rows []chainRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT * FROM event_chains WHERE kingdom_id = ? ORDER BY started_at DESC", kingdomID)
	if err != nil {
		return nil, persistErr("list chains", err)
	}
	out := make([]*realm.EventChain, 0, len(rows))
	for _, r := range rows {
		c, err := r.toChain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
