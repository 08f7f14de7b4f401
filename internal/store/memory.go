package store

import (
	"context"
	"sort"
	"sync"

	"github.com/aldric/regent/internal/realm"
)

// Memory is an in-process Store used by tests and throwaway games.
// All records are deep-copied on the way in and out so callers can
// never alias internal state.
type Memory struct {
	mu        sync.RWMutex
	kingdoms  map[string]*realm.Kingdom
	resources map[string]*realm.Resource
	events    map[string]*realm.Event
	chains    map[string]*realm.EventChain
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		kingdoms:  make(map[string]*realm.Kingdom),
		resources: make(map[string]*realm.Resource),
		events:    make(map[string]*realm.Event),
		chains:    make(map[string]*realm.EventChain),
	}
}

func (m *Memory) Close() error { return nil }

func copyKingdom(k *realm.Kingdom) *realm.Kingdom {
	c := *k
	return &c
}

func copyResource(r *realm.Resource) *realm.Resource {
	c := *r
	return &c
}

func copyEvent(e *realm.Event) *realm.Event {
	c := *e
	c.Choices = append([]realm.Choice(nil), e.Choices...)
	return &c
}

func copyChain(ch *realm.EventChain) *realm.EventChain {
	c := *ch
	c.Outcomes = append([]realm.ChainOutcome(nil), ch.Outcomes...)
	if ch.EndedAt != nil {
		t := *ch.EndedAt
		c.EndedAt = &t
	}
	return &c
}

func (m *Memory) CreateKingdom(_ context.Context, k *realm.Kingdom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kingdoms[k.ID] = copyKingdom(k)
	return nil
}

func (m *Memory) GetKingdom(_ context.Context, id string) (*realm.Kingdom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k, ok := m.kingdoms[id]
	if !ok {
		return nil, realm.ErrNotFound
	}
	return copyKingdom(k), nil
}

func (m *Memory) UpdateKingdom(_ context.Context, k *realm.Kingdom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.kingdoms[k.ID]; !ok {
		return realm.ErrNotFound
	}
	m.kingdoms[k.ID] = copyKingdom(k)
	return nil
}

func (m *Memory) DeleteKingdom(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.kingdoms[id]; !ok {
		return realm.ErrNotFound
	}
	delete(m.kingdoms, id)
	for rid, r := range m.resources {
		if r.KingdomID == id {
			delete(m.resources, rid)
		}
	}
	for eid, e := range m.events {
		if e.KingdomID == id {
			delete(m.events, eid)
		}
	}
	for cid, c := range m.chains {
		if c.KingdomID == id {
			delete(m.chains, cid)
		}
	}
	return nil
}

func (m *Memory) ListKingdoms(_ context.Context, owner string) ([]*realm.Kingdom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*realm.Kingdom
	for _, k := range m.kingdoms {
		if k.Owner == owner {
			out = append(out, copyKingdom(k))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CreateResource(_ context.Context, r *realm.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[r.ID] = copyResource(r)
	return nil
}

func (m *Memory) GetResource(_ context.Context, id string) (*realm.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.resources[id]
	if !ok {
		return nil, realm.ErrNotFound
	}
	return copyResource(r), nil
}

func (m *Memory) UpdateResource(_ context.Context, r *realm.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resources[r.ID]; !ok {
		return realm.ErrNotFound
	}
	m.resources[r.ID] = copyResource(r)
	return nil
}

func (m *Memory) UpdateResources(_ context.Context, rs []*realm.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rs {
		if _, ok := m.resources[r.ID]; !ok {
			return realm.ErrNotFound
		}
	}
	for _, r := range rs {
		m.resources[r.ID] = copyResource(r)
	}
	return nil
}

func (m *Memory) ListResources(_ context.Context, kingdomID string) ([]*realm.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*realm.Resource
	for _, r := range m.resources {
		if r.KingdomID == kingdomID {
			out = append(out, copyResource(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) CreateEvent(_ context.Context, e *realm.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = copyEvent(e)
	return nil
}

func (m *Memory) GetEvent(_ context.Context, id string) (*realm.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[id]
	if !ok {
		return nil, realm.ErrNotFound
	}
	return copyEvent(e), nil
}

func (m *Memory) UpdateEvent(_ context.Context, e *realm.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[e.ID]; !ok {
		return realm.ErrNotFound
	}
	m.events[e.ID] = copyEvent(e)
	return nil
}

func (m *Memory) ListEvents(_ context.Context, kingdomID string, limit int) ([]*realm.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*realm.Event
	for _, e := range m.events {
		if e.KingdomID == kingdomID {
			out = append(out, copyEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) CreateChain(_ context.Context, c *realm.EventChain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chains[c.ID] = copyChain(c)
	return nil
}

func (m *Memory) GetChain(_ context.Context, id string) (*realm.EventChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chains[id]
	if !ok {
		return nil, realm.ErrNotFound
	}
	return copyChain(c), nil
}

func (m *Memory) UpdateChain(_ context.Context, c *realm.EventChain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chains[c.ID]; !ok {
		return realm.ErrNotFound
	}
	m.chains[c.ID] = copyChain(c)
	return nil
}

func (m *Memory) ListChains(_ context.Context, kingdomID string) ([]*realm.EventChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*realm.EventChain
	for _, c := range m.chains {
		if c.KingdomID == kingdomID {
			out = append(out, copyChain(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*SQLite)(nil)
)
