// Package store provides persistence for kingdom, resource, event and
// event-chain records behind a key-value-record interface. The SQLite
// implementation is the production store; the in-memory implementation
// backs tests and throwaway games.
package store

import (
	"context"

	"github.com/aldric/regent/internal/realm"
)

// Store is the persistence collaborator required by the simulation
// core. List operations filter by owner (kingdoms) or kingdomId
// (resources, events, chains). Implementations return
// realm.ErrNotFound for missing ids and wrap transient failures in
// *realm.PersistenceError.
type Store interface {
	CreateKingdom(ctx context.Context, k *realm.Kingdom) error
	GetKingdom(ctx context.Context, id string) (*realm.Kingdom, error)
	UpdateKingdom(ctx context.Context, k *realm.Kingdom) error
	// DeleteKingdom removes the kingdom and cascades to its resources,
	// events and chains.
	DeleteKingdom(ctx context.Context, id string) error
	ListKingdoms(ctx context.Context, owner string) ([]*realm.Kingdom, error)

	CreateResource(ctx context.Context, r *realm.Resource) error
	GetResource(ctx context.Context, id string) (*realm.Resource, error)
	UpdateResource(ctx context.Context, r *realm.Resource) error
	// UpdateResources applies a batch of resource updates atomically:
	// either every record is written or none are.
	UpdateResources(ctx context.Context, rs []*realm.Resource) error
	ListResources(ctx context.Context, kingdomID string) ([]*realm.Resource, error)

	CreateEvent(ctx context.Context, e *realm.Event) error
	GetEvent(ctx context.Context, id string) (*realm.Event, error)
	UpdateEvent(ctx context.Context, e *realm.Event) error
	ListEvents(ctx context.Context, kingdomID string, limit int) ([]*realm.Event, error)

	CreateChain(ctx context.Context, c *realm.EventChain) error
	GetChain(ctx context.Context, id string) (*realm.EventChain, error)
	UpdateChain(ctx context.Context, c *realm.EventChain) error
	ListChains(ctx context.Context, kingdomID string) ([]*realm.EventChain, error)

	Close() error
}
