package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/ridloal/stationery-storefront/internal/cart/domain"
)

var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// SnapshotRepository persists the latest snapshot of each cart session.
type SnapshotRepository interface {
	Save(ctx context.Context, sessionID string, snap domain.Snapshot) error
	Load(ctx context.Context, sessionID string) (domain.Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

type memorySnapshotRepository struct {
	mu    sync.RWMutex
	carts map[string]domain.Snapshot
}

func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshotRepository{carts: make(map[string]domain.Snapshot)}
}

func (r *memorySnapshotRepository) Save(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// keep the newest version when saves race
	if prev, ok := r.carts[sessionID]; ok && prev.Version > snap.Version {
		return nil
	}
	r.carts[sessionID] = snap
	return nil
}

func (r *memorySnapshotRepository) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.carts[sessionID]
	if !ok {
		return domain.Snapshot{}, ErrSnapshotNotFound
	}
	return snap, nil
}

func (r *memorySnapshotRepository) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}
