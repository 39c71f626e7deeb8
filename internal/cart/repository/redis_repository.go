package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ridloal/stationery-storefront/internal/cart/domain"
)

const keyPrefix = "cart:"

type redisSnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotRepository stores snapshots as JSON under cart:<sessionID>.
// A ttl of zero keeps keys forever.
func NewRedisSnapshotRepository(client *redis.Client, ttl time.Duration) SnapshotRepository {
	return &redisSnapshotRepository{client: client, ttl: ttl}
}

func snapshotKey(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *redisSnapshotRepository) Save(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey(sessionID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart snapshot %s: %w", sessionID, err)
	}
	return nil
}

func (r *redisSnapshotRepository) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	payload, err := r.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Snapshot{}, ErrSnapshotNotFound
		}
		return domain.Snapshot{}, fmt.Errorf("failed to load cart snapshot %s: %w", sessionID, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to decode cart snapshot %s: %w", sessionID, err)
	}
	return snap, nil
}

func (r *redisSnapshotRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, snapshotKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart snapshot %s: %w", sessionID, err)
	}
	return nil
}
