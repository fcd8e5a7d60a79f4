package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/saske7779/Web-app-granja/internal/models"

	"github.com/redis/go-redis/v9"
)

const snapshotTTL = 30 * time.Second

// SnapshotCache keeps recently built account snapshots in Redis. Every
// balance-mutating operation invalidates the touched accounts, so a cached
// entry is at worst snapshotTTL stale and never survives a mutation.
// A nil client disables caching.
type SnapshotCache struct {
	cli *redis.Client
}

func NewSnapshotCache(cli *redis.Client) *SnapshotCache {
	return &SnapshotCache{
		cli: cli,
	}
}

func snapshotKey(accountId int64) string {
	return fmt.Sprintf("snapshot:%d", accountId)
}

func (c *SnapshotCache) Get(ctx context.Context, accountId int64) *models.AccountSnapshot {
	if c == nil || c.cli == nil {
		return nil
	}

	result, err := c.cli.Get(ctx, snapshotKey(accountId)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		log.Error("Error loading snapshot from cache ", err)
		return nil
	}

	var snap models.AccountSnapshot
	if err := json.Unmarshal([]byte(result), &snap); err != nil {
		log.Error("Error decoding cached snapshot ", err)
		return nil
	}
	return &snap
}

func (c *SnapshotCache) Put(ctx context.Context, snap *models.AccountSnapshot) {
	if c == nil || c.cli == nil {
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		log.Error("Error encoding snapshot ", err)
		return
	}
	if err := c.cli.Set(ctx, snapshotKey(snap.AccountId), data, snapshotTTL).Err(); err != nil {
		log.Error("Error caching snapshot ", err)
	}
}

func (c *SnapshotCache) Invalidate(ctx context.Context, accountIds ...int64) {
	if c == nil || c.cli == nil || len(accountIds) == 0 {
		return
	}

	keys := make([]string, 0, len(accountIds))
	for _, id := range accountIds {
		keys = append(keys, snapshotKey(id))
	}
	if err := c.cli.Del(ctx, keys...).Err(); err != nil {
		log.Error("Error invalidating snapshots ", err)
	}
}
