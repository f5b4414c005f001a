package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshotStore 在 Redis hash 中保存每个工厂的最新快照，进程重启后不会重复发布
type RedisSnapshotStore struct {
	rdb    redis.Cmdable
	prefix string
}

// 快照 TTL，长期无人访问的工厂自动清理
const snapshotTTL = 7 * 24 * time.Hour

func NewRedisSnapshotStore(rdb redis.Cmdable, keyPrefix string) *RedisSnapshotStore {
	if keyPrefix == "" {
		keyPrefix = "auction"
	}
	return &RedisSnapshotStore{rdb: rdb, prefix: keyPrefix}
}

// getKey 例如 auction:progress:factory:<工厂地址>
func (r *RedisSnapshotStore) getKey(factory string) string {
	return fmt.Sprintf("%s:progress:factory:%s", r.prefix, factory)
}

// Load 读取快照，不存在时返回 nil
func (r *RedisSnapshotStore) Load(ctx context.Context, factory string) (*Snapshot, error) {
	cmd := r.rdb.HGetAll(ctx, r.getKey(factory))
	fields, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall error: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	var snap Snapshot
	if err := cmd.Scan(&snap); err != nil {
		return nil, fmt.Errorf("redis scan snapshot error: %w", err)
	}
	return &snap, nil
}

// Save 覆盖写入快照并刷新 TTL
func (r *RedisSnapshotStore) Save(ctx context.Context, factory string, snap Snapshot) error {
	key := r.getKey(factory)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"factory_sequence", snap.FactorySequence,
			"auction", snap.AuctionAddress,
			"phase", snap.Phase,
			"state", snap.State,
			"amount", snap.Amount,
			"bidder", snap.Bidder,
			"end_time", snap.EndTime,
			"settled", snap.Settled,
			"observed_at", snap.ObservedAt,
		)
		pipe.Expire(ctx, key, snapshotTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save snapshot error: %w", err)
	}
	return nil
}
