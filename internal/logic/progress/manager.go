package progress

import (
	"context"
	"sync"

	"auction-factory-sol/pkg/logger"
)

// SnapshotStore 快照持久层
type SnapshotStore interface {
	Load(ctx context.Context, factory string) (*Snapshot, error)
	Save(ctx context.Context, factory string, snap Snapshot) error
}

// ProgressManager 统一封装持久层与进程内缓存，判定生命周期是否发生变化
type ProgressManager struct {
	store SnapshotStore // 为 nil 时仅使用进程内缓存

	mu   sync.Mutex
	last map[string]Snapshot
}

func NewProgressManager(store SnapshotStore) *ProgressManager {
	return &ProgressManager{
		store: store,
		last:  make(map[string]Snapshot),
	}
}

// Observe 记录一次观察结果并返回相对上一次的变化。
// 持久层读写失败时退化为进程内比较，不阻塞监听流程。
func (pm *ProgressManager) Observe(ctx context.Context, factory string, next Snapshot) (ChangeKind, *Snapshot) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	// 1. 先查进程内缓存，再回落到持久层
	var prev *Snapshot
	if s, ok := pm.last[factory]; ok {
		prev = &s
	} else if pm.store != nil {
		s, err := pm.store.Load(ctx, factory)
		if err != nil {
			logger.Warnf("[ProgressManager] 读取快照失败, factory=%s: %v", factory, err)
		} else {
			prev = s
		}
	}

	kind := Diff(prev, next)
	pm.last[factory] = next
	if kind == ChangeNone {
		return kind, prev
	}

	// 2. 有变化才写回持久层
	if pm.store != nil {
		if err := pm.store.Save(ctx, factory, next); err != nil {
			logger.Warnf("[ProgressManager] 写入快照失败, factory=%s: %v", factory, err)
		}
	}
	return kind, prev
}

// Last 进程内最近一次快照
func (pm *ProgressManager) Last(factory string) (Snapshot, bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	s, ok := pm.last[factory]
	return s, ok
}
