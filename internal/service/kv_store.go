package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// KVStore 键值持久化接口（对应站点的 localStorage）
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// MemoryStore 进程内键值存储
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore 创建进程内存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get 读取
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Set 写入
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove 删除
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Len 当前键数量
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

type namespacedStore struct {
	store     KVStore
	namespace string
}

// NamespacedStore 为每个访客隔离存储键，key 变为 "<namespace>:<key>"
func NamespacedStore(store KVStore, namespace string) KVStore {
	ns := strings.TrimSpace(namespace)
	if store == nil || ns == "" {
		return store
	}
	return &namespacedStore{store: store, namespace: ns}
}

func (s *namespacedStore) key(key string) string {
	return fmt.Sprintf("%s:%s", s.namespace, key)
}

func (s *namespacedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.key(key))
}

func (s *namespacedStore) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.key(key), value)
}

func (s *namespacedStore) Remove(ctx context.Context, key string) error {
	return s.store.Remove(ctx, s.key(key))
}
