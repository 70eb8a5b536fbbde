// Package lecture resolves the lectures of a section, caching them for the lifetime of a session
package lecture

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/pot-code/learning-engine/internal/infrastructure/driver"
)

// Cache section id → ordered lectures
type Cache interface {
	Has(ctx context.Context, sectionID string) (bool, error)
	Get(ctx context.Context, sectionID string) ([]*domain.LectureModel, bool, error)
	Set(ctx context.Context, sectionID string, lectures []*domain.LectureModel) error
}

// MemoryCache in-process cache owned by one session
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string][]*domain.LectureModel
}

var _ Cache = &MemoryCache{}

// NewMemoryCache create an empty MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]*domain.LectureModel)}
}

func (mc *MemoryCache) Has(ctx context.Context, sectionID string) (bool, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	_, ok := mc.items[sectionID]
	return ok, nil
}

func (mc *MemoryCache) Get(ctx context.Context, sectionID string) ([]*domain.LectureModel, bool, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	v, ok := mc.items[sectionID]
	return v, ok, nil
}

func (mc *MemoryCache) Set(ctx context.Context, sectionID string, lectures []*domain.LectureModel) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.items[sectionID] = lectures
	return nil
}

// RedisCache shared cache, entries are namespaced by session and expire with it
type RedisCache struct {
	kv        driver.KeyValueDB
	namespace string
	ttl       time.Duration
}

var _ Cache = &RedisCache{}

// NewRedisCache namespace is usually "<prefix>:<session id>"
func NewRedisCache(kv driver.KeyValueDB, namespace string, ttl time.Duration) *RedisCache {
	return &RedisCache{kv, namespace, ttl}
}

func (rc *RedisCache) key(sectionID string) string {
	return fmt.Sprintf("%s:section:%s", rc.namespace, sectionID)
}

func (rc *RedisCache) Has(ctx context.Context, sectionID string) (bool, error) {
	return rc.kv.Exists(ctx, rc.key(sectionID))
}

func (rc *RedisCache) Get(ctx context.Context, sectionID string) ([]*domain.LectureModel, bool, error) {
	raw, err := rc.kv.Get(ctx, rc.key(sectionID))
	if err == driver.ErrNil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var lectures []*domain.LectureModel
	if err := json.Unmarshal([]byte(raw), &lectures); err != nil {
		return nil, false, fmt.Errorf("decode cached lectures of section %s: %w", sectionID, err)
	}
	return lectures, true, nil
}

func (rc *RedisCache) Set(ctx context.Context, sectionID string, lectures []*domain.LectureModel) error {
	raw, err := json.Marshal(lectures)
	if err != nil {
		return err
	}
	return rc.kv.SetEX(ctx, rc.key(sectionID), string(raw), rc.ttl)
}
