package service

import (
	"context"
	"sync"
	"time"

	"github.com/ignatzorin/report-accident/internal/models"
)

// ProviderRepository справочник провайдеров.
type ProviderRepository interface {
	ListByKind(ctx context.Context, kind string) ([]models.Provider, error)
}

// DirectoryService отдаёт справочники с кэшем в памяти.
type DirectoryService struct {
	repo  ProviderRepository
	cache *CacheService
	ttl   time.Duration
}

// NewDirectoryService создаёт сервис справочников.
func NewDirectoryService(repo ProviderRepository, cache *CacheService, ttl time.Duration) *DirectoryService {
	return &DirectoryService{repo: repo, cache: cache, ttl: ttl}
}

// Companies страховые компании.
func (s *DirectoryService) Companies(ctx context.Context) ([]models.Provider, error) {
	return s.list(ctx, models.ProviderKindCompany)
}

// Breakdowns службы эвакуации.
func (s *DirectoryService) Breakdowns(ctx context.Context) ([]models.Provider, error) {
	return s.list(ctx, models.ProviderKindBreakdown)
}

func (s *DirectoryService) list(ctx context.Context, kind string) ([]models.Provider, error) {
	value, err := s.cache.GetOrSet(ctx, ProvidersCacheKey(kind), s.ttl, func() (interface{}, error) {
		return s.repo.ListByKind(ctx, kind)
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.Provider), nil
}

// ProvidersCacheKey ключ кэша справочника.
func ProvidersCacheKey(kind string) string {
	return "providers:" + kind
}

// CacheService кэш в памяти с TTL.
type CacheService struct {
	mu    sync.RWMutex
	cache map[string]*cacheEntry
	now   func() time.Time
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// NewCacheService создаёт кэш.
func NewCacheService() *CacheService {
	return &CacheService{
		cache: make(map[string]*cacheEntry),
		now:   time.Now,
	}
}

// Get возвращает значение, если оно не истекло.
func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, exists := cs.cache[key]
	if !exists || cs.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

// Set сохраняет значение на ttl.
func (cs *CacheService) Set(key string, value interface{}, ttl time.Duration) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache[key] = &cacheEntry{
		data:      value,
		expiresAt: cs.now().Add(ttl),
	}
}

// Delete удаляет ключ.
func (cs *CacheService) Delete(key string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.cache, key)
}

// Cleanup удаляет истёкшие записи.
func (cs *CacheService) Cleanup() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := cs.now()
	for key, entry := range cs.cache {
		if now.After(entry.expiresAt) {
			delete(cs.cache, key)
		}
	}
}

// GetOrSet возвращает значение из кэша или вычисляет его.
func (cs *CacheService) GetOrSet(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fn func() (interface{}, error),
) (interface{}, error) {
	if value, found := cs.Get(key); found {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}

	cs.Set(key, value, ttl)
	return value, nil
}
