package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS CACHE
// Implements achievement.ProgressCache. Keys follow the pattern
// "progress:{userID}:{achievementID}", so a user's whole progress map can
// be invalidated with one pattern delete.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressCache caches computed achievement progress in Redis.
type ProgressCache struct {
	cache *Cache
}

// NewProgressCache creates a new ProgressCache.
func NewProgressCache(cache *Cache) *ProgressCache {
	return &ProgressCache{cache: cache}
}

func progressKey(userID, achievementID string) string {
	return fmt.Sprintf("%s%s:%s", PrefixProgress, userID, achievementID)
}

func progressPattern(userID string) string {
	return fmt.Sprintf("%s%s:*", PrefixProgress, userID)
}

// Get returns the cached progress for one achievement.
func (p *ProgressCache) Get(ctx context.Context, userID, achievementID string) (achievement.Progress, bool, error) {
	var progress achievement.Progress
	err := p.cache.Get(ctx, progressKey(userID, achievementID), &progress)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return achievement.Progress{}, false, nil
		}
		return achievement.Progress{}, false, err
	}
	return progress, true, nil
}

// GetAll returns all cached progress entries for the user.
func (p *ProgressCache) GetAll(ctx context.Context, userID string) (map[string]achievement.Progress, error) {
	iter := p.cache.Client().Scan(ctx, 0, progressPattern(userID), 100).Iterator()

	progress := map[string]achievement.Progress{}
	for iter.Next(ctx) {
		var entry achievement.Progress
		if err := p.cache.Get(ctx, iter.Val(), &entry); err != nil {
			if errors.Is(err, ErrCacheMiss) {
				continue // expired between SCAN and GET
			}
			return nil, err
		}
		progress[entry.AchievementID] = entry
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan progress keys: %v", ErrCacheConnection, err)
	}
	return progress, nil
}

// Put stores one progress entry with the given TTL.
func (p *ProgressCache) Put(ctx context.Context, userID string, progress achievement.Progress, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLProgress
	}
	return p.cache.Set(ctx, progressKey(userID, progress.AchievementID), progress, ttl)
}

// PutAll stores the user's whole progress map in one pipeline round trip.
func (p *ProgressCache) PutAll(ctx context.Context, userID string, progress map[string]achievement.Progress, ttl time.Duration) error {
	if len(progress) == 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = TTLProgress
	}

	pipe := p.cache.Client().Pipeline()
	for _, entry := range progress {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
		}
		pipe.Set(ctx, progressKey(userID, entry.AchievementID), data, ttl)
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: pipeline set: %v", ErrCacheConnection, err)
	}
	return nil
}

// Invalidate removes all cached progress for the user.
func (p *ProgressCache) Invalidate(ctx context.Context, userID string) error {
	return p.cache.DeleteByPattern(ctx, progressPattern(userID))
}
