package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/pkg/logger"
)

// UserSnapshot contains the public user columns needed to populate feeds.
type UserSnapshot struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	ProfileImg string    `json:"profile_img"`
	CoverImg   string    `json:"cover_img"`
	Bio        string    `json:"bio"`
	Link       string    `json:"link"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func snapshotOf(u *model.User) UserSnapshot {
	return UserSnapshot{
		ID: u.ID, Username: u.Username, FullName: u.FullName, Email: u.Email,
		ProfileImg: u.ProfileImg, CoverImg: u.CoverImg, Bio: u.Bio, Link: u.Link,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

// User rebuilds a model.User without credentials.
func (s UserSnapshot) User() *model.User {
	return &model.User{
		ID: s.ID, Username: s.Username, FullName: s.FullName, Email: s.Email,
		ProfileImg: s.ProfileImg, CoverImg: s.CoverImg, Bio: s.Bio, Link: s.Link,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

// UserCache is a cache-aside layer over the users table. A nil redis client
// turns it into a pass-through.
type UserCache struct {
	users repository.UserRepository
	cache *redis.Client
	ttl   time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

func NewUserCache(users repository.UserRepository, cache *redis.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &UserCache{users: users, cache: cache, ttl: ttl}
}

func userKey(id string) string { return fmt.Sprintf("user:%s", id) }

// Load returns the users for ids keyed by id; unknown ids are absent from the map.
func (c *UserCache) Load(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ids = dedupe(ids)

	if c.cache != nil {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = userKey(id)
		}
		if vals, err := c.cache.MGet(ctx, keys...).Result(); err == nil {
			for i, v := range vals {
				str, ok := v.(string)
				if !ok {
					continue
				}
				var snap UserSnapshot
				if uErr := json.Unmarshal([]byte(str), &snap); uErr == nil {
					out[ids[i]] = snap.User()
				}
			}
		} else {
			logger.Warn("user cache mget failed", zap.Error(err))
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			missing = append(missing, id)
		}
	}
	c.hits.Add(int64(len(ids) - len(missing)))
	if len(missing) == 0 {
		return out, nil
	}
	c.misses.Add(int64(len(missing)))

	users, err := c.users.ListByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	var pipe redis.Pipeliner
	if c.cache != nil {
		pipe = c.cache.Pipeline()
	}
	for _, u := range users {
		snap := snapshotOf(u)
		out[u.ID] = snap.User()
		if pipe == nil {
			continue
		}
		if payload, err := json.Marshal(snap); err == nil {
			pipe.Set(ctx, userKey(u.ID), payload, c.ttl)
		}
	}
	if pipe != nil && len(users) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("user cache fill failed", zap.Error(err))
		}
	}
	return out, nil
}

// Invalidate drops cached snapshots after a profile change.
func (c *UserCache) Invalidate(ctx context.Context, ids ...string) {
	if c.cache == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}
	if err := c.cache.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("user cache invalidate failed", zap.Strings("ids", ids), zap.Error(err))
	}
}

// Counters reports cache hits and misses since start.
func (c *UserCache) Counters() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
