package identity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	Logger "github.com/devplatform/social-backend/utils/log"
)

const identityKeyPrefix = "identity:"

// RedisCachedProvider fronts another provider with a redis cache. Feed
// composition resolves the same handful of author identities over and
// over; caching them keeps the hot read path off the primary store.
//
// Redis failures degrade to the inner provider, they are never surfaced.
type RedisCachedProvider struct {
	inner Provider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewRedisCachedProvider(inner Provider, rdb *redis.Client, ttl time.Duration) *RedisCachedProvider {
	return &RedisCachedProvider{inner: inner, rdb: rdb, ttl: ttl}
}

func (p *RedisCachedProvider) GetIdentity(ctx context.Context, userId string) (*Identity, error) {
	key := identityKeyPrefix + userId

	raw, err := p.rdb.Get(ctx, key).Result()
	if err == nil {
		var cached Identity
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	} else if err != redis.Nil {
		Logger.LogV2.Errorf("identity cache read failed", userId, err)
	}

	id, err := p.inner.GetIdentity(ctx, userId)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(id); err == nil {
		if err := p.rdb.Set(ctx, key, encoded, p.ttl).Err(); err != nil {
			Logger.LogV2.Errorf("identity cache write failed", userId, err)
		}
	}
	return id, nil
}

func (p *RedisCachedProvider) Invalidate(ctx context.Context, userId string) {
	if err := p.rdb.Del(ctx, identityKeyPrefix+userId).Err(); err != nil {
		Logger.LogV2.Errorf("identity cache invalidation failed", userId, err)
	}
	p.inner.Invalidate(ctx, userId)
}

var _ Provider = (*RedisCachedProvider)(nil)
