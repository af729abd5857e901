// Package identity caches principal → profile resolution in Redis.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/common/metrics"
	"jobmarket-workers/internal/models"
)

const (
	keyPrefix  = "identity:principal:"
	DefaultTTL = 5 * time.Minute
)

// Resolver is the uncached lookup, normally the postgres identity repository.
type Resolver interface {
	Resolve(ctx context.Context, principal models.Principal) (*models.ResolvedIdentity, error)
}

// CachedResolver is a cache-aside decorator over a Resolver. Redis failures
// fall through to the underlying resolver.
type CachedResolver struct {
	next   Resolver
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedResolver(next Resolver, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedResolver{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "identity-cache"}),
	}
}

func CacheKey(email string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(email))
}

func (c *CachedResolver) Resolve(ctx context.Context, principal models.Principal) (*models.ResolvedIdentity, error) {
	key := CacheKey(principal.Email)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var identity models.ResolvedIdentity
		if jsonErr := json.Unmarshal([]byte(val), &identity); jsonErr == nil {
			metrics.IdentityCacheRequests.WithLabelValues("hit").Inc()
			return &identity, nil
		}
		c.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"key": key})
		metrics.IdentityCacheRequests.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.IdentityCacheRequests.WithLabelValues("miss").Inc()
	default:
		c.logger.Warn("identity cache read failed", map[string]interface{}{"key": key, "error": err})
		metrics.IdentityCacheRequests.WithLabelValues("error").Inc()
	}

	return c.load(ctx, key, principal)
}

// Refresh resolves principal from the underlying resolver and replaces the
// cached entry. Callers use it when a cached identity lacks a profile the
// principal may have created since it was cached.
func (c *CachedResolver) Refresh(ctx context.Context, principal models.Principal) (*models.ResolvedIdentity, error) {
	metrics.IdentityCacheRequests.WithLabelValues("refresh").Inc()
	return c.load(ctx, CacheKey(principal.Email), principal)
}

func (c *CachedResolver) load(ctx context.Context, key string, principal models.Principal) (*models.ResolvedIdentity, error) {
	identity, err := c.next.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}

	// A principal without profiles may create one any moment; only cache
	// identities that own something.
	if !identity.IsApplicant() && !identity.IsEmployer() {
		return identity, nil
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return identity, nil
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("identity cache write failed", map[string]interface{}{"key": key, "error": err})
	}
	return identity, nil
}

// Invalidate drops the cached identity for email.
func (c *CachedResolver) Invalidate(ctx context.Context, email string) error {
	return c.redis.Del(ctx, CacheKey(email)).Err()
}

// Refresher is implemented by resolvers that can bypass a cache.
type Refresher interface {
	Refresh(ctx context.Context, principal models.Principal) (*models.ResolvedIdentity, error)
}

// ResolveWith resolves principal and, when the result fails has and r can
// refresh, resolves once more past the cache.
func ResolveWith(ctx context.Context, r Resolver, principal models.Principal, has func(*models.ResolvedIdentity) bool) (*models.ResolvedIdentity, error) {
	identity, err := r.Resolve(ctx, principal)
	if err != nil || has(identity) {
		return identity, err
	}
	refresher, ok := r.(Refresher)
	if !ok {
		return identity, nil
	}
	return refresher.Refresh(ctx, principal)
}
