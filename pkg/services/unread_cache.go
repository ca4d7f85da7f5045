package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	unreadKeyPrefix        = "worknest:unread:"
	unreadVersionKeyPrefix = "worknest:unread:ver:"
	unreadTTL              = 5 * time.Minute
	// Outlives any read that could still hold a version token.
	unreadVersionTTL = time.Hour
)

// setIfVersion writes the count only while the version key still holds the
// token the reader saw. A missing version key reads as "0".
var setIfVersion = redis.NewScript(`
local v = redis.call('GET', KEYS[2])
if (v or '0') ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'EX', ARGV[3])
return 1
`)

// UnreadCache caches per-user unread notification counts. A miss or an
// unavailable backend is never an error; callers fall back to the database.
//
// Get returns a version token on a miss. Set stores the count only when no
// Invalidate for that user happened since the token was issued, so a count
// read before a concurrent write commits is never cached after it.
type UnreadCache interface {
	Get(ctx context.Context, userID uuid.UUID) (count int, version int64, ok bool)
	Set(ctx context.Context, userID uuid.UUID, count int, version int64)
	Invalidate(ctx context.Context, userIDs ...uuid.UUID)
}

// NewUnreadCache returns a Redis-backed cache, or a no-op cache when client
// is nil.
func NewUnreadCache(client *redis.Client, logger *zap.Logger) UnreadCache {
	if client == nil {
		return noopUnreadCache{}
	}

	logger = logger.Named("unread-cache")
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-unread",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &redisUnreadCache{
		client:  client,
		breaker: breaker,
		logger:  logger,
	}
}

type redisUnreadCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

var _ UnreadCache = (*redisUnreadCache)(nil)

func unreadKey(userID uuid.UUID) string {
	return unreadKeyPrefix + userID.String()
}

func unreadVersionKey(userID uuid.UUID) string {
	return unreadVersionKeyPrefix + userID.String()
}

// parseCacheInt reads an MGET slot; missing or malformed values report false.
func parseCacheInt(v interface{}) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *redisUnreadCache) Get(ctx context.Context, userID uuid.UUID) (int, int64, bool) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.MGet(ctx, unreadKey(userID), unreadVersionKey(userID)).Result()
	})
	if err != nil {
		c.logger.Debug("Unread cache read failed", zap.Error(err))
		// Version -1 never matches, so the follow-up Set is skipped.
		return 0, -1, false
	}

	vals, _ := res.([]interface{})
	if len(vals) != 2 {
		return 0, -1, false
	}
	version, _ := parseCacheInt(vals[1])
	count, ok := parseCacheInt(vals[0])
	if !ok {
		return 0, version, false
	}
	return int(count), version, true
}

func (c *redisUnreadCache) Set(ctx context.Context, userID uuid.UUID, count int, version int64) {
	if version < 0 {
		return
	}
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return setIfVersion.Run(ctx, c.client,
			[]string{unreadKey(userID), unreadVersionKey(userID)},
			version, count, int(unreadTTL.Seconds())).Int()
	})
	if err != nil {
		c.logger.Debug("Unread cache write failed", zap.Error(err))
		return
	}
	if written, _ := res.(int); written == 0 {
		c.logger.Debug("Unread count invalidated during read; not cached",
			zap.String("user_id", userID.String()))
	}
}

func (c *redisUnreadCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	if len(userIDs) == 0 {
		return
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range userIDs {
				pipe.Del(ctx, unreadKey(id))
				pipe.Incr(ctx, unreadVersionKey(id))
				pipe.Expire(ctx, unreadVersionKey(id), unreadVersionTTL)
			}
			return nil
		})
	})
	if err != nil {
		c.logger.Warn("Unread cache invalidation failed",
			zap.Int("users", len(userIDs)),
			zap.Error(fmt.Errorf("invalidate unread keys: %w", err)))
	}
}

type noopUnreadCache struct{}

func (noopUnreadCache) Get(context.Context, uuid.UUID) (int, int64, bool) { return 0, 0, false }
func (noopUnreadCache) Set(context.Context, uuid.UUID, int, int64)        {}
func (noopUnreadCache) Invalidate(context.Context, ...uuid.UUID)          {}
