// Package ratelimit implements a Redis-backed token bucket shared by the HTTP
// and gRPC transports, so every replica draws from the same buckets.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces bucket keys in Redis.
const KeyPrefix = "ratelimit:tb:"

// bucketTTL is how long an idle bucket is kept before Redis drops it.
const bucketTTL = 60

// Token bucket state is {last_refill, tokens}; the script refills, then tries
// to take one token, atomically.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
redis.call('EXPIRE', key, ttl)
return allowed
`)

// Config holds token bucket parameters.
type Config struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// Limiter decides whether a request identified by a key may proceed.
type Limiter struct {
	client *redis.Client
	config Config
	now    func() time.Time
}

// New creates a Limiter. A nil client yields a limiter that allows everything.
func New(client *redis.Client, cfg Config) *Limiter {
	return &Limiter{client: client, config: cfg, now: time.Now}
}

// Config returns the limiter parameters.
func (l *Limiter) Config() Config {
	return l.config
}

// Enabled reports whether requests are actually limited.
func (l *Limiter) Enabled() bool {
	return l != nil && l.client != nil && l.config.Enabled
}

// Allow consumes one token from the bucket named by key.
// Callers are expected to fail open when an error is returned.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}

	now := float64(l.now().UnixMicro()) / 1e6
	res, err := tokenBucket.Run(ctx, l.client, []string{KeyPrefix + key},
		l.config.RequestsPerSecond,
		l.config.BurstCapacity,
		now,
		bucketTTL,
	).Int64()
	if err != nil {
		return true, fmt.Errorf("token bucket eval: %w", err)
	}

	return res == 1, nil
}
