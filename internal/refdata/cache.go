package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"rcm-benchmark/internal/common/logger"
	"rcm-benchmark/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const hospitalCacheKeyPrefix = "rcm:hospital:"

// HospitalCache stores lookup results. Get returns ok=false on a miss.
type HospitalCache interface {
	Get(ctx context.Context, hospitalName string) (HospitalRecord, bool, error)
	Set(ctx context.Context, hospitalName string, record HospitalRecord, ttl time.Duration) error
}

// RedisHospitalCache keeps lookup results as JSON strings.
type RedisHospitalCache struct {
	client *redis.Client
}

func NewRedisHospitalCache(client *redis.Client) *RedisHospitalCache {
	return &RedisHospitalCache{client: client}
}

func cacheKey(hospitalName string) string {
	return hospitalCacheKeyPrefix + strings.ToLower(strings.TrimSpace(hospitalName))
}

func (c *RedisHospitalCache) Get(ctx context.Context, hospitalName string) (HospitalRecord, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(hospitalName)).Result()
	if errors.Is(err, redis.Nil) {
		return HospitalRecord{}, false, nil
	}
	if err != nil {
		return HospitalRecord{}, false, err
	}

	var record HospitalRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return HospitalRecord{}, false, err
	}
	return record, true, nil
}

func (c *RedisHospitalCache) Set(ctx context.Context, hospitalName string, record HospitalRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(hospitalName), data, ttl).Err()
}

// CachedLookup answers from cache first and stores successful lookups,
// including misses. Cache failures are logged and bypassed.
type CachedLookup struct {
	next   HospitalLookup
	cache  HospitalCache
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedLookup(next HospitalLookup, cache HospitalCache, ttl time.Duration, log logger.Logger) *CachedLookup {
	return &CachedLookup{next: next, cache: cache, ttl: ttl, logger: log}
}

func (l *CachedLookup) Lookup(ctx context.Context, hospitalName string) (HospitalRecord, error) {
	record, ok, err := l.cache.Get(ctx, hospitalName)
	if err != nil {
		l.logger.Warn("hospital cache read failed", map[string]interface{}{"error": err.Error()})
	} else if ok {
		metrics.HospitalLookups.WithLabelValues("cache_hit").Inc()
		return record, nil
	}

	record, err = l.next.Lookup(ctx, hospitalName)
	if err != nil {
		return HospitalRecord{}, err
	}

	if err := l.cache.Set(ctx, hospitalName, record, l.ttl); err != nil {
		l.logger.Warn("hospital cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return record, nil
}
