package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

const scanBatch = 100

// RedisReportCache stores computed reports as JSON under ReportKey keys.
type RedisReportCache struct {
	client *redis.Client
}

func NewRedisReportCache(addr string, password string, db int) *RedisReportCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisReportCache{client: client}
}

func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

func (c *RedisReportCache) Get(ctx context.Context, key string) (*domain.ReportData, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var report domain.ReportData
	if err := json.Unmarshal(val, &report); err != nil {
		// A payload from an older report shape is a miss, not a failure.
		_ = c.client.Del(ctx, key).Err()
		return nil, false, nil
	}
	return &report, true, nil
}

// Set refuses to store without an expiry; callers cap ttl with
// TTLUntilEndOfDay.
func (c *RedisReportCache) Set(ctx context.Context, key string, value *domain.ReportData, ttl time.Duration) error {
	if value == nil || ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

// Invalidate scans the business's key space and deletes it in batches.
func (c *RedisReportCache) Invalidate(ctx context.Context, businessID string) error {
	iter := c.client.Scan(ctx, 0, BusinessPattern(businessID), scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}
	return c.client.Del(ctx, batch...).Err()
}
