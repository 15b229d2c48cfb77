package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DeliveryCache keeps rendered delivery details. Entries are only valid for
// the day they were computed on because is_open depends on the date.
type DeliveryCache interface {
	GetDelivery(ctx context.Context, id uint, day string) (*DeliveryDetail, bool)
	SetDelivery(ctx context.Context, day string, detail *DeliveryDetail)
	InvalidateDeliveries(ctx context.Context, ids ...uint)
}

// NoopDeliveryCache never stores anything
type NoopDeliveryCache struct{}

func (NoopDeliveryCache) GetDelivery(context.Context, uint, string) (*DeliveryDetail, bool) {
	return nil, false
}

func (NoopDeliveryCache) SetDelivery(context.Context, string, *DeliveryDetail) {}

func (NoopDeliveryCache) InvalidateDeliveries(context.Context, ...uint) {}

// RedisDeliveryCache stores delivery details as JSON in Redis.
// Redis failures are logged and treated as cache misses.
type RedisDeliveryCache struct {
	client *redis.Client
	ttl    time.Duration
}

type cachedDelivery struct {
	Day    string          `json:"day"`
	Detail *DeliveryDetail `json:"detail"`
}

// NewRedisDeliveryCache connects a cache to the given Redis server
func NewRedisDeliveryCache(addr, password string, db int, ttl time.Duration) *RedisDeliveryCache {
	return &RedisDeliveryCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

func deliveryKey(id uint) string {
	return fmt.Sprintf("delivery:%d", id)
}

func (r *RedisDeliveryCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisDeliveryCache) GetDelivery(ctx context.Context, id uint, day string) (*DeliveryDetail, bool) {
	data, err := r.client.Get(ctx, deliveryKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("Delivery cache read failed", zap.Uint("delivery_id", id), zap.Error(err))
		}
		return nil, false
	}

	var entry cachedDelivery
	if err := json.Unmarshal(data, &entry); err != nil || entry.Day != day || entry.Detail == nil {
		return nil, false
	}
	return entry.Detail, true
}

func (r *RedisDeliveryCache) SetDelivery(ctx context.Context, day string, detail *DeliveryDetail) {
	data, err := json.Marshal(cachedDelivery{Day: day, Detail: detail})
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, deliveryKey(detail.ID), data, r.ttl).Err(); err != nil {
		zap.L().Warn("Delivery cache write failed", zap.Uint("delivery_id", detail.ID), zap.Error(err))
	}
}

func (r *RedisDeliveryCache) InvalidateDeliveries(ctx context.Context, ids ...uint) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = deliveryKey(id)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		zap.L().Warn("Delivery cache invalidation failed", zap.Error(err))
	}
}

func (r *RedisDeliveryCache) Close() error {
	return r.client.Close()
}
