package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"berrymarket/internal/app/reviews/entity"

	"github.com/redis/go-redis/v9"
)

const statsKeyPrefix = "product_stats:"

// statsCache реализует StatsCache поверх Redis.
// Кеш перезаписывается при каждом ресинке, поэтому TTL нужен только
// как страховка от осиротевших ключей
type statsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache создает новый кеш агрегатов товаров
func NewStatsCache(client *redis.Client, ttl time.Duration) StatsCache {
	return &statsCache{
		client: client,
		ttl:    ttl,
	}
}

// Get получает агрегат из Redis, (nil, nil) при промахе
func (c *statsCache) Get(ctx context.Context, productID string) (*entity.ProductStats, error) {
	data, err := c.client.Get(ctx, statsKeyPrefix+productID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product stats from redis: %w", err)
	}

	var stats entity.ProductStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product stats: %w", err)
	}

	return &stats, nil
}

// Set сохраняет агрегат в Redis с TTL
func (c *statsCache) Set(ctx context.Context, stats *entity.ProductStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal product stats: %w", err)
	}

	if err := c.client.Set(ctx, statsKeyPrefix+stats.ProductID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set product stats in redis: %w", err)
	}

	return nil
}

func (c *statsCache) Close() error {
	return c.client.Close()
}
