package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "raffledesk:"
	dashboardKey = keyPrefix + "dashboard:"
	walletKey    = keyPrefix + "wallet:"
	genKey       = keyPrefix + "gen:"
)

// RedisCache stores rendered raffle reports in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the Redis server at url (redis://host:port/db)
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisCacheWithClient(client, ttl), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// GenerationKey holds the counter bumped by every invalidation of a raffle
func GenerationKey(raffleID int64) string {
	return fmt.Sprintf("%s%d", genKey, raffleID)
}

func DashboardKey(raffleID, gen int64) string {
	return fmt.Sprintf("%s%d:%d", dashboardKey, raffleID, gen)
}

func WalletKey(raffleID, gen int64) string {
	return fmt.Sprintf("%s%d:%d", walletKey, raffleID, gen)
}

// Generation returns the current report generation of a raffle, 0 when it
// was never invalidated
func (c *RedisCache) Generation(ctx context.Context, raffleID int64) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey(raffleID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get %s: %w", GenerationKey(raffleID), err)
	}
	return gen, nil
}

// GetDashboard returns the cached dashboard and whether it was present
func (c *RedisCache) GetDashboard(ctx context.Context, raffleID, gen int64) (*models.Dashboard, bool, error) {
	var d models.Dashboard
	ok, err := c.get(ctx, DashboardKey(raffleID, gen), &d)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &d, true, nil
}

func (c *RedisCache) SetDashboard(ctx context.Context, raffleID, gen int64, d *models.Dashboard) error {
	return c.set(ctx, DashboardKey(raffleID, gen), d)
}

// GetWallet returns the cached wallet and whether it was present
func (c *RedisCache) GetWallet(ctx context.Context, raffleID, gen int64) ([]models.WalletRow, bool, error) {
	var rows []models.WalletRow
	ok, err := c.get(ctx, WalletKey(raffleID, gen), &rows)
	if !ok || err != nil {
		return nil, ok, err
	}
	return rows, true, nil
}

func (c *RedisCache) SetWallet(ctx context.Context, raffleID, gen int64, rows []models.WalletRow) error {
	return c.set(ctx, WalletKey(raffleID, gen), rows)
}

// Invalidate moves a raffle to a new generation and drops the reports of the
// previous one. Reports computed against the old generation are never read
// again and expire with their TTL.
func (c *RedisCache) Invalidate(ctx context.Context, raffleID int64) error {
	gen, err := c.client.Incr(ctx, GenerationKey(raffleID)).Result()
	if err != nil {
		return fmt.Errorf("redis incr %s: %w", GenerationKey(raffleID), err)
	}
	return c.client.Del(ctx, DashboardKey(raffleID, gen-1), WalletKey(raffleID, gen-1)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
