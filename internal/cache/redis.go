package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dvekslers/servimarket/config"
	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps the unfiltered active-service listing set warm for the
// discovery path. Catalog writes invalidate it.
type RedisCache struct {
	client      *redis.Client
	listingsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, listingsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		listingsTTL: listingsTTL,
	}
}

func (c *RedisCache) GetServiceListings(ctx context.Context) ([]domain.ServiceListing, error) {
	data, err := c.client.Get(ctx, listingsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var listings []domain.ServiceListing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (c *RedisCache) SetServiceListings(ctx context.Context, listings []domain.ServiceListing) error {
	payload, err := json.Marshal(listings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listingsKey(), payload, c.listingsTTL).Err()
}

func (c *RedisCache) InvalidateServiceListings(ctx context.Context) error {
	return c.client.Del(ctx, listingsKey()).Err()
}

func listingsKey() string {
	return "cache:services:active"
}
