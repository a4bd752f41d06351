// Package cache holds the optional redis-backed read cache for products.
// Failures degrade to cache misses; the database stays authoritative.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SantiagoArteche/off-eccom-api/internal/catalog"
	"github.com/SantiagoArteche/off-eccom-api/internal/logx"
)

type Products struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProducts(rdb *redis.Client, ttl time.Duration) *Products {
	return &Products{rdb: rdb, ttl: ttl}
}

// NewClient connects and pings a redis client from a URL.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func productKey(id string) string {
	return "product:" + id
}

func (c *Products) Get(ctx context.Context, id string) (*catalog.Product, bool) {
	raw, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logx.Debug().Err(err).Str("productId", id).Msg("product cache get failed")
		}
		return nil, false
	}

	var p catalog.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *Products) Set(ctx context.Context, p *catalog.Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productKey(p.ID), raw, c.ttl).Err(); err != nil {
		logx.Debug().Err(err).Str("productId", p.ID).Msg("product cache set failed")
	}
}

func (c *Products) Invalidate(ctx context.Context, id string) {
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		logx.Debug().Err(err).Str("productId", id).Msg("product cache invalidate failed")
	}
}
