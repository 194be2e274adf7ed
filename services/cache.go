package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"storefront-backend/logger"
	"storefront-backend/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	productListKeyPrefix = "products:v:"
	productKeyPrefix     = "product:"
	productVersionKey    = "products:version"
)

// ProductCache caches catalogue reads. Implementations never fail a request:
// misses and backend errors both report ok=false.
type ProductCache interface {
	GetList(ctx context.Context, q models.ProductQuery) (*models.ProductList, bool)
	SetList(ctx context.Context, q models.ProductQuery, list *models.ProductList)
	GetProduct(ctx context.Context, id string) (*models.Product, bool)
	SetProduct(ctx context.Context, product *models.Product)
	// Invalidate drops every cached list and, when id is set, that product.
	Invalidate(ctx context.Context, id string)
}

// NopCache caches nothing.
type NopCache struct{}

func (NopCache) GetList(context.Context, models.ProductQuery) (*models.ProductList, bool) {
	return nil, false
}
func (NopCache) SetList(context.Context, models.ProductQuery, *models.ProductList) {}
func (NopCache) GetProduct(context.Context, string) (*models.Product, bool)      { return nil, false }
func (NopCache) SetProduct(context.Context, *models.Product)                     {}
func (NopCache) Invalidate(context.Context, string)                              {}

// CanonicalQuery renders q with sorted keys so equal queries share a cache key.
func CanonicalQuery(q models.ProductQuery) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.MinPrice != nil {
		v.Set("min_price", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("max_price", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Featured != nil {
		v.Set("featured", strconv.FormatBool(*q.Featured))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.IncludeInactive {
		v.Set("all", "true")
	}
	return v.Encode()
}

// ListCacheKey is the key of a product list under a cache version.
func ListCacheKey(version int64, q models.ProductQuery) string {
	return fmt.Sprintf("%s%d:%s", productListKeyPrefix, version, CanonicalQuery(q))
}

// RedisProductCache stores catalogue reads in Redis. List keys embed a version
// number; bumping it orphans every list at once and TTL reclaims them.
type RedisProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisProductCache(rdb *redis.Client, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{rdb: rdb, ttl: ttl}
}

func (c *RedisProductCache) version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, productVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *RedisProductCache) getJSON(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn(ctx, "cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn(ctx, "cache entry unreadable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *RedisProductCache) setJSON(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn(ctx, "cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Warn(ctx, "cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisProductCache) GetList(ctx context.Context, q models.ProductQuery) (*models.ProductList, bool) {
	version, err := c.version(ctx)
	if err != nil {
		logger.Warn(ctx, "cache version read failed", zap.Error(err))
		return nil, false
	}
	var list models.ProductList
	if !c.getJSON(ctx, ListCacheKey(version, q), &list) {
		return nil, false
	}
	return &list, true
}

func (c *RedisProductCache) SetList(ctx context.Context, q models.ProductQuery, list *models.ProductList) {
	version, err := c.version(ctx)
	if err != nil {
		logger.Warn(ctx, "cache version read failed", zap.Error(err))
		return
	}
	c.setJSON(ctx, ListCacheKey(version, q), list)
}

func (c *RedisProductCache) GetProduct(ctx context.Context, id string) (*models.Product, bool) {
	var product models.Product
	if !c.getJSON(ctx, productKeyPrefix+id, &product) {
		return nil, false
	}
	return &product, true
}

func (c *RedisProductCache) SetProduct(ctx context.Context, product *models.Product) {
	c.setJSON(ctx, productKeyPrefix+product.ID.Hex(), product)
}

func (c *RedisProductCache) Invalidate(ctx context.Context, id string) {
	if err := c.rdb.Incr(ctx, productVersionKey).Err(); err != nil {
		logger.Error(ctx, "failed to bump product cache version", err)
	}
	if id == "" {
		return
	}
	if err := c.rdb.Del(ctx, productKeyPrefix+id).Err(); err != nil {
		logger.Warn(ctx, "failed to drop cached product", zap.String("product_id", id), zap.Error(err))
	}
}
