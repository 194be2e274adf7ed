package services

import (
	"context"
	"testing"
	"time"

	"storefront-backend/models"
	"storefront-backend/repository/repotest"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanonicalQueryIsStable(t *testing.T) {
	floor := 5.5
	featured := true
	a := models.ProductQuery{Page: 2, Limit: 10, Category: "lamps", MinPrice: &floor, Featured: &featured, Sort: models.SortPriceAsc}
	b := a

	assert.Equal(t, CanonicalQuery(a), CanonicalQuery(b))
	assert.Equal(t, "category=lamps&featured=true&limit=10&min_price=5.5&page=2&sort=price_asc", CanonicalQuery(a))

	b.Search = "desk lamp"
	assert.NotEqual(t, CanonicalQuery(a), CanonicalQuery(b))
}

func TestListCacheKeyEmbedsVersion(t *testing.T) {
	q := models.ProductQuery{Page: 1, Limit: 20}
	assert.Equal(t, "products:v:3:limit=20&page=1", ListCacheKey(3, q))
	assert.NotEqual(t, ListCacheKey(3, q), ListCacheKey(4, q))
}

func TestNopCache(t *testing.T) {
	var c ProductCache = NopCache{}
	_, ok := c.GetList(context.Background(), models.ProductQuery{})
	assert.False(t, ok)
	_, ok = c.GetProduct(context.Background(), "x")
	assert.False(t, ok)
}

// unreachableRedis points at a port nothing listens on so every command fails fast.
func unreachableRedis(t *testing.T) *RedisProductCache {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:         "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
		ReadTimeout:  100 * time.Millisecond,
		WriteTimeout: 100 * time.Millisecond,
		MaxRetries:   -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisProductCache(rdb, time.Minute)
}

func TestRedisCacheDegradesWhenUnreachable(t *testing.T) {
	c := unreachableRedis(t)
	ctx := context.Background()
	q := models.ProductQuery{Page: 1, Limit: 20}

	_, ok := c.GetList(ctx, q)
	assert.False(t, ok)
	_, ok = c.GetProduct(ctx, primitive.NewObjectID().Hex())
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		c.SetList(ctx, q, &models.ProductList{Page: 1, Limit: 20})
		c.SetProduct(ctx, &models.Product{ID: primitive.NewObjectID(), Name: "lamp"})
		c.Invalidate(ctx, "")
		c.Invalidate(ctx, primitive.NewObjectID().Hex())
	})
}

func TestProductServiceServesReadsWithRedisDown(t *testing.T) {
	store := repotest.New()
	svc := NewProductService(store.Products, unreachableRedis(t), newFakeUploader())
	ctx := context.Background()
	lamp := seedProduct(t, store, "lamp", 10, 3)

	list, err := svc.List(ctx, models.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	got, err := svc.Get(ctx, lamp.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	name := "desk lamp"
	updated, err := svc.Update(ctx, lamp.ID, models.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
}
