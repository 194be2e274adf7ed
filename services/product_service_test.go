package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"storefront-backend/apperrors"
	"storefront-backend/models"
	"storefront-backend/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCache is an in-memory ProductCache that counts invalidations.
type recordingCache struct {
	lists         map[string]*models.ProductList
	products      map[string]*models.Product
	invalidations []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		lists:    map[string]*models.ProductList{},
		products: map[string]*models.Product{},
	}
}

func (c *recordingCache) GetList(_ context.Context, q models.ProductQuery) (*models.ProductList, bool) {
	l, ok := c.lists[CanonicalQuery(q)]
	return l, ok
}
func (c *recordingCache) SetList(_ context.Context, q models.ProductQuery, l *models.ProductList) {
	c.lists[CanonicalQuery(q)] = l
}
func (c *recordingCache) GetProduct(_ context.Context, id string) (*models.Product, bool) {
	p, ok := c.products[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}
func (c *recordingCache) SetProduct(_ context.Context, p *models.Product) {
	cp := *p
	c.products[p.ID.Hex()] = &cp
}
func (c *recordingCache) Invalidate(_ context.Context, id string) {
	c.lists = map[string]*models.ProductList{}
	if id != "" {
		delete(c.products, id)
	}
	c.invalidations = append(c.invalidations, id)
}

func TestDecodeImageDataURI(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngHeader)

	data, ext, err := DecodeImageDataURI("data:image/png;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, "png", ext)
	assert.Equal(t, pngHeader, data)

	_, ext, err = DecodeImageDataURI(encoded)
	require.NoError(t, err)
	assert.Equal(t, "png", ext)

	_, _, err = DecodeImageDataURI("data:image/png,rawdata")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, _, err = DecodeImageDataURI("%%%")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, _, err = DecodeImageDataURI(base64.StdEncoding.EncodeToString([]byte("plain text")))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestProductCreateUploadsInlineImage(t *testing.T) {
	store := repotest.New()
	media := newFakeUploader()
	cache := newRecordingCache()
	svc := NewProductService(store.Products, cache, media)

	product, err := svc.Create(context.Background(), models.CreateProductRequest{
		Name:        "Desk Lamp",
		SKU:         "lamp-01",
		Category:    "lamps",
		Price:       19.999,
		Stock:       4,
		ImageBase64: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader),
	})
	require.NoError(t, err)

	assert.Equal(t, "LAMP-01", product.SKU)
	assert.Equal(t, 20.0, product.Price)
	assert.True(t, product.IsActive)
	require.Len(t, product.Images, 1)
	assert.Equal(t, "https://cdn.test/image.png", product.Images[0].URL)
	assert.Contains(t, media.uploads, "image.png")
	assert.Equal(t, []string{""}, cache.invalidations)
}

func TestProductListUsesCache(t *testing.T) {
	store := repotest.New()
	cache := newRecordingCache()
	svc := NewProductService(store.Products, cache, newFakeUploader())
	ctx := context.Background()
	seedProduct(t, store, "lamp", 10, 1)

	first, err := svc.List(ctx, models.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Total)

	seedProduct(t, store, "desk", 20, 1)
	cached, err := svc.List(ctx, models.ProductQuery{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.Total)

	admin, err := svc.List(ctx, models.ProductQuery{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), admin.Total)

	cache.Invalidate(ctx, "")
	fresh, err := svc.List(ctx, models.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Total)
}

func TestProductSearchMatchesSKU(t *testing.T) {
	store := repotest.New()
	svc := NewProductService(store.Products, nil, newFakeUploader())
	ctx := context.Background()
	lamp := seedProduct(t, store, "lamp", 10, 1)
	seedProduct(t, store, "desk", 20, 1)

	list, err := svc.List(ctx, models.ProductQuery{Search: strings.ToLower(lamp.SKU)})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, lamp.ID, list.Products[0].ID)
}

func TestProductListRejectsInvertedPriceRange(t *testing.T) {
	svc := NewProductService(repotest.New().Products, nil, newFakeUploader())
	lo, hi := 50.0, 10.0
	_, err := svc.List(context.Background(), models.ProductQuery{MinPrice: &lo, MaxPrice: &hi})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestProductGetHidesInactive(t *testing.T) {
	store := repotest.New()
	svc := NewProductService(store.Products, nil, newFakeUploader())
	ctx := context.Background()
	p := seedProduct(t, store, "lamp", 10, 1)
	off := false
	_, err := svc.Update(ctx, p.ID, models.UpdateProductRequest{IsActive: &off})
	require.NoError(t, err)

	_, err = svc.Get(ctx, p.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	got, err := svc.Get(ctx, p.ID, true)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestProductUpdateRequiresFields(t *testing.T) {
	store := repotest.New()
	svc := NewProductService(store.Products, nil, newFakeUploader())
	p := seedProduct(t, store, "lamp", 10, 1)

	_, err := svc.Update(context.Background(), p.ID, models.UpdateProductRequest{})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestProductDeleteRemovesImages(t *testing.T) {
	store := repotest.New()
	media := newFakeUploader()
	cache := newRecordingCache()
	svc := NewProductService(store.Products, cache, media)
	ctx := context.Background()
	p := seedProduct(t, store, "lamp", 10, 1)

	_, err := svc.AddImage(ctx, p.ID, bytes.NewReader(pngHeader), "photo.png", int64(len(pngHeader)))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Equal(t, []string{"photo.png"}, media.deleted)
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), apperrors.ErrNotFound)
	assert.Contains(t, cache.invalidations, p.ID.Hex())
}

func TestUploadImageValidation(t *testing.T) {
	svc := NewProductService(repotest.New().Products, nil, newFakeUploader())
	ctx := context.Background()

	_, err := svc.UploadImage(ctx, bytes.NewReader(pngHeader), "notes.txt", 10)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.UploadImage(ctx, bytes.NewReader(pngHeader), "big.png", MaxImageSize+1)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	image, err := svc.UploadImage(ctx, bytes.NewReader(pngHeader), "ok.WEBP", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, image.URL)
}
