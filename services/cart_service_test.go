package services

import (
	"context"
	"sync"
	"testing"

	"storefront-backend/apperrors"
	"storefront-backend/models"
	"storefront-backend/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCartAddMergesAndPrices(t *testing.T) {
	store := repotest.New()
	svc := NewCartService(store.Carts, store.Products)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	lamp := seedProduct(t, store, "lamp", 19.99, 5)

	_, err := svc.AddItem(ctx, userID, models.AddCartItemRequest{ProductID: lamp.ID.Hex(), Quantity: 1})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, userID, models.AddCartItemRequest{ProductID: lamp.ID.Hex(), Quantity: 2})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, 3, view.ItemCount)
	assert.Equal(t, 59.97, view.Subtotal)
	assert.True(t, view.Items[0].Available)
}

func TestCartAddRejectsOverStock(t *testing.T) {
	store := repotest.New()
	svc := NewCartService(store.Carts, store.Products)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	lamp := seedProduct(t, store, "lamp", 10, 2)

	_, err := svc.AddItem(ctx, userID, models.AddCartItemRequest{ProductID: lamp.ID.Hex(), Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, models.AddCartItemRequest{ProductID: lamp.ID.Hex(), Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
}

func TestCartAddUnknownProduct(t *testing.T) {
	store := repotest.New()
	svc := NewCartService(store.Carts, store.Products)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, primitive.NewObjectID(), models.AddCartItemRequest{ProductID: primitive.NewObjectID().Hex(), Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.AddItem(ctx, primitive.NewObjectID(), models.AddCartItemRequest{ProductID: "bad", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestCartUpdateToZeroRemoves(t *testing.T) {
	store := repotest.New()
	svc := NewCartService(store.Carts, store.Products)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	lamp := seedProduct(t, store, "lamp", 10, 5)
	desk := seedProduct(t, store, "desk", 100, 5)

	_, err := svc.AddItem(ctx, userID, models.AddCartItemRequest{ProductID: lamp.ID.Hex(), Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, models.AddCartItemRequest{ProductID: desk.ID.Hex(), Quantity: 1})
	require.NoError(t, err)

	view, err := svc.UpdateItem(ctx, userID, lamp.ID, 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, desk.ID, view.Items[0].ProductID)

	_, err = svc.UpdateItem(ctx, userID, lamp.ID, 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.Clear(ctx, userID))
	view, err = svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartViewFlagsUnavailableLines(t *testing.T) {
	store := repotest.New()
	svc := NewCartService(store.Carts, store.Products)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	lamp := seedProduct(t, store, "lamp", 10, 5)
	gone := seedProduct(t, store, "gone", 50, 5)

	_, err := svc.AddItem(ctx, userID, models.AddCartItemRequest{ProductID: lamp.ID.Hex(), Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, models.AddCartItemRequest{ProductID: gone.ID.Hex(), Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, store.Products.Delete(ctx, gone.ID))

	view, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.False(t, view.Items[1].Available)
	assert.Equal(t, 10.0, view.Subtotal)
}

func TestCartConcurrentAddsKeepEveryUnit(t *testing.T) {
	store := repotest.New()
	svc := NewCartService(store.Carts, store.Products)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	lamp := seedProduct(t, store, "lamp", 10, 50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, userID, models.AddCartItemRequest{ProductID: lamp.ID.Hex(), Quantity: 2})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 40, view.Items[0].Quantity)
}

func TestCartConcurrentAddsStopAtStock(t *testing.T) {
	store := repotest.New()
	svc := NewCartService(store.Carts, store.Products)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	lamp := seedProduct(t, store, "lamp", 10, 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var refused int
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, userID, models.AddCartItemRequest{ProductID: lamp.ID.Hex(), Quantity: 1})
			if err != nil {
				assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
				mu.Lock()
				refused++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	cart, err := store.Carts.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 3, refused)
}

func TestCartUpdateAndRemoveKeepOtherLines(t *testing.T) {
	store := repotest.New()
	svc := NewCartService(store.Carts, store.Products)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	lamp := seedProduct(t, store, "lamp", 10, 5)
	desk := seedProduct(t, store, "desk", 100, 5)

	_, err := svc.AddItem(ctx, userID, models.AddCartItemRequest{ProductID: lamp.ID.Hex(), Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, models.AddCartItemRequest{ProductID: desk.ID.Hex(), Quantity: 1})
	require.NoError(t, err)

	view, err := svc.UpdateItem(ctx, userID, desk.ID, 4)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 1, view.Items[0].Quantity)
	assert.Equal(t, 4, view.Items[1].Quantity)

	_, err = svc.UpdateItem(ctx, userID, desk.ID, 6)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	_, err = svc.RemoveItem(ctx, userID, primitive.NewObjectID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, store.Products.Delete(ctx, lamp.ID))
	view, err = svc.RemoveItem(ctx, userID, lamp.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, desk.ID, view.Items[0].ProductID)
}
