package services

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"storefront-backend/events"
	"storefront-backend/models"
	"storefront-backend/repository/repotest"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testPasetoKey = "0123456789abcdef0123456789abcdef"
	testJWTSecret = "jwt-test-secret"
)

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev events.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockPublisher) Close() error { return nil }

// fakeUploader keeps uploads in memory.
type fakeUploader struct {
	uploads map[string][]byte
	deleted []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: map[string][]byte{}}
}

func (f *fakeUploader) Upload(_ context.Context, r io.Reader, filename string) (models.ProductImage, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return models.ProductImage{}, err
	}
	f.uploads[filename] = buf.Bytes()
	return models.ProductImage{URL: "https://cdn.test/" + filename, PublicID: filename}, nil
}

func (f *fakeUploader) Delete(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

func newTokens() *TokenService {
	return NewTokenService(testPasetoKey, testJWTSecret, time.Hour)
}

func seedProduct(t *testing.T, store *repotest.Store, name string, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		SKU:      "SKU-" + name,
		Category: "general",
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, store.Products.Create(context.Background(), p))
	return p
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
