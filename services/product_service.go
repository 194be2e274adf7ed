package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"storefront-backend/apperrors"
	"storefront-backend/logger"
	"storefront-backend/models"
	"storefront-backend/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProductService serves the catalogue and its admin writes.
type ProductService struct {
	products repository.ProductRepository
	cache    ProductCache
	media    MediaUploader
}

func NewProductService(products repository.ProductRepository, cache ProductCache, media MediaUploader) *ProductService {
	if cache == nil {
		cache = NopCache{}
	}
	return &ProductService{products: products, cache: cache, media: media}
}

// List returns one page of products. Storefront queries are served from cache.
func (s *ProductService) List(ctx context.Context, q models.ProductQuery) (*models.ProductList, error) {
	q.Page, q.Limit = repository.NormalizePage(q.Page, q.Limit)
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, apperrors.ErrBadRequest.WithMessage("min_price cannot exceed max_price")
	}

	if !q.IncludeInactive {
		if list, ok := s.cache.GetList(ctx, q); ok {
			return list, nil
		}
	}

	products, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, err
	}
	list := &models.ProductList{
		Products: products,
		Total:    total,
		Page:     q.Page,
		Limit:    q.Limit,
		Pages:    models.PageCount(total, q.Limit),
	}
	if !q.IncludeInactive {
		s.cache.SetList(ctx, q, list)
	}
	return list, nil
}

// Get returns one product. Hidden products are reported missing unless
// includeInactive is set.
func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID, includeInactive bool) (*models.Product, error) {
	product, ok := s.cache.GetProduct(ctx, id.Hex())
	if !ok {
		var err error
		if product, err = s.products.FindByID(ctx, id); err != nil {
			return nil, err
		}
		s.cache.SetProduct(ctx, product)
	}
	if !product.IsActive && !includeInactive {
		return nil, apperrors.ErrNotFound.WithMessage("Product not found")
	}
	return product, nil
}

func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		SKU:         models.NormalizeSKU(req.SKU),
		Description: req.Description,
		Category:    req.Category,
		Price:       RoundCents(req.Price),
		Stock:       req.Stock,
		Images:      append([]models.ProductImage{}, req.Images...),
		IsFeatured:  req.IsFeatured,
		IsActive:    active,
	}

	if req.ImageBase64 != "" {
		image, err := s.uploadDataURI(ctx, req.ImageBase64)
		if err != nil {
			return nil, err
		}
		product.Images = append(product.Images, image)
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, "")
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, req models.UpdateProductRequest) (*models.Product, error) {
	set := req.Fields()
	if price, ok := set["price"].(float64); ok {
		set["price"] = RoundCents(price)
	}
	if len(set) == 0 && req.ImageBase64 == "" {
		return nil, apperrors.ErrBadRequest.WithMessage("No fields to update")
	}

	var product *models.Product
	var err error
	if len(set) > 0 {
		if product, err = s.products.Update(ctx, id, set); err != nil {
			return nil, err
		}
	}
	if req.ImageBase64 != "" {
		image, err := s.uploadDataURI(ctx, req.ImageBase64)
		if err != nil {
			return nil, err
		}
		if product, err = s.products.AddImage(ctx, id, image); err != nil {
			return nil, err
		}
	}
	s.cache.Invalidate(ctx, id.Hex())
	return product, nil
}

// Delete removes a product and, best effort, its stored images.
func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	for _, image := range product.Images {
		if err := s.media.Delete(ctx, image.PublicID); err != nil {
			logger.Warn(ctx, "failed to delete product image", zap.String("public_id", image.PublicID), zap.Error(err))
		}
	}
	s.cache.Invalidate(ctx, id.Hex())
	return nil
}

// UploadImage validates and stores a single image file.
func (s *ProductService) UploadImage(ctx context.Context, r io.Reader, filename string, size int64) (models.ProductImage, error) {
	if size > MaxImageSize {
		return models.ProductImage{}, apperrors.Newf(apperrors.ErrBadRequest,
			"File too large. Maximum 10MB (file size: %.1fMB)", float64(size)/(1<<20))
	}
	if _, err := ImageExtension(filename); err != nil {
		return models.ProductImage{}, err
	}
	return s.media.Upload(ctx, r, filename)
}

// AddImage uploads a file and appends it to the product gallery.
func (s *ProductService) AddImage(ctx context.Context, id primitive.ObjectID, r io.Reader, filename string, size int64) (*models.Product, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, err
	}
	image, err := s.UploadImage(ctx, r, filename, size)
	if err != nil {
		return nil, err
	}
	product, err := s.products.AddImage(ctx, id, image)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id.Hex())
	return product, nil
}

func (s *ProductService) uploadDataURI(ctx context.Context, dataURI string) (models.ProductImage, error) {
	data, ext, err := DecodeImageDataURI(dataURI)
	if err != nil {
		return models.ProductImage{}, err
	}
	return s.UploadImage(ctx, bytes.NewReader(data), "image."+ext, int64(len(data)))
}

var mimeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeImageDataURI decodes "data:image/png;base64,..." or bare base64 and
// returns the bytes with a file extension for the detected image type.
func DecodeImageDataURI(s string) ([]byte, string, error) {
	invalid := apperrors.ErrBadRequest.WithMessage("Invalid image data")

	payload := s
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 || !strings.HasSuffix(s[:comma], ";base64") {
			return nil, "", invalid
		}
		payload = s[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil || len(data) == 0 {
		return nil, "", invalid
	}

	mime := http.DetectContentType(data)
	ext, ok := mimeExtensions[mime]
	if !ok {
		return nil, "", apperrors.ErrBadRequest.WithMessage("File format not supported. Allowed formats: jpg, jpeg, png, gif, webp")
	}
	return data, ext, nil
}
