package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Upload limits.
const (
	MaxImageSize  = 10 << 20
	productFolder = "storefront/products"
)

var allowedImageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// ImageExtension returns the lower-case extension of filename if it is an
// accepted image type.
func ImageExtension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !allowedImageExtensions[ext] {
		return "", apperrors.ErrBadRequest.WithMessage("File format not supported. Allowed formats: jpg, jpeg, png, gif, webp")
	}
	return ext, nil
}

// MediaUploader stores product images.
type MediaUploader interface {
	Upload(ctx context.Context, r io.Reader, filename string) (models.ProductImage, error)
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryUploader stores images in a Cloudinary folder.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader builds an uploader from a cloudinary:// URL.
func NewCloudinaryUploader(cloudinaryURL string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: productFolder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, r io.Reader, filename string) (models.ProductImage, error) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	params := uploader.UploadParams{
		Folder:   u.folder,
		PublicID: fmt.Sprintf("%d_%s", time.Now().Unix(), unsafeFilenameChars.ReplaceAllString(base, "_")),
	}
	result, err := u.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return models.ProductImage{}, apperrors.Wrap(apperrors.ErrInternal.WithMessage("Failed to upload image"), err)
	}
	if result == nil || result.SecureURL == "" {
		return models.ProductImage{}, apperrors.ErrInternal.WithMessage("Failed to upload image")
	}
	return models.ProductImage{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

func (u *CloudinaryUploader) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

// LocalUploader writes images under Dir and serves them from URLPrefix.
type LocalUploader struct {
	Dir       string
	URLPrefix string
}

func NewLocalUploader(dir, urlPrefix string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (u *LocalUploader) Upload(_ context.Context, r io.Reader, filename string) (models.ProductImage, error) {
	name := fmt.Sprintf("%d_%s_%s", time.Now().Unix(), uuid.NewString()[:8],
		unsafeFilenameChars.ReplaceAllString(filepath.Base(filename), "_"))

	f, err := os.Create(filepath.Join(u.Dir, name))
	if err != nil {
		return models.ProductImage{}, apperrors.Wrap(apperrors.ErrInternal.WithMessage("Error saving file"), err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, MaxImageSize+1)); err != nil {
		return models.ProductImage{}, apperrors.Wrap(apperrors.ErrInternal.WithMessage("Error saving file"), err)
	}
	return models.ProductImage{URL: u.URLPrefix + "/" + name, PublicID: name}, nil
}

func (u *LocalUploader) Delete(_ context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	err := os.Remove(filepath.Join(u.Dir, filepath.Base(publicID)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
