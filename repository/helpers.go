package repository

import (
	"errors"

	"storefront-backend/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParseID converts a hex string into an ObjectID.
func ParseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.Newf(apperrors.ErrBadRequest, "Invalid %s ID", what)
	}
	return id, nil
}

// NormalizePage clamps page and limit to sane values.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func pageOptions(page, limit int) *options.FindOptions {
	page, limit = NormalizePage(page, limit)
	return options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
}

// translate maps driver errors onto application errors.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.Newf(apperrors.ErrNotFound, "%s not found", what)
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Newf(apperrors.ErrConflict, "%s already exists", what)
	}
	return apperrors.Wrap(apperrors.ErrInternal, err)
}

func notFound(what string) error {
	return apperrors.Newf(apperrors.ErrNotFound, "%s not found", what)
}
