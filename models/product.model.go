package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductImage is one stored product picture.
type ProductImage struct {
	URL      string `json:"url" bson:"url" binding:"required,url"`
	PublicID string `json:"public_id,omitempty" bson:"public_id,omitempty"`
}

// Product is a catalogue item.
type Product struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	SKU         string             `json:"sku" bson:"sku"`
	Description string             `json:"description" bson:"description"`
	Category    string             `json:"category" bson:"category"`
	Price       float64            `json:"price" bson:"price"`
	Stock       int                `json:"stock" bson:"stock"`
	Images      []ProductImage     `json:"images" bson:"images"`
	IsFeatured  bool               `json:"is_featured" bson:"is_featured"`
	IsActive    bool               `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateProductRequest is the payload for creating a product. ImageBase64 may carry
// a data URI that is uploaded before the product is stored.
type CreateProductRequest struct {
	Name        string         `json:"name" binding:"required,min=2,max=200"`
	SKU         string         `json:"sku" binding:"required,sku"`
	Description string         `json:"description" binding:"max=5000"`
	Category    string         `json:"category" binding:"required"`
	Price       float64        `json:"price" binding:"gte=0"`
	Stock       int            `json:"stock" binding:"gte=0"`
	Images      []ProductImage `json:"images" binding:"omitempty,dive"`
	IsFeatured  bool           `json:"is_featured"`
	IsActive    *bool          `json:"is_active"`
	ImageBase64 string         `json:"image_base64,omitempty"`
}

// UpdateProductRequest is a partial product update; nil fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=2,max=200"`
	SKU         *string  `json:"sku" binding:"omitempty,sku"`
	Description *string  `json:"description" binding:"omitempty,max=5000"`
	Category    *string  `json:"category" binding:"omitempty,min=1"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
	IsFeatured  *bool    `json:"is_featured"`
	IsActive    *bool    `json:"is_active"`
	ImageBase64 string   `json:"image_base64,omitempty"`
}

// Fields returns the $set document for the non-nil fields.
func (r *UpdateProductRequest) Fields() bson.M {
	set := bson.M{}
	if r.Name != nil {
		set["name"] = *r.Name
	}
	if r.SKU != nil {
		set["sku"] = NormalizeSKU(*r.SKU)
	}
	if r.Description != nil {
		set["description"] = *r.Description
	}
	if r.Category != nil {
		set["category"] = *r.Category
	}
	if r.Price != nil {
		set["price"] = *r.Price
	}
	if r.Stock != nil {
		set["stock"] = *r.Stock
	}
	if r.IsFeatured != nil {
		set["is_featured"] = *r.IsFeatured
	}
	if r.IsActive != nil {
		set["is_active"] = *r.IsActive
	}
	return set
}

// Product list sort orders.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// ProductQuery filters and pages the catalogue.
type ProductQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Featured *bool
	Sort     string
	// IncludeInactive lists hidden products too; only the admin panel sets it.
	IncludeInactive bool
}

// ProductList is one page of products.
type ProductList struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Pages    int       `json:"pages"`
}
