package controllers

import (
	"net/http"

	"storefront-backend/apperrors"
	"storefront-backend/models"
	"storefront-backend/repository"

	"github.com/gin-gonic/gin"
)

func productQuery(c *gin.Context) (models.ProductQuery, error) {
	q := models.ProductQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	}
	var err error
	if q.Page, err = queryInt(c, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		return q, err
	}
	if q.MinPrice, err = queryFloat(c, "min_price"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = queryFloat(c, "max_price"); err != nil {
		return q, err
	}
	if q.Featured, err = queryBool(c, "featured"); err != nil {
		return q, err
	}
	switch q.Sort {
	case "", models.SortNewest, models.SortPriceAsc, models.SortPriceDesc, models.SortName:
	default:
		return q, apperrors.ErrBadRequest.WithMessage("Invalid sort")
	}
	return q, nil
}

// GetProducts lists active products for the storefront.
func (ctrl *Controller) GetProducts(c *gin.Context) {
	ctrl.listProducts(c, false)
}

// GetAllProducts lists every product, hidden ones included.
func (ctrl *Controller) GetAllProducts(c *gin.Context) {
	ctrl.listProducts(c, true)
}

func (ctrl *Controller) listProducts(c *gin.Context, includeInactive bool) {
	ctx, cancel := requestContext(c)
	defer cancel()

	q, err := productQuery(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	q.IncludeInactive = includeInactive

	list, err := ctrl.Products.List(ctx, q)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetProduct returns one active product.
func (ctrl *Controller) GetProduct(c *gin.Context) {
	ctrl.getProduct(c, false)
}

// GetAnyProduct returns one product regardless of visibility.
func (ctrl *Controller) GetAnyProduct(c *gin.Context) {
	ctrl.getProduct(c, true)
}

func (ctrl *Controller) getProduct(c *gin.Context, includeInactive bool) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := repository.ParseID(c.Param("id"), "product")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	product, err := ctrl.Products.Get(ctx, id, includeInactive)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct adds a product, uploading an inline image if one is given.
func (ctrl *Controller) CreateProduct(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := ctrl.Products.Create(ctx, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct applies a partial update.
func (ctrl *Controller) UpdateProduct(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := repository.ParseID(c.Param("id"), "product")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	var req models.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := ctrl.Products.Update(ctx, id, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct removes a product and its images.
func (ctrl *Controller) DeleteProduct(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := repository.ParseID(c.Param("id"), "product")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if err := ctrl.Products.Delete(ctx, id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// UploadImage stores the multipart "image" file and returns its location.
func (ctrl *Controller) UploadImage(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	file, err := c.FormFile("image")
	if err != nil {
		apperrors.Respond(c, apperrors.ErrBadRequest.WithMessage("No file uploaded. Please select an image file."))
		return
	}
	src, err := file.Open()
	if err != nil {
		apperrors.Respond(c, apperrors.Wrap(apperrors.ErrInternal, err))
		return
	}
	defer src.Close()

	image, err := ctrl.Products.UploadImage(ctx, src, file.Filename, file.Size)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "File uploaded successfully",
		"url":       image.URL,
		"public_id": image.PublicID,
	})
}

// AddProductImage uploads the multipart "image" file into a product's gallery.
func (ctrl *Controller) AddProductImage(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := repository.ParseID(c.Param("id"), "product")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		apperrors.Respond(c, apperrors.ErrBadRequest.WithMessage("No file uploaded. Please select an image file."))
		return
	}
	src, err := file.Open()
	if err != nil {
		apperrors.Respond(c, apperrors.Wrap(apperrors.ErrInternal, err))
		return
	}
	defer src.Close()

	product, err := ctrl.Products.AddImage(ctx, id, src, file.Filename, file.Size)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}
