package controllers

import (
	"net/http"

	"storefront-backend/apperrors"
	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/repository"

	"github.com/gin-gonic/gin"
)

// GetCart returns the caller's cart priced against the current catalogue.
func (ctrl *Controller) GetCart(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	userID, _ := middleware.UserID(c)
	cart, err := ctrl.Carts.Get(ctx, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// AddCartItem adds a product or merges it into an existing line.
func (ctrl *Controller) AddCartItem(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, _ := middleware.UserID(c)
	cart, err := ctrl.Carts.AddItem(ctx, userID, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// UpdateCartItem sets a line quantity; zero removes it.
func (ctrl *Controller) UpdateCartItem(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	productID, err := repository.ParseID(c.Param("productId"), "product")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	var req models.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, _ := middleware.UserID(c)
	cart, err := ctrl.Carts.UpdateItem(ctx, userID, productID, *req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// RemoveCartItem drops a line from the cart.
func (ctrl *Controller) RemoveCartItem(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	productID, err := repository.ParseID(c.Param("productId"), "product")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	userID, _ := middleware.UserID(c)
	cart, err := ctrl.Carts.RemoveItem(ctx, userID, productID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// ClearCart empties the cart.
func (ctrl *Controller) ClearCart(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	userID, _ := middleware.UserID(c)
	if err := ctrl.Carts.Clear(ctx, userID); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
