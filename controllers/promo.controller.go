package controllers

import (
	"net/http"

	"storefront-backend/apperrors"
	"storefront-backend/models"
	"storefront-backend/repository"

	"github.com/gin-gonic/gin"
)

// ValidatePromoCode checks a code against a subtotal without consuming a use.
func (ctrl *Controller) ValidatePromoCode(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.ValidatePromoRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctrl.Promos.Validate(ctx, req.Code, req.Subtotal)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPromoCodes lists every promo code.
func (ctrl *Controller) GetPromoCodes(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	promos, err := ctrl.Promos.List(ctx)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promo_codes": promos})
}

// CreatePromoCode adds a promo code.
func (ctrl *Controller) CreatePromoCode(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.CreatePromoCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	promo, err := ctrl.Promos.Create(ctx, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"promo_code": promo})
}

// UpdatePromoCode applies a partial update.
func (ctrl *Controller) UpdatePromoCode(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := repository.ParseID(c.Param("id"), "promo code")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	var req models.UpdatePromoCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	promo, err := ctrl.Promos.Update(ctx, id, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promo_code": promo})
}

// DeletePromoCode removes a promo code.
func (ctrl *Controller) DeletePromoCode(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := repository.ParseID(c.Param("id"), "promo code")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if err := ctrl.Promos.Delete(ctx, id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Promo code deleted successfully"})
}
