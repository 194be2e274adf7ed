package controllers

import (
	"net/http"

	"storefront-backend/apperrors"
	"storefront-backend/repository"

	"github.com/gin-gonic/gin"
)

// GetStats returns the admin dashboard summary.
func (ctrl *Controller) GetStats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := ctrl.Stats.Get(ctx)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetUsers lists customers, newest first.
func (ctrl *Controller) GetUsers(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := queryInt(c, "page")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	list, err := ctrl.Customers.List(ctx, page, limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// DeleteUser removes a customer and their cart.
func (ctrl *Controller) DeleteUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := repository.ParseID(c.Param("id"), "user")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if err := ctrl.Customers.Delete(ctx, id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
