package controllers

import (
	"net/http"

	"storefront-backend/apperrors"
	"storefront-backend/middleware"
	"storefront-backend/models"

	"github.com/gin-gonic/gin"
)

// Register creates a customer account and signs it in.
func (ctrl *Controller) Register(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.RegisterUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := ctrl.Customers.Register(ctx, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// ClientLogin authenticates a customer.
func (ctrl *Controller) ClientLogin(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.ClientLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := ctrl.Customers.Login(ctx, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Me returns the signed-in customer.
func (ctrl *Controller) Me(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, _ := middleware.UserID(c)
	user, err := ctrl.Customers.Get(ctx, id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile changes name, phone or address.
func (ctrl *Controller) UpdateProfile(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	id, _ := middleware.UserID(c)
	user, err := ctrl.Customers.UpdateProfile(ctx, id, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ChangePassword replaces the customer's password after checking the current one.
func (ctrl *Controller) ChangePassword(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	id, _ := middleware.UserID(c)
	if err := ctrl.Customers.ChangePassword(ctx, id, req); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
