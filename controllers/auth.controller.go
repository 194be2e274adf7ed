package controllers

import (
	"net/http"

	"storefront-backend/apperrors"
	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/repository"

	"github.com/gin-gonic/gin"
)

// AdminLogin authenticates an admin and returns a PASETO token.
func (ctrl *Controller) AdminLogin(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	admin, token, err := ctrl.Admins.Login(ctx, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "admin": admin, "token": token})
}

// AdminMe returns the authenticated admin.
func (ctrl *Controller) AdminMe(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, _ := middleware.AdminID(c)
	admin, err := ctrl.Admins.Get(ctx, id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": admin})
}

// GetAdmins lists every admin account.
func (ctrl *Controller) GetAdmins(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	admins, err := ctrl.Admins.List(ctx)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admins": admins})
}

// CreateAdmin adds a back-office account.
func (ctrl *Controller) CreateAdmin(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.CreateAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	admin, err := ctrl.Admins.Create(ctx, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Admin created successfully", "admin": admin})
}

// DeleteAdmin removes an admin other than the caller.
func (ctrl *Controller) DeleteAdmin(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := repository.ParseID(c.Param("id"), "admin")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	actor, _ := middleware.AdminID(c)
	if err := ctrl.Admins.Delete(ctx, actor, id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin deleted successfully"})
}
