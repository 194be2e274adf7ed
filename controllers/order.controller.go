package controllers

import (
	"net/http"

	"storefront-backend/apperrors"
	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/repository"

	"github.com/gin-gonic/gin"
)

// Checkout turns the caller's cart into a pending order.
func (ctrl *Controller) Checkout(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req models.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, _ := middleware.UserID(c)
	order, err := ctrl.Orders.Checkout(ctx, userID, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetMyOrders lists the caller's orders, newest first.
func (ctrl *Controller) GetMyOrders(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	userID, _ := middleware.UserID(c)
	orders, err := ctrl.Orders.ListForUser(ctx, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetMyOrder returns one of the caller's orders.
func (ctrl *Controller) GetMyOrder(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	orderID, err := repository.ParseID(c.Param("id"), "order")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	userID, _ := middleware.UserID(c)
	order, err := ctrl.Orders.GetForUser(ctx, userID, orderID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelMyOrder cancels one of the caller's pending orders.
func (ctrl *Controller) CancelMyOrder(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	orderID, err := repository.ParseID(c.Param("id"), "order")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	userID, _ := middleware.UserID(c)
	order, err := ctrl.Orders.Cancel(ctx, userID, orderID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GetOrders lists orders for the admin panel.
func (ctrl *Controller) GetOrders(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	q := models.OrderQuery{Status: models.OrderStatus(c.Query("status"))}
	var err error
	if q.Page, err = queryInt(c, "page"); err != nil {
		apperrors.Respond(c, err)
		return
	}
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		apperrors.Respond(c, err)
		return
	}

	list, err := ctrl.Orders.List(ctx, q)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetOrder returns any order.
func (ctrl *Controller) GetOrder(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	orderID, err := repository.ParseID(c.Param("id"), "order")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	order, err := ctrl.Orders.Get(ctx, orderID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrderStatus moves an order along its lifecycle.
func (ctrl *Controller) UpdateOrderStatus(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	orderID, err := repository.ParseID(c.Param("id"), "order")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	var req models.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.Orders.UpdateStatus(ctx, orderID, req, middleware.AdminUsername(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
