package routes

import (
	"net/http"

	"storefront-backend/controllers"
	"storefront-backend/logger"
	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/services"

	"github.com/gin-gonic/gin"
)

// StaticPrefix is where locally stored uploads are served.
const StaticPrefix = "/static"

// Options tunes the engine built by Setup.
type Options struct {
	Env            string
	AllowedOrigins []string
	// UploadDir is served under StaticPrefix when set.
	UploadDir string
	// LoginLimiter throttles the login endpoints when set.
	LoginLimiter *middleware.RateLimiter
}

// Setup configures and returns the gin engine.
func Setup(ctrl *controllers.Controller, tokens *services.TokenService, opts Options) *gin.Engine {
	if opts.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	models.RegisterValidators()

	r := gin.New()
	r.MaxMultipartMemory = services.MaxImageSize
	r.Use(
		logger.RequestID(),
		logger.RequestLogger(),
		gin.Recovery(),
		middleware.SecurityHeaders(),
		middleware.CORS(opts.AllowedOrigins),
	)
	if opts.UploadDir != "" {
		r.Static(StaticPrefix, opts.UploadDir)
	}

	throttle := func(c *gin.Context) { c.Next() }
	if opts.LoginLimiter != nil {
		throttle = opts.LoginLimiter.Middleware()
	}
	adminAuth := middleware.AdminAuth(tokens)
	clientAuth := middleware.ClientAuth(tokens)

	api := r.Group("/api")
	{
		api.GET("/health", ctrl.HealthCheck)
		api.GET("/products", ctrl.GetProducts)
		api.GET("/products/:id", ctrl.GetProduct)
		api.POST("/promo-codes/validate", ctrl.ValidatePromoCode)
	}

	clientAuthGroup := api.Group("/client-auth")
	{
		clientAuthGroup.POST("/register", throttle, ctrl.Register)
		clientAuthGroup.POST("/login", throttle, ctrl.ClientLogin)
		clientAuthGroup.GET("/me", clientAuth, ctrl.Me)
		clientAuthGroup.PUT("/profile", clientAuth, ctrl.UpdateProfile)
		clientAuthGroup.PUT("/password", clientAuth, ctrl.ChangePassword)
	}

	cart := api.Group("/cart", clientAuth)
	{
		cart.GET("", ctrl.GetCart)
		cart.DELETE("", ctrl.ClearCart)
		cart.POST("/items", ctrl.AddCartItem)
		cart.PUT("/items/:productId", ctrl.UpdateCartItem)
		cart.DELETE("/items/:productId", ctrl.RemoveCartItem)
	}

	orders := api.Group("/orders", clientAuth)
	{
		orders.POST("", ctrl.Checkout)
		orders.GET("", ctrl.GetMyOrders)
		orders.GET("/:id", ctrl.GetMyOrder)
		orders.POST("/:id/cancel", ctrl.CancelMyOrder)
	}

	adminAuthGroup := api.Group("/admin/auth")
	{
		adminAuthGroup.POST("/login", throttle, ctrl.AdminLogin)
		adminAuthGroup.GET("/me", adminAuth, ctrl.AdminMe)
	}

	admin := api.Group("/admin", adminAuth)
	{
		admin.GET("/stats", ctrl.GetStats)

		admin.GET("/products", ctrl.GetAllProducts)
		admin.GET("/products/:id", ctrl.GetAnyProduct)
		admin.POST("/products", ctrl.CreateProduct)
		admin.PUT("/products/:id", ctrl.UpdateProduct)
		admin.DELETE("/products/:id", ctrl.DeleteProduct)
		admin.POST("/products/:id/images", ctrl.AddProductImage)
		admin.POST("/upload", ctrl.UploadImage)

		admin.GET("/orders", ctrl.GetOrders)
		admin.GET("/orders/:id", ctrl.GetOrder)
		admin.PUT("/orders/:id/status", ctrl.UpdateOrderStatus)

		admin.GET("/users", ctrl.GetUsers)
		admin.DELETE("/users/:id", ctrl.DeleteUser)

		admin.GET("/promo-codes", ctrl.GetPromoCodes)
		admin.POST("/promo-codes", ctrl.CreatePromoCode)
		admin.PUT("/promo-codes/:id", ctrl.UpdatePromoCode)
		admin.DELETE("/promo-codes/:id", ctrl.DeletePromoCode)

		superadmin := admin.Group("/admins", middleware.RequireRole(models.RoleSuperAdmin))
		superadmin.GET("", ctrl.GetAdmins)
		superadmin.POST("", ctrl.CreateAdmin)
		superadmin.DELETE("/:id", ctrl.DeleteAdmin)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
	return r
}
