package handlers

import (
	"cozy_nook/internal/logger"
	"cozy_nook/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// change notifications for re-rendering, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/logout", h.logout)
		auth.GET("/session", h.currentSession)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/products", h.listProducts)
		api.GET("/products/:id", h.getProduct)

		h.registerCartRoutes(api.Group("/cart", h.sessionMiddleware))
		h.registerAdminRoutes(api.Group("/admin", h.sessionMiddleware, h.adminMiddleware))
	}
}

func (h *Handler) registerCartRoutes(cart *gin.RouterGroup) {
	cart.GET("", h.getCart)
	cart.DELETE("", h.clearCart)
	// Body example: {"product_id":"6f1c..."}
	cart.POST("/items", h.addToCart)
	// Body example: {"quantity":3}
	cart.PUT("/items/:id", h.setCartQuantity)
	cart.DELETE("/items/:id", h.removeFromCart)
	cart.POST("/checkout", h.checkout)
}

func (h *Handler) registerAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.POST("/products/:id/decrement", h.decrementInventory)
	admin.GET("/users", h.listUsers)
	admin.GET("/orders", h.listOrders)
}
