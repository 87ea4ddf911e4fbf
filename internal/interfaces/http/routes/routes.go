// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Akshat090803/ecommerce-final-project/internal/domain/catalog"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/order"
	"github.com/Akshat090803/ecommerce-final-project/internal/interfaces/http/handlers"
	"github.com/Akshat090803/ecommerce-final-project/internal/interfaces/http/middleware"
	"github.com/Akshat090803/ecommerce-final-project/internal/pkg/auth"
)

// Dependencies are the collaborators the API routes need
type Dependencies struct {
	Catalog      catalog.Reader
	Orders       order.Store
	Checkout     handlers.OrderPlacer
	CartSessions *handlers.CartSessions
	JWT          *auth.JWTManager
	Logger       logrus.FieldLogger
}

// SetupRoutes registers every API route on rg
func SetupRoutes(rg *gin.RouterGroup, deps Dependencies) {
	SetupAuthRoutes(rg, deps)
	SetupProductRoutes(rg, deps)
	SetupCartRoutes(rg, deps)
	SetupOrderRoutes(rg, deps)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.CartSessions, deps.Logger)

	authGroup := rg.Group("/auth")
	authGroup.Use(middleware.AuthMiddleware(deps.JWT))
	{
		authGroup.POST("/logout", authHandler.Logout)
	}
}

// SetupProductRoutes sets up product related routes
func SetupProductRoutes(rg *gin.RouterGroup, deps Dependencies) {
	productHandler := handlers.NewProductHandler(deps.Catalog, deps.Logger)

	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(deps.JWT))
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}
}

// SetupCartRoutes sets up cart routes. Carts belong to the browser
// session, so authentication is optional.
func SetupCartRoutes(rg *gin.RouterGroup, deps Dependencies) {
	cartHandler := handlers.NewCartHandler(deps.CartSessions, deps.Catalog, deps.Logger)

	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.OptionalAuthMiddleware(deps.JWT))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.GET("/count", cartHandler.GetCartCount)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
	}
}

// SetupOrderRoutes sets up checkout and order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, deps Dependencies) {
	checkoutHandler := handlers.NewCheckoutHandler(deps.Checkout, deps.CartSessions, deps.Logger)
	orderHandler := handlers.NewOrderHandler(deps.Orders, deps.Logger)

	// Checkout reports the unauthenticated case itself, so the token is optional here
	checkoutGroup := rg.Group("/checkout")
	checkoutGroup.Use(middleware.OptionalAuthMiddleware(deps.JWT))
	{
		checkoutGroup.POST("", checkoutHandler.PlaceOrder)
	}

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(deps.JWT))
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
	}
}
