// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/interfaces/http/handlers"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// Handlers bundles every API handler
type Handlers struct {
	Auth     *handlers.AuthHandler
	Product  *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Order    *handlers.OrderHandler
	Wishlist *handlers.WishlistHandler
}

// SetupRoutes registers the API under rg
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	SetupAuthRoutes(rg, h.Auth, cfg)
	SetupProductRoutes(rg, h.Product, cfg)
	SetupCartRoutes(rg, h.Cart, cfg)
	SetupCheckoutRoutes(rg, h.Checkout, cfg)
	SetupOrderRoutes(rg, h.Order, cfg)
	SetupWishlistRoutes(rg, h.Wishlist, cfg)
}

// SetupAuthRoutes sets up authentication and account routes
func SetupAuthRoutes(rg *gin.RouterGroup, authHandler *handlers.AuthHandler, cfg *config.Config) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.GetProfile)
		}
	}

	account := rg.Group("/account")
	account.Use(middleware.AuthMiddleware(cfg))
	{
		account.PUT("/settings", authHandler.UpdateSettings)
	}
}

// SetupProductRoutes sets up catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, productHandler *handlers.ProductHandler, cfg *config.Config) {
	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/categories", productHandler.GetCategories)
		products.GET("/:sku", productHandler.GetProduct)
	}
}

// SetupCartRoutes sets up cart routes; the cart belongs to the browser session
func SetupCartRoutes(rg *gin.RouterGroup, cartHandler *handlers.CartHandler, cfg *config.Config) {
	cart := rg.Group("/cart")
	cart.Use(middleware.Session(cfg), middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.GET("/count", cartHandler.GetCartCount)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:sku", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:sku", cartHandler.RemoveFromCart)
	}
}

// SetupCheckoutRoutes sets up the checkout flow; placing an order requires a user
func SetupCheckoutRoutes(rg *gin.RouterGroup, checkoutHandler *handlers.CheckoutHandler, cfg *config.Config) {
	checkout := rg.Group("/checkout")
	checkout.Use(middleware.Session(cfg), middleware.OptionalAuthMiddleware(cfg))
	{
		checkout.GET("", checkoutHandler.GetCheckout)
		checkout.PUT("/shipping", checkoutHandler.UpdateShipping)
		checkout.PUT("/payment", checkoutHandler.UpdatePayment)
		checkout.POST("/next", checkoutHandler.Next)
		checkout.POST("/back", checkoutHandler.Back)
		checkout.POST("/place-order", checkoutHandler.PlaceOrder)
		checkout.POST("/submit", checkoutHandler.Submit)
	}
}

// SetupOrderRoutes sets up order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, orderHandler *handlers.OrderHandler, cfg *config.Config) {
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:number", orderHandler.GetOrder)
		orders.GET("/:number/invoice", orderHandler.GetInvoice)
	}
}

// SetupWishlistRoutes sets up save-for-later routes
func SetupWishlistRoutes(rg *gin.RouterGroup, wishlistHandler *handlers.WishlistHandler, cfg *config.Config) {
	wishlist := rg.Group("/wishlist")
	wishlist.Use(middleware.Session(cfg), middleware.AuthMiddleware(cfg))
	{
		wishlist.GET("", wishlistHandler.GetWishlist)
		wishlist.POST("/items", wishlistHandler.AddToWishlist)
		wishlist.DELETE("/items/:sku", wishlistHandler.RemoveFromWishlist)
		wishlist.POST("/items/:sku/move-to-cart", wishlistHandler.MoveToCart)
	}
}
