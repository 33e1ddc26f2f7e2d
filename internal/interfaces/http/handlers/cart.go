// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/checkout"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	pricing     checkout.Pricing
	log         *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, pricing checkout.Pricing, log *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		pricing:     pricing,
		log:         log,
	}
}

// CartResponse is the cart with its priced summary
type CartResponse struct {
	*cart.SessionCart
	Summary checkout.Summary `json:"summary"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sc, err := h.cartService.Get(c.Request.Context(), middleware.GetSessionIDFromContext(c))
	h.respond(c, "Cart retrieved successfully", sc, err)
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sc, err := h.cartService.Add(c.Request.Context(), middleware.GetSessionIDFromContext(c), &req)
	h.respond(c, "Item added to cart successfully", sc, err)
}

// UpdateCartItem handles PUT /cart/items/:sku
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sc, err := h.cartService.UpdateQuantity(c.Request.Context(), middleware.GetSessionIDFromContext(c), c.Param("sku"), &req)
	h.respond(c, "Cart item updated successfully", sc, err)
}

// RemoveFromCart handles DELETE /cart/items/:sku
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	sc, err := h.cartService.Remove(c.Request.Context(), middleware.GetSessionIDFromContext(c), c.Param("sku"))
	h.respond(c, "Item removed from cart successfully", sc, err)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), middleware.GetSessionIDFromContext(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "Cart cleared successfully", nil)
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	count, err := h.cartService.Count(c.Request.Context(), middleware.GetSessionIDFromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "Cart count retrieved successfully", gin.H{"count": count})
}

func (h *CartHandler) respond(c *gin.Context, message string, sc *cart.SessionCart, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, message, CartResponse{
		SessionCart: sc,
		Summary:     h.pricing.ForItems(sc.Items).Rounded(),
	})
}
