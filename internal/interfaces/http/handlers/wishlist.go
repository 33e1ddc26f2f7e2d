// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/checkout"
	"github.com/your-org/storefront/internal/domain/wishlist"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// WishlistHandler handles save-for-later endpoints
type WishlistHandler struct {
	wishlistService *wishlist.Service
	pricing         checkout.Pricing
	log             *logrus.Logger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService *wishlist.Service, pricing checkout.Pricing, log *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		pricing:         pricing,
		log:             log,
	}
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	items, err := h.wishlistService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "Wishlist retrieved successfully", gin.H{
		"items": items,
		"count": len(items),
	})
}

// AddToWishlist handles POST /wishlist/items
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req wishlist.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.wishlistService.Save(c.Request.Context(), userID, req.SKU); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item saved for later",
	})
}

// RemoveFromWishlist handles DELETE /wishlist/items/:sku
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.wishlistService.Remove(c.Request.Context(), userID, c.Param("sku")); err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "Item removed from wishlist", nil)
}

// MoveToCart handles POST /wishlist/items/:sku/move-to-cart
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	sc, err := h.wishlistService.MoveToCart(c.Request.Context(), userID, middleware.GetSessionIDFromContext(c), c.Param("sku"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "Item moved to cart", CartResponse{
		SessionCart: sc,
		Summary:     h.pricing.ForItems(sc.Items).Rounded(),
	})
}
