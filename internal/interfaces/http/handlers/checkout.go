// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/checkout"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// CheckoutHandler handles the checkout flow and order placement
type CheckoutHandler struct {
	checkoutService *checkout.Service
	log             *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, log *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		log:             log,
	}
}

// GetCheckout handles GET /checkout
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	state, err := h.checkoutService.GetState(c.Request.Context(), middleware.GetSessionIDFromContext(c))
	h.respond(c, "Checkout retrieved successfully", state, err)
}

// UpdateShipping handles PUT /checkout/shipping
func (h *CheckoutHandler) UpdateShipping(c *gin.Context) {
	var req checkout.UpdateShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	state, err := h.checkoutService.UpdateShipping(c.Request.Context(), middleware.GetSessionIDFromContext(c), &req)
	h.respond(c, "Shipping information saved", state, err)
}

// UpdatePayment handles PUT /checkout/payment
func (h *CheckoutHandler) UpdatePayment(c *gin.Context) {
	var req checkout.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	state, err := h.checkoutService.UpdatePayment(c.Request.Context(), middleware.GetSessionIDFromContext(c), &req)
	h.respond(c, "Payment method saved", state, err)
}

// Next handles POST /checkout/next
func (h *CheckoutHandler) Next(c *gin.Context) {
	state, err := h.checkoutService.Next(c.Request.Context(), middleware.GetSessionIDFromContext(c))
	h.respond(c, "Checkout advanced", state, err)
}

// Back handles POST /checkout/back
func (h *CheckoutHandler) Back(c *gin.Context) {
	state, err := h.checkoutService.Back(c.Request.Context(), middleware.GetSessionIDFromContext(c))
	h.respond(c, "Checkout moved back", state, err)
}

// PlaceOrder handles POST /checkout/place-order, submitting the reviewed flow
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	o, err := h.checkoutService.PlaceOrder(c.Request.Context(), userID, middleware.GetSessionIDFromContext(c))
	h.respondOrder(c, o, err)
}

// Submit handles POST /checkout/submit, placing an order in one call
func (h *CheckoutHandler) Submit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req checkout.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.checkoutService.Submit(c.Request.Context(), userID, middleware.GetSessionIDFromContext(c), &req)
	h.respondOrder(c, o, err)
}

func (h *CheckoutHandler) respond(c *gin.Context, message string, state *checkout.State, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, message, state)
}

func (h *CheckoutHandler) respondOrder(c *gin.Context, o *order.Order, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    o,
	})
}
