// internal/interfaces/http/handlers/order.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/order"
)

// OrderHandler handles order history and invoice endpoints
type OrderHandler struct {
	orderService *order.Service
	log          *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		log:          log,
	}
}

// GetOrders handles GET /orders?search=&status=&period=
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var filter order.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	history, err := h.orderService.History(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "Orders retrieved successfully", history)
}

// GetOrder handles GET /orders/:number
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	o, err := h.orderService.Get(c.Request.Context(), userID, c.Param("number"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "Order retrieved successfully", o)
}

// GetInvoice handles GET /orders/:number/invoice
func (h *OrderHandler) GetInvoice(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	number := c.Param("number")
	pdf, err := h.orderService.Invoice(c.Request.Context(), userID, number)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", number))
	c.Header("Content-Length", strconv.Itoa(len(pdf)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
