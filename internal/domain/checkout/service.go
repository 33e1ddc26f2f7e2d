// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/order"
	redisdb "github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/pkg/apperror"
)

// CartSource is the subset of the cart service checkout needs
type CartSource interface {
	Get(ctx context.Context, sessionID string) (*cart.SessionCart, error)
	Clear(ctx context.Context, sessionID string) error
}

// Notifier sends the order confirmation message
type Notifier interface {
	SendOrderConfirmationEmail(ctx context.Context, o *order.Order) error
}

// Service handles the checkout flow and order submission
type Service struct {
	carts          CartSource
	orders         order.Repository
	redis          *redisdb.Client
	notifier       Notifier
	pricing        Pricing
	deliveryWindow time.Duration
	flowTTL        time.Duration
	log            *logrus.Logger
	now            func() time.Time
}

// NewService creates a new checkout service
func NewService(
	carts CartSource,
	orders order.Repository,
	client *redisdb.Client,
	notifier Notifier,
	cfg *config.Config,
	log *logrus.Logger,
) *Service {
	window := cfg.Pricing.DeliveryWindow
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		carts:          carts,
		orders:         orders,
		redis:          client,
		notifier:       notifier,
		pricing:        NewPricing(cfg),
		deliveryWindow: window,
		flowTTL:        ttl,
		log:            log,
		now:            time.Now,
	}
}

// Pricing returns the active pricing policy
func (s *Service) Pricing() Pricing {
	return s.pricing
}

// State is the checkout page: the flow position plus the priced cart
type State struct {
	Flow    *Flow           `json:"flow"`
	Step    int             `json:"step"`
	Items   []cart.LineItem `json:"items"`
	Summary Summary         `json:"summary"`
}

// UpdateShippingRequest carries the shipping form
type UpdateShippingRequest struct {
	Shipping order.ShippingAddress `json:"shipping"`
}

// UpdatePaymentRequest carries the payment selection
type UpdatePaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// SubmitRequest carries everything needed to place an order in one call
type SubmitRequest struct {
	Shipping      order.ShippingAddress `json:"shipping"`
	PaymentMethod string                `json:"payment_method"`
}

// GetState loads the session's checkout flow and priced cart
func (s *Service) GetState(ctx context.Context, sessionID string) (*State, error) {
	flow, err := s.loadFlow(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.state(ctx, sessionID, flow)
}

// UpdateShipping stores the shipping form without changing stage
func (s *Service) UpdateShipping(ctx context.Context, sessionID string, req *UpdateShippingRequest) (*State, error) {
	return s.mutateFlow(ctx, sessionID, func(f *Flow) error {
		f.Shipping = req.Shipping.Trimmed()
		return nil
	})
}

// UpdatePayment stores the payment selection without changing stage
func (s *Service) UpdatePayment(ctx context.Context, sessionID string, req *UpdatePaymentRequest) (*State, error) {
	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error(), "payment_method")
	}
	return s.mutateFlow(ctx, sessionID, func(f *Flow) error {
		f.PaymentMethod = method
		return nil
	})
}

// Next advances the flow one stage
func (s *Service) Next(ctx context.Context, sessionID string) (*State, error) {
	return s.mutateFlow(ctx, sessionID, func(f *Flow) error {
		return f.Next()
	})
}

// Back moves the flow one stage back
func (s *Service) Back(ctx context.Context, sessionID string) (*State, error) {
	return s.mutateFlow(ctx, sessionID, func(f *Flow) error {
		f.Back()
		return nil
	})
}

// PlaceOrder submits the order using the data collected by the flow.
// The flow must be at the review stage.
func (s *Service) PlaceOrder(ctx context.Context, userID, sessionID string) (*order.Order, error) {
	if userID == "" {
		return nil, apperror.ErrNotAuthenticated
	}
	flow, err := s.loadFlow(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if flow.Stage != StageReview {
		return nil, apperror.NewValidationError("complete the checkout steps before placing the order", "stage")
	}
	return s.Submit(ctx, userID, sessionID, &SubmitRequest{
		Shipping:      flow.Shipping,
		PaymentMethod: string(flow.PaymentMethod),
	})
}

// Submit turns the session's cart into an order on the user's record.
// The cart is only cleared once the order has been stored.
func (s *Service) Submit(ctx context.Context, userID, sessionID string, req *SubmitRequest) (*order.Order, error) {
	if userID == "" {
		return nil, apperror.ErrNotAuthenticated
	}

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, apperror.NewValidationError("cart is empty")
	}

	shipping := req.Shipping.Trimmed()
	if missing := shipping.Missing(); len(missing) > 0 {
		return nil, apperror.NewValidationError("shipping information is incomplete", missing...)
	}

	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error(), "payment_method")
	}

	o := s.buildOrder(c.Items, shipping, method)

	logger := s.log.WithFields(logrus.Fields{
		"user_id":      userID,
		"session_id":   sessionID,
		"order_number": o.OrderNumber,
	})

	if err := s.orders.AppendOrder(ctx, userID, o); err != nil {
		logger.WithError(err).Error("Failed to store order")
		return nil, err
	}
	logger.WithField("total", o.Total.StringFixed(2)).Info("Order placed")

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		logger.WithError(err).Warn("Failed to clear cart after order")
	}
	if err := s.redis.Del(ctx, flowKey(sessionID)); err != nil {
		logger.WithError(err).Warn("Failed to reset checkout flow")
	}
	if s.notifier != nil {
		if err := s.notifier.SendOrderConfirmationEmail(ctx, o); err != nil {
			logger.WithError(err).Warn("Failed to send order confirmation")
		}
	}

	return o, nil
}

func (s *Service) buildOrder(items []cart.LineItem, shipping order.ShippingAddress, method order.PaymentMethod) *order.Order {
	now := s.now().UTC()
	summary := s.pricing.ForItems(items).Rounded()

	lines := make([]order.LineItem, len(items))
	for i, it := range items {
		lines[i] = order.LineItem{
			SKU:       it.SKU,
			Name:      it.DisplayName,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Image:     it.ImageRef,
		}
	}

	return &order.Order{
		OrderNumber:       order.NewOrderNumber(now),
		Items:             lines,
		Subtotal:          summary.Subtotal,
		ShippingFee:       summary.ShippingFee,
		TaxAmount:         summary.TaxAmount,
		Total:             summary.Total,
		Shipping:          shipping,
		PaymentMethod:     method,
		Status:            order.OrderStatusProcessing,
		CreatedAt:         now,
		EstimatedDelivery: now.Add(s.deliveryWindow),
	}
}

func (s *Service) state(ctx context.Context, sessionID string, flow *Flow) (*State, error) {
	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &State{
		Flow:    flow,
		Step:    flow.Step(),
		Items:   c.Items,
		Summary: s.pricing.ForItems(c.Items).Rounded(),
	}, nil
}

func (s *Service) mutateFlow(ctx context.Context, sessionID string, fn func(*Flow) error) (*State, error) {
	flow, err := s.loadFlow(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(flow); err != nil {
		return nil, err
	}
	if err := s.redis.SetJSON(ctx, flowKey(sessionID), flow, s.flowTTL); err != nil {
		return nil, apperror.Persistence("save checkout flow", err)
	}
	return s.state(ctx, sessionID, flow)
}

func (s *Service) loadFlow(ctx context.Context, sessionID string) (*Flow, error) {
	if sessionID == "" {
		return nil, apperror.NewValidationError("session ID required for checkout", "session_id")
	}

	var flow Flow
	err := s.redis.GetJSON(ctx, flowKey(sessionID), &flow)
	if errors.Is(err, redisdb.ErrMiss) {
		return NewFlow(), nil
	}
	if err != nil {
		return nil, apperror.Persistence("load checkout flow", err)
	}
	return &flow, nil
}

func flowKey(sessionID string) string {
	return fmt.Sprintf("checkout:session:%s", sessionID)
}
