// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/pkg/apperror"
)

// recentWindow separates recent orders from older ones
const recentWindow = 30 * 24 * time.Hour

// Period values accepted by Filter
const (
	PeriodAll    = "all"
	PeriodRecent = "recent"
	PeriodOlder  = "older"
)

// Service handles order history queries
type Service struct {
	repo     Repository
	invoices InvoiceRenderer
	log      *logrus.Logger
	now      func() time.Time
}

// NewService creates a new order service
func NewService(repo Repository, invoices InvoiceRenderer, log *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		invoices: invoices,
		log:      log,
		now:      time.Now,
	}
}

// Filter narrows the order history
type Filter struct {
	Search string `form:"search"`
	Status string `form:"status,default=all"`
	Period string `form:"period,default=all"`
}

// Stats counts a user's orders by status
type Stats struct {
	Total      int `json:"total"`
	Processing int `json:"processing"`
	Shipped    int `json:"shipped"`
	Delivered  int `json:"delivered"`
	Cancelled  int `json:"cancelled"`
}

// HistoryResponse is the filtered order list with overall stats
type HistoryResponse struct {
	Orders []Order `json:"orders"`
	Stats  Stats   `json:"stats"`
}

// History returns the user's orders newest first, filtered by f
func (s *Service) History(ctx context.Context, userID string, f Filter) (*HistoryResponse, error) {
	if userID == "" {
		return nil, apperror.ErrNotAuthenticated
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	orders, err := s.repo.ListOrders(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := Stats{Total: len(orders)}
	for _, o := range orders {
		switch o.Status {
		case OrderStatusProcessing:
			stats.Processing++
		case OrderStatusShipped:
			stats.Shipped++
		case OrderStatusDelivered:
			stats.Delivered++
		case OrderStatusCancelled:
			stats.Cancelled++
		}
	}

	cutoff := s.now().Add(-recentWindow)
	search := strings.ToLower(strings.TrimSpace(f.Search))

	filtered := make([]Order, 0, len(orders))
	for _, o := range orders {
		if f.Status != "" && f.Status != "all" && string(o.Status) != f.Status {
			continue
		}
		switch f.Period {
		case PeriodRecent:
			if o.CreatedAt.Before(cutoff) {
				continue
			}
		case PeriodOlder:
			if !o.CreatedAt.Before(cutoff) {
				continue
			}
		}
		if search != "" && !o.matches(search) {
			continue
		}
		filtered = append(filtered, o)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	return &HistoryResponse{Orders: filtered, Stats: stats}, nil
}

// Get retrieves a single order by number
func (s *Service) Get(ctx context.Context, userID, number string) (*Order, error) {
	if userID == "" {
		return nil, apperror.ErrNotAuthenticated
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, apperror.NotFound("order", number)
	}
	return s.repo.FindOrderByNumber(ctx, userID, number)
}

// Invoice renders the invoice PDF for one of the user's orders
func (s *Service) Invoice(ctx context.Context, userID, number string) ([]byte, error) {
	o, err := s.Get(ctx, userID, number)
	if err != nil {
		return nil, err
	}

	pdf, err := s.invoices.RenderInvoice(o)
	if err != nil {
		s.log.WithError(err).WithField("order_number", number).Error("Failed to render invoice")
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	return pdf, nil
}

func (f Filter) validate() error {
	if f.Status != "" && f.Status != "all" && !OrderStatus(f.Status).IsValid() {
		return apperror.NewValidationError(fmt.Sprintf("unknown status %q", f.Status), "status")
	}
	switch f.Period {
	case "", PeriodAll, PeriodRecent, PeriodOlder:
		return nil
	default:
		return apperror.NewValidationError(fmt.Sprintf("unknown period %q", f.Period), "period")
	}
}

func (o *Order) matches(search string) bool {
	if strings.Contains(strings.ToLower(o.OrderNumber), search) {
		return true
	}
	for _, it := range o.Items {
		if strings.Contains(strings.ToLower(it.Name), search) {
			return true
		}
	}
	return false
}
