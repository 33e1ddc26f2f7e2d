package checkout

import (
	"fmt"

	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/pkg/apperror"
)

// Stage is a step of the checkout flow
type Stage string

const (
	StageShippingInfo     Stage = "shipping_info"
	StagePaymentSelection Stage = "payment_selection"
	StageReview           Stage = "review"
)

var stages = []Stage{StageShippingInfo, StagePaymentSelection, StageReview}

// Flow tracks a shopper's progress through checkout and the data entered so far
type Flow struct {
	Stage         Stage                 `json:"stage"`
	Shipping      order.ShippingAddress `json:"shipping"`
	PaymentMethod order.PaymentMethod   `json:"payment_method"`
}

// NewFlow starts at shipping info with card payment selected
func NewFlow() *Flow {
	return &Flow{
		Stage:         StageShippingInfo,
		PaymentMethod: order.PaymentMethodCard,
	}
}

// Next advances one stage. Leaving shipping info requires a complete address.
func (f *Flow) Next() error {
	i := f.index()
	switch f.Stage {
	case StageShippingInfo:
		if missing := f.Shipping.Missing(); len(missing) > 0 {
			return apperror.NewValidationError("shipping information is incomplete", missing...)
		}
	case StagePaymentSelection:
		if f.PaymentMethod == "" {
			f.PaymentMethod = order.PaymentMethodCard
		}
	case StageReview:
		return apperror.NewValidationError("review is the final checkout step; place the order instead")
	default:
		return fmt.Errorf("unknown checkout stage %q", f.Stage)
	}
	f.Stage = stages[i+1]
	return nil
}

// Back returns to the previous stage, keeping all entered data.
// It is a no-op at the first stage.
func (f *Flow) Back() {
	if i := f.index(); i > 0 {
		f.Stage = stages[i-1]
	}
}

// Reset returns the flow to its initial state
func (f *Flow) Reset() {
	*f = *NewFlow()
}

// Step returns the 1-based position of the current stage
func (f *Flow) Step() int {
	return f.index() + 1
}

func (f *Flow) index() int {
	for i, s := range stages {
		if s == f.Stage {
			return i
		}
	}
	return 0
}
