// internal/domain/cart/entity.go
package cart

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one sku in the cart with its snapshot price and display data
type LineItem struct {
	SKU          string          `json:"sku"`
	DisplayName  string          `json:"display_name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ImageRef     string          `json:"image_ref"`
	Quantity     int             `json:"quantity"`
	IsPrime      bool            `json:"is_prime,omitempty"`
	Availability string          `json:"availability,omitempty"`
}

// LineTotal returns unit price times quantity
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Meta carries the display fields captured when an item is first added
type Meta struct {
	DisplayName  string
	ImageRef     string
	IsPrime      bool
	Availability string
}

// Store holds the line items of one shopper's cart.
// It is not safe for concurrent use; each session owns its own store.
type Store struct {
	items []LineItem
}

// NewStore returns a store holding items in the given order
func NewStore(items ...LineItem) *Store {
	s := &Store{}
	for _, it := range items {
		s.AddItem(it.SKU, it.Quantity, it.UnitPrice, Meta{
			DisplayName:  it.DisplayName,
			ImageRef:     it.ImageRef,
			IsPrime:      it.IsPrime,
			Availability: it.Availability,
		})
	}
	return s
}

// AddItem adds quantity of sku. An existing line keeps its price and
// display data and has its quantity increased. Quantities below 1 count as 1.
func (s *Store) AddItem(sku string, quantity int, price decimal.Decimal, meta Meta) {
	if quantity < 1 {
		quantity = 1
	}
	if i := s.indexOf(sku); i >= 0 {
		s.items[i].Quantity = addQuantity(s.items[i].Quantity, quantity)
		return
	}
	s.items = append(s.items, LineItem{
		SKU:          sku,
		DisplayName:  meta.DisplayName,
		UnitPrice:    price,
		ImageRef:     meta.ImageRef,
		Quantity:     quantity,
		IsPrime:      meta.IsPrime,
		Availability: meta.Availability,
	})
}

// SetQuantity sets the quantity of sku, clamped to at least 1.
// It never removes a line and reports false when sku is absent.
func (s *Store) SetQuantity(sku string, quantity int) bool {
	i := s.indexOf(sku)
	if i < 0 {
		return false
	}
	if quantity < 1 {
		quantity = 1
	}
	s.items[i].Quantity = quantity
	return true
}

// RemoveItem deletes sku; removing an absent sku is a no-op
func (s *Store) RemoveItem(sku string) {
	if i := s.indexOf(sku); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

// Clear empties the store
func (s *Store) Clear() {
	s.items = nil
}

// Items returns a copy of the line items in insertion order
func (s *Store) Items() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of distinct skus
func (s *Store) Len() int {
	return len(s.items)
}

// TotalQuantity returns the sum of all quantities
func (s *Store) TotalQuantity() int {
	n := 0
	for _, it := range s.items {
		n = addQuantity(n, it.Quantity)
	}
	return n
}

// addQuantity sums two non-negative quantities, saturating at math.MaxInt
func addQuantity(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// Subtotal returns the exact sum of every line total
func (s *Store) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (s *Store) indexOf(sku string) int {
	for i := range s.items {
		if s.items[i].SKU == sku {
			return i
		}
	}
	return -1
}

// SessionCart is the persisted form of a session's store
type SessionCart struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Store rebuilds the in-memory store
func (c *SessionCart) Store() *Store {
	return NewStore(c.Items...)
}
