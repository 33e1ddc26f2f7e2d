// internal/infrastructure/database/postgres/models.go
package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/user"
)

type userRecord struct {
	ID          string     `gorm:"type:varchar(36);primaryKey"`
	Name        string     `gorm:"not null"`
	Email       string     `gorm:"uniqueIndex;not null"`
	Password    string     `gorm:"not null"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (userRecord) TableName() string { return "users" }

type orderRecord struct {
	ID                uint              `gorm:"primaryKey"`
	UserID            string            `gorm:"type:varchar(36);index;not null"`
	OrderNumber       string            `gorm:"uniqueIndex;not null"`
	Items             []orderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal          decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	ShippingFee       decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	TaxAmount         decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	Total             decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	ItemCount         int
	Shipping          addressColumns `gorm:"embedded;embeddedPrefix:ship_"`
	PaymentMethod     string         `gorm:"type:varchar(20);not null"`
	Status            string         `gorm:"type:varchar(20);index;not null"`
	CreatedAt         time.Time
	EstimatedDelivery time.Time
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"index;not null"`
	SKU       string          `gorm:"not null"`
	Name      string          `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	Image     string
}

func (orderItemRecord) TableName() string { return "order_items" }

type addressColumns struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	State     string
	ZipCode   string
	Country   string
}

type savedItemRecord struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"type:varchar(36);uniqueIndex:idx_saved_items_user_sku;not null"`
	SKU       string `gorm:"uniqueIndex:idx_saved_items_user_sku;not null"`
	CreatedAt time.Time
}

func (savedItemRecord) TableName() string { return "saved_items" }

func newUserRecord(u *user.User) *userRecord {
	return &userRecord{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Password:    u.Password,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (r *userRecord) toUser() *user.User {
	return &user.User{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Password:    r.Password,
		LastLoginAt: r.LastLoginAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func newOrderRecord(userID string, o *order.Order) *orderRecord {
	r := &orderRecord{
		UserID:            userID,
		OrderNumber:       o.OrderNumber,
		Items:             make([]orderItemRecord, len(o.Items)),
		Subtotal:          o.Subtotal,
		ShippingFee:       o.ShippingFee,
		TaxAmount:         o.TaxAmount,
		Total:             o.Total,
		ItemCount:         o.ItemCount(),
		Shipping:          addressColumns(o.Shipping),
		PaymentMethod:     string(o.PaymentMethod),
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt,
		EstimatedDelivery: o.EstimatedDelivery,
	}
	for i, it := range o.Items {
		r.Items[i] = orderItemRecord{
			SKU:       it.SKU,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Image:     it.Image,
		}
	}
	return r
}

func (r *orderRecord) toOrder() *order.Order {
	o := &order.Order{
		OrderNumber:       r.OrderNumber,
		Items:             make([]order.LineItem, len(r.Items)),
		Subtotal:          r.Subtotal,
		ShippingFee:       r.ShippingFee,
		TaxAmount:         r.TaxAmount,
		Total:             r.Total,
		Shipping:          order.ShippingAddress(r.Shipping),
		PaymentMethod:     order.PaymentMethod(r.PaymentMethod),
		Status:            order.OrderStatus(r.Status),
		CreatedAt:         r.CreatedAt.UTC(),
		EstimatedDelivery: r.EstimatedDelivery.UTC(),
	}
	for i, it := range r.Items {
		o.Items[i] = order.LineItem{
			SKU:       it.SKU,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Image:     it.Image,
		}
	}
	return o
}
