package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userDocument is the stored shape of a user, with orders and saved skus embedded
type userDocument struct {
	ID            string          `bson:"_id"`
	Name          string          `bson:"name"`
	Email         string          `bson:"email"`
	Password      string          `bson:"password"`
	Orders        []orderDocument `bson:"orders"`
	SavedForLater []string        `bson:"savedForLater"`
	LastLoginAt   *time.Time      `bson:"lastLoginAt,omitempty"`
	CreatedAt     time.Time       `bson:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt"`
}

type orderDocument struct {
	OrderNumber       string               `bson:"orderNumber"`
	Items             []orderItemDocument  `bson:"items"`
	Subtotal          primitive.Decimal128 `bson:"subtotal"`
	ShippingFee       primitive.Decimal128 `bson:"shippingFee"`
	TaxAmount         primitive.Decimal128 `bson:"taxAmount"`
	Total             primitive.Decimal128 `bson:"total"`
	ItemCount         int                  `bson:"itemCount"`
	ShippingAddress   addressDocument      `bson:"shippingAddress"`
	PaymentMethod     string               `bson:"paymentMethod"`
	Status            string               `bson:"status"`
	CreatedAt         time.Time            `bson:"createdAt"`
	EstimatedDelivery time.Time            `bson:"estimatedDelivery"`
}

type orderItemDocument struct {
	SKU      string               `bson:"sku"`
	Name     string               `bson:"name"`
	Price    primitive.Decimal128 `bson:"price"`
	Quantity int                  `bson:"quantity"`
	Image    string               `bson:"image"`
}

type addressDocument struct {
	FirstName string `bson:"firstName"`
	LastName  string `bson:"lastName"`
	Email     string `bson:"email"`
	Phone     string `bson:"phone,omitempty"`
	Address   string `bson:"address"`
	City      string `bson:"city"`
	State     string `bson:"state"`
	ZipCode   string `bson:"zipCode"`
	Country   string `bson:"country"`
}

func newUserDocument(u *user.User) userDocument {
	return userDocument{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Password:      u.Password,
		Orders:        []orderDocument{},
		SavedForLater: []string{},
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (d userDocument) toUser() *user.User {
	return &user.User{
		ID:          d.ID,
		Name:        d.Name,
		Email:       d.Email,
		Password:    d.Password,
		LastLoginAt: d.LastLoginAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func newOrderDocument(o *order.Order) (orderDocument, error) {
	doc := orderDocument{
		OrderNumber:       o.OrderNumber,
		Items:             make([]orderItemDocument, len(o.Items)),
		ItemCount:         o.ItemCount(),
		PaymentMethod:     string(o.PaymentMethod),
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt,
		EstimatedDelivery: o.EstimatedDelivery,
		ShippingAddress: addressDocument{
			FirstName: o.Shipping.FirstName,
			LastName:  o.Shipping.LastName,
			Email:     o.Shipping.Email,
			Phone:     o.Shipping.Phone,
			Address:   o.Shipping.Address,
			City:      o.Shipping.City,
			State:     o.Shipping.State,
			ZipCode:   o.Shipping.ZipCode,
			Country:   o.Shipping.Country,
		},
	}

	var err error
	amounts := []struct {
		dst *primitive.Decimal128
		src decimal.Decimal
	}{
		{&doc.Subtotal, o.Subtotal},
		{&doc.ShippingFee, o.ShippingFee},
		{&doc.TaxAmount, o.TaxAmount},
		{&doc.Total, o.Total},
	}
	for _, a := range amounts {
		if *a.dst, err = toDecimal128(a.src); err != nil {
			return orderDocument{}, err
		}
	}

	for i, it := range o.Items {
		price, err := toDecimal128(it.UnitPrice)
		if err != nil {
			return orderDocument{}, err
		}
		doc.Items[i] = orderItemDocument{
			SKU:      it.SKU,
			Name:     it.Name,
			Price:    price,
			Quantity: it.Quantity,
			Image:    it.Image,
		}
	}
	return doc, nil
}

func (d orderDocument) toOrder() (*order.Order, error) {
	o := &order.Order{
		OrderNumber:       d.OrderNumber,
		Items:             make([]order.LineItem, len(d.Items)),
		PaymentMethod:     order.PaymentMethod(d.PaymentMethod),
		Status:            order.OrderStatus(d.Status),
		CreatedAt:         d.CreatedAt.UTC(),
		EstimatedDelivery: d.EstimatedDelivery.UTC(),
		Shipping: order.ShippingAddress{
			FirstName: d.ShippingAddress.FirstName,
			LastName:  d.ShippingAddress.LastName,
			Email:     d.ShippingAddress.Email,
			Phone:     d.ShippingAddress.Phone,
			Address:   d.ShippingAddress.Address,
			City:      d.ShippingAddress.City,
			State:     d.ShippingAddress.State,
			ZipCode:   d.ShippingAddress.ZipCode,
			Country:   d.ShippingAddress.Country,
		},
	}

	var err error
	amounts := []struct {
		dst *decimal.Decimal
		src primitive.Decimal128
	}{
		{&o.Subtotal, d.Subtotal},
		{&o.ShippingFee, d.ShippingFee},
		{&o.TaxAmount, d.TaxAmount},
		{&o.Total, d.Total},
	}
	for _, a := range amounts {
		if *a.dst, err = fromDecimal128(a.src); err != nil {
			return nil, fmt.Errorf("order %s: %w", d.OrderNumber, err)
		}
	}

	for i, it := range d.Items {
		price, err := fromDecimal128(it.Price)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", d.OrderNumber, err)
		}
		o.Items[i] = order.LineItem{
			SKU:       it.SKU,
			Name:      it.Name,
			UnitPrice: price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		}
	}
	return o, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to encode amount %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode amount %s: %w", v, err)
	}
	return d, nil
}
