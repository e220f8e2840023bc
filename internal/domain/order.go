package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DeliveryTypeDelivery = "delivery"
	DeliveryTypePickup   = "retirada"

	PaymentMethodCash = "dinheiro"
	PaymentMethodCard = "cartao"
	PaymentMethodPix  = "pix"
)

// OrderItem is a line of an order. Name and Price are copied from the
// product when the order is placed.
type OrderItem struct {
	ProductID string  `json:"product_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	Price     float64 `json:"price" validate:"gt=0"`
	Notes     string  `json:"notes,omitempty"`
}

// Order represents a customer purchase
type Order struct {
	ID              string      `json:"id" validate:"required"`
	CustomerName    string      `json:"customer_name" validate:"required,max=100"`
	CustomerPhone   string      `json:"customer_phone" validate:"required"`
	CustomerAddress string      `json:"customer_address,omitempty"`
	Items           []OrderItem `json:"items" validate:"min=1,dive"`
	TotalPrice      float64     `json:"total_price" validate:"gt=0"`
	Status          OrderStatus `json:"status" validate:"order_status"`
	DeliveryType    string      `json:"delivery_type"`
	PaymentMethod   string      `json:"payment_method"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Notes           string      `json:"notes,omitempty"`
}

// OrderParams holds the caller-supplied fields of a new order
type OrderParams struct {
	ID              string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Items           []OrderItem
	TotalPrice      float64
	DeliveryType    string
	PaymentMethod   string
	Notes           string
}

// TimestampPrecision is the finest time resolution every store keeps.
// Mongo stores milliseconds.
const TimestampPrecision = time.Millisecond

// Timestamp returns t in UTC truncated to TimestampPrecision
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(TimestampPrecision)
}

// NewOrder builds and validates an order in status recebido.
// TotalPrice is kept as given and is not compared with the items.
func NewOrder(params OrderParams) (*Order, error) {
	now := Timestamp(time.Now())

	o := &Order{
		ID:              strings.TrimSpace(params.ID),
		CustomerName:    params.CustomerName,
		CustomerPhone:   params.CustomerPhone,
		CustomerAddress: params.CustomerAddress,
		Items:           make([]OrderItem, len(params.Items)),
		TotalPrice:      RoundPrice(params.TotalPrice),
		Status:          StatusRecebido,
		DeliveryType:    params.DeliveryType,
		PaymentMethod:   params.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
		Notes:           params.Notes,
	}
	if o.DeliveryType == "" {
		o.DeliveryType = DeliveryTypeDelivery
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = PaymentMethodCash
	}

	for i, item := range params.Items {
		item.Price = RoundPrice(item.Price)
		o.Items[i] = item
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks every field invariant of the order and its items
func (o *Order) Validate() error {
	verr := &ValidationError{}
	validateStruct(o, verr)
	return verr.orNil()
}

// ItemsTotal sums quantity * price over the items. It is informational only:
// the order total is never recomputed from it.
func (o *Order) ItemsTotal() float64 {
	total := decimal.Zero
	for _, item := range o.Items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	f, _ := total.Round(2).Float64()
	return f
}

// Clone returns a deep copy of the order
func (o *Order) Clone() *Order {
	c := *o
	if o.Items != nil {
		c.Items = append([]OrderItem(nil), o.Items...)
	}
	return &c
}
