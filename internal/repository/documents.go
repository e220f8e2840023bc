package repository

import (
	"time"

	"veneto-api/internal/domain"
)

// productDocument is the stored shape of a product in the products collection.
// Sizes is only written for pizzas.
type productDocument struct {
	ID          string         `bson:"_id"`
	Name        string         `bson:"name"`
	Category    string         `bson:"category"`
	Description string         `bson:"description,omitempty"`
	Price       float64        `bson:"price"`
	Active      bool           `bson:"active"`
	ImageURL    string         `bson:"image_url,omitempty"`
	Sizes       []sizeDocument `bson:"sizes,omitempty"`
	UpdatedAt   time.Time      `bson:"updated_at"`
}

type sizeDocument struct {
	SizeCM int     `bson:"size_cm"`
	Price  float64 `bson:"price"`
}

type orderDocument struct {
	ID              string              `bson:"_id"`
	CustomerName    string              `bson:"customer_name"`
	CustomerPhone   string              `bson:"customer_phone"`
	CustomerAddress string              `bson:"customer_address,omitempty"`
	Items           []orderItemDocument `bson:"items"`
	TotalPrice      float64             `bson:"total_price"`
	Status          string              `bson:"status"`
	DeliveryType    string              `bson:"delivery_type"`
	PaymentMethod   string              `bson:"payment_method"`
	CreatedAt       time.Time           `bson:"created_at"`
	UpdatedAt       time.Time           `bson:"updated_at"`
	Notes           string              `bson:"notes,omitempty"`
}

type orderItemDocument struct {
	ProductID string  `bson:"product_id"`
	Name      string  `bson:"name"`
	Quantity  int     `bson:"quantity"`
	Price     float64 `bson:"price"`
	Notes     string  `bson:"notes,omitempty"`
}

func newProductDocument(p *domain.Product, now time.Time) productDocument {
	doc := productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Category:    string(p.Category),
		Description: p.Description,
		Price:       p.Price,
		Active:      p.Active,
		ImageURL:    p.ImageURL,
		UpdatedAt:   now,
	}

	if p.Kind() == domain.KindPizza {
		doc.Sizes = make([]sizeDocument, len(p.Sizes))
		for i, s := range p.Sizes {
			doc.Sizes[i] = sizeDocument{SizeCM: s.SizeCM, Price: s.Price}
		}
	}

	return doc
}

// toDomain switches on the category discriminant, never on whether sizes are present
func (d productDocument) toDomain() *domain.Product {
	p := &domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Category:    domain.Category(d.Category),
		Description: d.Description,
		Price:       d.Price,
		Active:      d.Active,
		ImageURL:    d.ImageURL,
	}

	switch p.Kind() {
	case domain.KindPizza:
		p.Sizes = make([]domain.PizzaSize, len(d.Sizes))
		for i, s := range d.Sizes {
			p.Sizes[i] = domain.PizzaSize{SizeCM: s.SizeCM, Price: s.Price}
		}
	case domain.KindSimple:
	}

	return p
}

func newOrderDocument(o *domain.Order) orderDocument {
	doc := orderDocument{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Items:           make([]orderItemDocument, len(o.Items)),
		TotalPrice:      o.TotalPrice,
		Status:          string(o.Status),
		DeliveryType:    o.DeliveryType,
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       domain.Timestamp(o.CreatedAt),
		UpdatedAt:       domain.Timestamp(o.UpdatedAt),
		Notes:           o.Notes,
	}

	for i, item := range o.Items {
		doc.Items[i] = orderItemDocument{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Notes:     item.Notes,
		}
	}

	return doc
}

func (d orderDocument) toDomain() *domain.Order {
	o := &domain.Order{
		ID:              d.ID,
		CustomerName:    d.CustomerName,
		CustomerPhone:   d.CustomerPhone,
		CustomerAddress: d.CustomerAddress,
		Items:           make([]domain.OrderItem, len(d.Items)),
		TotalPrice:      d.TotalPrice,
		Status:          domain.OrderStatus(d.Status),
		DeliveryType:    d.DeliveryType,
		PaymentMethod:   d.PaymentMethod,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
		Notes:           d.Notes,
	}

	for i, item := range d.Items {
		o.Items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Notes:     item.Notes,
		}
	}

	return o
}
