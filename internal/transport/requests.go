package transport

import (
	"veneto-api/internal/domain"
)

// ProductRequest is the body of POST /products
type ProductRequest struct {
	ID          string             `json:"id" validate:"required"`
	Name        string             `json:"name" validate:"required"`
	Category    string             `json:"category" validate:"required"`
	Description string             `json:"description"`
	Price       float64            `json:"price" validate:"required"`
	Active      *bool              `json:"active"`
	ImageURL    string             `json:"image_url"`
	Sizes       []domain.PizzaSize `json:"sizes"`
}

func (req ProductRequest) params() domain.ProductParams {
	return domain.ProductParams{
		ID:          req.ID,
		Name:        req.Name,
		Category:    domain.Category(req.Category),
		Description: req.Description,
		Price:       req.Price,
		Active:      req.Active,
		ImageURL:    req.ImageURL,
	}
}

// PizzaRequest is the body of POST /products/pizzas. The category is implied.
type PizzaRequest struct {
	ID          string             `json:"id" validate:"required"`
	Name        string             `json:"name" validate:"required"`
	Description string             `json:"description"`
	Price       float64            `json:"price" validate:"required"`
	Active      *bool              `json:"active"`
	ImageURL    string             `json:"image_url"`
	Sizes       []domain.PizzaSize `json:"sizes"`
}

func (req PizzaRequest) toDomain() (*domain.Product, error) {
	return domain.NewPizza(domain.ProductParams{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Active:      req.Active,
		ImageURL:    req.ImageURL,
	}, req.Sizes)
}

// OrderItemRequest is one line of an OrderRequest
type OrderItemRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	Price     float64 `json:"price" validate:"gt=0"`
	Notes     string  `json:"notes"`
}

// OrderRequest is the body of POST /orders
type OrderRequest struct {
	ID              string             `json:"id" validate:"required"`
	CustomerName    string             `json:"customer_name" validate:"required"`
	CustomerPhone   string             `json:"customer_phone" validate:"required"`
	CustomerAddress string             `json:"customer_address"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalPrice      float64            `json:"total_price" validate:"gt=0"`
	DeliveryType    string             `json:"delivery_type"`
	PaymentMethod   string             `json:"payment_method"`
	Notes           string             `json:"notes"`
}

func (req OrderRequest) toDomain() (*domain.Order, error) {
	items := make([]domain.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Notes:     item.Notes,
		}
	}

	return domain.NewOrder(domain.OrderParams{
		ID:              req.ID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Items:           items,
		TotalPrice:      req.TotalPrice,
		DeliveryType:    req.DeliveryType,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
}
