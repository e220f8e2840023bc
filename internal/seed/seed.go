package seed

import (
	"context"
	"errors"
	"fmt"

	"veneto-api/internal/domain"
	"veneto-api/internal/logger"
	"veneto-api/internal/repository"
	"veneto-api/internal/service"

	"go.uber.org/zap"
)

type productSeed struct {
	params domain.ProductParams
	sizes  []domain.PizzaSize
}

func pizzaSizes(base float64) []domain.PizzaSize {
	return []domain.PizzaSize{
		{SizeCM: 35, Price: base},
		{SizeCM: 45, Price: base + 10},
		{SizeCM: 55, Price: base + 20},
	}
}

var catalogue = []productSeed{
	{params: domain.ProductParams{ID: "pizza_calabresa_001", Name: "Calabresa", Description: "Calabresa com queijo derretido", Price: 25, ImageURL: "https://example.com/calabresa.jpg"}, sizes: pizzaSizes(25)},
	{params: domain.ProductParams{ID: "pizza_mussarela_001", Name: "Mussarela", Description: "Mussarela fresca com tomate", Price: 20, ImageURL: "https://example.com/mussarela.jpg"}, sizes: pizzaSizes(20)},
	{params: domain.ProductParams{ID: "pizza_portuguesa_001", Name: "Portuguesa", Description: "Presunto, ovo, cebola e azeitona", Price: 28, ImageURL: "https://example.com/portuguesa.jpg"}, sizes: pizzaSizes(28)},
	{params: domain.ProductParams{ID: "quentinha_frango_001", Name: "Frango com Arroz", Category: domain.CategoryQuentinha, Description: "Frango grelhado com arroz integral", Price: 15, ImageURL: "https://example.com/frango.jpg"}},
	{params: domain.ProductParams{ID: "quentinha_carne_001", Name: "Carne com Batata", Category: domain.CategoryQuentinha, Description: "Carne assada com batata doce", Price: 18, ImageURL: "https://example.com/carne.jpg"}},
	{params: domain.ProductParams{ID: "bebida_refri_2l", Name: "Refrigerante 2L", Category: domain.CategoryBebida, Description: "Refrigerante 2 litros", Price: 8.5, ImageURL: "https://example.com/refri.jpg"}},
	{params: domain.ProductParams{ID: "bebida_suco_500ml", Name: "Suco Natural 500ml", Category: domain.CategoryBebida, Description: "Suco natural de frutas", Price: 6, ImageURL: "https://example.com/suco.jpg"}},
	{params: domain.ProductParams{ID: "esfiha_carne_001", Name: "Esfiha de Carne", Category: domain.CategoryEsfiha, Description: "Esfiha recheada com carne", Price: 5, ImageURL: "https://example.com/esfiha_carne.jpg"}},
	{params: domain.ProductParams{ID: "esfiha_queijo_001", Name: "Esfiha de Queijo", Category: domain.CategoryEsfiha, Description: "Esfiha recheada com queijo derretido", Price: 4.5, ImageURL: "https://example.com/esfiha_queijo.jpg"}},
}

var sampleOrders = []domain.OrderParams{
	{
		ID:              "order_20250101_001",
		CustomerName:    "Maria Santos",
		CustomerPhone:   "(11) 99999-8888",
		CustomerAddress: "Av. Principal, 456, São Paulo, SP",
		Items: []domain.OrderItem{
			{ProductID: "pizza_calabresa_001", Name: "Calabresa", Quantity: 1, Price: 35, Notes: "Bem passada"},
			{ProductID: "bebida_refri_2l", Name: "Refrigerante 2L", Quantity: 2, Price: 8.5},
			{ProductID: "esfiha_carne_001", Name: "Esfiha de Carne", Quantity: 4, Price: 5},
		},
		TotalPrice:    85.5,
		DeliveryType:  domain.DeliveryTypeDelivery,
		PaymentMethod: domain.PaymentMethodCash,
		Notes:         "Sem cebola na pizza",
	},
	{
		ID:            "order_20250101_002",
		CustomerName:  "João Lima",
		CustomerPhone: "(11) 98888-7777",
		Items: []domain.OrderItem{
			{ProductID: "quentinha_frango_001", Name: "Frango com Arroz", Quantity: 2, Price: 15},
			{ProductID: "bebida_suco_500ml", Name: "Suco Natural 500ml", Quantity: 2, Price: 6},
		},
		TotalPrice:    42,
		DeliveryType:  domain.DeliveryTypePickup,
		PaymentMethod: domain.PaymentMethodPix,
	},
}

// Result counts what a Run inserted and what already existed
type Result struct {
	Products int
	Orders   int
	Skipped  int
}

// Run inserts the catalogue and the sample orders through the services, so
// every record passes the same validation as an API call. Records that
// already exist are skipped, which makes Run safe to repeat.
func Run(ctx context.Context, products service.ProductService, orders service.OrderService, log *zap.Logger) (Result, error) {
	var res Result

	for _, s := range catalogue {
		var (
			p   *domain.Product
			err error
		)
		if s.sizes != nil {
			p, err = domain.NewPizza(s.params, s.sizes)
		} else {
			p, err = domain.NewProduct(s.params)
		}
		if err != nil {
			return res, fmt.Errorf("seed product %s: %w", s.params.ID, err)
		}

		if _, err := products.Create(ctx, p); err != nil {
			if errors.Is(err, service.ErrConflict) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("seed product %s: %w", p.ID, err)
		}
		res.Products++
	}

	for _, params := range sampleOrders {
		o, err := domain.NewOrder(params)
		if err != nil {
			return res, fmt.Errorf("seed order %s: %w", params.ID, err)
		}

		if _, err := orders.Create(ctx, o); err != nil {
			if errors.Is(err, service.ErrConflict) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("seed order %s: %w", o.ID, err)
		}
		res.Orders++
	}

	logger.Info(ctx, log, "Seed complete",
		zap.Int("products", res.Products),
		zap.Int("orders", res.Orders),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// Counts holds the number of active products per category and the number of orders
type Counts struct {
	Categories map[domain.Category]int
	Orders     int
}

// Check reads the stored data back and counts it
func Check(ctx context.Context, products repository.ProductRepository, orders repository.OrderRepository) (Counts, error) {
	counts := Counts{Categories: make(map[domain.Category]int, len(domain.Categories))}

	for _, c := range domain.Categories {
		listed, err := products.ListByCategory(ctx, c, 0, 0)
		if err != nil {
			return counts, fmt.Errorf("count %s: %w", c, err)
		}
		counts.Categories[c] = len(listed)
	}

	all, err := orders.ListAll(ctx, 0, 0)
	if err != nil {
		return counts, fmt.Errorf("count orders: %w", err)
	}
	counts.Orders = len(all)

	return counts, nil
}
