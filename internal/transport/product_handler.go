package transport

import (
	"net/http"

	"veneto-api/internal/domain"
	"veneto-api/internal/logger"
	"veneto-api/internal/middleware"
	"veneto-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the catalogue
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. staffOnly guards the
// mutating ones.
func (h *ProductHandler) RegisterRoutes(r chi.Router, staffOnly func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListActive)
		r.Get("/category/{category}", h.ListByCategory)
		r.Get("/pizzas", h.ListPizzas)
		r.Get("/pizzas/{id}", h.GetPizza)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(staffOnly)
			r.Post("/", h.Create)
			r.Post("/pizzas", h.CreatePizza)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Deactivate)
		})
	})
}

// Create handles POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product request rejected", zap.Error(err))
		respondDecodeError(w, err)
		return
	}

	var (
		product *domain.Product
		err     error
	)
	switch category := domain.Category(req.Category); {
	case category == domain.CategoryPizza:
		product, err = domain.NewPizza(req.params(), req.Sizes)
	case len(req.Sizes) > 0:
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "sizes", Message: "only pizzas have sizes"},
		})
		return
	default:
		product, err = domain.NewProduct(req.params())
	}
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.create(w, r, product)
}

// CreatePizza handles POST /products/pizzas
func (h *ProductHandler) CreatePizza(w http.ResponseWriter, r *http.Request) {
	var req PizzaRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Pizza request rejected", zap.Error(err))
		respondDecodeError(w, err)
		return
	}

	pizza, err := req.toDomain()
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.create(w, r, pizza)
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request, product *domain.Product) {
	created, err := h.productService.Create(r.Context(), product)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, created)
}

// GetByID handles GET /products/{id}
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// GetPizza handles GET /products/pizzas/{id}; other categories are reported missing
func (h *ProductHandler) GetPizza(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if !product.IsPizza() {
		middleware.RespondWithError(w, http.StatusNotFound, "pizza "+id+" not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ListActive handles GET /products
func (h *ProductHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	p, errs := parsePage(r)
	if len(errs) > 0 {
		middleware.RespondWithValidationErrors(w, errs)
		return
	}

	products, err := h.productService.ListActive(r.Context(), p.Skip, p.Limit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, nonEmpty(products))
}

// ListByCategory handles GET /products/category/{category}. Pizzas have
// their own listing.
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if category == domain.CategoryPizza {
		middleware.RespondWithError(w, http.StatusBadRequest, "use /products/pizzas to list pizzas")
		return
	}

	h.listCategory(w, r, category)
}

// ListPizzas handles GET /products/pizzas
func (h *ProductHandler) ListPizzas(w http.ResponseWriter, r *http.Request) {
	h.listCategory(w, r, domain.CategoryPizza)
}

func (h *ProductHandler) listCategory(w http.ResponseWriter, r *http.Request, category domain.Category) {
	p, errs := parsePage(r)
	if len(errs) > 0 {
		middleware.RespondWithValidationErrors(w, errs)
		return
	}

	products, err := h.productService.ListByCategory(r.Context(), category, p.Skip, p.Limit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, nonEmpty(products))
}

// Update handles PATCH /products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProductPatch
	if err := middleware.DecodeJSON(r, &patch); err != nil {
		h.logger.Debug("Product patch rejected", zap.Error(err))
		respondDecodeError(w, err)
		return
	}
	if patch.IsEmpty() {
		middleware.RespondWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	product, err := h.productService.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Deactivate handles DELETE /products/{id}. The product is kept with active=false.
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.Deactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	logger.Info(r.Context(), h.logger, "Product removed from catalogue", zap.String("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}
