package transport

import (
	"net/http"
	"strconv"

	"veneto-api/internal/domain"
	"veneto-api/internal/middleware"
	"veneto-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes. Placing an order is public;
// status changes need staff.
func (h *OrderHandler) RegisterRoutes(r chi.Router, staffOnly func(http.Handler) http.Handler) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/status/{status}", h.ListByStatus)
		r.Get("/{id}", h.GetByID)

		r.With(staffOnly).Patch("/{id}/status/{newStatus}", h.UpdateStatus)
	})
}

// Create handles POST /orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order request rejected", zap.Error(err))
		respondDecodeError(w, err)
		return
	}

	order, err := req.toDomain()
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	created, err := h.orderService.Create(r.Context(), order)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, created)
}

// GetByID handles GET /orders/{id}
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// List handles GET /orders. Without skip and limit every order is returned.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	p, errs := parsePage(r)
	if len(errs) > 0 {
		middleware.RespondWithValidationErrors(w, errs)
		return
	}

	var (
		orders []*domain.Order
		err    error
	)
	if p.Set {
		orders, err = h.orderService.ListAllPage(r.Context(), p.Skip, p.Limit)
	} else {
		orders, err = h.orderService.ListAll(r.Context())
	}
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, nonEmpty(orders))
}

// ListByStatus handles GET /orders/status/{status}
func (h *OrderHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := domain.ParseOrderStatus(chi.URLParam(r, "status"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, errs := parsePage(r)
	if len(errs) > 0 {
		middleware.RespondWithValidationErrors(w, errs)
		return
	}

	var orders []*domain.Order
	if p.Set {
		orders, err = h.orderService.ListByStatusPage(r.Context(), status, p.Skip, p.Limit)
	} else {
		orders, err = h.orderService.ListByStatus(r.Context(), status)
	}
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, nonEmpty(orders))
}

// UpdateStatus handles PATCH /orders/{id}/status/{newStatus}. Any status may
// be set unless strict=true, which enforces the transition table.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	status, err := domain.ParseOrderStatus(chi.URLParam(r, "newStatus"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	strict := false
	if raw := r.URL.Query().Get("strict"); raw != "" {
		if strict, err = strconv.ParseBool(raw); err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "strict must be a boolean")
			return
		}
	}

	id := chi.URLParam(r, "id")
	var order *domain.Order
	if strict {
		order, err = h.orderService.AdvanceStatus(r.Context(), id, status)
	} else {
		order, err = h.orderService.UpdateStatus(r.Context(), id, status)
	}
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}
