package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"veneto-api/internal/events"
	"veneto-api/internal/middleware"
	"veneto-api/internal/repository"
	"veneto-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, jwtSecret string) http.Handler {
	t.Helper()
	log := zap.NewNop()

	products := service.NewProductService(repository.NewMemoryProductRepository(), log)
	orders := service.NewOrderService(
		repository.NewMemoryOrderRepository(),
		events.NewOrderPublisher(events.NewNoopProducer(), "order_events"),
		log,
	)

	r := chi.NewRouter()
	staffOnly := middleware.StaffOnly(jwtSecret, log)
	NewProductHandler(products, log).RegisterRoutes(r, staffOnly)
	NewOrderHandler(orders, log).RegisterRoutes(r, staffOnly)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			ValidationErrors []middleware.ValidationError `json:"validation_errors"`
		} `json:"details"`
	} `json:"error"`
}

func (b errorBody) fields() []string {
	out := make([]string, len(b.Error.Details.ValidationErrors))
	for i, e := range b.Error.Details.ValidationErrors {
		out[i] = e.Field
	}
	return out
}

func pizzaBody(id string, sizes ...map[string]interface{}) map[string]interface{} {
	if sizes == nil {
		sizes = []map[string]interface{}{{"size_cm": 35, "price": 25}, {"size_cm": 45, "price": 35}}
	}
	return map[string]interface{}{"id": id, "name": "Calabresa", "price": 25, "sizes": sizes}
}

func orderBody(id string) map[string]interface{} {
	return map[string]interface{}{
		"id":             id,
		"customer_name":  "Ana",
		"customer_phone": "11911112222",
		"items":          []map[string]interface{}{{"product_id": "pizza_calabresa_001", "name": "Calabresa", "quantity": 1, "price": 25}},
		"total_price":    25,
	}
}

