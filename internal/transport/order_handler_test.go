package transport

import (
	"net/http"
	"strconv"
	"testing"

	"veneto-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(i int) string { return strconv.Itoa(i) }

func TestOrderHandler_CreateAndGet(t *testing.T) {
	h := newTestRouter(t, "")

	w := do(t, h, http.MethodPost, "/orders", orderBody("ORD-1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[domain.Order](t, w)
	assert.Equal(t, domain.StatusRecebido, created.Status)
	assert.Equal(t, domain.DeliveryTypeDelivery, created.DeliveryType)
	assert.Equal(t, domain.PaymentMethodCash, created.PaymentMethod)
	assert.False(t, created.CreatedAt.IsZero())

	w = do(t, h, http.MethodGet, "/orders/ORD-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ORD-1", decode[domain.Order](t, w).ID)

	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/orders", orderBody("ORD-1")).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/orders/ORD-404", nil).Code)
}

func TestOrderHandler_CreateRejections(t *testing.T) {
	h := newTestRouter(t, "")

	noItems := orderBody("ORD-2")
	noItems["items"] = []interface{}{}
	zeroQuantity := orderBody("ORD-3")
	zeroQuantity["items"] = []map[string]interface{}{{"product_id": "p", "name": "x", "quantity": 0, "price": 5}}
	noTotal := orderBody("ORD-4")
	delete(noTotal, "total_price")

	for name, tt := range map[string]struct {
		body  interface{}
		field string
	}{
		"no items":      {noItems, "items"},
		"zero quantity": {zeroQuantity, "items[0].quantity"},
		"no total":      {noTotal, "total_price"},
	} {
		t.Run(name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/orders", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
			assert.Contains(t, decode[errorBody](t, w).fields(), tt.field)
		})
	}
}

func TestOrderHandler_Listings(t *testing.T) {
	h := newTestRouter(t, "")
	for _, id := range []string{"ORD-1", "ORD-2", "ORD-3"} {
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/orders", orderBody(id)).Code)
	}
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPatch, "/orders/ORD-2/status/pronto", nil).Code)

	w := do(t, h, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Order](t, w), 3)

	w = do(t, h, http.MethodGet, "/orders?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Order](t, w), 2)

	w = do(t, h, http.MethodGet, "/orders/status/pronto", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ready := decode[[]domain.Order](t, w)
	require.Len(t, ready, 1)
	assert.Equal(t, "ORD-2", ready[0].ID)

	w = do(t, h, http.MethodGet, "/orders/status/recebido?skip=0&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Order](t, w), 1)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/orders/status/perdido", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodGet, "/orders?limit=0", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodGet, "/orders?skip=-1", nil).Code)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	h := newTestRouter(t, "")
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/orders", orderBody("ORD-1")).Code)

	w := do(t, h, http.MethodPatch, "/orders/ORD-1/status/entregue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusEntregue, decode[domain.Order](t, w).Status)

	// unrestricted updates may move backwards
	w = do(t, h, http.MethodPatch, "/orders/ORD-1/status/recebido", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusRecebido, decode[domain.Order](t, w).Status)

	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPatch, "/orders/ORD-1/status/entregue?strict=true", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPatch, "/orders/ORD-1/status/em_preparo?strict=true", nil).Code)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPatch, "/orders/ORD-1/status/voando", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPatch, "/orders/ORD-1/status/pronto?strict=maybe", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPatch, "/orders/ORD-404/status/pronto", nil).Code)
}

func TestOrderHandler_PlacingOrdersIsPublic(t *testing.T) {
	h := newTestRouter(t, "secret")

	assert.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/orders", orderBody("ORD-1")).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPatch, "/orders/ORD-1/status/pronto", nil).Code)
}
