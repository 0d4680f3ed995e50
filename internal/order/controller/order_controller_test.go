package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"frontdash/internal/domain"
	"frontdash/internal/dto"
	"frontdash/internal/order/ledger"
	"frontdash/internal/order/pricing"
	"frontdash/internal/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, *ledger.Ledger) {
	t.Helper()

	l := ledger.New(&testutil.SequenceIDs{}, pricing.Default(), nil, zap.NewNop())
	require.NoError(t, l.Seed(testutil.SeedOrders()...))

	ctrl := NewOrderController(l, pricing.Default(), nil, zap.NewNop())
	r := chi.NewRouter()
	r.Mount("/orders", ctrl.Routes())
	r.Post("/pricing/quote", ctrl.Quote)
	return r, l
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func validCreateRequest() dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		RestaurantID:   "bella-trattoria",
		RestaurantName: "Bella Trattoria",
		Contact:        domain.Contact{Name: "Malik Johnson", Phone: "3125552098", Email: "malik.johnson@example.com"},
		Delivery:       domain.Address{Building: "1846", Street: "W Maple St", City: "Chicago", State: "IL"},
		Items: []dto.OrderItemRequest{
			{ID: "margherita-pizza", Name: "Margherita Pizza", Quantity: 1, Price: 16},
			{ID: "caesar-salad", Name: "Caesar Salad", Quantity: 1, Price: 13},
		},
		Payment: dto.PaymentRequest{CardNumber: "4242424242424242"},
	}
}

func TestCreateOrder_Success(t *testing.T) {
	h, l := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/orders", validCreateRequest())

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, "FD-0001", resp.Order.ID)
	assert.Equal(t, domain.StatusNew, resp.Order.Status)
	assert.Equal(t, "New", resp.Order.StatusLabel)
	assert.Equal(t, domain.Charges{Subtotal: 29, Tax: 2.39, Fees: 3.5, Total: 34.89}, resp.Order.Charges)
	assert.Equal(t, "4242", resp.Order.Payment.Last4)
	assert.Equal(t, 4, l.Len())

	latest, ok := l.LatestOrder()
	require.True(t, ok)
	assert.Equal(t, "FD-0001", latest.ID)
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/orders", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestCreateOrder_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.CreateOrderRequest)
		field  string
	}{
		{"missing restaurant", func(r *dto.CreateOrderRequest) { r.RestaurantID = "" }, "restaurantId"},
		{"missing contact email", func(r *dto.CreateOrderRequest) { r.Contact.Email = "" }, "contact.email"},
		{"missing delivery street", func(r *dto.CreateOrderRequest) { r.Delivery.Street = "" }, "delivery.street"},
		{"empty items", func(r *dto.CreateOrderRequest) { r.Items = nil }, "items"},
		{"zero quantity", func(r *dto.CreateOrderRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"negative price", func(r *dto.CreateOrderRequest) { r.Items[1].Price = -1 }, "items[1].price"},
		{"missing payment", func(r *dto.CreateOrderRequest) { r.Payment = dto.PaymentRequest{} }, "payment"},
		{"negative tip", func(r *dto.CreateOrderRequest) { r.Tip = -2 }, "tip"},
		{"negative financials", func(r *dto.CreateOrderRequest) { r.Financials = &domain.Charges{Total: -1} }, "financials"},
		{"price too large", func(r *dto.CreateOrderRequest) { r.Items[0].Price = 1.7e308 }, "items[0].price"},
		{"line total overflows", func(r *dto.CreateOrderRequest) {
			r.Items[0].Price = 1e305
			r.Items[0].Quantity = 10000
		}, "items[0].price"},
		{"price above cap", func(r *dto.CreateOrderRequest) { r.Items[1].Price = pricing.MaxItemPrice + 1 }, "items[1].price"},
		{"huge financials", func(r *dto.CreateOrderRequest) { r.Financials = &domain.Charges{Subtotal: 1e300, Total: 1e300} }, "financials"},
		{"huge tip", func(r *dto.CreateOrderRequest) { r.Tip = 1e300 }, "tip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, l := newTestRouter(t)
			req := validCreateRequest()
			tt.mutate(&req)

			rec := do(t, h, http.MethodPost, "/orders", req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp validationErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			fields := make([]string, 0, len(resp.Details))
			for _, d := range resp.Details {
				fields = append(fields, d.Field)
			}
			assert.Contains(t, fields, tt.field)
			assert.Equal(t, 3, l.Len())
		})
	}
}

func TestListOrders(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/orders", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.OrderListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Count)
	assert.Equal(t, "FD-2451", resp.Orders[0].ID)
	assert.Equal(t, "FD-2445", resp.Orders[2].ID)
}

func TestListOrders_ByStatus(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/orders?status=inProgress", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.OrderListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "FD-2448", resp.Orders[0].ID)
	assert.Equal(t, "In-Progress", resp.Orders[0].StatusLabel)
}

func TestListOrders_EmptyStatusReturnsEmptyArray(t *testing.T) {
	h, l := newTestRouter(t)
	_, err := l.RecordOrderProgression(context.Background(), "FD-2451")
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/orders?status=new", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"orders":[]`)
}

func TestListOrders_InvalidStatus(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/orders?status=shipped", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/orders/FD-2448", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Jamie Ortiz", resp.Order.Customer.Name)
}

func TestGetOrder_NotFound(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/orders/FD-9999", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Code)
	assert.Equal(t, "FD-9999", resp.OrderID)
}

func TestGetOrderSummary(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/orders/FD-2451/summary", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	body := rec.Body.String()
	assert.Contains(t, body, "Restaurant: Bella Trattoria")
	assert.Contains(t, body, "- Margherita Pizza x1 ($16.00)")
	assert.Contains(t, body, "Total: $20.82")
}

func TestLatestOrder(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/orders/latest", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/orders", validCreateRequest())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/orders/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"FD-0001"`)

	rec = do(t, h, http.MethodDelete, "/orders/latest", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/orders/latest", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPut, "/orders/FD-2451/status", dto.UpdateStatusRequest{Status: domain.StatusCompleted})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StatusCompleted, resp.Order.Status)
	assert.Len(t, resp.Order.Timeline, 2)
}

func TestUpdateOrderStatus_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     any
		expected int
	}{
		{"unknown order", "/orders/FD-0000/status", dto.UpdateStatusRequest{Status: domain.StatusCompleted}, http.StatusNotFound},
		{"unknown status", "/orders/FD-2451/status", dto.UpdateStatusRequest{Status: "cancelled"}, http.StatusBadRequest},
		{"backwards", "/orders/FD-2445/status", dto.UpdateStatusRequest{Status: domain.StatusNew}, http.StatusConflict},
		{"bad body", "/orders/FD-2451/status", "[", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestRouter(t)
			rec := do(t, h, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestRecordOrderProgression(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/orders/FD-2451/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"inProgress"`)

	rec = do(t, h, http.MethodPost, "/orders/FD-2451/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)

	rec = do(t, h, http.MethodPost, "/orders/FD-2451/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)
}

func TestQuote(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/pricing/quote", dto.QuoteRequest{
		Items: []dto.OrderItemRequest{{ID: "a", Quantity: 2, Price: 5}, {ID: "b", Quantity: 1, Price: 10}},
		Tip:   4,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.Charges{Subtotal: 20, Tax: 1.65, Fees: 3.5, Tip: 4, Total: 29.15}, resp.Charges)
	assert.Equal(t, "$29.15", resp.FormattedTotal)
}

type mockOrderLedger struct {
	OrderLedger
	FindOrderFunc func(orderID string) (domain.Order, error)
}

func (m *mockOrderLedger) FindOrder(orderID string) (domain.Order, error) {
	return m.FindOrderFunc(orderID)
}

func (m *mockOrderLedger) OrdersByStatus(domain.Status) iter.Seq[domain.Order] {
	return func(func(domain.Order) bool) {}
}

func TestGetOrder_UnexpectedError(t *testing.T) {
	mock := &mockOrderLedger{
		FindOrderFunc: func(string) (domain.Order, error) {
			return domain.Order{}, assert.AnError
		},
	}
	ctrl := NewOrderController(mock, pricing.Default(), nil, zap.NewNop())
	r := chi.NewRouter()
	r.Mount("/orders", ctrl.Routes())

	rec := do(t, r, http.MethodGet, "/orders/FD-1", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestCreateOrder_HugePriceKeepsListEncodable(t *testing.T) {
	h, l := newTestRouter(t)
	req := validCreateRequest()
	req.Items[0].Price = 1.7e308

	rec := do(t, h, http.MethodPost, "/orders", req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 3, l.Len())

	rec = do(t, h, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.OrderListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
}

func TestQuote_RejectsOutOfRangeAmounts(t *testing.T) {
	tests := []struct {
		name string
		req  dto.QuoteRequest
	}{
		{"huge price", dto.QuoteRequest{Items: []dto.OrderItemRequest{{ID: "a", Quantity: 1, Price: 1.7e308}}}},
		{"overflowing line", dto.QuoteRequest{Items: []dto.OrderItemRequest{{ID: "a", Quantity: 10000, Price: 1e305}}}},
		{"huge tip", dto.QuoteRequest{Items: []dto.OrderItemRequest{{ID: "a", Quantity: 1, Price: 5}}, Tip: 1e300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestRouter(t)

			rec := do(t, h, http.MethodPost, "/pricing/quote", tt.req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
