package dto

import (
	"time"

	"frontdash/internal/domain"
)

// OrderView decorates an order with what the staff and tracking views render.
type OrderView struct {
	domain.Order
	StatusLabel       string               `json:"statusLabel"`
	Timeline          []domain.StatusEntry `json:"timeline"`
	EstimatedDelivery time.Time            `json:"estimatedDelivery"`
}

func NewOrderView(order domain.Order) OrderView {
	return OrderView{
		Order:             order,
		StatusLabel:       order.Status.Label(),
		Timeline:          order.StatusHistory.Entries(),
		EstimatedDelivery: order.EstimatedDelivery(),
	}
}

type OrderResponse struct {
	TraceID string    `json:"traceId"`
	Order   OrderView `json:"order"`
}

type OrderListResponse struct {
	TraceID string      `json:"traceId"`
	Count   int         `json:"count"`
	Orders  []OrderView `json:"orders"`
}

type QuoteResponse struct {
	TraceID        string         `json:"traceId"`
	Charges        domain.Charges `json:"charges"`
	FormattedTotal string         `json:"formattedTotal"`
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	OrderID   string    `json:"orderId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
