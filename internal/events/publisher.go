package events

import (
	"context"
	"errors"
	"time"

	"frontdash/internal/domain"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
)

// OrderEvent is emitted by the ledger after every successful mutation.
type OrderEvent struct {
	Type           Type          `json:"type"`
	OrderID        string        `json:"orderId"`
	RestaurantID   string        `json:"restaurantId"`
	Status         domain.Status `json:"status"`
	PreviousStatus domain.Status `json:"previousStatus,omitempty"`
	Total          float64       `json:"total"`
	Order          domain.Order  `json:"order"`
	EventTime      time.Time     `json:"eventTime"`
}

func NewOrderCreated(order domain.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:         OrderCreated,
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		Status:       order.Status,
		Total:        order.Charges.Total,
		Order:        order,
		EventTime:    at,
	}
}

func NewStatusChanged(order domain.Order, previous domain.Status, at time.Time) OrderEvent {
	return OrderEvent{
		Type:           OrderStatusChanged,
		OrderID:        order.ID,
		RestaurantID:   order.RestaurantID,
		Status:         order.Status,
		PreviousStatus: previous,
		Total:          order.Charges.Total,
		Order:          order,
		EventTime:      at,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event OrderEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
