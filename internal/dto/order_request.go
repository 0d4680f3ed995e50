package dto

import (
	"strings"

	"frontdash/internal/domain"
)

type CreateOrderRequest struct {
	RestaurantID   string             `json:"restaurantId"`
	RestaurantName string             `json:"restaurantName"`
	Contact        domain.Contact     `json:"contact"`
	Delivery       domain.Address     `json:"delivery"`
	Billing        *domain.Address    `json:"billing,omitempty"`
	Items          []OrderItemRequest `json:"items"`
	Financials     *domain.Charges    `json:"financials,omitempty"`
	Tip            float64            `json:"tip,omitempty"`
	Payment        PaymentRequest     `json:"payment"`
}

type OrderItemRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// PaymentRequest may carry the full card number from the checkout form; only
// the last four digits ever reach the ledger.
type PaymentRequest struct {
	CardNumber string `json:"cardNumber,omitempty"`
	Last4      string `json:"last4,omitempty"`
}

func (p PaymentRequest) Masked() domain.Payment {
	source := p.Last4
	if source == "" {
		source = p.CardNumber
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, source)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return domain.Payment{Last4: digits}
}

// ToNewOrder maps the request onto the ledger input. A missing billing
// address means billing is the same as delivery.
func (r CreateOrderRequest) ToNewOrder() NewOrder {
	billing := r.Delivery
	if r.Billing != nil {
		billing = *r.Billing
	}

	return NewOrder{
		RestaurantID:   r.RestaurantID,
		RestaurantName: r.RestaurantName,
		Contact:        r.Contact,
		Delivery:       r.Delivery,
		Billing:        billing,
		Items:          ToOrderItems(r.Items),
		Financials:     r.Financials,
		Tip:            r.Tip,
		Payment:        r.Payment.Masked(),
	}
}

func ToOrderItems(items []OrderItemRequest) []domain.OrderItem {
	out := make([]domain.OrderItem, len(items))
	for i, item := range items {
		out[i] = domain.OrderItem{
			ID:       item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}
	return out
}

type UpdateStatusRequest struct {
	Status domain.Status `json:"status"`
}

type QuoteRequest struct {
	Items []OrderItemRequest `json:"items"`
	Tip   float64            `json:"tip,omitempty"`
}
