package dto

import "frontdash/internal/domain"

// NewOrder is the checkout snapshot handed to the ledger. Financials is
// optional; when nil the ledger prices the items itself and adds Tip.
type NewOrder struct {
	RestaurantID   string
	RestaurantName string
	Contact        domain.Contact
	Delivery       domain.Address
	Billing        domain.Address
	Items          []domain.OrderItem
	Financials     *domain.Charges
	Tip            float64
	Payment        domain.Payment
}
