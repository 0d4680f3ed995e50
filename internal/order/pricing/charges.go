package pricing

import (
	"fmt"
	"math"

	"frontdash/internal/domain"
)

const (
	DefaultTaxRate    = 0.0825
	DefaultServiceFee = 3.50

	MaxItemPrice = 1_000_000.0
	// MaxAmount bounds every charge field. 100 lines of 10000 units at
	// MaxItemPrice stay within it.
	MaxAmount = 1e12
)

// Calculator derives order charges from a subtotal using a flat tax rate and
// a flat service fee charged only on non-empty orders.
type Calculator struct {
	TaxRate    float64
	ServiceFee float64
}

func NewCalculator(taxRate, serviceFee float64) Calculator {
	return Calculator{TaxRate: taxRate, ServiceFee: serviceFee}
}

func Default() Calculator {
	return NewCalculator(DefaultTaxRate, DefaultServiceFee)
}

// CalculateCharges applies the default tax rate and service fee.
func CalculateCharges(subtotal float64) domain.Charges {
	return Default().Calculate(subtotal)
}

// Calculate never fails: a non-finite or negative subtotal is treated as 0.
// Tax is rounded first and the total is summed from the rounded tax.
func (c Calculator) Calculate(subtotal float64) domain.Charges {
	safe := sanitize(subtotal)

	tax := Round2(safe * c.TaxRate)
	fees := 0.0
	if safe > 0 {
		fees = c.ServiceFee
	}

	return domain.Charges{
		Subtotal: Round2(safe),
		Tax:      tax,
		Fees:     fees,
		Total:    Round2(safe + tax + fees),
	}
}

// Subtotal sums price*quantity over the cart lines.
func Subtotal(items []domain.OrderItem) float64 {
	sum := 0.0
	for _, item := range items {
		sum += item.LineTotal()
	}
	return sum
}

// WithTip adds a tip on top of already computed charges. Non-positive or
// non-finite tips leave the charges unchanged.
func WithTip(charges domain.Charges, tip float64) domain.Charges {
	tip = sanitize(tip)
	if tip == 0 {
		return charges
	}
	charges.Tip = Round2(tip)
	charges.Total = Round2(charges.Subtotal + charges.Tax + charges.Fees + charges.Tip)
	return charges
}

func FormatCurrency(amount float64) string {
	return fmt.Sprintf("$%.2f", sanitizeAny(amount))
}

// Round2 rounds half up to two decimal places for non-negative values.
// Magnitudes past 1e15 have no cent precision left and are returned as is.
func Round2(v float64) float64 {
	if math.Abs(v) >= 1e15 {
		return v
	}
	return math.Round(v*100) / 100
}

// ValidAmount reports whether v is finite, non-negative and at most limit.
func ValidAmount(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= limit
}

func ValidCharges(c domain.Charges) bool {
	for _, v := range []float64{c.Subtotal, c.Tax, c.Fees, c.Tip, c.Total} {
		if !ValidAmount(v, MaxAmount) {
			return false
		}
	}
	return true
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func sanitizeAny(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
