package domain

import (
	"fmt"
	"strings"
	"time"
)

const EstimatedDeliveryWindow = 40 * time.Minute

func (o Order) EstimatedDelivery() time.Time {
	return o.PlacedAt.Add(EstimatedDeliveryWindow)
}

// Summary renders the plain-text receipt shown to staff and customers.
// Times are rendered in loc; a nil loc means UTC.
func (o Order) Summary(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	placed := o.PlacedAt.In(loc)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Restaurant: %s\n", o.RestaurantName)
	fmt.Fprintf(&sb, "Order date: %s\n", placed.Format("01-02-2006"))
	fmt.Fprintf(&sb, "Time of order: %s\n", placed.Format("3:04 PM"))
	fmt.Fprintf(&sb, "Estimated delivery time: %s\n\n", o.EstimatedDelivery().In(loc).Format("3:04 PM"))

	sb.WriteString("Items:\n")
	for _, item := range o.Items {
		fmt.Fprintf(&sb, "- %s x%d ($%.2f)\n", item.Name, item.Quantity, item.Price)
	}

	fmt.Fprintf(&sb, "\nTotal: $%.2f", o.Charges.Total)
	return sb.String()
}
