package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"frontdash/internal/domain"
	"frontdash/internal/dto"
	"frontdash/internal/events"
)

// Clock is a manually advanced time source for ledger tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// SequenceIDs hands out FD-0001, FD-0002, ... skipping ids already in use.
type SequenceIDs struct {
	mu   sync.Mutex
	next int
}

func (s *SequenceIDs) Next(used map[string]struct{}) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		s.next++
		id := fmt.Sprintf("FD-%04d", s.next)
		if _, taken := used[id]; !taken {
			return id
		}
	}
}

// RecordingPublisher keeps every event it receives and optionally fails.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	Err    error
}

func (r *RecordingPublisher) Publish(_ context.Context, event events.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

func (r *RecordingPublisher) Events() []events.OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.OrderEvent, len(r.events))
	copy(out, r.events)
	return out
}

// NewOrderInput is a checkout payload with items a×2 @5 and b×1 @10 (subtotal 20).
func NewOrderInput() dto.NewOrder {
	address := domain.Address{
		Building: "1846",
		Street:   "W Maple St Apt 302",
		City:     "Chicago",
		State:    "IL",
		Note:     "Gate code #4402",
	}
	return dto.NewOrder{
		RestaurantID:   "bella-trattoria",
		RestaurantName: "Bella Trattoria",
		Contact: domain.Contact{
			Name:  "Malik Johnson",
			Phone: "3125552098",
			Email: "malik.johnson@example.com",
		},
		Delivery: address,
		Billing:  address,
		Items: []domain.OrderItem{
			{ID: "a", Name: "Garlic Knots", Quantity: 2, Price: 5},
			{ID: "b", Name: "House Salad", Quantity: 1, Price: 10},
		},
		Payment: domain.Payment{Last4: "4242"},
	}
}

// SeedOrders returns three demo orders, most recent first, one per status.
func SeedOrders() []domain.Order {
	placed := time.Date(2024, 4, 17, 21, 12, 0, 0, time.UTC)
	return []domain.Order{
		{
			ID:             "FD-2451",
			Status:         domain.StatusNew,
			RestaurantID:   "bella-trattoria",
			RestaurantName: "Bella Trattoria",
			PlacedAt:       placed,
			Customer:       domain.Contact{Name: "Malik Johnson", Phone: "3125552098", Email: "malik.johnson@example.com"},
			Items:          []domain.OrderItem{{ID: "margherita-pizza", Name: "Margherita Pizza", Quantity: 1, Price: 16}},
			Charges:        domain.Charges{Subtotal: 16, Tax: 1.32, Fees: 3.5, Total: 20.82},
			Payment:        domain.Payment{Last4: "4242"},
		},
		{
			ID:             "FD-2448",
			Status:         domain.StatusInProgress,
			RestaurantID:   "bella-trattoria",
			RestaurantName: "Bella Trattoria",
			PlacedAt:       placed.Add(-66 * time.Minute),
			Customer:       domain.Contact{Name: "Jamie Ortiz", Phone: "3125555521", Email: "jamie.ortiz@example.com"},
			Items:          []domain.OrderItem{{ID: "chicken-alfredo", Name: "Chicken Alfredo", Quantity: 2, Price: 18}},
			Charges:        domain.Charges{Subtotal: 36, Tax: 2.97, Fees: 3.5, Total: 42.47},
			Payment:        domain.Payment{Last4: "1881"},
		},
		{
			ID:             "FD-2445",
			Status:         domain.StatusCompleted,
			RestaurantID:   "green-garden-bowls",
			RestaurantName: "Green Garden Bowls",
			PlacedAt:       placed.Add(-77 * time.Minute),
			Customer:       domain.Contact{Name: "Lina Torres", Phone: "3125558284", Email: "lina.torres@example.com"},
			Items:          []domain.OrderItem{{ID: "caprese-panini", Name: "Caprese Panini", Quantity: 2, Price: 11.5}},
			Charges:        domain.Charges{Subtotal: 23, Tax: 1.9, Fees: 3.5, Total: 28.4},
			Payment:        domain.Payment{Last4: "3005"},
		},
	}
}
