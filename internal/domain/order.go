package domain

import (
	"sort"
	"time"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "inProgress"
	StatusCompleted  Status = "completed"
)

var statusLabels = map[Status]string{
	StatusNew:        "New",
	StatusInProgress: "In-Progress",
	StatusCompleted:  "Completed",
}

// Statuses lists the lifecycle in progression order.
func Statuses() []Status {
	return []Status{StatusNew, StatusInProgress, StatusCompleted}
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the display name used by the staff and tracking views.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Rank is the position of s in the lifecycle, or -1 for unknown statuses.
func (s Status) Rank() int {
	for i, st := range Statuses() {
		if st == s {
			return i
		}
	}
	return -1
}

type Contact struct {
	Name  string `json:"name" yaml:"name"`
	Phone string `json:"phone" yaml:"phone"`
	Email string `json:"email" yaml:"email"`
}

type Address struct {
	Building string `json:"building" yaml:"building"`
	Street   string `json:"street" yaml:"street"`
	City     string `json:"city" yaml:"city"`
	State    string `json:"state" yaml:"state"`
	Note     string `json:"note,omitempty" yaml:"note,omitempty"`
}

type OrderItem struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Quantity int     `json:"quantity" yaml:"quantity"`
	Price    float64 `json:"price" yaml:"price"`
}

// LineTotal is price times quantity, unrounded.
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

type Charges struct {
	Subtotal float64 `json:"subtotal" yaml:"subtotal"`
	Tax      float64 `json:"tax" yaml:"tax"`
	Fees     float64 `json:"fees" yaml:"fees"`
	Tip      float64 `json:"tip,omitempty" yaml:"tip,omitempty"`
	Total    float64 `json:"total" yaml:"total"`
}

// Payment only ever carries the last four digits of the card.
type Payment struct {
	Last4 string `json:"last4" yaml:"last4"`
}

// StatusHistory maps each reached status to the time it was first entered.
type StatusHistory map[Status]time.Time

type StatusEntry struct {
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
}

// Entries returns the history ordered by timestamp, ties broken by lifecycle order.
func (h StatusHistory) Entries() []StatusEntry {
	entries := make([]StatusEntry, 0, len(h))
	for status, at := range h {
		entries = append(entries, StatusEntry{Status: status, At: at})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].At.Equal(entries[j].At) {
			return entries[i].Status.Rank() < entries[j].Status.Rank()
		}
		return entries[i].At.Before(entries[j].At)
	})
	return entries
}

type Order struct {
	ID             string        `json:"id" yaml:"id"`
	Status         Status        `json:"status" yaml:"status"`
	RestaurantID   string        `json:"restaurantId" yaml:"restaurantId"`
	RestaurantName string        `json:"restaurantName" yaml:"restaurantName"`
	PlacedAt       time.Time     `json:"placedAt" yaml:"placedAt"`
	Customer       Contact       `json:"customer" yaml:"customer"`
	Delivery       Address       `json:"delivery" yaml:"delivery"`
	Billing        Address       `json:"billing" yaml:"billing"`
	Items          []OrderItem   `json:"items" yaml:"items"`
	Charges        Charges       `json:"charges" yaml:"charges"`
	Payment        Payment       `json:"payment" yaml:"payment"`
	StatusHistory  StatusHistory `json:"statusHistory" yaml:"statusHistory"`
}

// Clone returns a copy that shares no slices or maps with o.
func (o Order) Clone() Order {
	clone := o
	if o.Items != nil {
		clone.Items = make([]OrderItem, len(o.Items))
		copy(clone.Items, o.Items)
	}
	if o.StatusHistory != nil {
		clone.StatusHistory = make(StatusHistory, len(o.StatusHistory))
		for status, at := range o.StatusHistory {
			clone.StatusHistory[status] = at
		}
	}
	return clone
}

func (o Order) IsTerminal() bool {
	return o.Status == StatusCompleted
}
