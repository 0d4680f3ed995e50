package ledger

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"frontdash/internal/domain"
	"frontdash/internal/dto"
	apperrors "frontdash/internal/errors"
	"frontdash/internal/events"
	"frontdash/internal/order/pricing"

	"go.uber.org/zap"
)

type IDGenerator interface {
	Next(used map[string]struct{}) string
}

type ChargeCalculator interface {
	Calculate(subtotal float64) domain.Charges
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.OrderEvent) error
}

// Ledger is the process-local list of orders. Orders are stored in creation
// order and exposed most recent first. All methods are safe for concurrent
// use; each one is applied atomically.
type Ledger struct {
	mu       sync.Mutex
	orders   []*domain.Order
	byID     map[string]*domain.Order
	latestID string

	ids        IDGenerator
	calculator ChargeCalculator
	publisher  EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

func New(ids IDGenerator, calculator ChargeCalculator, publisher EventPublisher, logger *zap.Logger) *Ledger {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Ledger{
		byID:       make(map[string]*domain.Order),
		ids:        ids,
		calculator: calculator,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateOrder snapshots the checkout payload into a new order in status New.
// Supplied financials are stored as given; otherwise the items are priced
// and the tip is added on top.
func (l *Ledger) CreateOrder(ctx context.Context, in dto.NewOrder) (domain.Order, error) {
	if len(in.Items) == 0 {
		return domain.Order{}, apperrors.NewValidationError("order must contain at least one item", apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	if details := validateAmounts(in); len(details) > 0 {
		return domain.Order{}, apperrors.NewValidationError("order amounts out of range", details...)
	}

	charges := l.charges(in)
	items := slices.Clone(in.Items)

	l.mu.Lock()
	used := make(map[string]struct{}, len(l.byID))
	for id := range l.byID {
		used[id] = struct{}{}
	}
	id := uniqueID(l.ids.Next(used), used)
	now := l.now().UTC()

	order := &domain.Order{
		ID:             id,
		Status:         domain.StatusNew,
		RestaurantID:   in.RestaurantID,
		RestaurantName: in.RestaurantName,
		PlacedAt:       now,
		Customer:       in.Contact,
		Delivery:       in.Delivery,
		Billing:        in.Billing,
		Items:          items,
		Charges:        charges,
		Payment:        in.Payment,
		StatusHistory:  domain.StatusHistory{domain.StatusNew: now},
	}
	l.orders = append(l.orders, order)
	l.byID[id] = order
	l.latestID = id
	created := order.Clone()
	l.mu.Unlock()

	l.logger.Info("order created",
		zap.String("orderId", id),
		zap.String("restaurantId", in.RestaurantID),
		zap.Int("itemCount", len(items)),
		zap.Float64("total", charges.Total),
	)
	l.publish(ctx, events.NewOrderCreated(created, now))

	return created, nil
}

func (l *Ledger) charges(in dto.NewOrder) domain.Charges {
	if in.Financials != nil {
		return *in.Financials
	}
	charges := l.calculator.Calculate(pricing.Subtotal(in.Items))
	return pricing.WithTip(charges, in.Tip)
}

// validateAmounts keeps every stored charge finite and bounded.
func validateAmounts(in dto.NewOrder) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail
	for i, item := range in.Items {
		if !pricing.ValidAmount(item.Price, pricing.MaxItemPrice) {
			details = append(details, apperrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].price", i),
				Message: fmt.Sprintf("price must be between 0 and %.0f", pricing.MaxItemPrice),
			})
		}
		if item.Quantity < 1 {
			details = append(details, apperrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be positive",
			})
		}
	}
	if len(details) > 0 {
		return details
	}

	if !pricing.ValidAmount(pricing.Subtotal(in.Items), pricing.MaxAmount) {
		details = append(details, apperrors.ValidationDetail{Field: "items", Message: "order subtotal is too large"})
	}
	if in.Tip > pricing.MaxAmount {
		details = append(details, apperrors.ValidationDetail{Field: "tip", Message: "tip is too large"})
	}
	if in.Financials != nil && !pricing.ValidCharges(*in.Financials) {
		details = append(details, apperrors.ValidationDetail{Field: "financials", Message: "financial amounts must be finite, non-negative and bounded"})
	}
	return details
}

// uniqueID returns id, or id with the first free -N suffix when the
// generator handed back an id that is already taken.
func uniqueID(id string, used map[string]struct{}) string {
	if _, taken := used[id]; !taken {
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

// UpdateOrderStatus moves an order to next. Setting the current status again
// is a no-op that leaves the history untouched. Moving backwards is refused.
func (l *Ledger) UpdateOrderStatus(ctx context.Context, orderID string, next domain.Status) (domain.Order, error) {
	if !next.Valid() {
		return domain.Order{}, apperrors.NewValidationError(fmt.Sprintf("unknown order status %q", next), apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of new, inProgress, completed",
		})
	}

	l.mu.Lock()
	order, ok := l.byID[orderID]
	if !ok {
		l.mu.Unlock()
		l.logger.Warn("status update for unknown order", zap.String("orderId", orderID))
		return domain.Order{}, notFound(orderID)
	}

	if order.Status == next {
		unchanged := order.Clone()
		l.mu.Unlock()
		return unchanged, nil
	}

	if next.Rank() < order.Status.Rank() {
		current := order.Status
		l.mu.Unlock()
		return domain.Order{}, apperrors.NewConflictError(fmt.Sprintf("order %s cannot move from %s back to %s", orderID, current, next))
	}

	event := l.transition(order, next)
	l.mu.Unlock()

	l.publish(ctx, event)
	return event.Order, nil
}

// RecordOrderProgression is the staff shortcut: New goes to InProgress and
// any other non-terminal status goes to Completed. Completed orders are left
// as they are.
func (l *Ledger) RecordOrderProgression(ctx context.Context, orderID string) (domain.Order, error) {
	l.mu.Lock()
	order, ok := l.byID[orderID]
	if !ok {
		l.mu.Unlock()
		l.logger.Warn("progression for unknown order", zap.String("orderId", orderID))
		return domain.Order{}, notFound(orderID)
	}

	if order.IsTerminal() {
		unchanged := order.Clone()
		l.mu.Unlock()
		return unchanged, nil
	}

	next := domain.StatusCompleted
	if order.Status == domain.StatusNew {
		next = domain.StatusInProgress
	}

	event := l.transition(order, next)
	l.mu.Unlock()

	l.publish(ctx, event)
	return event.Order, nil
}

// transition must be called with l.mu held.
func (l *Ledger) transition(order *domain.Order, next domain.Status) events.OrderEvent {
	at := l.now().UTC()
	// history timestamps never go backwards, even if the clock does
	for _, seen := range order.StatusHistory {
		if seen.After(at) {
			at = seen
		}
	}

	previous := order.Status
	order.Status = next
	if order.StatusHistory == nil {
		order.StatusHistory = domain.StatusHistory{}
	}
	order.StatusHistory[next] = at

	l.logger.Info("order status changed",
		zap.String("orderId", order.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
	)

	return events.NewStatusChanged(order.Clone(), previous, at)
}

func (l *Ledger) publish(ctx context.Context, event events.OrderEvent) {
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.logger.Error("failed to publish order event",
			zap.String("orderId", event.OrderID),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}

// OrdersByStatus returns a lazy, repeatable view of the orders in status,
// most recent first, taken from a snapshot of the ledger at call time.
func (l *Ledger) OrdersByStatus(status domain.Status) iter.Seq[domain.Order] {
	snapshot := l.Orders()
	return func(yield func(domain.Order) bool) {
		for _, order := range snapshot {
			if order.Status != status {
				continue
			}
			if !yield(order.Clone()) {
				return
			}
		}
	}
}

// Orders returns every order, most recent first.
func (l *Ledger) Orders() []domain.Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Order, 0, len(l.orders))
	for i := len(l.orders) - 1; i >= 0; i-- {
		out = append(out, l.orders[i].Clone())
	}
	return out
}

func (l *Ledger) FindOrder(orderID string) (domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	order, ok := l.byID[orderID]
	if !ok {
		return domain.Order{}, notFound(orderID)
	}
	return order.Clone(), nil
}

// LatestOrder is the order most recently created through CreateOrder, until
// ClearLatestOrder is called.
func (l *Ledger) LatestOrder() (domain.Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.latestID == "" {
		return domain.Order{}, false
	}
	order, ok := l.byID[l.latestID]
	if !ok {
		return domain.Order{}, false
	}
	return order.Clone(), true
}

func (l *Ledger) ClearLatestOrder() {
	l.mu.Lock()
	l.latestID = ""
	l.mu.Unlock()
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.orders)
}

// Seed preloads existing orders, given most recent first as they are
// displayed. Seeded orders keep their ids and charges, do not emit events and
// do not move the latest-order pointer.
func (l *Ledger) Seed(orders ...domain.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{}, len(orders))
	for i, o := range orders {
		if err := validateSeed(o); err != nil {
			return fmt.Errorf("seed order %d: %w", i, err)
		}
		if _, dup := l.byID[o.ID]; dup {
			return apperrors.NewConflictError(fmt.Sprintf("order %s already exists", o.ID))
		}
		if _, dup := seen[o.ID]; dup {
			return apperrors.NewConflictError(fmt.Sprintf("order %s seeded twice", o.ID))
		}
		seen[o.ID] = struct{}{}
	}

	for i := len(orders) - 1; i >= 0; i-- {
		order := normalizeSeed(orders[i])
		l.orders = append(l.orders, &order)
		l.byID[order.ID] = &order
	}

	l.logger.Info("ledger seeded", zap.Int("orderCount", len(orders)))
	return nil
}

func validateSeed(o domain.Order) error {
	var details []apperrors.ValidationDetail
	if o.ID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "id", Message: "id is required"})
	}
	if o.Status != "" && !o.Status.Valid() {
		details = append(details, apperrors.ValidationDetail{Field: "status", Message: fmt.Sprintf("unknown status %q", o.Status)})
	}
	if len(o.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "items", Message: "items must not be empty"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid seed order", details...)
	}
	return nil
}

// normalizeSeed guarantees the history holds New and the current status.
func normalizeSeed(o domain.Order) domain.Order {
	order := o.Clone()
	if order.Status == "" {
		order.Status = domain.StatusNew
	}
	if order.StatusHistory == nil {
		order.StatusHistory = domain.StatusHistory{}
	}
	if _, ok := order.StatusHistory[domain.StatusNew]; !ok {
		order.StatusHistory[domain.StatusNew] = order.PlacedAt
	}
	if _, ok := order.StatusHistory[order.Status]; !ok {
		order.StatusHistory[order.Status] = order.PlacedAt
	}
	return order
}

func notFound(orderID string) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("order %s not found", orderID))
}
