package controller

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"strconv"
	"time"

	"frontdash/internal/domain"
	"frontdash/internal/dto"
	apperrors "frontdash/internal/errors"
	"frontdash/internal/order/pricing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxItems = 100

type OrderLedger interface {
	CreateOrder(ctx context.Context, in dto.NewOrder) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, next domain.Status) (domain.Order, error)
	RecordOrderProgression(ctx context.Context, orderID string) (domain.Order, error)
	OrdersByStatus(status domain.Status) iter.Seq[domain.Order]
	Orders() []domain.Order
	FindOrder(orderID string) (domain.Order, error)
	LatestOrder() (domain.Order, bool)
	ClearLatestOrder()
}

type ChargeCalculator interface {
	Calculate(subtotal float64) domain.Charges
}

type OrderController struct {
	ledger     OrderLedger
	calculator ChargeCalculator
	location   *time.Location
	logger     *zap.Logger
}

func NewOrderController(ledger OrderLedger, calculator ChargeCalculator, location *time.Location, logger *zap.Logger) *OrderController {
	if location == nil {
		location = time.UTC
	}
	return &OrderController{
		ledger:     ledger,
		calculator: calculator,
		location:   location,
		logger:     logger,
	}
}

func (c *OrderController) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", c.CreateOrder)
	r.Get("/", c.ListOrders)
	r.Get("/latest", c.GetLatestOrder)
	r.Delete("/latest", c.ClearLatestOrder)
	r.Get("/{orderId}", c.GetOrder)
	r.Get("/{orderId}/summary", c.GetOrderSummary)
	r.Put("/{orderId}/status", c.UpdateOrderStatus)
	r.Post("/{orderId}/progress", c.RecordOrderProgression)
	return r
}

func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateCreateOrderRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	order, err := c.ledger.CreateOrder(r.Context(), req.ToNewOrder())
	if err != nil {
		c.handleLedgerError(w, traceID, "", err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, dto.OrderResponse{TraceID: traceID, Order: dto.NewOrderView(order)})
}

// ListOrders returns every order, or only those in ?status= when given.
func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	views := []dto.OrderView{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.Status(raw)
		if !status.Valid() {
			c.writeValidationError(w, traceID, "invalid status filter", apperrors.ValidationDetail{
				Field:   "status",
				Message: "status must be one of new, inProgress, completed",
			})
			return
		}
		for order := range c.ledger.OrdersByStatus(status) {
			views = append(views, dto.NewOrderView(order))
		}
	} else {
		for _, order := range c.ledger.Orders() {
			views = append(views, dto.NewOrderView(order))
		}
	}

	c.writeJSON(w, http.StatusOK, dto.OrderListResponse{TraceID: traceID, Count: len(views), Orders: views})
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	orderID := chi.URLParam(r, "orderId")

	order, err := c.ledger.FindOrder(orderID)
	if err != nil {
		c.handleLedgerError(w, traceID, orderID, err, c.logger.With(zap.String("traceId", traceID)))
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OrderResponse{TraceID: traceID, Order: dto.NewOrderView(order)})
}

func (c *OrderController) GetOrderSummary(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	orderID := chi.URLParam(r, "orderId")

	order, err := c.ledger.FindOrder(orderID)
	if err != nil {
		c.handleLedgerError(w, traceID, orderID, err, c.logger.With(zap.String("traceId", traceID)))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(order.Summary(c.location))); err != nil {
		c.logger.Error("failed to write summary", zap.String("orderId", orderID), zap.Error(err))
	}
}

func (c *OrderController) GetLatestOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	order, ok := c.ledger.LatestOrder()
	if !ok {
		c.writeErrorResponse(w, traceID, "", http.StatusNotFound, "NOT_FOUND", "no recent order")
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OrderResponse{TraceID: traceID, Order: dto.NewOrderView(order)})
}

func (c *OrderController) ClearLatestOrder(w http.ResponseWriter, r *http.Request) {
	c.ledger.ClearLatestOrder()
	w.WriteHeader(http.StatusNoContent)
}

func (c *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))
	orderID := chi.URLParam(r, "orderId")

	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.ledger.UpdateOrderStatus(r.Context(), orderID, req.Status)
	if err != nil {
		c.handleLedgerError(w, traceID, orderID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OrderResponse{TraceID: traceID, Order: dto.NewOrderView(order)})
}

func (c *OrderController) RecordOrderProgression(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	orderID := chi.URLParam(r, "orderId")

	order, err := c.ledger.RecordOrderProgression(r.Context(), orderID)
	if err != nil {
		c.handleLedgerError(w, traceID, orderID, err, c.logger.With(zap.String("traceId", traceID)))
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OrderResponse{TraceID: traceID, Order: dto.NewOrderView(order)})
}

// Quote prices a cart without creating an order, for the checkout page.
func (c *OrderController) Quote(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	var req dto.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	details := validateItems(req.Items, false)
	if !pricing.ValidAmount(req.Tip, pricing.MaxAmount) {
		details = append(details, apperrors.ValidationDetail{Field: "tip", Message: "tip must be non-negative and bounded"})
	}
	if len(details) > 0 {
		c.writeValidationError(w, traceID, "validation failed", details...)
		return
	}

	items := dto.ToOrderItems(req.Items)
	charges := pricing.WithTip(c.calculator.Calculate(pricing.Subtotal(items)), req.Tip)

	c.writeJSON(w, http.StatusOK, dto.QuoteResponse{
		TraceID:        traceID,
		Charges:        charges,
		FormattedTotal: pricing.FormatCurrency(charges.Total),
	})
}

func validateCreateOrderRequest(req dto.CreateOrderRequest) error {
	var details []apperrors.ValidationDetail
	required := func(field, value string) {
		if value == "" {
			details = append(details, apperrors.ValidationDetail{Field: field, Message: field + " is required"})
		}
	}

	required("restaurantId", req.RestaurantID)
	required("contact.name", req.Contact.Name)
	required("contact.phone", req.Contact.Phone)
	required("contact.email", req.Contact.Email)
	required("delivery.street", req.Delivery.Street)
	required("delivery.city", req.Delivery.City)
	required("delivery.state", req.Delivery.State)

	details = append(details, validateItems(req.Items, true)...)

	if last4 := req.Payment.Masked().Last4; len(last4) != 4 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "payment",
			Message: "payment must include a card number or its last four digits",
		})
	}

	if f := req.Financials; f != nil && !pricing.ValidCharges(*f) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "financials",
			Message: "financial amounts must be non-negative and bounded",
		})
	}

	if !pricing.ValidAmount(req.Tip, pricing.MaxAmount) {
		details = append(details, apperrors.ValidationDetail{Field: "tip", Message: "tip must be non-negative and bounded"})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validateItems(items []dto.OrderItemRequest, requireItems bool) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail

	if requireItems && len(items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	if len(items) > maxItems {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items exceeds maximum of " + strconv.Itoa(maxItems),
		})
	}

	for idx, item := range items {
		prefix := "items[" + strconv.Itoa(idx) + "]"
		if item.ID == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   prefix + ".id",
				Message: "id is required",
			})
		}
		if item.Quantity < 1 || item.Quantity > 10000 {
			details = append(details, apperrors.ValidationDetail{
				Field:   prefix + ".quantity",
				Message: "quantity must be between 1 and 10000",
			})
		}
		if !pricing.ValidAmount(item.Price, pricing.MaxItemPrice) {
			details = append(details, apperrors.ValidationDetail{
				Field:   prefix + ".price",
				Message: "price must be between 0 and " + strconv.FormatFloat(pricing.MaxItemPrice, 'f', 0, 64),
			})
		}
	}

	return details
}

func (c *OrderController) handleLedgerError(w http.ResponseWriter, traceID string, orderID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	logger.Error("unexpected error", zap.String("orderId", orderID), zap.Error(err))
	c.writeErrorResponse(w, traceID, orderID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *OrderController) writeErrorResponse(w http.ResponseWriter, traceID string, orderID string, statusCode int, code string, message string) {
	c.writeJSON(w, statusCode, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Message:   message,
		Code:      code,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
