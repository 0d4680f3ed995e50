package order

import (
	"frontdash/internal/config"
	"frontdash/internal/order/controller"
	"frontdash/internal/order/ledger"
	"frontdash/internal/order/orderid"
	"frontdash/internal/order/pricing"

	"go.uber.org/zap"
)

func NewModule(cfg *config.Config, publisher ledger.EventPublisher, logger *zap.Logger) (*controller.OrderController, *ledger.Ledger) {
	calculator := pricing.NewCalculator(cfg.Pricing.TaxRate, cfg.Pricing.ServiceFee)

	orderLedger := ledger.New(
		orderid.New(),
		calculator,
		publisher,
		logger.Named("ledger"),
	)

	ctrl := controller.NewOrderController(
		orderLedger,
		calculator,
		cfg.Ledger.SummaryTimezone,
		logger.Named("orders"),
	)

	return ctrl, orderLedger
}
