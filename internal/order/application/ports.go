package application

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/orderflow/internal/notification"
	"github.com/storefront/orderflow/internal/order/domain"
	"github.com/storefront/orderflow/internal/payment"
	"github.com/storefront/orderflow/internal/shipping"
)

// Collaborator ports. Business declines are values in the returned structs;
// a non-nil error means the collaborator failed unexpectedly and routes the
// saga into its catch-all compensation path.

type InventoryService interface {
	CheckStock(ctx context.Context, sku string, qty int) (bool, error)
	Reserve(ctx context.Context, sku string, qty int) (bool, error)
	Release(ctx context.Context, sku string, qty int) error
	ListProducts(ctx context.Context) map[string]int
}

type PaymentGateway interface {
	Charge(ctx context.Context, card payment.CardInfo, amount decimal.Decimal) (payment.Receipt, error)
	Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (payment.Receipt, error)
}

type ShippingService interface {
	QuoteCost(ctx context.Context, items []shipping.Item, shippingType string) decimal.Decimal
	CreateShipment(ctx context.Context, customerID string, items []shipping.Item, addr *shipping.Address, shippingType string) (shipping.Shipment, error)
	CancelShipment(ctx context.Context, shipmentID string) bool
	TrackShipment(ctx context.Context, trackingNumber string) shipping.TrackingStatus
	ListCarriers(ctx context.Context) map[string]shipping.Carrier
}

type Notifier interface {
	Notify(ctx context.Context, customerID, message string, ch notification.Channel) bool
	Send(ctx context.Context, customerID string, kind notification.Kind, p notification.Payload, channels ...notification.Channel) (map[notification.Channel]bool, error)
	Stats(ctx context.Context) notification.Stats
}

// OrderLedger stores completed and cancelled orders plus failed attempts.
// Implementations must be safe for concurrent use; Get and ByCustomer return
// copies so callers can enrich them without mutating the store.
type OrderLedger interface {
	Append(ctx context.Context, o domain.Order)
	Get(ctx context.Context, id string) (domain.Order, bool)
	ByCustomer(ctx context.Context, customerID string) []domain.Order
	SetStatus(ctx context.Context, id string, status domain.OrderStatus) bool
	RecordFailure(ctx context.Context, f domain.FailedOrder)
	Failures(ctx context.Context) []domain.FailedOrder
	Counts(ctx context.Context) (orders, failures int)
}
