package application

import (
	"github.com/shopspring/decimal"

	"github.com/storefront/orderflow/internal/notification"
	"github.com/storefront/orderflow/internal/payment"
	"github.com/storefront/orderflow/internal/shipping"
)

// PlaceOrderRequest carries everything needed for one placement attempt.
type PlaceOrderRequest struct {
	CustomerID      string
	SKU             string
	Quantity        int
	Card            payment.CardInfo
	UnitPrice       decimal.Decimal
	ShippingAddress *shipping.Address
	ShippingType    string
}

// PlaceOrderResult is returned to the caller and never stored. OrderID is
// populated on both outcomes; on failure it correlates with the recorded
// FailedOrder. TransactionID may be set on a failed result when the charge
// committed before a later step aborted, so the payment can be reconciled
// manually.
type PlaceOrderResult struct {
	Success           bool
	OrderID           string
	Reason            string
	TransactionID     string
	ShipmentID        string
	TrackingNumber    string
	TotalAmount       decimal.Decimal
	EstimatedDelivery string
}

// SystemStats is a read-only composition of ledger counters and collaborator
// snapshots.
type SystemStats struct {
	SuccessfulOrders int
	FailedOrders     int
	SuccessRatePct   float64
	Inventory        map[string]int
	Notifications    notification.Stats
	Carriers         map[string]shipping.Carrier
}
