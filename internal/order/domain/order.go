package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// Order is a ledger record. It only exists once every saga step has
// committed; failed attempts are recorded as FailedOrder instead.
type Order struct {
	ID                string
	CustomerID        string
	SKU               string
	Quantity          int
	TransactionID     string
	ShipmentID        string
	TrackingNumber    string
	TotalAmount       decimal.Decimal
	Status            OrderStatus
	EstimatedDelivery string
	ShippingType      string
	CreatedAt         time.Time

	// ShippingStatus is a transient enrichment attached by status queries.
	// It is never written back to the ledger.
	ShippingStatus *TrackingInfo
}

// TrackingInfo is a point-in-time carrier status for a shipment.
type TrackingInfo struct {
	Status     string
	LastUpdate string
	Location   string
}

// FailedOrder records a placement attempt that aborted mid-saga. The order
// ID is the one generated at the start of the attempt, so failures can be
// correlated even though no Order record was ever created.
type FailedOrder struct {
	OrderID    string
	CustomerID string
	Reason     string
	At         time.Time
}
