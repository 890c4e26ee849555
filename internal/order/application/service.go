// Package application contains the order facade: the saga orchestrator that
// sequences the inventory, payment, shipping and notification collaborators
// for a single order and compensates committed steps when a later one fails.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/storefront/orderflow/internal/notification"
	"github.com/storefront/orderflow/internal/order/domain"
	"github.com/storefront/orderflow/internal/shipping"
	"github.com/storefront/orderflow/pkg/metrics"
)

// Saga step names, used for failure metrics and logs.
const (
	stepCheckStock     = "check_stock"
	stepReserveStock   = "reserve_stock"
	stepCharge         = "charge"
	stepCreateShipment = "create_shipment"
	stepInternal       = "internal"
)

// Config holds behavior toggles for the facade.
type Config struct {
	// RefundOnShipmentFailure also refunds the charge when shipment
	// creation fails after a successful payment. Off by default: the
	// documented contract only releases stock at that step, leaving the
	// charge for manual reconciliation.
	RefundOnShipmentFailure bool

	// EnforceOwnership makes CancelOrder verify that the caller's
	// customer ID owns the order. Off by default: any caller may cancel
	// any known order ID.
	EnforceOwnership bool
}

// Facade is the single entry point for order operations. It owns the order
// ledger and is the only component that implements compensation logic.
type Facade struct {
	log    *slog.Logger
	cfg    Config
	tracer trace.Tracer

	ledger    OrderLedger
	inventory InventoryService
	payments  PaymentGateway
	shipping  ShippingService
	notifier  Notifier
}

func NewFacade(log *slog.Logger, cfg Config, ledger OrderLedger, inv InventoryService, pay PaymentGateway, ship ShippingService, notif Notifier) *Facade {
	return &Facade{
		log:       log,
		cfg:       cfg,
		tracer:    otel.Tracer("order-facade"),
		ledger:    ledger,
		inventory: inv,
		payments:  pay,
		shipping:  ship,
		notifier:  notif,
	}
}

// compensation undoes one committed saga step.
type compensation struct {
	name string
	run  func(context.Context) error
}

// sagaState accumulates compensations as steps commit. On failure they run
// in reverse order, so exactly the committed steps are undone.
type sagaState struct {
	comps []compensation
}

func (s *sagaState) push(name string, run func(context.Context) error) {
	s.comps = append(s.comps, compensation{name: name, run: run})
}

// PlaceOrder runs the full placement saga. It always returns a definitive
// result: on failure the reason is human-readable and the generated order ID
// is still present for correlation.
func (f *Facade) PlaceOrder(ctx context.Context, req PlaceOrderRequest) PlaceOrderResult {
	orderID := uuid.NewString()

	ctx, span := f.tracer.Start(ctx, "PlaceOrder", trace.WithAttributes(
		attribute.String("order_id", orderID),
		attribute.String("customer_id", req.CustomerID),
		attribute.String("sku", req.SKU),
		attribute.Int("qty", req.Quantity),
	))
	defer span.End()

	if req.ShippingType == "" {
		req.ShippingType = shipping.DefaultType
	}

	f.log.Info("placing order",
		"order_id", orderID, "customer_id", req.CustomerID,
		"sku", req.SKU, "qty", req.Quantity, "shipping_type", req.ShippingType)

	saga := &sagaState{}

	// Step 1: stock availability. Advisory only, nothing committed yet.
	stepCtx, stepSpan := f.tracer.Start(ctx, "saga.CheckStock")
	available, err := f.inventory.CheckStock(stepCtx, req.SKU, req.Quantity)
	stepSpan.End()
	if err != nil {
		return f.failInternal(ctx, saga, orderID, req.CustomerID, stepCheckStock, err)
	}
	if !available {
		return f.fail(ctx, saga, orderID, req.CustomerID, stepCheckStock, "insufficient stock")
	}

	// Step 2: reserve. The check above may have raced another order.
	stepCtx, stepSpan = f.tracer.Start(ctx, "saga.ReserveStock")
	reserved, err := f.inventory.Reserve(stepCtx, req.SKU, req.Quantity)
	stepSpan.End()
	if err != nil {
		return f.failInternal(ctx, saga, orderID, req.CustomerID, stepReserveStock, err)
	}
	if !reserved {
		return f.fail(ctx, saga, orderID, req.CustomerID, stepReserveStock, "stock reservation failed")
	}
	saga.push("release_stock", func(ctx context.Context) error {
		return f.inventory.Release(ctx, req.SKU, req.Quantity)
	})

	// Step 3: price. Pure computation.
	items := []shipping.Item{{SKU: req.SKU, Qty: req.Quantity, WeightKG: 1}}
	shippingCost := f.shipping.QuoteCost(ctx, items, req.ShippingType)
	total := req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))).Add(shippingCost)

	// Step 4: charge.
	stepCtx, stepSpan = f.tracer.Start(ctx, "saga.Charge")
	receipt, err := f.payments.Charge(stepCtx, req.Card, total)
	stepSpan.End()
	if err != nil {
		return f.failInternal(ctx, saga, orderID, req.CustomerID, stepCharge, err)
	}
	if !receipt.Approved {
		res := f.fail(ctx, saga, orderID, req.CustomerID, stepCharge, "payment failed: "+receipt.Message)
		// Best effort; a notification failure never changes the outcome.
		if _, nerr := f.notifier.Send(ctx, req.CustomerID, notification.KindPaymentFailed, notification.Payload{
			OrderID: orderID,
			Reason:  receipt.Message,
		}); nerr != nil {
			f.log.Warn("payment-failed notification skipped", "order_id", orderID, "err", nerr)
		}
		return res
	}
	if f.cfg.RefundOnShipmentFailure {
		saga.push("refund_payment", func(ctx context.Context) error {
			r, err := f.payments.Refund(ctx, receipt.TransactionID, total)
			if err != nil {
				return err
			}
			if !r.Approved {
				return errors.New(r.Message)
			}
			return nil
		})
	}

	// Step 5: shipment.
	stepCtx, stepSpan = f.tracer.Start(ctx, "saga.CreateShipment")
	shipment, err := f.shipping.CreateShipment(stepCtx, req.CustomerID, items, req.ShippingAddress, req.ShippingType)
	stepSpan.End()
	if err != nil {
		return f.failInternal(ctx, saga, orderID, req.CustomerID, stepCreateShipment, err)
	}
	if !shipment.Created {
		res := f.fail(ctx, saga, orderID, req.CustomerID, stepCreateShipment, "shipment failed: "+shipment.Message)
		// The charge committed before this step aborted; surface its ID
		// so the payment can be reconciled manually.
		res.TransactionID = receipt.TransactionID
		return res
	}

	// Step 6: notifications. Fire and forget.
	payload := notification.Payload{
		OrderID:        orderID,
		Amount:         total,
		TransactionID:  receipt.TransactionID,
		TrackingNumber: shipment.TrackingNumber,
		ETA:            shipment.EstimatedDelivery,
	}
	if _, nerr := f.notifier.Send(ctx, req.CustomerID, notification.KindOrderConfirmed, payload,
		notification.ChannelEmail, notification.ChannelSMS); nerr != nil {
		f.log.Warn("confirmation notification skipped", "order_id", orderID, "err", nerr)
	}
	if _, nerr := f.notifier.Send(ctx, req.CustomerID, notification.KindOrderShipped, payload); nerr != nil {
		f.log.Warn("shipped notification skipped", "order_id", orderID, "err", nerr)
	}

	// Step 7: commit to the ledger.
	f.ledger.Append(ctx, domain.Order{
		ID:                orderID,
		CustomerID:        req.CustomerID,
		SKU:               req.SKU,
		Quantity:          req.Quantity,
		TransactionID:     receipt.TransactionID,
		ShipmentID:        shipment.ShipmentID,
		TrackingNumber:    shipment.TrackingNumber,
		TotalAmount:       total,
		Status:            domain.StatusCompleted,
		EstimatedDelivery: shipment.EstimatedDelivery,
		ShippingType:      req.ShippingType,
		CreatedAt:         time.Now().UTC(),
	})
	metrics.OrdersPlaced.Inc()

	f.log.Info("order placed",
		"order_id", orderID, "tracking_number", shipment.TrackingNumber,
		"total", total, "estimated_delivery", shipment.EstimatedDelivery)

	return PlaceOrderResult{
		Success:           true,
		OrderID:           orderID,
		TransactionID:     receipt.TransactionID,
		ShipmentID:        shipment.ShipmentID,
		TrackingNumber:    shipment.TrackingNumber,
		TotalAmount:       total,
		EstimatedDelivery: shipment.EstimatedDelivery,
	}
}

// CancelOrder cancels a completed order. Every sub-step is best-effort; only
// a failed ledger lookup (or, when enabled, an ownership mismatch) returns
// false.
func (f *Facade) CancelOrder(ctx context.Context, orderID, customerID string) bool {
	ctx, span := f.tracer.Start(ctx, "CancelOrder", trace.WithAttributes(
		attribute.String("order_id", orderID),
	))
	defer span.End()

	o, ok := f.ledger.Get(ctx, orderID)
	if !ok {
		f.log.Warn("cancel: order not found", "order_id", orderID)
		return false
	}
	if f.cfg.EnforceOwnership && o.CustomerID != customerID {
		f.log.Warn("cancel: ownership mismatch", "order_id", orderID, "customer_id", customerID)
		return false
	}

	if o.ShipmentID != "" {
		if cancelled := f.shipping.CancelShipment(ctx, o.ShipmentID); !cancelled {
			f.log.Warn("cancel: shipment cancellation failed", "order_id", orderID, "shipment_id", o.ShipmentID)
		}
	}
	if o.TransactionID != "" && o.TotalAmount.IsPositive() {
		r, err := f.payments.Refund(ctx, o.TransactionID, o.TotalAmount)
		if err != nil || !r.Approved {
			f.log.Warn("cancel: refund failed", "order_id", orderID, "tx", o.TransactionID, "err", err)
		}
	}
	if err := f.inventory.Release(ctx, o.SKU, o.Quantity); err != nil {
		f.log.Error("cancel: stock release failed", "order_id", orderID, "sku", o.SKU, "err", err)
	}

	f.notifier.Notify(ctx, customerID,
		fmt.Sprintf("Your order %s has been cancelled. Any refund will be processed within 3-5 business days.", shortID(orderID)),
		notification.ChannelEmail)

	f.ledger.SetStatus(ctx, orderID, domain.StatusCancelled)
	metrics.OrdersCancelled.Inc()

	f.log.Info("order cancelled", "order_id", orderID)
	return true
}

// OrderStatus looks up an order and, when it has a tracking number, attaches
// a live carrier status to the returned copy. The enrichment is transient.
func (f *Facade) OrderStatus(ctx context.Context, orderID string) (domain.Order, bool) {
	o, ok := f.ledger.Get(ctx, orderID)
	if !ok {
		return domain.Order{}, false
	}
	if o.TrackingNumber != "" {
		ts := f.shipping.TrackShipment(ctx, o.TrackingNumber)
		o.ShippingStatus = &domain.TrackingInfo{
			Status:     ts.Status,
			LastUpdate: ts.LastUpdate,
			Location:   ts.Location,
		}
	}
	return o, true
}

// OrderHistory returns a customer's orders in insertion order.
func (f *Facade) OrderHistory(ctx context.Context, customerID string) []domain.Order {
	return f.ledger.ByCustomer(ctx, customerID)
}

// SystemStats composes ledger counters with collaborator snapshots. Read
// only; nothing is mutated.
func (f *Facade) SystemStats(ctx context.Context) SystemStats {
	orders, failures := f.ledger.Counts(ctx)

	rate := 0.0
	if orders+failures > 0 {
		rate = math.Round(float64(orders)/float64(orders+failures)*10000) / 100
	}

	return SystemStats{
		SuccessfulOrders: orders,
		FailedOrders:     failures,
		SuccessRatePct:   rate,
		Inventory:        f.inventory.ListProducts(ctx),
		Notifications:    f.notifier.Stats(ctx),
		Carriers:         f.shipping.ListCarriers(ctx),
	}
}

// fail aborts the saga: registered compensations run in reverse order, the
// attempt is recorded, and a failure result is returned. Compensation errors
// are logged and swallowed so the original reason reaches the caller.
func (f *Facade) fail(ctx context.Context, saga *sagaState, orderID, customerID, step, reason string) PlaceOrderResult {
	for i := len(saga.comps) - 1; i >= 0; i-- {
		c := saga.comps[i]
		if err := c.run(ctx); err != nil {
			f.log.Error("compensation failed", "order_id", orderID, "compensation", c.name, "err", err)
		}
	}
	saga.comps = nil

	f.ledger.RecordFailure(ctx, domain.FailedOrder{
		OrderID:    orderID,
		CustomerID: customerID,
		Reason:     reason,
		At:         time.Now().UTC(),
	})
	metrics.OrdersFailed.WithLabelValues(step).Inc()

	f.log.Warn("order failed", "order_id", orderID, "step", step, "reason", reason)
	return PlaceOrderResult{OrderID: orderID, Reason: reason}
}

// failInternal is the catch-all for unexpected collaborator errors.
func (f *Facade) failInternal(ctx context.Context, saga *sagaState, orderID, customerID, step string, err error) PlaceOrderResult {
	f.log.Error("unexpected failure", "order_id", orderID, "step", step, "err", err)
	return f.fail(ctx, saga, orderID, customerID, stepInternal, fmt.Sprintf("internal error: %v", err))
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
