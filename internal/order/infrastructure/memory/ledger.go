// Package memory provides the in-process order ledger. Orders live only for
// the lifetime of the process.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/storefront/orderflow/internal/order/domain"
)

// Ledger is an append-only store of orders plus a list of failed attempts.
// All access is mutex-guarded; reads return copies so concurrent readers
// never observe partial writes and callers can enrich results freely.
type Ledger struct {
	log *slog.Logger

	mu       sync.RWMutex
	orders   []domain.Order
	index    map[string]int
	failures []domain.FailedOrder
}

func NewLedger(log *slog.Logger) *Ledger {
	return &Ledger{
		log:   log,
		index: make(map[string]int),
	}
}

func (l *Ledger) Append(ctx context.Context, o domain.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.index[o.ID] = len(l.orders)
	l.orders = append(l.orders, o)
	l.log.Info("order recorded", "order_id", o.ID, "status", o.Status)
}

func (l *Ledger) Get(ctx context.Context, id string) (domain.Order, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.index[id]
	if !ok {
		return domain.Order{}, false
	}
	return l.orders[i], true
}

// ByCustomer returns the customer's orders preserving insertion order.
func (l *Ledger) ByCustomer(ctx context.Context, customerID string) []domain.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.Order
	for _, o := range l.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out
}

// SetStatus updates an order's status in place. Cancellation is a status
// change, not removal.
func (l *Ledger) SetStatus(ctx context.Context, id string, status domain.OrderStatus) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[id]
	if !ok {
		return false
	}
	l.orders[i].Status = status
	return true
}

func (l *Ledger) RecordFailure(ctx context.Context, f domain.FailedOrder) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures = append(l.failures, f)
	l.log.Info("failed order recorded", "order_id", f.OrderID, "reason", f.Reason)
}

func (l *Ledger) Failures(ctx context.Context) []domain.FailedOrder {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.FailedOrder, len(l.failures))
	copy(out, l.failures)
	return out
}

func (l *Ledger) Counts(ctx context.Context) (orders, failures int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders), len(l.failures)
}
