// Package inventory simulates the warehouse stock subsystem. Reservation is
// a single check-and-decrement under a mutex so two concurrent callers can
// never both pass the availability check and over-reserve.
package inventory

import (
	"context"
	"log/slog"
	"sync"
)

type Service struct {
	log *slog.Logger

	mu    sync.Mutex
	stock map[string]int
}

func NewService(log *slog.Logger) *Service {
	return &Service{
		log: log,
		stock: map[string]int{
			"MONITOR-27":   10,
			"WASHER-7KG":   2,
			"LAPTOP-15":    5,
			"SMARTPHONE-X": 8,
			"TABLET-10":    3,
		},
	}
}

// CheckStock reports whether qty units of sku are currently available.
// The answer is advisory: only Reserve commits stock.
func (s *Service) CheckStock(ctx context.Context, sku string, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[sku] >= qty, nil
}

// Reserve atomically decrements stock for sku. A reservation that would
// drive the level negative is rejected, not clamped.
func (s *Service) Reserve(ctx context.Context, sku string, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stock[sku] < qty {
		s.log.Warn("reservation rejected", "sku", sku, "requested", qty, "available", s.stock[sku])
		return false, nil
	}
	s.stock[sku] -= qty
	s.log.Info("stock reserved", "sku", sku, "qty", qty, "remaining", s.stock[sku])
	return true, nil
}

// Release returns previously reserved units to stock.
func (s *Service) Release(ctx context.Context, sku string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stock[sku] += qty
	s.log.Info("stock released", "sku", sku, "qty", qty, "available", s.stock[sku])
	return nil
}

// CurrentStock returns the available units for sku, zero if unknown.
func (s *Service) CurrentStock(sku string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[sku]
}

// ListProducts returns a snapshot of the full catalog.
func (s *Service) ListProducts(ctx context.Context) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(s.stock))
	for sku, qty := range s.stock {
		out[sku] = qty
	}
	return out
}

// SetStock overrides the level for sku. Intended for seeding and tests.
func (s *Service) SetStock(sku string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[sku] = qty
}
