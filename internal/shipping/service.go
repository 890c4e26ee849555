// Package shipping simulates the carrier subsystem: cost quotes, shipment
// creation, tracking and cancellation across a small fixed carrier catalog.
package shipping

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one shipment line.
type Item struct {
	SKU      string
	Qty      int
	WeightKG float64
}

// Address is the delivery destination. City drives the coverage zone.
type Address struct {
	Line1   string
	City    string
	Country string
}

// Shipment is the outcome of CreateShipment.
type Shipment struct {
	Created           bool
	ShipmentID        string
	TrackingNumber    string
	Carrier           string
	ETADays           int
	EstimatedDelivery string // YYYY-MM-DD
	Message           string
}

// TrackingStatus is a point-in-time status for a tracking number.
type TrackingStatus struct {
	TrackingNumber string
	Status         string
	LastUpdate     string
	Location       string
}

// Carrier describes one shipping tier.
type Carrier struct {
	Name string          `json:"name"`
	Days int             `json:"days"`
	Cost decimal.Decimal `json:"cost"`
}

const DefaultType = "standard"

var trackingStatuses = []string{
	"received at distribution center",
	"in transit",
	"out for delivery",
	"delivered",
}

type Service struct {
	log      *slog.Logger
	carriers map[string]Carrier
	zones    map[string][]string
	now      func() time.Time
}

func NewService(log *slog.Logger) *Service {
	return &Service{
		log: log,
		carriers: map[string]Carrier{
			"standard": {Name: "National Post", Days: 5, Cost: decimal.NewFromInt(10)},
			"express":  {Name: "Express Delivery", Days: 3, Cost: decimal.NewFromInt(25)},
			"premium":  {Name: "Premium Logistics", Days: 1, Cost: decimal.NewFromInt(50)},
		},
		zones: map[string][]string{
			"zone_1": {"Lima", "Callao", "Miraflores"},
			"zone_2": {"Arequipa", "Trujillo", "Chiclayo"},
			"zone_3": {"Cusco", "Huancayo", "Piura"},
		},
		now: time.Now,
	}
}

// QuoteCost returns the shipping cost for items: the carrier base cost plus
// a surcharge of 5 per kilogram over the first two.
func (s *Service) QuoteCost(ctx context.Context, items []Item, shippingType string) decimal.Decimal {
	carrier := s.carrier(shippingType)

	var totalWeight float64
	for _, it := range items {
		w := it.WeightKG
		if w <= 0 {
			w = 1
		}
		totalWeight += w
	}

	surcharge := decimal.NewFromFloat(totalWeight - 2).Mul(decimal.NewFromInt(5))
	if surcharge.IsNegative() {
		surcharge = decimal.Zero
	}
	return carrier.Cost.Add(surcharge)
}

// CreateShipment books a shipment for the customer. Remote-zone destinations
// add one day to the carrier's base delivery time.
func (s *Service) CreateShipment(ctx context.Context, customerID string, items []Item, addr *Address, shippingType string) (Shipment, error) {
	if len(items) == 0 {
		return Shipment{Message: "no items to ship"}, nil
	}
	if customerID == "" {
		return Shipment{Message: "customer id required"}, nil
	}

	carrier := s.carrier(shippingType)

	shipmentID := uuid.NewString()
	trackingNumber := "TRK" + strings.ToUpper(shipmentID[:8])

	city := s.customerCity(customerID, addr)
	zone := s.zone(city)

	days := carrier.Days
	if zone == "zone_3" {
		days++
	}
	delivery := s.now().AddDate(0, 0, days)

	s.log.Info("shipment created",
		"tracking_number", trackingNumber, "carrier", carrier.Name,
		"city", city, "zone", zone, "estimated_delivery", delivery.Format("2006-01-02"))

	return Shipment{
		Created:           true,
		ShipmentID:        shipmentID,
		TrackingNumber:    trackingNumber,
		Carrier:           carrier.Name,
		ETADays:           days,
		EstimatedDelivery: delivery.Format("2006-01-02"),
		Message:           fmt.Sprintf("shipment scheduled via %s", carrier.Name),
	}, nil
}

// TrackShipment returns the current (simulated) status for a tracking number.
func (s *Service) TrackShipment(ctx context.Context, trackingNumber string) TrackingStatus {
	return TrackingStatus{
		TrackingNumber: trackingNumber,
		Status:         trackingStatuses[rand.Intn(len(trackingStatuses))],
		LastUpdate:     s.now().Format("2006-01-02 15:04:05"),
		Location:       "Lima distribution center",
	}
}

// CancelShipment cancels a booked shipment.
func (s *Service) CancelShipment(ctx context.Context, shipmentID string) bool {
	s.log.Info("shipment cancelled", "shipment_id", shipmentID)
	return true
}

// ListCarriers returns a snapshot of the carrier catalog.
func (s *Service) ListCarriers(ctx context.Context) map[string]Carrier {
	out := make(map[string]Carrier, len(s.carriers))
	for k, v := range s.carriers {
		out[k] = v
	}
	return out
}

// carrier resolves a shipping type, falling back to standard for unknowns.
func (s *Service) carrier(shippingType string) Carrier {
	if c, ok := s.carriers[shippingType]; ok {
		return c
	}
	return s.carriers[DefaultType]
}

func (s *Service) customerCity(customerID string, addr *Address) string {
	if addr != nil && addr.City != "" {
		return addr.City
	}
	cities := []string{"Lima", "Arequipa", "Trujillo", "Cusco", "Chiclayo"}
	h := fnv.New32a()
	h.Write([]byte(customerID))
	return cities[h.Sum32()%uint32(len(cities))]
}

func (s *Service) zone(city string) string {
	for zone, cities := range s.zones {
		for _, c := range cities {
			if c == city {
				return zone
			}
		}
	}
	return "zone_2"
}
