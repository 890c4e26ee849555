// Package notification simulates the multi-channel customer messaging
// subsystem. Order notifications are a closed set of kinds, each with a
// structured payload validated before any channel is attempted.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
	ChannelInApp Channel = "in_app"
)

// Kind identifies an order notification template.
type Kind string

const (
	KindOrderConfirmed Kind = "order_confirmed"
	KindOrderShipped   Kind = "order_shipped"
	KindOrderDelivered Kind = "order_delivered"
	KindPaymentFailed  Kind = "payment_failed"
)

// Payload carries the order fields referenced by the templates. Each kind
// requires a subset; Send rejects a payload missing a required field.
type Payload struct {
	OrderID        string
	Amount         decimal.Decimal
	TransactionID  string
	TrackingNumber string
	ETA            string
	Reason         string
}

var (
	ErrUnknownKind  = errors.New("unknown notification kind")
	ErrMissingField = errors.New("missing payload field")
)

// Record is one sent (or attempted) notification.
type Record struct {
	CustomerID string
	Message    string
	Channel    Channel
	SentAt     time.Time
}

// Stats aggregates delivery counts.
type Stats struct {
	Total      int             `json:"total"`
	ByChannel  map[Channel]int `json:"by_channel"`
	ByCustomer map[string]int  `json:"by_customer"`
}

// BroadcastResult summarizes a bulk send.
type BroadcastResult struct {
	Sent   int
	Failed int
}

type Service struct {
	log *slog.Logger

	mu          sync.Mutex
	sent        []Record
	preferences map[string][]Channel
}

func NewService(log *slog.Logger) *Service {
	return &Service{
		log:         log,
		preferences: make(map[string][]Channel),
	}
}

// Notify delivers a plain message on a single channel. Delivery failures are
// reported as false, never as a Go error: the caller treats notifications as
// best-effort.
func (s *Service) Notify(ctx context.Context, customerID, message string, ch Channel) bool {
	rec := Record{
		CustomerID: customerID,
		Message:    message,
		Channel:    ch,
		SentAt:     time.Now().UTC(),
	}

	s.mu.Lock()
	s.sent = append(s.sent, rec)
	s.mu.Unlock()

	s.log.Info("notification sent", "channel", ch, "customer_id", customerID)
	return true
}

// Send renders the template for kind and delivers it on the given channels,
// defaulting to the customer's preferred channels. The payload is validated
// first: a missing required field fails the whole send with ErrMissingField
// and nothing is delivered.
func (s *Service) Send(ctx context.Context, customerID string, kind Kind, p Payload, channels ...Channel) (map[Channel]bool, error) {
	message, err := render(kind, p)
	if err != nil {
		return nil, err
	}

	if len(channels) == 0 {
		channels = s.channelsFor(customerID)
	}

	results := make(map[Channel]bool, len(channels))
	for _, ch := range channels {
		results[ch] = s.Notify(ctx, customerID, message, ch)
	}
	return results, nil
}

// SetPreferences replaces the customer's preferred channels.
func (s *Service) SetPreferences(customerID string, channels []Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences[customerID] = channels
}

// History returns all notifications attempted for a customer, oldest first.
func (s *Service) History(customerID string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Record
	for _, r := range s.sent {
		if r.CustomerID == customerID {
			out = append(out, r)
		}
	}
	return out
}

// Broadcast fans the same message out to many customers concurrently.
func (s *Service) Broadcast(ctx context.Context, customerIDs []string, message string, ch Channel) BroadcastResult {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var res BroadcastResult

	for _, id := range customerIDs {
		id := id
		g.Go(func() error {
			ok := s.Notify(ctx, id, message, ch)
			mu.Lock()
			if ok {
				res.Sent++
			} else {
				res.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info("broadcast finished", "sent", res.Sent, "failed", res.Failed)
	return res
}

// Stats returns delivery counts by channel and customer.
func (s *Service) Stats(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Total:      len(s.sent),
		ByChannel:  make(map[Channel]int),
		ByCustomer: make(map[string]int),
	}
	for _, r := range s.sent {
		st.ByChannel[r.Channel]++
		st.ByCustomer[r.CustomerID]++
	}
	return st
}

func (s *Service) channelsFor(customerID string) []Channel {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prefs, ok := s.preferences[customerID]; ok && len(prefs) > 0 {
		return prefs
	}
	return []Channel{ChannelEmail}
}

// render validates the payload against the kind's required fields and
// produces the message text.
func render(kind Kind, p Payload) (string, error) {
	switch kind {
	case KindOrderConfirmed:
		if err := requireFields(p, fieldOrderID, fieldAmount, fieldTransactionID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Order Confirmed - #%s\n\nYour order #%s has been confirmed. Total: $%s. Transaction: %s",
			p.OrderID, p.OrderID, p.Amount.StringFixed(2), p.TransactionID), nil

	case KindOrderShipped:
		if err := requireFields(p, fieldOrderID, fieldTrackingNumber, fieldETA); err != nil {
			return "", err
		}
		return fmt.Sprintf("Order Shipped - #%s\n\nYour order #%s is on its way. Tracking number: %s. Estimated delivery: %s",
			p.OrderID, p.OrderID, p.TrackingNumber, p.ETA), nil

	case KindOrderDelivered:
		if err := requireFields(p, fieldOrderID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Order Delivered - #%s\n\nYour order #%s has been delivered. Thank you for your purchase!",
			p.OrderID, p.OrderID), nil

	case KindPaymentFailed:
		if err := requireFields(p, fieldOrderID, fieldReason); err != nil {
			return "", err
		}
		return fmt.Sprintf("Payment Failed - #%s\n\nWe could not process the payment for order #%s. Reason: %s",
			p.OrderID, p.OrderID, p.Reason), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

type field string

const (
	fieldOrderID        field = "order_id"
	fieldAmount         field = "amount"
	fieldTransactionID  field = "transaction_id"
	fieldTrackingNumber field = "tracking_number"
	fieldETA            field = "eta"
	fieldReason         field = "reason"
)

func requireFields(p Payload, fields ...field) error {
	for _, f := range fields {
		missing := false
		switch f {
		case fieldOrderID:
			missing = p.OrderID == ""
		case fieldAmount:
			missing = !p.Amount.IsPositive()
		case fieldTransactionID:
			missing = p.TransactionID == ""
		case fieldTrackingNumber:
			missing = p.TrackingNumber == ""
		case fieldETA:
			missing = p.ETA == ""
		case fieldReason:
			missing = p.Reason == ""
		}
		if missing {
			return fmt.Errorf("%w: %s", ErrMissingField, f)
		}
	}
	return nil
}
