// Package payment simulates the card payment gateway. Card behavior is keyed
// off the leading digit: 4 and 5 approve, everything else declines.
package payment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardInfo is the payment instrument supplied by the caller.
type CardInfo struct {
	CardNumber string
	CVV        string
	Expiry     string // MM/YY
}

// Receipt is the outcome of a charge or refund. A declined charge is a
// successful call with Approved=false; Go errors are reserved for
// unexpected gateway failures.
type Receipt struct {
	Approved      bool
	TransactionID string
	Message       string
	Amount        decimal.Decimal
	CreatedAt     time.Time
}

type Gateway struct {
	log *slog.Logger
}

func NewGateway(log *slog.Logger) *Gateway {
	return &Gateway{log: log}
}

// Charge attempts to capture amount on the given card.
func (g *Gateway) Charge(ctx context.Context, card CardInfo, amount decimal.Decimal) (Receipt, error) {
	if card.CardNumber == "" {
		return Receipt{Message: "card number required"}, nil
	}
	if !amount.IsPositive() {
		return Receipt{Message: "amount must be positive"}, nil
	}
	if len(card.CardNumber) < 15 {
		return Receipt{Message: "invalid card number"}, nil
	}

	var network string
	switch card.CardNumber[0] {
	case '4':
		network = "Visa"
	case '5':
		network = "MasterCard"
	default:
		g.log.Warn("charge declined", "card_suffix", suffix(card.CardNumber))
		return Receipt{Message: "payment declined: insufficient funds or blocked card"}, nil
	}

	r := Receipt{
		Approved:      true,
		TransactionID: uuid.NewString(),
		Message:       "payment approved via " + network,
		Amount:        amount,
		CreatedAt:     time.Now().UTC(),
	}
	g.log.Info("charge approved", "network", network, "card_suffix", suffix(card.CardNumber), "amount", amount)
	return r, nil
}

// Refund reverses a previously captured charge. The returned receipt carries
// a fresh transaction ID for the refund itself.
func (g *Gateway) Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (Receipt, error) {
	if transactionID == "" {
		return Receipt{Message: "transaction id required for refund"}, nil
	}

	r := Receipt{
		Approved:      true,
		TransactionID: uuid.NewString(),
		Message:       "refund processed",
		Amount:        amount,
		CreatedAt:     time.Now().UTC(),
	}
	g.log.Info("refund processed", "original_tx", transactionID, "amount", amount)
	return r, nil
}

// ValidateCard checks the card fields for plausible shape without charging.
func (g *Gateway) ValidateCard(card CardInfo) bool {
	if len(card.CardNumber) < 15 || len(card.CardNumber) > 19 {
		return false
	}
	if len(card.CVV) < 3 || len(card.CVV) > 4 {
		return false
	}
	return len(card.Expiry) == 5
}

func suffix(cardNumber string) string {
	if len(cardNumber) < 4 {
		return cardNumber
	}
	return cardNumber[len(cardNumber)-4:]
}
