package notification

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSendRendersTemplate(t *testing.T) {
	s := newTestService()

	results, err := s.Send(context.Background(), "cust-1", KindOrderConfirmed, Payload{
		OrderID:       "ord-1",
		Amount:        decimal.NewFromFloat(309.99),
		TransactionID: "tx-1",
	}, ChannelEmail, ChannelSMS)
	require.NoError(t, err)
	assert.True(t, results[ChannelEmail])
	assert.True(t, results[ChannelSMS])

	history := s.History("cust-1")
	require.Len(t, history, 2)
	assert.Contains(t, history[0].Message, "ord-1")
	assert.Contains(t, history[0].Message, "309.99")
}

func TestSendMissingFieldFailsWholeSend(t *testing.T) {
	s := newTestService()

	_, err := s.Send(context.Background(), "cust-1", KindOrderShipped, Payload{OrderID: "ord-1"})
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "tracking_number")
	assert.Empty(t, s.History("cust-1"), "nothing is delivered when validation fails")
}

func TestSendUnknownKind(t *testing.T) {
	s := newTestService()

	_, err := s.Send(context.Background(), "cust-1", Kind("price_drop"), Payload{OrderID: "ord-1"})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestSendUsesPreferences(t *testing.T) {
	s := newTestService()
	s.SetPreferences("cust-1", []Channel{ChannelPush, ChannelInApp})

	_, err := s.Send(context.Background(), "cust-1", KindOrderDelivered, Payload{OrderID: "ord-1"})
	require.NoError(t, err)

	history := s.History("cust-1")
	require.Len(t, history, 2)
	assert.Equal(t, ChannelPush, history[0].Channel)
	assert.Equal(t, ChannelInApp, history[1].Channel)
}

func TestSendDefaultsToEmail(t *testing.T) {
	s := newTestService()

	_, err := s.Send(context.Background(), "cust-1", KindOrderDelivered, Payload{OrderID: "ord-1"})
	require.NoError(t, err)

	history := s.History("cust-1")
	require.Len(t, history, 1)
	assert.Equal(t, ChannelEmail, history[0].Channel)
}

func TestBroadcast(t *testing.T) {
	s := newTestService()

	res := s.Broadcast(context.Background(), []string{"a", "b", "c"}, "maintenance tonight", ChannelEmail)
	assert.Equal(t, 3, res.Sent)
	assert.Zero(t, res.Failed)
	assert.Len(t, s.History("b"), 1)
}

func TestStats(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	s.Notify(ctx, "cust-1", "hi", ChannelEmail)
	s.Notify(ctx, "cust-1", "hi again", ChannelSMS)
	s.Notify(ctx, "cust-2", "hello", ChannelEmail)

	stats := s.Stats(ctx)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByChannel[ChannelEmail])
	assert.Equal(t, 1, stats.ByChannel[ChannelSMS])
	assert.Equal(t, 2, stats.ByCustomer["cust-1"])
}

func TestStatsEmpty(t *testing.T) {
	s := newTestService()

	stats := s.Stats(context.Background())
	assert.Zero(t, stats.Total)
	assert.Empty(t, stats.ByChannel)
}
