package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/orderflow/internal/inventory"
	"github.com/storefront/orderflow/internal/notification"
	"github.com/storefront/orderflow/internal/order/application"
	"github.com/storefront/orderflow/internal/order/infrastructure/memory"
	"github.com/storefront/orderflow/internal/payment"
	"github.com/storefront/orderflow/internal/shipping"
)

func newTestHandler() *Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	facade := application.NewFacade(log, application.Config{},
		memory.NewLedger(log),
		inventory.NewService(log),
		payment.NewGateway(log),
		shipping.NewService(log),
		notification.NewService(log),
	)
	return NewHandler(log, facade)
}

func placeOrderBody(sku string, qty int, card string) *bytes.Buffer {
	body, _ := json.Marshal(map[string]any{
		"customer_id":   "cust-1",
		"sku":           sku,
		"qty":           qty,
		"unit_price":    "299.99",
		"shipping_type": "standard",
		"payment":       map[string]string{"card_number": card, "cvv": "123", "expiry": "12/30"},
	})
	return bytes.NewBuffer(body)
}

func TestPlaceOrderEndpoint(t *testing.T) {
	srv := httptest.NewServer(newTestHandler().Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/orders", "application/json", placeOrderBody("MONITOR-27", 1, "4242424242424242"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res placeOrderResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.OrderID)
	assert.NotEmpty(t, res.TrackingNumber)
	assert.Equal(t, "309.99", res.TotalAmount.StringFixed(2))
}

func TestPlaceOrderEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(newTestHandler().Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/orders", "application/json", placeOrderBody("WASHER-7KG", 5, "4242424242424242"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var res placeOrderResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "insufficient stock")
	assert.NotEmpty(t, res.OrderID)
}

func TestPlaceOrderEndpointValidation(t *testing.T) {
	srv := httptest.NewServer(newTestHandler().Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/orders", "application/json", bytes.NewBufferString(`{"sku":"MONITOR-27"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetOrderEndpoint(t *testing.T) {
	srv := httptest.NewServer(newTestHandler().Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/orders", "application/json", placeOrderBody("MONITOR-27", 1, "4242424242424242"))
	require.NoError(t, err)
	var placed placeOrderResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&placed))
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/orders/" + placed.OrderID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var order orderResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	assert.Equal(t, placed.OrderID, order.OrderID)
	assert.Equal(t, "completed", order.Status)
	assert.NotNil(t, order.ShippingStatus, "status query enriches with live tracking")
}

func TestGetOrderEndpointNotFound(t *testing.T) {
	srv := httptest.NewServer(newTestHandler().Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/orders/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCancelOrderEndpoint(t *testing.T) {
	srv := httptest.NewServer(newTestHandler().Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/orders", "application/json", placeOrderBody("MONITOR-27", 1, "4242424242424242"))
	require.NoError(t, err)
	var placed placeOrderResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&placed))
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/orders/"+placed.OrderID+"/cancel", "application/json",
		bytes.NewBufferString(`{"customer_id":"cust-1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	srv := httptest.NewServer(newTestHandler().Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Contains(t, stats, "success_rate_percentage")
	assert.Contains(t, stats, "inventory_status")
	assert.Contains(t, stats, "available_carriers")
}
