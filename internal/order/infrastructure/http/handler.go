package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/storefront/orderflow/internal/order/application"
	"github.com/storefront/orderflow/internal/order/domain"
	"github.com/storefront/orderflow/internal/payment"
	"github.com/storefront/orderflow/internal/shipping"
)

type Handler struct {
	log    *slog.Logger
	facade *application.Facade
	tracer trace.Tracer
}

func NewHandler(log *slog.Logger, facade *application.Facade) *Handler {
	return &Handler{
		log:    log,
		facade: facade,
		tracer: otel.Tracer("order-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.placeOrder)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/customers/{id}/orders", h.orderHistory)
	r.Get("/stats", h.stats)

	return r
}

type addressReq struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type paymentReq struct {
	CardNumber string `json:"card_number"`
	CVV        string `json:"cvv"`
	Expiry     string `json:"expiry"`
}

type placeOrderReq struct {
	CustomerID   string          `json:"customer_id"`
	SKU          string          `json:"sku"`
	Qty          int             `json:"qty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ShippingType string          `json:"shipping_type"`
	Address      *addressReq     `json:"shipping_address"`
	Payment      paymentReq      `json:"payment"`
}

type placeOrderResp struct {
	Success           bool            `json:"success"`
	OrderID           string          `json:"order_id"`
	Reason            string          `json:"reason,omitempty"`
	TransactionID     string          `json:"transaction_id,omitempty"`
	ShipmentID        string          `json:"shipment_id,omitempty"`
	TrackingNumber    string          `json:"tracking_number,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	EstimatedDelivery string          `json:"estimated_delivery,omitempty"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder")
	defer span.End()

	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.CustomerID == "" || req.SKU == "" || req.Qty <= 0 || !req.UnitPrice.IsPositive() {
		http.Error(w, "customer_id, sku, positive qty and unit_price are required", http.StatusBadRequest)
		return
	}

	var addr *shipping.Address
	if req.Address != nil {
		addr = &shipping.Address{Line1: req.Address.Line1, City: req.Address.City, Country: req.Address.Country}
	}

	res := h.facade.PlaceOrder(ctx, application.PlaceOrderRequest{
		CustomerID:      req.CustomerID,
		SKU:             req.SKU,
		Quantity:        req.Qty,
		Card:            payment.CardInfo{CardNumber: req.Payment.CardNumber, CVV: req.Payment.CVV, Expiry: req.Payment.Expiry},
		UnitPrice:       req.UnitPrice,
		ShippingAddress: addr,
		ShippingType:    req.ShippingType,
	})

	status := http.StatusCreated
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, placeOrderResp{
		Success:           res.Success,
		OrderID:           res.OrderID,
		Reason:            res.Reason,
		TransactionID:     res.TransactionID,
		ShipmentID:        res.ShipmentID,
		TrackingNumber:    res.TrackingNumber,
		TotalAmount:       res.TotalAmount,
		EstimatedDelivery: res.EstimatedDelivery,
	})
}

type cancelOrderReq struct {
	CustomerID string `json:"customer_id"`
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CancelOrder")
	defer span.End()

	var req cancelOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	orderID := chi.URLParam(r, "id")
	if !h.facade.CancelOrder(ctx, orderID, req.CustomerID) {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"order_id": orderID, "status": string(domain.StatusCancelled)})
}

type trackingResp struct {
	Status     string `json:"status"`
	LastUpdate string `json:"last_update"`
	Location   string `json:"location"`
}

type orderResp struct {
	OrderID           string          `json:"order_id"`
	CustomerID        string          `json:"customer_id"`
	SKU               string          `json:"sku"`
	Qty               int             `json:"qty"`
	TransactionID     string          `json:"transaction_id"`
	ShipmentID        string          `json:"shipment_id"`
	TrackingNumber    string          `json:"tracking_number"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Status            string          `json:"status"`
	EstimatedDelivery string          `json:"estimated_delivery"`
	ShippingStatus    *trackingResp   `json:"shipping_status,omitempty"`
}

func toOrderResp(o domain.Order) orderResp {
	resp := orderResp{
		OrderID:           o.ID,
		CustomerID:        o.CustomerID,
		SKU:               o.SKU,
		Qty:               o.Quantity,
		TransactionID:     o.TransactionID,
		ShipmentID:        o.ShipmentID,
		TrackingNumber:    o.TrackingNumber,
		TotalAmount:       o.TotalAmount,
		Status:            string(o.Status),
		EstimatedDelivery: o.EstimatedDelivery,
	}
	if o.ShippingStatus != nil {
		resp.ShippingStatus = &trackingResp{
			Status:     o.ShippingStatus.Status,
			LastUpdate: o.ShippingStatus.LastUpdate,
			Location:   o.ShippingStatus.Location,
		}
	}
	return resp
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrderStatus")
	defer span.End()

	o, ok := h.facade.OrderStatus(ctx, chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(o))
}

func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrderHistory")
	defer span.End()

	orders := h.facade.OrderHistory(ctx, chi.URLParam(r, "id"))
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetSystemStats")
	defer span.End()

	st := h.facade.SystemStats(ctx)
	writeJSON(w, http.StatusOK, map[string]any{
		"total_successful_orders": st.SuccessfulOrders,
		"total_failed_orders":     st.FailedOrders,
		"success_rate_percentage": st.SuccessRatePct,
		"inventory_status":        st.Inventory,
		"notification_stats":      st.Notifications,
		"available_carriers":      st.Carriers,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
