package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storefront/orderflow/pkg/logging"
	"github.com/storefront/orderflow/pkg/shutdown"
	"github.com/storefront/orderflow/pkg/tracing"

	"github.com/storefront/orderflow/internal/inventory"
	"github.com/storefront/orderflow/internal/notification"
	"github.com/storefront/orderflow/internal/order/application"
	orderhttp "github.com/storefront/orderflow/internal/order/infrastructure/http"
	"github.com/storefront/orderflow/internal/order/infrastructure/memory"
	"github.com/storefront/orderflow/internal/payment"
	"github.com/storefront/orderflow/internal/shipping"
)

func main() {
	log := logging.New()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	// Configuration
	httpAddr := env("HTTP_ADDR", ":8080")
	otlpEndpoint := env("OTLP_ENDPOINT", "localhost:4318")
	refundOnShipmentFailure := envBool("REFUND_ON_SHIPMENT_FAILURE", false)
	enforceOwnership := envBool("ENFORCE_CANCEL_OWNERSHIP", false)

	tp, err := tracing.Init(ctx, "order-service", otlpEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	// Collaborators and ledger
	inv := inventory.NewService(log)
	gateway := payment.NewGateway(log)
	carrier := shipping.NewService(log)
	notifier := notification.NewService(log)
	ledger := memory.NewLedger(log)

	facade := application.NewFacade(log, application.Config{
		RefundOnShipmentFailure: refundOnShipmentFailure,
		EnforceOwnership:        enforceOwnership,
	}, ledger, inv, gateway, carrier, notifier)
	handler := orderhttp.NewHandler(log, facade)

	// HTTP server
	r := chi.NewRouter()
	r.Mount("/", handler.Routes())
	r.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         httpAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", httpAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("order-service shutdown complete")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
