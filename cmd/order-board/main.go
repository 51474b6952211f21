package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nazeru/storefront-orders-go/internal/order/fulfillment"
	"github.com/nazeru/storefront-orders-go/internal/server"
	"github.com/nazeru/storefront-orders-go/internal/storeapi"
	"github.com/nazeru/storefront-orders-go/pkg/config"
	"github.com/nazeru/storefront-orders-go/pkg/kafka"
	"github.com/nazeru/storefront-orders-go/pkg/metrics"
	"github.com/nazeru/storefront-orders-go/pkg/notify"
	"github.com/nazeru/storefront-orders-go/pkg/outbox"
)

const service = "order_board"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	api := storeapi.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// With a database, events go through the outbox and a relay publishes
	// them. Without one they are written to Kafka directly.
	notifiers := notify.Multi{notify.Log{Service: "order-board"}}
	kafkaClient := kafka.NewClient(cfg.Kafka.Brokers)
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err = pgxpool.New(connectCtx, cfg.DatabaseURL)
		if err == nil {
			_, err = pool.Exec(connectCtx, outbox.Schema)
		}
		cancel()
		if err != nil {
			log.Fatalf("db error: %v", err)
		}
		defer pool.Close()
		notifiers = append(notifiers, outbox.Notifier{DB: pool, Topic: cfg.Kafka.Topic})
	}
	if kafkaClient.Enabled() {
		writer := kafkaClient.NewWriter(cfg.Kafka.Topic)
		defer writer.Close()
		if pool != nil {
			go outbox.Relay(ctx, pool, writer, time.Second, 100)
		} else {
			notifiers = append(notifiers, notify.Kafka{Writer: writer})
		}
	}

	actions := fulfillment.NewService(api,
		fulfillment.WithNotifier(notifiers),
		fulfillment.WithMetrics(metrics.NewActionMetrics(prometheus.DefaultRegisterer, service)),
		fulfillment.WithServiceName("order-board"),
	)
	srv := server.New(api, actions, metrics.NewServerMetrics(prometheus.DefaultRegisterer, service), cfg.PageSize)

	mux := http.NewServeMux()
	mux.Handle("/", srv.Routes())
	mux.Handle("/metrics", metrics.Handler())

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("order-board listening on :%s (api=%s, kafka=%v, outbox=%v)", cfg.Port, cfg.APIBaseURL, kafkaClient.Enabled(), pool != nil)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server error: %v", err)
	}
}
