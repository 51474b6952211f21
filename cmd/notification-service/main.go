package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nazeru/storefront-orders-go/internal/inbox"
	"github.com/nazeru/storefront-orders-go/pkg/config"
	"github.com/nazeru/storefront-orders-go/pkg/kafka"
	"github.com/nazeru/storefront-orders-go/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatal("config error: DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(connectCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer pool.Close()

	store := inbox.NewStore(pool)
	if err := store.Migrate(connectCtx); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	srvMetrics := metrics.NewServerMetrics(prometheus.DefaultRegisterer, "notification_service")

	kafkaClient := kafka.NewClient(cfg.Kafka.Brokers)
	if kafkaClient.Enabled() {
		reader := kafkaClient.NewReader(cfg.Kafka.Topic, cfg.Kafka.GroupID)
		defer reader.Close()
		go func() {
			if err := inbox.Consume(ctx, reader, store, 2*time.Second); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("consumer stopped: %v", err)
			}
		}()
	} else {
		log.Printf("KAFKA_BROKERS not set, consumer disabled")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if err := pool.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "db_error"})
			srvMetrics.Observe("health", http.StatusServiceUnavailable, start)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		srvMetrics.Observe("health", http.StatusOK, start)
	})
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("notification-service listening on :%s (topic=%s)", cfg.Port, cfg.Kafka.Topic)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
