// Package server is the JSON API of the order board: store and customer
// order lists, order detail, fulfillment actions and the store catalog.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nazeru/storefront-orders-go/internal/auth"
	catalog "github.com/nazeru/storefront-orders-go/internal/catalog/domain"
	"github.com/nazeru/storefront-orders-go/internal/order/domain"
	"github.com/nazeru/storefront-orders-go/internal/order/fulfillment"
	"github.com/nazeru/storefront-orders-go/pkg/metrics"
	"github.com/nazeru/storefront-orders-go/pkg/query"
)

// API is everything the board reads from the store API.
// *storeapi.Client satisfies it.
type API interface {
	fulfillment.OrderAPI
	CustomerOrders(ctx context.Context, cred auth.Credential) ([]domain.Order, error)
	StoreOrders(ctx context.Context, cred auth.Credential) ([]domain.Order, error)
	Invoice(ctx context.Context, cred auth.Credential, id domain.OrderID) ([]byte, string, error)
	StoreProducts(ctx context.Context, storeID string) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id catalog.ProductID) (catalog.Product, error)
}

// pageWindow is the number of pagination buttons rendered.
const pageWindow = 5

type Server struct {
	api      API
	actions  *fulfillment.Service
	metrics  *metrics.ServerMetrics
	pageSize int
	now      func() time.Time
}

func New(api API, actions *fulfillment.Service, m *metrics.ServerMetrics, pageSize int) *Server {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	return &Server{api: api, actions: actions, metrics: m, pageSize: pageSize, now: time.Now}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	s.handle(mux, "GET /store/orders", "store_orders", s.listOrders(auth.RoleStore))
	s.handle(mux, "GET /my/orders", "my_orders", s.listOrders(auth.RoleCustomer))
	s.handle(mux, "GET /store/orders/{id}", "store_order", s.orderDetail(auth.RoleStore))
	s.handle(mux, "GET /my/orders/{id}", "my_order", s.orderDetail(auth.RoleCustomer))
	s.handle(mux, "GET /store/orders/{id}/invoice", "store_invoice", s.invoice(auth.RoleStore))
	s.handle(mux, "GET /my/orders/{id}/invoice", "my_invoice", s.invoice(auth.RoleCustomer))

	s.handle(mux, "POST /store/orders/{id}/status", "update_status", s.updateStatus)
	s.handle(mux, "POST /store/orders/{id}/tracking", "add_tracking", s.addTracking)
	s.handle(mux, "POST /store/orders/{id}/notes", "add_note", s.addNote)

	s.handle(mux, "GET /stores/{id}/products", "store_products", s.storeProducts)
	s.handle(mux, "GET /products/{id}", "product", s.product)
	return mux
}

func (s *Server) handle(mux *http.ServeMux, pattern, name string, h http.HandlerFunc) {
	if s.metrics == nil {
		mux.HandleFunc(pattern, h)
		return
	}
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		s.metrics.Observe(name, rec.status, start)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
