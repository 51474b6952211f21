package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nazeru/storefront-orders-go/internal/auth"
	"github.com/nazeru/storefront-orders-go/internal/board"
	"github.com/nazeru/storefront-orders-go/internal/listing"
	"github.com/nazeru/storefront-orders-go/internal/order/domain"
	"github.com/nazeru/storefront-orders-go/internal/order/fulfillment"
	"github.com/nazeru/storefront-orders-go/internal/order/stats"
	"github.com/nazeru/storefront-orders-go/pkg/apierr"
	"github.com/nazeru/storefront-orders-go/pkg/query"
)

type orderRow struct {
	domain.Order
	Code  string       `json:"code"`
	Badge domain.Badge `json:"badge"`
}

type orderList struct {
	Orders     []orderRow    `json:"orders"`
	Matched    int           `json:"matched"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	Pages      []int         `json:"pages"`
	Summary    stats.Summary `json:"summary"`
}

type nextAction struct {
	Status domain.Status `json:"status"`
	Label  string        `json:"label"`
}

type orderDetail struct {
	Order         domain.Order          `json:"order"`
	Code          string                `json:"code"`
	Badge         domain.Badge          `json:"badge"`
	Progress      int                   `json:"progress"`
	OnTrack       bool                  `json:"on_track"`
	Timeline      []domain.TimelineStep `json:"timeline"`
	PaymentMethod string                `json:"payment_method_label"`
	Subtotal      string                `json:"subtotal"`
	NextActions   []nextAction          `json:"next_actions,omitempty"`
}

func newOrderDetail(o domain.Order, role auth.Role) orderDetail {
	pct, onTrack := domain.ProgressFraction(o.Status)
	d := orderDetail{
		Order:         o,
		Code:          o.Code(),
		Badge:         domain.BadgeFor(o.Status),
		Progress:      pct,
		OnTrack:       onTrack,
		Timeline:      domain.Timeline(o),
		PaymentMethod: o.PaymentMethod.Label(),
		Subtotal:      o.Subtotal().String(),
	}
	if role == auth.RoleStore {
		for _, st := range domain.NextAllowedTransitions(o.Status) {
			d.NextActions = append(d.NextActions, nextAction{Status: st, Label: domain.ActionLabel(st)})
		}
	} else {
		d.Order.InternalNote = ""
	}
	return d
}

func (s *Server) listOrders(role auth.Role) http.HandlerFunc {
	viewer, load := listing.ViewerCustomer, s.api.CustomerOrders
	if role == auth.RoleStore {
		viewer, load = listing.ViewerStore, s.api.StoreOrders
	}
	fields := listing.Orders(viewer)

	return func(w http.ResponseWriter, r *http.Request) {
		cred := auth.FromRequest(r, role)
		if err := cred.Check(s.now()); err != nil {
			apierr.WriteProblem(w, err)
			return
		}
		spec, err := query.SpecFromValues(r.URL.Query(), "status", s.pageSize)
		if err != nil {
			apierr.WriteProblem(w, apierr.Validation("list_orders", err.Error()))
			return
		}
		orders, err := load(r.Context(), cred)
		if err != nil {
			apierr.WriteProblem(w, err)
			return
		}

		if role != auth.RoleStore {
			orders = domain.CustomerView(orders)
		}
		res := board.View(orders, spec, fields)
		rows := make([]orderRow, 0, len(res.Items))
		for _, o := range res.Items {
			rows = append(rows, orderRow{Order: o, Code: o.Code(), Badge: domain.BadgeFor(o.Status)})
		}
		writeJSON(w, http.StatusOK, orderList{
			Orders:     rows,
			Matched:    res.Matched,
			Page:       res.Page,
			PageSize:   res.PageSize,
			TotalPages: res.TotalPages,
			Pages:      query.PageWindow(res.Page, res.TotalPages, pageWindow),
			Summary:    stats.Summarize(orders),
		})
	}
}

func (s *Server) orderDetail(role auth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred := auth.FromRequest(r, role)
		if err := cred.Check(s.now()); err != nil {
			apierr.WriteProblem(w, err)
			return
		}
		o, err := s.api.GetOrder(r.Context(), cred, domain.OrderID(r.PathValue("id")))
		if err != nil {
			apierr.WriteProblem(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newOrderDetail(o, role))
	}
}

func (s *Server) invoice(role auth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred := auth.FromRequest(r, role)
		if err := cred.Check(s.now()); err != nil {
			apierr.WriteProblem(w, err)
			return
		}
		data, contentType, err := s.api.Invoice(r.Context(), cred, domain.OrderID(r.PathValue("id")))
		if err != nil {
			apierr.WriteProblem(w, err)
			return
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

type statusRequest struct {
	Status domain.Status `json:"status"`
}

type trackingRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

type noteRequest struct {
	Note string `json:"note"`
}

type actionResponse struct {
	fulfillment.Outcome
	Detail orderDetail `json:"detail"`
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	s.action(w, r, &req, func(ctx context.Context, cred auth.Credential, o domain.Order) (fulfillment.Outcome, error) {
		return s.actions.RequestStatusChange(ctx, cred, o, req.Status)
	})
}

func (s *Server) addTracking(w http.ResponseWriter, r *http.Request) {
	var req trackingRequest
	s.action(w, r, &req, func(ctx context.Context, cred auth.Credential, o domain.Order) (fulfillment.Outcome, error) {
		return s.actions.AttachTracking(ctx, cred, o, req.TrackingNumber)
	})
}

func (s *Server) addNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	s.action(w, r, &req, func(ctx context.Context, cred auth.Credential, o domain.Order) (fulfillment.Outcome, error) {
		return s.actions.AttachInternalNote(ctx, cred, o, req.Note)
	})
}

// action decodes the body into req, loads the current order and runs fn.
func (s *Server) action(w http.ResponseWriter, r *http.Request, req any, fn func(context.Context, auth.Credential, domain.Order) (fulfillment.Outcome, error)) {
	cred := auth.FromRequest(r, auth.RoleStore)
	if err := cred.RequireStore(s.now()); err != nil {
		apierr.WriteProblem(w, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		apierr.WriteProblem(w, apierr.Validation("decode", "invalid json"))
		return
	}
	current, err := s.api.GetOrder(r.Context(), cred, domain.OrderID(r.PathValue("id")))
	if err != nil {
		apierr.WriteProblem(w, err)
		return
	}
	out, err := fn(r.Context(), cred, current)
	if err != nil {
		apierr.WriteProblem(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Outcome: out, Detail: newOrderDetail(out.Order, auth.RoleStore)})
}
