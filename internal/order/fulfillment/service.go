// Package fulfillment runs the store-side order actions: status changes,
// tracking numbers and internal notes.
package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nazeru/storefront-orders-go/internal/auth"
	"github.com/nazeru/storefront-orders-go/internal/order/domain"
	"github.com/nazeru/storefront-orders-go/pkg/apierr"
	"github.com/nazeru/storefront-orders-go/pkg/contracts"
	"github.com/nazeru/storefront-orders-go/pkg/logging"
	"github.com/nazeru/storefront-orders-go/pkg/metrics"
	"github.com/nazeru/storefront-orders-go/pkg/notify"
)

// OrderAPI is the slice of the store API the handlers talk to.
// *storeapi.Client satisfies it.
type OrderAPI interface {
	GetOrder(ctx context.Context, cred auth.Credential, id domain.OrderID) (domain.Order, error)
	UpdateStatus(ctx context.Context, cred auth.Credential, id domain.OrderID, status domain.Status) error
	AddTracking(ctx context.Context, cred auth.Credential, id domain.OrderID, trackingNumber string) error
	AddNote(ctx context.Context, cred auth.Credential, id domain.OrderID, note string) error
}

// Outcome is the result of an accepted action.
type Outcome struct {
	Order domain.Order `json:"order"`
	// Unchanged is set when the order already was in the requested state
	// and nothing was sent.
	Unchanged bool `json:"unchanged,omitempty"`
	// Stale is set when the mutation succeeded but the reload did not;
	// Order is then the snapshot passed in.
	Stale            bool   `json:"stale,omitempty"`
	PaymentConfirmed bool   `json:"payment_confirmed,omitempty"`
	PromptTracking   bool   `json:"prompt_tracking,omitempty"`
	Message          string `json:"message"`
}

type Service struct {
	api      OrderAPI
	notifier notify.Notifier
	rejected notify.Notifier
	metrics  *metrics.ActionMetrics
	guard    *Guard
	service  string
	now      func() time.Time
}

type Option func(*Service)

func WithNotifier(n notify.Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithRejectionNotifier receives notices for input rejected before any
// request is made. It defaults to a log notifier.
func WithRejectionNotifier(n notify.Notifier) Option { return func(s *Service) { s.rejected = n } }

func WithMetrics(m *metrics.ActionMetrics) Option { return func(s *Service) { s.metrics = m } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithServiceName(name string) Option { return func(s *Service) { s.service = name } }

func NewService(api OrderAPI, opts ...Option) *Service {
	s := &Service{
		api:     api,
		guard:   NewGuard(),
		service: "fulfillment",
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.notifier == nil {
		s.notifier = notify.Log{Service: s.service}
	}
	if s.rejected == nil {
		s.rejected = notify.Log{Service: s.service}
	}
	return s
}

// Busy reports whether action is outstanding for the order.
func (s *Service) Busy(id domain.OrderID, action string) bool {
	return s.guard.Busy(id, action)
}

// RequestStatusChange moves the order to target through the store API and
// returns the reloaded order.
func (s *Service) RequestStatusChange(ctx context.Context, cred auth.Credential, order domain.Order, target domain.Status) (Outcome, error) {
	const action = contracts.ActionUpdateStatus
	n := notify.Notice{OrderID: string(order.ID), Action: action, From: string(order.Status), To: string(target)}

	if err := cred.RequireStore(s.now()); err != nil {
		return Outcome{}, s.fail(ctx, n, err)
	}
	if !target.Valid() {
		return Outcome{}, s.fail(ctx, n, apierr.Validation(action, fmt.Sprintf("unknown status %q", target)))
	}
	if order.Status == target {
		s.metrics.Record(action, "noop")
		return Outcome{Order: order, Unchanged: true, Message: "Order is already " + domain.BadgeFor(target).Label}, nil
	}
	if !domain.IsTransitionAllowed(order.Status, target) {
		msg := fmt.Sprintf("an order that is %s cannot be moved to %s",
			domain.BadgeFor(order.Status).Label, domain.BadgeFor(target).Label)
		return Outcome{}, s.fail(ctx, n, apierr.Validation(action, msg))
	}

	out, err := s.run(ctx, cred, order, n, func(ctx context.Context) error {
		return s.api.UpdateStatus(ctx, cred, order.ID, target)
	}, "Order status updated to "+domain.BadgeFor(target).Label)
	if err != nil {
		return Outcome{}, err
	}
	out.PaymentConfirmed = target == domain.StatusPaid
	out.PromptTracking = target == domain.StatusShipped && !out.Order.HasTracking()
	return out, nil
}

// AttachTracking sets or replaces the tracking number. Any status is accepted.
func (s *Service) AttachTracking(ctx context.Context, cred auth.Credential, order domain.Order, trackingNumber string) (Outcome, error) {
	const action = contracts.ActionAddTracking
	n := notify.Notice{OrderID: string(order.ID), Action: action}

	if err := cred.RequireStore(s.now()); err != nil {
		return Outcome{}, s.fail(ctx, n, err)
	}
	tn := strings.TrimSpace(trackingNumber)
	if tn == "" {
		return Outcome{}, s.fail(ctx, n, apierr.Validation(action, "enter a tracking number"))
	}
	n.To = tn

	return s.run(ctx, cred, order, n, func(ctx context.Context) error {
		return s.api.AddTracking(ctx, cred, order.ID, tn)
	}, "Tracking number saved")
}

// AttachInternalNote stores a staff-only note. The customer's shipping note
// is never touched.
func (s *Service) AttachInternalNote(ctx context.Context, cred auth.Credential, order domain.Order, text string) (Outcome, error) {
	const action = contracts.ActionAddNote
	n := notify.Notice{OrderID: string(order.ID), Action: action}

	if err := cred.RequireStore(s.now()); err != nil {
		return Outcome{}, s.fail(ctx, n, err)
	}
	note := strings.TrimSpace(text)
	if note == "" {
		return Outcome{}, s.fail(ctx, n, apierr.Validation(action, "note cannot be empty"))
	}

	return s.run(ctx, cred, order, n, func(ctx context.Context) error {
		return s.api.AddNote(ctx, cred, order.ID, note)
	}, "Note saved")
}

func (s *Service) run(ctx context.Context, cred auth.Credential, order domain.Order, n notify.Notice, call func(context.Context) error, okMsg string) (Outcome, error) {
	release, err := s.guard.Acquire(order.ID, n.Action)
	if err != nil {
		return Outcome{}, s.fail(ctx, n, err)
	}
	defer release()

	start := time.Now()
	if err := call(ctx); err != nil {
		return Outcome{}, s.fail(ctx, n, err)
	}

	out := Outcome{Message: okMsg}
	fresh, err := s.api.GetOrder(ctx, cred, order.ID)
	if err != nil {
		logging.Log(logging.Fields{
			Service: s.service,
			OrderID: string(order.ID),
			Action:  n.Action,
			Status:  "reload_failed",
			Error:   err.Error(),
		})
		out.Order, out.Stale = order, true
	} else {
		out.Order = fresh
	}

	s.metrics.Record(n.Action, "ok")
	n.Level, n.Message = notify.LevelSuccess, okMsg
	n.At = s.now().UTC()
	if nerr := s.notifier.Notify(ctx, notify.Stamp(n)); nerr != nil {
		logging.Log(logging.Fields{Service: s.service, OrderID: n.OrderID, Action: n.Action, Error: "notify: " + nerr.Error()})
	}
	logging.Log(logging.Fields{
		Service:    s.service,
		OrderID:    n.OrderID,
		Action:     n.Action,
		Status:     "ok",
		From:       n.From,
		To:         n.To,
		DurationMS: time.Since(start).Milliseconds(),
	})
	return out, nil
}

// fail reports err to the notifier and metrics and hands it back.
// Validation errors never come from the API, so they stay local.
func (s *Service) fail(ctx context.Context, n notify.Notice, err error) error {
	kind := apierr.KindOf(err)
	s.metrics.Record(n.Action, string(kind))

	n.Level = notify.LevelError
	n.Message = apierr.MessageOf(err, genericFailure(n.Action))
	n.At = s.now().UTC()
	notifier := s.notifier
	if kind == apierr.KindValidation {
		notifier = s.rejected
	}
	if nerr := notifier.Notify(ctx, notify.Stamp(n)); nerr != nil {
		logging.Log(logging.Fields{Service: s.service, OrderID: n.OrderID, Action: n.Action, Error: "notify: " + nerr.Error()})
	}
	return err
}

func genericFailure(action string) string {
	switch action {
	case contracts.ActionUpdateStatus:
		return "Could not update the order status"
	case contracts.ActionAddTracking:
		return "Could not save the tracking number"
	case contracts.ActionAddNote:
		return "Could not save the note"
	default:
		return "Something went wrong, please try again"
	}
}
