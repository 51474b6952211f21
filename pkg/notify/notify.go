// Package notify delivers human-readable outcome messages. The message
// text is decided by the caller; notifiers only carry it somewhere.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nazeru/storefront-orders-go/pkg/contracts"
	"github.com/nazeru/storefront-orders-go/pkg/kafka"
	"github.com/nazeru/storefront-orders-go/pkg/logging"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notice struct {
	ID      string    `json:"id"`
	OrderID string    `json:"order_id"`
	Action  string    `json:"action"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	From    string    `json:"from,omitempty"`
	To      string    `json:"to,omitempty"`
	At      time.Time `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// Stamp fills ID and At when they are unset.
func Stamp(n Notice) Notice {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	return n
}

// Log writes notices as structured log lines.
type Log struct {
	Service string
}

func (l Log) Notify(_ context.Context, n Notice) error {
	f := logging.Fields{
		Service: l.Service,
		OrderID: n.OrderID,
		Action:  n.Action,
		Status:  string(n.Level),
		From:    n.From,
		To:      n.To,
		EventID: n.ID,
	}
	if n.Level == LevelError {
		f.Error = n.Message
	} else {
		f.Message = n.Message
	}
	logging.Log(f)
	return nil
}

// Kafka publishes notices as contracts.Event keyed by order id.
type Kafka struct {
	Writer kafka.MessageWriter
}

func (k Kafka) Notify(ctx context.Context, n Notice) error {
	if k.Writer == nil {
		return kafka.ErrDisabled
	}
	return kafka.PublishJSON(ctx, k.Writer, n.OrderID, ToEvent(n))
}

// ToEvent maps a notice onto the published event envelope.
func ToEvent(n Notice) contracts.Event {
	typ := contracts.EventActionFailed
	if n.Level == LevelSuccess {
		switch n.Action {
		case contracts.ActionUpdateStatus:
			typ = contracts.EventStatusChanged
		case contracts.ActionAddTracking:
			typ = contracts.EventTrackingAttached
		case contracts.ActionAddNote:
			typ = contracts.EventNoteAttached
		}
	}
	payload := map[string]any{
		"action":  n.Action,
		"level":   string(n.Level),
		"message": n.Message,
	}
	if n.From != "" {
		payload["from"] = n.From
	}
	if n.To != "" {
		payload["to"] = n.To
	}
	return contracts.Event{
		EventID:   n.ID,
		OrderID:   n.OrderID,
		CreatedAt: n.At,
		Type:      typ,
		Payload:   payload,
	}
}

// Multi fans a notice out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) error {
	var errs []error
	for _, nt := range m {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
