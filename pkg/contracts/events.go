package contracts

import "time"

// Event is the envelope published for every fulfillment outcome.
type Event struct {
	EventID   string         `json:"event_id"`
	OrderID   string         `json:"order_id"`
	CreatedAt time.Time      `json:"created_at"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
}

const (
	EventStatusChanged    = "order.status_changed"
	EventTrackingAttached = "order.tracking_attached"
	EventNoteAttached     = "order.note_attached"
	EventActionFailed     = "order.action_failed"
)

// Fulfillment actions, as used in events, metrics and idempotency keys.
const (
	ActionUpdateStatus = "update_status"
	ActionAddTracking  = "add_tracking"
	ActionAddNote      = "add_note"
)
