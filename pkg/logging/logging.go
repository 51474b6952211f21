package logging

import (
	"encoding/json"
	"log"
	"time"
)

type Fields struct {
	Service    string `json:"service"`
	OrderID    string `json:"order_id,omitempty"`
	Action     string `json:"action,omitempty"`
	Status     string `json:"status,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	EventID    string `json:"event_id,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Log writes fields as a single JSON line through the standard logger.
func Log(fields Fields) {
	payload := map[string]any{
		"service":   fields.Service,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	put := func(k, v string) {
		if v != "" {
			payload[k] = v
		}
	}
	put("order_id", fields.OrderID)
	put("action", fields.Action)
	put("status", fields.Status)
	put("from", fields.From)
	put("to", fields.To)
	put("event_id", fields.EventID)
	put("message", fields.Message)
	put("error", fields.Error)
	if fields.DurationMS > 0 {
		payload["duration_ms"] = fields.DurationMS
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("{\"service\":%q,\"status\":\"log_error\",\"error\":%q}", fields.Service, err.Error())
		return
	}
	log.Print(string(data))
}
