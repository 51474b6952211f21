// Package outbox stores fulfillment events in Postgres and relays them to
// Kafka, so a broker outage delays notifications instead of losing them.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	segkafka "github.com/segmentio/kafka-go"

	"github.com/nazeru/storefront-orders-go/pkg/kafka"
	"github.com/nazeru/storefront-orders-go/pkg/logging"
	"github.com/nazeru/storefront-orders-go/pkg/notify"
)

// DB is satisfied by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const Schema = `
CREATE TABLE IF NOT EXISTS outbox (
	id         BIGSERIAL PRIMARY KEY,
	event_id   TEXT NOT NULL UNIQUE,
	topic      TEXT NOT NULL,
	key        TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	sent_at    TIMESTAMPTZ
);`

type Record struct {
	ID        int64           `json:"id"`
	EventID   string          `json:"event_id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at"`
}

// Insert enqueues payload. A repeated event id is ignored.
func Insert(ctx context.Context, db DB, eventID, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, `INSERT INTO outbox(event_id, topic, key, payload) VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING`, eventID, topic, key, data)
	return err
}

func MarkSent(ctx context.Context, db DB, id int64) error {
	_, err := db.Exec(ctx, `UPDATE outbox SET sent_at=now() WHERE id=$1`, id)
	return err
}

func FetchPending(ctx context.Context, db DB, limit int) ([]Record, error) {
	rows, err := db.Query(ctx, `SELECT id, event_id, topic, key, payload, created_at, sent_at FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Notifier enqueues notices as contracts.Event rows for the relay.
type Notifier struct {
	DB    DB
	Topic string
}

func (n Notifier) Notify(ctx context.Context, nt notify.Notice) error {
	nt = notify.Stamp(nt)
	if err := Insert(ctx, n.DB, nt.ID, n.Topic, nt.OrderID, notify.ToEvent(nt)); err != nil {
		return fmt.Errorf("outbox insert: %w", err)
	}
	return nil
}

// RelayOnce publishes up to batch pending records in id order and marks
// each sent. It stops at the first publish failure so ordering per run is
// kept; the rest is retried next time.
func RelayOnce(ctx context.Context, db DB, w kafka.MessageWriter, batch int) (int, error) {
	recs, err := FetchPending(ctx, db, batch)
	if err != nil {
		return 0, fmt.Errorf("fetch pending: %w", err)
	}
	sent := 0
	for _, rec := range recs {
		msg := segkafka.Message{Key: []byte(rec.Key), Value: rec.Payload}
		if err := w.WriteMessages(ctx, msg); err != nil {
			return sent, fmt.Errorf("publish %s: %w", rec.EventID, err)
		}
		if err := MarkSent(ctx, db, rec.ID); err != nil {
			return sent, fmt.Errorf("mark sent %d: %w", rec.ID, err)
		}
		sent++
	}
	return sent, nil
}

// Relay runs RelayOnce every interval until ctx is done.
func Relay(ctx context.Context, db DB, w kafka.MessageWriter, interval time.Duration, batch int) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		n, err := RelayOnce(ctx, db, w, batch)
		if err != nil {
			log.Printf("outbox relay error: %v", err)
		} else if n > 0 {
			logging.Log(logging.Fields{Service: "outbox-relay", Status: "published", Message: fmt.Sprintf("%d events", n)})
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
