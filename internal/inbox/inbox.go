// Package inbox consumes fulfillment events and records them as customer
// notifications, once per event id.
package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	segkafka "github.com/segmentio/kafka-go"

	"github.com/nazeru/storefront-orders-go/pkg/contracts"
	"github.com/nazeru/storefront-orders-go/pkg/logging"
)

// DB is satisfied by *pgxpool.Pool and *pgx.Conn.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (segkafka.Message, error)
}

// ErrDuplicate reports an event id that was already recorded.
var ErrDuplicate = errors.New("duplicate event")

// Schema creates the tables Store writes to.
const Schema = `
CREATE TABLE IF NOT EXISTS inbox (
	event_id    TEXT PRIMARY KEY,
	received_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS notifications (
	event_id   TEXT PRIMARY KEY,
	order_id   TEXT NOT NULL,
	type       TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`

type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	return err
}

// Save records evt. The inbox row and the notification are written in one
// transaction. A repeated event id yields ErrDuplicate and writes nothing.
func (s *Store) Save(ctx context.Context, evt contracts.Event) error {
	data, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	message, _ := evt.Payload["message"].(string)
	created := evt.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `INSERT INTO inbox(event_id, received_at)
		VALUES ($1, now()) ON CONFLICT (event_id) DO NOTHING`, evt.EventID)
	if err != nil {
		return fmt.Errorf("inbox insert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}
	_, err = tx.Exec(ctx, `INSERT INTO notifications(event_id, order_id, type, message, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (event_id) DO NOTHING`,
		evt.EventID, evt.OrderID, evt.Type, message, string(data), created)
	if err != nil {
		return fmt.Errorf("notification insert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Handle decodes one Kafka message and saves it. Undecodable messages and
// events without an id are skipped.
func (s *Store) Handle(ctx context.Context, msg segkafka.Message) error {
	var evt contracts.Event
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		log.Printf("event decode error: %v", err)
		return nil
	}
	if evt.EventID == "" {
		return nil
	}
	err := s.Save(ctx, evt)
	switch {
	case errors.Is(err, ErrDuplicate):
		logging.Log(logging.Fields{Service: "notification-service", OrderID: evt.OrderID, EventID: evt.EventID, Action: evt.Type, Status: "duplicate"})
		return nil
	case err != nil:
		return err
	}
	logging.Log(logging.Fields{Service: "notification-service", OrderID: evt.OrderID, EventID: evt.EventID, Action: evt.Type, Status: "stored"})
	return nil
}

// Consume reads until ctx is cancelled. Read errors back off for retry;
// save errors are logged and the message is dropped.
func Consume(ctx context.Context, r MessageReader, s *Store, backoff time.Duration) error {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("kafka read error: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}
		if err := s.Handle(ctx, msg); err != nil {
			log.Printf("notification save error: %v", err)
		}
	}
}
