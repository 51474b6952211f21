package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazeru/storefront-orders-go/pkg/contracts"
	"github.com/nazeru/storefront-orders-go/pkg/notify"
)

// memDB keeps outbox rows in memory and answers the three statements
// this package issues.
type memDB struct {
	rows   []Record
	nextID int64
}

func (m *memDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.HasPrefix(strings.TrimSpace(sql), "INSERT INTO outbox"):
		id := args[0].(string)
		for _, r := range m.rows {
			if r.EventID == id {
				return pgconn.NewCommandTag("INSERT 0 0"), nil
			}
		}
		m.nextID++
		m.rows = append(m.rows, Record{
			ID: m.nextID, EventID: id, Topic: args[1].(string), Key: args[2].(string),
			Payload: json.RawMessage(args[3].([]byte)), CreatedAt: time.Now(),
		})
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.HasPrefix(sql, "UPDATE outbox"):
		now := time.Now()
		for i := range m.rows {
			if m.rows[i].ID == args[0].(int64) {
				m.rows[i].SentAt = &now
			}
		}
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected sql")
}

func (m *memDB) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	limit := args[0].(int)
	var pending []Record
	for _, r := range m.rows {
		if r.SentAt == nil && len(pending) < limit {
			pending = append(pending, r)
		}
	}
	return &memRows{recs: pending, pos: -1}, nil
}

type memRows struct {
	recs []Record
	pos  int
}

func (r *memRows) Close()                                       {}
func (r *memRows) Err() error                                   { return nil }
func (r *memRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *memRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *memRows) Values() ([]any, error)                       { return nil, nil }
func (r *memRows) RawValues() [][]byte                          { return nil }
func (r *memRows) Conn() *pgx.Conn                              { return nil }

func (r *memRows) Next() bool {
	r.pos++
	return r.pos < len(r.recs)
}

func (r *memRows) Scan(dest ...any) error {
	rec := r.recs[r.pos]
	*dest[0].(*int64) = rec.ID
	*dest[1].(*string) = rec.EventID
	*dest[2].(*string) = rec.Topic
	*dest[3].(*string) = rec.Key
	*dest[4].(*json.RawMessage) = rec.Payload
	*dest[5].(*time.Time) = rec.CreatedAt
	*dest[6].(**time.Time) = rec.SentAt
	return nil
}

type flakyWriter struct {
	sent    []segkafka.Message
	failAt  int
	written int
}

func (w *flakyWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	w.written++
	if w.written == w.failAt {
		return errors.New("broker down")
	}
	w.sent = append(w.sent, msgs...)
	return nil
}

func notice(order string) notify.Notice {
	return notify.Notice{OrderID: order, Action: contracts.ActionAddTracking, Level: notify.LevelSuccess, Message: "Tracking number saved"}
}

func TestNotifierEnqueuesEvent(t *testing.T) {
	db := &memDB{}
	n := Notifier{DB: db, Topic: "storefront.orders"}

	nt := notify.Stamp(notice("o-1"))
	require.NoError(t, n.Notify(context.Background(), nt))
	require.NoError(t, n.Notify(context.Background(), nt), "same event id is ignored")
	require.Len(t, db.rows, 1)

	var evt contracts.Event
	require.NoError(t, json.Unmarshal(db.rows[0].Payload, &evt))
	assert.Equal(t, contracts.EventTrackingAttached, evt.Type)
	assert.Equal(t, "o-1", db.rows[0].Key)
	assert.Equal(t, nt.ID, db.rows[0].EventID)
}

func TestRelayOnce(t *testing.T) {
	db := &memDB{}
	n := Notifier{DB: db, Topic: "t"}
	for _, o := range []string{"o-1", "o-2", "o-3"} {
		require.NoError(t, n.Notify(context.Background(), notice(o)))
	}

	w := &flakyWriter{failAt: 2}
	sent, err := RelayOnce(context.Background(), db, w, 10)
	assert.Error(t, err)
	assert.Equal(t, 1, sent)

	sent, err = RelayOnce(context.Background(), db, w, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	require.Len(t, w.sent, 3)
	assert.Equal(t, []string{"o-1", "o-2", "o-3"},
		[]string{string(w.sent[0].Key), string(w.sent[1].Key), string(w.sent[2].Key)})

	pending, err := FetchPending(context.Background(), db, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
