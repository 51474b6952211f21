package fulfillment

import (
	"sync"

	"github.com/nazeru/storefront-orders-go/internal/order/domain"
	"github.com/nazeru/storefront-orders-go/pkg/apierr"
)

type guardKey struct {
	order  domain.OrderID
	action string
}

// Guard admits at most one outstanding request per (order, action).
type Guard struct {
	mu       sync.Mutex
	inFlight map[guardKey]struct{}
}

func NewGuard() *Guard {
	return &Guard{inFlight: make(map[guardKey]struct{})}
}

// Acquire claims the slot or fails with a conflict error. The returned
// release func must be called once the request has settled.
func (g *Guard) Acquire(id domain.OrderID, action string) (func(), error) {
	k := guardKey{order: id, action: action}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[k]; busy {
		return nil, apierr.New(apierr.KindConflict, action, "this order is already being updated, please wait")
	}
	g.inFlight[k] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, k)
			g.mu.Unlock()
		})
	}, nil
}

func (g *Guard) Busy(id domain.OrderID, action string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inFlight[guardKey{order: id, action: action}]
	return busy
}
