// Package board holds one screen's copy of a collection and reloads it
// with last-request-wins semantics.
package board

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/nazeru/storefront-orders-go/pkg/query"
)

// ErrSuperseded is returned by a reload that finished after a newer one
// had started. Its result has been discarded.
var ErrSuperseded = errors.New("reload superseded")

type Loader[T any] func(ctx context.Context) ([]T, error)

type Board[T any] struct {
	load Loader[T]

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	items    []T
	loadedAt time.Time
	lastErr  error
}

func New[T any](load Loader[T]) *Board[T] {
	return &Board[T]{load: load}
}

// Reload fetches a fresh collection. Starting a reload cancels the one in
// flight, and a response that arrives after a newer reload began is
// dropped with ErrSuperseded. A failed reload keeps the previous items.
func (b *Board[T]) Reload(ctx context.Context) ([]T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b.mu.Lock()
	b.seq++
	seq := b.seq
	if b.cancel != nil {
		b.cancel()
	}
	b.cancel = cancel
	b.mu.Unlock()

	items, err := b.load(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.seq {
		return nil, ErrSuperseded
	}
	b.cancel = nil
	if err != nil {
		b.lastErr = err
		return nil, err
	}
	b.items = slices.Clone(items)
	b.loadedAt = time.Now()
	b.lastErr = nil
	return slices.Clone(b.items), nil
}

// Items returns a copy of the current snapshot.
func (b *Board[T]) Items() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

func (b *Board[T]) LoadedAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadedAt
}

// Err is the error of the latest settled reload, nil after a success.
func (b *Board[T]) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// View runs spec over the snapshot. A page beyond the last one is clamped,
// so the result may carry a different Page than spec.
func (b *Board[T]) View(spec query.Spec, f query.Fields[T]) query.Result[T] {
	return View(b.Items(), spec, f)
}

// View is query.Run with the page clamped into range first.
func View[T any](items []T, spec query.Spec, f query.Fields[T]) query.Result[T] {
	total := query.TotalPages(len(query.Filter(items, spec, f)), spec.PageSize)
	spec.Page = query.ClampPage(spec.Page, total)
	return query.Run(items, spec, f)
}
