package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazeru/storefront-orders-go/pkg/query"
)

var intFields = query.Fields[int]{
	Created: func(i int) time.Time { return time.Unix(int64(i), 0) },
}

func TestReloadStoresSnapshot(t *testing.T) {
	b := New(func(context.Context) ([]int, error) { return []int{1, 2, 3}, nil })

	items, err := b.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, items)

	items[0] = 99
	assert.Equal(t, []int{1, 2, 3}, b.Items(), "snapshot is not aliased")
	assert.False(t, b.LoadedAt().IsZero())
}

func TestFailedReloadKeepsPrevious(t *testing.T) {
	fail := false
	boom := errors.New("boom")
	b := New(func(context.Context) ([]int, error) {
		if fail {
			return nil, boom
		}
		return []int{7}, nil
	})
	_, err := b.Reload(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = b.Reload(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, b.Err(), boom)
	assert.Equal(t, []int{7}, b.Items())
}

func TestLastRequestWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0
	b := New(func(ctx context.Context) ([]int, error) {
		calls++
		if calls == 1 {
			close(started)
			select {
			case <-release:
			case <-ctx.Done():
			}
			// a slow backend that ignores cancellation still answers
			return []int{1}, nil
		}
		return []int{2}, nil
	})

	first := make(chan error, 1)
	go func() {
		_, err := b.Reload(context.Background())
		first <- err
	}()
	<-started

	items, err := b.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2}, items)

	close(release)
	assert.ErrorIs(t, <-first, ErrSuperseded)
	assert.Equal(t, []int{2}, b.Items(), "stale response must not overwrite")
}

func TestNewReloadCancelsOld(t *testing.T) {
	cancelled := make(chan struct{})
	started := make(chan struct{})
	n := 0
	b := New(func(ctx context.Context) ([]int, error) {
		n++
		if n == 1 {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return nil, nil
	})
	go func() { _, _ = b.Reload(context.Background()) }()
	<-started

	_, err := b.Reload(context.Background())
	require.NoError(t, err)
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("first reload was not cancelled")
	}
}

func TestViewClampsPage(t *testing.T) {
	items := make([]int, 30)
	for i := range items {
		items[i] = i + 1
	}
	spec := query.NewSpec(12).WithSort(query.SortOldest).WithPage(9)

	res := View(items, spec, intFields)
	assert.Equal(t, 3, res.Page)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, []int{25, 26, 27, 28, 29, 30}, res.Items)

	res = View([]int{}, spec, intFields)
	assert.Equal(t, 1, res.Page)
	assert.Empty(t, res.Items)
}
