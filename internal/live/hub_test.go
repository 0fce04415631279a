package live

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishCoalesces(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("tracking:u1")
	defer sub.Unsubscribe()

	hub.Publish("tracking:u1")
	hub.Publish("tracking:u1")
	hub.Publish("tracking:u2")

	select {
	case <-sub.C:
	default:
		t.Fatal("expected a pending notification")
	}

	select {
	case <-sub.C:
		t.Fatal("notifications should coalesce")
	default:
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe("technicians")
	b := hub.Subscribe("technicians")
	assert.Equal(t, 2, hub.Subscribers("technicians"))

	a.Unsubscribe()
	a.Unsubscribe()
	assert.Equal(t, 1, hub.Subscribers("technicians"))

	b.Unsubscribe()
	assert.Equal(t, 0, hub.Subscribers("technicians"))
}

func receive[T any](t *testing.T, s *Stream[T]) Snapshot[T] {
	t.Helper()
	select {
	case snap, ok := <-s.C:
		require.True(t, ok, "stream closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot[T]{}
}

func TestWatchDeliversSnapshots(t *testing.T) {
	hub := NewHub()
	var calls atomic.Int32

	stream, err := Watch(context.Background(), hub, "medications:u1", func() (int, error) {
		return int(calls.Add(1)), nil
	})
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, 1, receive(t, stream).Items)

	hub.Publish("medications:u1")
	assert.Equal(t, 2, receive(t, stream).Items)

	hub.Publish("medications:u1")
	assert.Equal(t, 3, receive(t, stream).Items)
}

func TestWatchInitialErrorUnsubscribes(t *testing.T) {
	hub := NewHub()
	boom := errors.New("backend unavailable")

	_, err := Watch(context.Background(), hub, "t", func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, hub.Subscribers("t"))
}

func TestWatchDeliversLoadErrors(t *testing.T) {
	hub := NewHub()
	boom := errors.New("query failed")
	var fail atomic.Bool

	stream, err := Watch(context.Background(), hub, "t", func() (string, error) {
		if fail.Load() {
			return "", boom
		}
		return "ok", nil
	})
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, "ok", receive(t, stream).Items)

	fail.Store(true)
	hub.Publish("t")
	assert.ErrorIs(t, receive(t, stream).Err, boom)
}

func TestWatchStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := Watch(ctx, hub, "t", func() (int, error) { return 1, nil })
	require.NoError(t, err)
	receive(t, stream)

	cancel()
	stream.Close()

	_, ok := <-stream.C
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Subscribers("t"))
}
