package live

import (
	"context"
	"sync"
)

// Snapshot is one delivery of a live query: the current result set, or the
// error the query failed with.
type Snapshot[T any] struct {
	Items T
	Err   error
}

// Stream is a live query bound to a topic. Read snapshots from C until it is
// closed. Close (or cancelling the context given to Watch) unsubscribes.
type Stream[T any] struct {
	C <-chan Snapshot[T]

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Watch subscribes to topic and runs load once immediately. A failing first
// load is returned as an error and nothing stays subscribed. Afterwards load
// runs again after every publish; its failures are delivered as snapshots.
func Watch[T any](ctx context.Context, hub *Hub, topic string, load func() (T, error)) (*Stream[T], error) {
	// Subscribe before the first load so a change racing with it is not lost.
	sub := hub.Subscribe(topic)

	initial, err := load()
	if err != nil {
		sub.Unsubscribe()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Snapshot[T])
	s := &Stream[T]{C: out, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		defer close(out)
		defer sub.Unsubscribe()

		snap := Snapshot[T]{Items: initial}
		for {
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}

			select {
			case <-sub.C:
			case <-ctx.Done():
				return
			}

			items, err := load()
			snap = Snapshot[T]{Items: items, Err: err}
		}
	}()

	return s, nil
}

// Close stops the stream and waits for its goroutine to exit.
func (s *Stream[T]) Close() {
	s.once.Do(s.cancel)
	<-s.done
}
