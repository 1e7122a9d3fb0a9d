// Package events carries game events from the controller and the timer to
// any number of listeners.
package events

import (
	"context"
	"sync"
	"time"

	"minesweeper-backend/internal/models"
)

// Bus is an ordered multicast channel. Every publish takes the bus lock, so
// all subscribers observe the same total order, and each subscriber owns an
// unbounded queue so a slow reader never blocks a publisher.
type Bus struct {
	mu     sync.Mutex
	seq    uint64
	subs   map[*Subscription]struct{}
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Publish stamps ev with the next sequence number and queues it for every
// current subscriber.
func (b *Bus) Publish(ev models.GameEvent) models.Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	env := models.Envelope{Seq: b.seq, At: time.Now(), Event: ev}
	if b.closed {
		return env
	}
	for sub := range b.subs {
		sub.enqueue(env)
	}
	return env
}

// Subscribe registers a listener for events published from now on. The
// subscription ends when ctx is done or Close is called.
func (b *Bus) Subscribe(ctx context.Context) *Subscription {
	sub := &Subscription{
		bus:    b,
		out:    make(chan models.Envelope),
		signal: make(chan struct{}, 1),
		quit:   make(chan struct{}),
	}
	go sub.pump()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.Close()
		return sub
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Close()
			case <-sub.quit:
			}
		}()
	}
	return sub
}

// LastSeq is the sequence number of the most recent publish, 0 before any.
func (b *Bus) LastSeq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription. Later publishes are numbered but dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}
