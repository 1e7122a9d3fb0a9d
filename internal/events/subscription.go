package events

import (
	"sync"

	"minesweeper-backend/internal/models"
)

type Subscription struct {
	bus *Bus
	out chan models.Envelope

	mu     sync.Mutex
	queue  []models.Envelope
	signal chan struct{}

	quit      chan struct{}
	closeOnce sync.Once
}

// C delivers events in publish order. It is closed once the subscription
// ends; events still queued at that point are discarded.
func (s *Subscription) C() <-chan models.Envelope {
	return s.out
}

func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.bus.remove(s)
		close(s.quit)
	})
}

// Pending is the number of events queued but not yet received.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Subscription) enqueue(env models.Envelope) {
	s.mu.Lock()
	s.queue = append(s.queue, env)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Subscription) next() (models.Envelope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return models.Envelope{}, false
	}
	env := s.queue[0]
	s.queue[0] = models.Envelope{}
	s.queue = s.queue[1:]
	return env, true
}

func (s *Subscription) pump() {
	defer close(s.out)

	for {
		env, ok := s.next()
		if !ok {
			select {
			case <-s.signal:
				continue
			case <-s.quit:
				return
			}
		}

		select {
		case s.out <- env:
		case <-s.quit:
			return
		}
	}
}
