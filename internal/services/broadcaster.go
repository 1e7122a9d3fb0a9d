package services

import (
	"context"

	"minesweeper-backend/internal/events"
	"minesweeper-backend/internal/models"
)

type Broadcaster interface {
	BroadcastEvent(env models.Envelope)
}

// ForwardEvents hands every envelope from sub to b until the subscription
// ends or ctx is done.
func ForwardEvents(ctx context.Context, sub *events.Subscription, b Broadcaster) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-sub.C():
			if !ok {
				return
			}
			b.BroadcastEvent(env)
		}
	}
}
