package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"minesweeper-backend/internal/events"
	"minesweeper-backend/internal/models"
)

// EventLogger writes one log line per game event. Timer ticks go to trace
// level so they do not drown the rest.
type EventLogger struct {
	log logrus.FieldLogger
}

func NewEventLogger(log logrus.FieldLogger) *EventLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EventLogger{log: log}
}

func (l *EventLogger) Run(ctx context.Context, sub *events.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-sub.C():
			if !ok {
				return
			}
			l.Log(env)
		}
	}
}

func (l *EventLogger) Log(env models.Envelope) {
	entry := l.log.WithFields(logrus.Fields{
		"seq":   env.Seq,
		"event": env.Event.Type(),
	})

	switch ev := env.Event.(type) {
	case models.TimeUpdate:
		entry.WithField("time", ev.Time).Trace("game event")
	case models.PositionCleared:
		entry.WithFields(logrus.Fields{"index": ev.Index, "adjacent_mines": ev.AdjacentMines}).Debug("game event")
	case models.PositionExploded:
		entry.WithField("index", ev.Index).Debug("game event")
	case models.PositionFlagged:
		entry.WithField("index", ev.Index).Debug("game event")
	case models.PositionUnflagged:
		entry.WithField("index", ev.Index).Debug("game event")
	case models.GameWon:
		entry.WithField("end_time", ev.EndTime).Info("game event")
	default:
		entry.Info("game event")
	}
}
