package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"minesweeper-backend/internal/events"
	"minesweeper-backend/internal/models"
)

var ErrStatsUnavailable = errors.New("stats store unavailable")

// StatsStore persists the lifetime results of the player.
type StatsStore interface {
	RecordWin(ctx context.Context, endTime int64) error
	RecordLoss(ctx context.Context) error
	GetStats(ctx context.Context) (models.Stats, error)
	ResetStats(ctx context.Context) error
}

// StatsRecorder listens for finished games and writes them to a StatsStore.
type StatsRecorder struct {
	store   StatsStore
	log     logrus.FieldLogger
	timeout time.Duration
}

func NewStatsRecorder(store StatsStore, log logrus.FieldLogger) *StatsRecorder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StatsRecorder{store: store, log: log, timeout: 5 * time.Second}
}

func (r *StatsRecorder) Run(ctx context.Context, sub *events.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-sub.C():
			if !ok {
				return
			}
			if err := r.Handle(ctx, env); err != nil {
				r.log.WithError(err).WithField("seq", env.Seq).Error("failed to record game result")
			}
		}
	}
}

// Handle records env when it ends a game and ignores every other event.
func (r *StatsRecorder) Handle(ctx context.Context, env models.Envelope) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	switch ev := env.Event.(type) {
	case models.GameWon:
		return r.store.RecordWin(ctx, ev.EndTime)
	case models.GameLost:
		return r.store.RecordLoss(ctx)
	}
	return nil
}
