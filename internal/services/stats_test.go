package services_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"minesweeper-backend/internal/events"
	"minesweeper-backend/internal/models"
	"minesweeper-backend/internal/services"
)

func createTempStore(t *testing.T) *services.SQLStore {
	t.Helper()
	tempFile, err := os.CreateTemp("", "*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tempFile.Close()
	t.Cleanup(func() {
		os.Remove(tempFile.Name())
	})

	store, err := services.NewSQLStore(tempFile.Name())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSQLStore(t *testing.T) {
	store := createTempStore(t)
	ctx := context.Background()

	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.Played() != 0 || stats.HasBestTime {
		t.Errorf("Expected empty stats, got %+v", stats)
	}

	for _, endTime := range []int64{30000, 12000, 45000} {
		if err := store.RecordWin(ctx, endTime); err != nil {
			t.Fatalf("Failed to record win: %v", err)
		}
	}
	if err := store.RecordLoss(ctx); err != nil {
		t.Fatalf("Failed to record loss: %v", err)
	}

	stats, err = store.GetStats(ctx)
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.Wins != 3 || stats.Losses != 1 {
		t.Errorf("Expected 3 wins and 1 loss, got %d and %d", stats.Wins, stats.Losses)
	}
	if !stats.HasBestTime || stats.BestTime != 12000 {
		t.Errorf("Expected best time 12000, got %d (set: %v)", stats.BestTime, stats.HasBestTime)
	}

	if err := store.ResetStats(ctx); err != nil {
		t.Fatalf("Failed to reset stats: %v", err)
	}
	stats, _ = store.GetStats(ctx)
	if stats.Played() != 0 {
		t.Errorf("Expected no games after reset, got %d", stats.Played())
	}
}

func TestSQLStoreBadPath(t *testing.T) {
	if _, err := services.NewSQLStore(""); err == nil {
		t.Error("Expected an error for an empty path")
	}
	if _, err := services.NewSQLStore(filepath.Join(t.TempDir(), "missing", "stats.db")); err == nil {
		t.Error("Expected an error for a path in a missing directory")
	}
}

func TestSQLStoreClosed(t *testing.T) {
	store := createTempStore(t)
	store.Close()

	err := store.RecordLoss(context.Background())
	if !errors.Is(err, services.ErrStatsUnavailable) {
		t.Errorf("Expected ErrStatsUnavailable, got %v", err)
	}
}

func TestStatsRecorder(t *testing.T) {
	store := createTempStore(t)
	recorder := services.NewStatsRecorder(store, quietLogger())

	bus := events.NewBus()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		recorder.Run(ctx, bus.Subscribe(ctx))
		close(done)
	}()

	bus.Publish(models.GameCreated{})
	bus.Publish(models.PositionCleared{Index: 1, AdjacentMines: 2})
	bus.Publish(models.GameWon{EndTime: 8000})
	bus.Publish(models.FieldReset{})
	bus.Publish(models.GameCreated{})
	bus.Publish(models.PositionExploded{Index: 3})
	bus.Publish(models.GameLost{})
	bus.Publish(models.GameWon{EndTime: 9000})

	deadline := time.Now().Add(2 * time.Second)
	var stats models.Stats
	for {
		var err error
		stats, err = store.GetStats(context.Background())
		if err != nil {
			t.Fatalf("Failed to get stats: %v", err)
		}
		if stats.Played() == 3 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if stats.Wins != 2 || stats.Losses != 1 {
		t.Errorf("Expected 2 wins and 1 loss, got %d and %d", stats.Wins, stats.Losses)
	}
	if stats.BestTime != 8000 {
		t.Errorf("Expected best time 8000, got %d", stats.BestTime)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Recorder did not stop after cancel")
	}
}

func TestStatsRecorderIgnoresOtherEvents(t *testing.T) {
	store := createTempStore(t)
	recorder := services.NewStatsRecorder(store, quietLogger())

	for _, ev := range []models.GameEvent{
		models.GameCreated{}, models.TimeUpdate{Time: 1000}, models.PositionFlagged{Index: 2}, models.FieldReset{},
	} {
		if err := recorder.Handle(context.Background(), models.Envelope{Event: ev}); err != nil {
			t.Fatalf("Unexpected error for %v: %v", ev.Type(), err)
		}
	}
	if stats, _ := store.GetStats(context.Background()); stats.Played() != 0 {
		t.Errorf("Expected nothing recorded, got %+v", stats)
	}
}
