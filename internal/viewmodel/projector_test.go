package viewmodel_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"minesweeper-backend/internal/events"
	"minesweeper-backend/internal/game"
	"minesweeper-backend/internal/models"
	"minesweeper-backend/internal/viewmodel"
)

type staticConfig models.Configuration

func (c staticConfig) Configuration() models.Configuration {
	return models.Configuration(c)
}

type setup struct {
	bus        *events.Bus
	controller *game.GameController
	projector  *viewmodel.Projector
}

func newSetup(t *testing.T, cfg models.Configuration, mines []int) *setup {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	bus := events.NewBus()
	timer := game.NewTimer(time.Hour, nil)
	controller := game.NewGameController(game.NewField(cfg, game.FixedPlacer(mines)), timer, bus, game.Options{}, log)
	projector := viewmodel.NewProjector(controller)

	ctx, cancel := context.WithCancel(context.Background())
	go projector.Run(ctx, bus.Subscribe(ctx))
	t.Cleanup(func() {
		cancel()
		timer.Stop()
		bus.Close()
	})
	return &setup{bus: bus, controller: controller, projector: projector}
}

func (s *setup) view(t *testing.T) models.GameView {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	view, err := s.projector.Await(ctx, s.bus.LastSeq())
	if err != nil {
		t.Fatalf("Failed to await projection: %v", err)
	}
	return view
}

func TestInitialView(t *testing.T) {
	p := viewmodel.NewProjector(staticConfig{NumRows: 2, NumCols: 3, NumMines: 1})
	view := p.Snapshot()

	if view.Rows != 2 || view.Cols != 3 || len(view.Tiles) != 6 {
		t.Fatalf("Expected a 2x3 board, got %dx%d with %d tiles", view.Rows, view.Cols, len(view.Tiles))
	}
	for i, tile := range view.Tiles {
		if tile.State != models.TileCovered || tile.Value != models.TileValueUnknown {
			t.Errorf("Tile %d: expected covered/unknown, got %v/%v", i, tile.State, tile.Value)
		}
	}
	if view.MinesRemaining != 1 || view.GameOver {
		t.Errorf("Unexpected initial view: %+v", view)
	}
}

func TestApplyFolding(t *testing.T) {
	p := viewmodel.NewProjector(staticConfig{NumRows: 2, NumCols: 2, NumMines: 1})

	p.Apply(models.Envelope{Seq: 1, Event: models.GameCreated{}})
	p.Apply(models.Envelope{Seq: 2, Event: models.PositionCleared{Index: 3, AdjacentMines: 1}})
	p.Apply(models.Envelope{Seq: 3, Event: models.PositionFlagged{Index: 0}})
	p.Apply(models.Envelope{Seq: 4, Event: models.TimeUpdate{Time: 2000}})

	view := p.Snapshot()
	if got := view.Tiles[3]; got.State != models.TileCleared || got.Value != 1 {
		t.Errorf("Expected tile 3 cleared with 1, got %v/%v", got.State, got.Value)
	}
	if got := view.Tiles[0]; got.State != models.TileFlagged || got.Value != models.TileValueFlag {
		t.Errorf("Expected tile 0 flagged, got %v/%v", got.State, got.Value)
	}
	if view.MinesRemaining != 0 || view.ElapsedTime != 2000 || view.Seq != 4 {
		t.Errorf("Unexpected counters: %+v", view)
	}

	p.Apply(models.Envelope{Seq: 5, Event: models.PositionUnflagged{Index: 0}})
	p.Apply(models.Envelope{Seq: 6, Event: models.PositionExploded{Index: 0}})
	p.Apply(models.Envelope{Seq: 7, Event: models.GameLost{}})

	view = p.Snapshot()
	if got := view.Tiles[0]; got.State != models.TileExploded || got.Value != models.TileValueMine {
		t.Errorf("Expected tile 0 exploded, got %v/%v", got.State, got.Value)
	}
	if !view.GameOver || view.Winner || view.MinesRemaining != 1 {
		t.Errorf("Expected a lost game, got %+v", view)
	}

	p.Apply(models.Envelope{Seq: 8, Event: models.FieldReset{}})
	view = p.Snapshot()
	if view.GameOver || view.Tiles[0].State != models.TileCovered || view.Seq != 8 {
		t.Errorf("FieldReset should rebuild the board, got %+v", view)
	}
}

func TestRebuildUsesBoardFromEvent(t *testing.T) {
	// The source already reports the board of a later reset.
	p := viewmodel.NewProjector(staticConfig{NumRows: 4, NumCols: 5, NumMines: 3})
	small := models.Configuration{NumRows: 2, NumCols: 2, NumMines: 1}

	p.Apply(models.Envelope{Seq: 1, Event: models.FieldReset{Board: small}})
	p.Apply(models.Envelope{Seq: 2, Event: models.GameCreated{Board: small}})
	p.Apply(models.Envelope{Seq: 3, Event: models.PositionCleared{Index: 3, AdjacentMines: 1}})

	view := p.Snapshot()
	if view.Rows != 2 || view.Cols != 2 || len(view.Tiles) != 4 || view.MinesRemaining != 1 {
		t.Fatalf("Expected the 2x2 board from the events, got %dx%d with %d tiles", view.Rows, view.Cols, len(view.Tiles))
	}
	if view.Tiles[3].State != models.TileCleared {
		t.Errorf("Expected tile 3 cleared, got %v", view.Tiles[3].State)
	}

	p.Apply(models.Envelope{Seq: 4, Event: models.FieldReset{}})
	if view := p.Snapshot(); view.Rows != 4 || view.Cols != 5 || len(view.Tiles) != 20 {
		t.Errorf("A reset without a board should fall back to the source, got %dx%d", view.Rows, view.Cols)
	}
}

func TestLaggingProjectorKeepsGeometry(t *testing.T) {
	cfg := models.Configuration{NumRows: 3, NumCols: 3, NumMines: 1}
	bus := events.NewBus()
	defer bus.Close()
	timer := game.NewTimer(time.Hour, nil)
	defer timer.Stop()
	log := logrus.New()
	log.SetOutput(io.Discard)
	controller := game.NewGameController(game.NewField(cfg, game.FixedPlacer([]int{0})), timer, bus, game.Options{}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := bus.Subscribe(ctx)

	first := models.Configuration{NumRows: 2, NumCols: 4, NumMines: 1}
	if err := controller.ResetGameWith(first); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}
	controller.MaybeCreateGame(7)
	controller.Clear(7)
	if err := controller.ResetGameWith(models.Configuration{NumRows: 5, NumCols: 5, NumMines: 2}); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}

	// Fold only the first game, long after the controller moved on.
	p := viewmodel.NewProjector(controller)
	for {
		env := <-sub.C()
		if _, ok := env.Event.(models.FieldReset); ok && env.Seq > 1 {
			break
		}
		p.Apply(env)
	}

	view := p.Snapshot()
	if view.Rows != 2 || view.Cols != 4 || len(view.Tiles) != 8 {
		t.Fatalf("Expected the first game's 2x4 board, got %dx%d", view.Rows, view.Cols)
	}
	if view.Tiles[7].State != models.TileCleared {
		t.Errorf("Expected tile 7 cleared on the 2x4 board, got %v", view.Tiles[7].State)
	}
}

func TestApplyIgnoresOutOfRange(t *testing.T) {
	p := viewmodel.NewProjector(staticConfig{NumRows: 1, NumCols: 2, NumMines: 1})
	p.Apply(models.Envelope{Seq: 1, Event: models.PositionFlagged{Index: 7}})
	p.Apply(models.Envelope{Seq: 2, Event: models.PositionCleared{Index: -1}})

	if view := p.Snapshot(); view.MinesRemaining != 1 || view.Seq != 2 {
		t.Errorf("Out-of-range events should only advance seq, got %+v", view)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	p := viewmodel.NewProjector(staticConfig{NumRows: 1, NumCols: 2, NumMines: 1})
	view := p.Snapshot()
	view.Tiles[0].State = models.TileExploded

	if p.Snapshot().Tiles[0].State != models.TileCovered {
		t.Error("Mutating a snapshot must not change the projection")
	}
}

func TestProjectedWin(t *testing.T) {
	s := newSetup(t, models.Configuration{NumRows: 5, NumCols: 7, NumMines: 7}, []int{0, 1, 2, 3, 4, 5, 6})
	s.controller.Click(34)

	view := s.view(t)
	if !view.GameOver || !view.Winner {
		t.Fatalf("Expected a won game, got over=%v winner=%v", view.GameOver, view.Winner)
	}
	if view.MinesRemaining != 0 {
		t.Errorf("Expected no mines remaining, got %d", view.MinesRemaining)
	}
	for i, tile := range view.Tiles {
		switch {
		case i < 7:
			if tile.State != models.TileFlagged {
				t.Errorf("Mine %d should be shown flagged, got %v", i, tile.State)
			}
		case i < 14:
			if tile.State != models.TileCleared || tile.Value == 0 {
				t.Errorf("Tile %d should show a number, got %v/%v", i, tile.State, tile.Value)
			}
		default:
			if tile.State != models.TileCleared || tile.Value != 0 {
				t.Errorf("Tile %d should be an empty cleared tile, got %v/%v", i, tile.State, tile.Value)
			}
		}
	}
}

func TestProjectedLossAndReset(t *testing.T) {
	s := newSetup(t, models.Configuration{NumRows: 3, NumCols: 3, NumMines: 2}, []int{0, 8})
	s.controller.Click(4)
	s.controller.LongClick(2)
	s.controller.Clear(0)

	view := s.view(t)
	if !view.GameOver || view.Winner {
		t.Fatalf("Expected a lost game, got %+v", view)
	}
	if view.Tiles[0].State != models.TileExploded || view.Tiles[8].State != models.TileExploded {
		t.Error("Both mines should be shown exploded")
	}
	if view.Tiles[2].State != models.TileFlagged {
		t.Error("The flag should survive the reveal")
	}

	if err := s.controller.ResetGameWith(models.Configuration{NumRows: 4, NumCols: 4, NumMines: 3}); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}
	view = s.view(t)
	if view.Rows != 4 || view.Cols != 4 || len(view.Tiles) != 16 || view.MinesRemaining != 3 || view.GameOver {
		t.Errorf("Expected a fresh 4x4 board, got %+v", view)
	}
}

func TestAwaitHonoursContext(t *testing.T) {
	p := viewmodel.NewProjector(staticConfig{NumRows: 1, NumCols: 2, NumMines: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := p.Await(ctx, 5); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}
