package game_test

import (
	"slices"
	"testing"

	"minesweeper-backend/internal/game"
	"minesweeper-backend/internal/models"
)

func TestCreateMinesCount(t *testing.T) {
	configs := []models.Configuration{
		{NumRows: 9, NumCols: 9, NumMines: 10},
		{NumRows: 16, NumCols: 30, NumMines: 99},
		{NumRows: 3, NumCols: 3, NumMines: 8},
		{NumRows: 1, NumCols: 5, NumMines: 4},
		{NumRows: 4, NumCols: 4, NumMines: 0},
	}

	for seed := int64(1); seed <= 20; seed++ {
		for _, cfg := range configs {
			for _, safe := range []int{0, cfg.FieldSize() / 2, cfg.FieldSize() - 1} {
				field := game.NewField(cfg, game.NewRandomPlacer(seed))
				field.CreateMines(safe)

				mines := field.Mines()
				if len(mines) != cfg.NumMines {
					t.Fatalf("Expected %d mines on %+v, got %d", cfg.NumMines, cfg, len(mines))
				}
				if slices.Contains(mines, safe) {
					t.Fatalf("Safe index %d holds a mine on %+v (seed %d)", safe, cfg, seed)
				}
				for _, m := range mines {
					if !cfg.Contains(m) {
						t.Fatalf("Mine %d outside board %+v", m, cfg)
					}
				}
			}
		}
	}
}

func TestCreateMinesFiltersBadPlacement(t *testing.T) {
	cfg := models.Configuration{NumRows: 3, NumCols: 3, NumMines: 2}
	field := game.NewField(cfg, game.FixedPlacer{4, 4, 40, -1, 0, 8, 7})
	field.CreateMines(4)

	if got := field.Mines(); !slices.Equal(got, []int{0, 8}) {
		t.Errorf("Expected mines [0 8], got %v", got)
	}
}

func TestFieldClear(t *testing.T) {
	cfg := models.Configuration{NumRows: 3, NumCols: 3, NumMines: 1}
	field := game.NewField(cfg, game.FixedPlacer{0})
	field.CreateMines(8)

	if field.Clear(4) {
		t.Error("Index 4 is not a mine")
	}
	if !field.IsCleared(4) {
		t.Error("Index 4 should be cleared")
	}
	if field.Clear(4) {
		t.Error("Clearing again should still report no mine")
	}

	if !field.Clear(0) {
		t.Error("Index 0 is a mine")
	}
	if field.IsCleared(0) {
		t.Error("A mine must never join the cleared set")
	}
	if !field.IsExploded(0) {
		t.Error("Index 0 should be exploded")
	}
}

func TestFieldFlagInversion(t *testing.T) {
	field := game.NewField(models.Configuration{NumRows: 2, NumCols: 2, NumMines: 1}, game.FixedPlacer{3})
	field.CreateMines(0)

	if removed := field.Flag(3); removed {
		t.Error("First flag call should report an added flag (false)")
	}
	if !field.IsFlag(3) {
		t.Error("Index 3 should be flagged")
	}
	if removed := field.Flag(3); !removed {
		t.Error("Second flag call should report a removed flag (true)")
	}
	if field.IsFlag(3) {
		t.Error("Index 3 should not be flagged")
	}
	if removed := field.Flag(3); removed {
		t.Error("Third flag call should behave like the first")
	}
}

func TestAdjacentFieldIndexes(t *testing.T) {
	field := game.NewField(models.Configuration{NumRows: 5, NumCols: 7, NumMines: 0}, nil)

	tests := []struct {
		index int
		want  []int
	}{
		{0, []int{1, 7, 8}},
		{6, []int{5, 12, 13}},
		{28, []int{21, 22, 29}},
		{34, []int{26, 27, 33}},
		{7, []int{0, 1, 8, 14, 15}},
		{16, []int{8, 9, 10, 15, 17, 22, 23, 24}},
	}
	for _, tt := range tests {
		if got := field.AdjacentFieldIndexes(tt.index); !slices.Equal(got, tt.want) {
			t.Errorf("Adjacent of %d: expected %v, got %v", tt.index, tt.want, got)
		}
	}
}

func TestAdjacentFieldIndexesNarrowBoards(t *testing.T) {
	column := game.NewField(models.Configuration{NumRows: 4, NumCols: 1, NumMines: 0}, nil)
	if got := column.AdjacentFieldIndexes(0); !slices.Equal(got, []int{1}) {
		t.Errorf("Top of a 1-wide board: expected [1], got %v", got)
	}
	if got := column.AdjacentFieldIndexes(2); !slices.Equal(got, []int{1, 3}) {
		t.Errorf("Middle of a 1-wide board: expected [1 3], got %v", got)
	}

	row := game.NewField(models.Configuration{NumRows: 1, NumCols: 4, NumMines: 0}, nil)
	if got := row.AdjacentFieldIndexes(3); !slices.Equal(got, []int{2}) {
		t.Errorf("End of a 1-tall board: expected [2], got %v", got)
	}

	two := game.NewField(models.Configuration{NumRows: 2, NumCols: 2, NumMines: 0}, nil)
	if got := two.AdjacentFieldIndexes(1); !slices.Equal(got, []int{0, 2, 3}) {
		t.Errorf("Corner of a 2x2 board: expected [0 2 3], got %v", got)
	}

	single := game.NewField(models.Configuration{NumRows: 1, NumCols: 1, NumMines: 0}, nil)
	if got := single.AdjacentFieldIndexes(0); len(got) != 0 {
		t.Errorf("A 1x1 board has no neighbours, got %v", got)
	}
}

func TestFieldDerivedValues(t *testing.T) {
	cfg := models.Configuration{NumRows: 3, NumCols: 3, NumMines: 2}
	field := game.NewField(cfg, game.FixedPlacer{0, 8})
	field.CreateMines(4)

	if field.FlagsRemaining() != 2 {
		t.Errorf("Expected 2 flags remaining, got %d", field.FlagsRemaining())
	}

	field.Flag(0)
	field.Flag(1)
	if !field.FlaggedAllMines() {
		t.Error("Two flags on two mines should count as all mines flagged")
	}
	if field.AllFlagsCorrect() {
		t.Error("Flag on 1 is wrong")
	}

	field.Flag(1)
	field.Flag(8)
	if !field.AllFlagsCorrect() {
		t.Error("Flags on 0 and 8 are correct")
	}
	if field.FlagsRemaining() != 0 {
		t.Errorf("Expected 0 flags remaining, got %d", field.FlagsRemaining())
	}

	for _, i := range []int{1, 2, 3, 4, 5, 6} {
		field.Clear(i)
	}
	if field.AllClear() {
		t.Error("Index 7 is still covered")
	}
	field.Clear(7)
	if !field.AllClear() {
		t.Error("Every safe cell is cleared")
	}
	if field.AdjacentMineCount(4) != 2 || field.AdjacentFlagCount(4) != 2 {
		t.Errorf("Unexpected counts around 4: mines %d flags %d", field.AdjacentMineCount(4), field.AdjacentFlagCount(4))
	}
}

func TestFieldReset(t *testing.T) {
	field := game.NewField(models.Configuration{NumRows: 3, NumCols: 3, NumMines: 2}, game.FixedPlacer{0, 8})
	field.CreateMines(4)
	field.Flag(0)
	field.Clear(4)
	field.Clear(8)

	next := models.Configuration{NumRows: 2, NumCols: 5, NumMines: 3}
	field.Reset(next)

	if len(field.Mines())+len(field.Flags())+len(field.Cleared()) != 0 || field.IsExploded(8) {
		t.Error("Reset should empty every set")
	}
	if field.Configuration() != next || field.FieldSize() != 10 || field.FlagsRemaining() != 3 {
		t.Errorf("Reset should adopt %+v, got %+v", next, field.Configuration())
	}
	if got := field.AdjacentFieldIndexes(4); !slices.Equal(got, []int{3, 8, 9}) {
		t.Errorf("Adjacency should follow the new width, got %v", got)
	}
}
