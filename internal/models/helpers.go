package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateGameID() string {
	return fmt.Sprintf("game_%s_%s",
		time.Now().Format("20060102"),
		uuid.New().String())
}

func GeneratePlayerID() string {
	return fmt.Sprintf("player_%s", uuid.New().String())
}

// ActionRequest addresses a cell either by flat index or by x/y coordinates.
type ActionRequest struct {
	Index *int `json:"index"`
	X     *int `json:"x"`
	Y     *int `json:"y"`
}

// ResolveIndex returns the field index the request targets on a board of
// the given configuration.
func (r *ActionRequest) ResolveIndex(cfg Configuration) (int, error) {
	var index int
	switch {
	case r.Index != nil:
		index = *r.Index
	case r.X != nil && r.Y != nil:
		x, y := *r.X, *r.Y
		if x < 0 || x >= cfg.Width() || y < 0 || y >= cfg.Height() {
			return 0, fmt.Errorf("position (%d, %d) outside %dx%d board", x, y, cfg.Width(), cfg.Height())
		}
		index = y*cfg.Width() + x
	default:
		return 0, fmt.Errorf("either index or x and y are required")
	}

	if !cfg.Contains(index) {
		return 0, fmt.Errorf("index %d outside board of %d cells", index, cfg.FieldSize())
	}
	return index, nil
}

// ResetRequest optionally carries a new board for the next game.
type ResetRequest struct {
	Rows  int `json:"rows"`
	Cols  int `json:"cols"`
	Mines int `json:"mines"`
}

func (r *ResetRequest) IsEmpty() bool {
	return r.Rows == 0 && r.Cols == 0 && r.Mines == 0
}

func (r *ResetRequest) Configuration() Configuration {
	return Configuration{NumRows: r.Rows, NumCols: r.Cols, NumMines: r.Mines}
}
