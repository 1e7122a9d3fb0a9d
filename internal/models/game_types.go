package models

import "fmt"

// Configuration describes one board. Width is NumCols and Height is NumRows.
type Configuration struct {
	NumRows  int `json:"rows" yaml:"rows"`
	NumCols  int `json:"cols" yaml:"cols"`
	NumMines int `json:"mines" yaml:"mines"`
}

type Preset string

const (
	PresetBeginner     Preset = "beginner"
	PresetIntermediate Preset = "intermediate"
	PresetExpert       Preset = "expert"
)

var presets = map[Preset]Configuration{
	PresetBeginner:     {NumRows: 9, NumCols: 9, NumMines: 10},
	PresetIntermediate: {NumRows: 16, NumCols: 16, NumMines: 40},
	PresetExpert:       {NumRows: 16, NumCols: 30, NumMines: 99},
}

// DefaultConfiguration is the beginner board.
func DefaultConfiguration() Configuration {
	return presets[PresetBeginner]
}

func PresetConfiguration(p Preset) (Configuration, error) {
	cfg, ok := presets[p]
	if !ok {
		return Configuration{}, fmt.Errorf("unknown board preset: %s", p)
	}
	return cfg, nil
}

func (c Configuration) Width() int {
	return c.NumCols
}

func (c Configuration) Height() int {
	return c.NumRows
}

func (c Configuration) FieldSize() int {
	return c.NumRows * c.NumCols
}

// Contains reports whether index addresses a cell of this board.
func (c Configuration) Contains(index int) bool {
	return index >= 0 && index < c.FieldSize()
}

// MaxFieldSize bounds the number of cells on a board.
const MaxFieldSize = 1 << 16

func (c Configuration) Validate() error {
	if c.NumRows <= 0 || c.NumCols <= 0 || c.NumCols > MaxFieldSize/c.NumRows ||
		c.NumMines < 0 || c.NumMines >= c.FieldSize() {
		return &InvalidConfigurationError{Rows: c.NumRows, Cols: c.NumCols, Mines: c.NumMines}
	}
	return nil
}

type InvalidConfigurationError struct {
	Rows  int
	Cols  int
	Mines int
}

func (e *InvalidConfigurationError) Error() string {
	switch {
	case e.Rows <= 0:
		return fmt.Sprintf("cannot create a board with %d rows", e.Rows)
	case e.Cols <= 0:
		return fmt.Sprintf("cannot create a board with %d columns", e.Cols)
	case e.Cols > MaxFieldSize/e.Rows:
		return fmt.Sprintf("board of %d x %d exceeds %d cells", e.Rows, e.Cols, MaxFieldSize)
	case e.Mines < 0:
		return fmt.Sprintf("cannot create a board with negative amount of mines: %d", e.Mines)
	default:
		return fmt.Sprintf("not enough space for %d mines (%d >= %d * %d)", e.Mines, e.Mines, e.Rows, e.Cols)
	}
}
