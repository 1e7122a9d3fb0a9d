package game

import (
	"maps"
	"slices"

	"minesweeper-backend/internal/models"
)

type indexSet map[int]struct{}

func (s indexSet) has(index int) bool {
	_, ok := s[index]
	return ok
}

func (s indexSet) sorted() []int {
	return slices.Sorted(maps.Keys(s))
}

// Field owns the mine, flag and cleared sets of one board. Mines that were
// detonated are kept apart in exploded, so cleared never contains a mine.
type Field struct {
	cfg        models.Configuration
	placer     MinePlacer
	translator *CoordinateTranslator

	mines    indexSet
	flags    indexSet
	cleared  indexSet
	exploded indexSet
}

func NewField(cfg models.Configuration, placer MinePlacer) *Field {
	if placer == nil {
		placer = NewRandomPlacer(0)
	}
	f := &Field{
		placer:     placer,
		translator: NewCoordinateTranslator(cfg.Width(), cfg.Height()),
	}
	f.Reset(cfg)
	return f
}

func (f *Field) Reset(cfg models.Configuration) {
	f.cfg = cfg
	f.translator.Resize(cfg.Width(), cfg.Height())
	f.mines = make(indexSet)
	f.flags = make(indexSet)
	f.cleared = make(indexSet)
	f.exploded = make(indexSet)
}

// CreateMines places the configured number of mines, never on safeIndex.
// It is meant to be called once per game, on the first clear.
func (f *Field) CreateMines(safeIndex int) {
	for _, index := range f.placer.PlaceMines(f.cfg, safeIndex) {
		if len(f.mines) == f.cfg.NumMines {
			break
		}
		if index == safeIndex || !f.cfg.Contains(index) {
			continue
		}
		f.mines[index] = struct{}{}
	}
}

// Clear reports whether index is a mine. A safe index is added to the
// cleared set; a mine is remembered as exploded instead.
func (f *Field) Clear(index int) bool {
	if f.mines.has(index) {
		f.exploded[index] = struct{}{}
		return true
	}
	f.cleared[index] = struct{}{}
	return false
}

// Flag toggles the flag on index. It returns true when the call removed an
// existing flag and false when it placed a new one.
func (f *Field) Flag(index int) bool {
	if f.flags.has(index) {
		delete(f.flags, index)
		return true
	}
	f.flags[index] = struct{}{}
	return false
}

func (f *Field) IsFlag(index int) bool {
	return f.flags.has(index)
}

func (f *Field) IsMine(index int) bool {
	return f.mines.has(index)
}

func (f *Field) IsCleared(index int) bool {
	return f.cleared.has(index)
}

func (f *Field) IsExploded(index int) bool {
	return f.exploded.has(index)
}

// AdjacentFieldIndexes returns the in-bounds Moore neighbourhood of index in
// row-major order. Neighbours come from x/y arithmetic so narrow boards never
// wrap around an edge.
func (f *Field) AdjacentFieldIndexes(index int) []int {
	x, y := f.translator.IndexToXY(index)
	adjacent := make([]int, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if f.translator.Contains(nx, ny) {
				adjacent = append(adjacent, f.translator.XYToIndex(nx, ny))
			}
		}
	}
	return adjacent
}

func (f *Field) AdjacentMineCount(index int) int {
	count := 0
	for _, i := range f.AdjacentFieldIndexes(index) {
		if f.mines.has(i) {
			count++
		}
	}
	return count
}

func (f *Field) AdjacentFlagCount(index int) int {
	count := 0
	for _, i := range f.AdjacentFieldIndexes(index) {
		if f.flags.has(i) {
			count++
		}
	}
	return count
}

func (f *Field) Configuration() models.Configuration {
	return f.cfg
}

func (f *Field) Translator() *CoordinateTranslator {
	return f.translator
}

func (f *Field) FieldSize() int {
	return f.cfg.FieldSize()
}

func (f *Field) FlagsRemaining() int {
	return f.cfg.NumMines - len(f.flags)
}

func (f *Field) FlaggedAllMines() bool {
	return len(f.flags) == len(f.mines)
}

func (f *Field) AllFlagsCorrect() bool {
	if len(f.flags) != len(f.mines) {
		return false
	}
	for index := range f.mines {
		if !f.flags.has(index) {
			return false
		}
	}
	return true
}

func (f *Field) AllClear() bool {
	return len(f.cleared) == f.FieldSize()-len(f.mines)
}

func (f *Field) Mines() []int {
	return f.mines.sorted()
}

func (f *Field) Flags() []int {
	return f.flags.sorted()
}

func (f *Field) Cleared() []int {
	return f.cleared.sorted()
}
