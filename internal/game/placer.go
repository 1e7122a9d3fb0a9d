package game

import (
	"math/rand"
	"sync"
	"time"

	"minesweeper-backend/internal/models"
)

// MinePlacer chooses the mine indexes of a new game. The returned indexes
// should be distinct, inside the board and never equal to safeIndex.
type MinePlacer interface {
	PlaceMines(cfg models.Configuration, safeIndex int) []int
}

// RandomPlacer draws mines uniformly without replacement by shuffling every
// candidate index except the safe one.
type RandomPlacer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomPlacer(seed int64) *RandomPlacer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPlacer{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPlacer) PlaceMines(cfg models.Configuration, safeIndex int) []int {
	candidates := make([]int, 0, cfg.FieldSize())
	for i := 0; i < cfg.FieldSize(); i++ {
		if i != safeIndex {
			candidates = append(candidates, i)
		}
	}

	p.mu.Lock()
	p.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	p.mu.Unlock()

	count := min(cfg.NumMines, len(candidates))
	return candidates[:count]
}

// FixedPlacer always returns the same layout. Used for deterministic boards.
type FixedPlacer []int

func (p FixedPlacer) PlaceMines(cfg models.Configuration, safeIndex int) []int {
	return append([]int(nil), p...)
}
