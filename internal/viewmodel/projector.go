// Package viewmodel folds the game event stream into a renderable board.
package viewmodel

import (
	"context"
	"sync"

	"minesweeper-backend/internal/events"
	"minesweeper-backend/internal/models"
)

// ConfigurationSource reports the board the next game is played on.
type ConfigurationSource interface {
	Configuration() models.Configuration
}

// Projector keeps a GameView in sync with the events it is fed. It never
// looks at the field itself. Boards come from GameCreated and FieldReset;
// the source is only consulted for the initial view and for events that
// carry no board.
type Projector struct {
	src ConfigurationSource

	mu      sync.Mutex
	view    models.GameView
	changed chan struct{}
}

func NewProjector(src ConfigurationSource) *Projector {
	p := &Projector{src: src, changed: make(chan struct{})}
	p.rebuild()
	return p
}

// Run applies every envelope from sub until the subscription ends or ctx is
// done.
func (p *Projector) Run(ctx context.Context, sub *events.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-sub.C():
			if !ok {
				return
			}
			p.Apply(env)
		}
	}
}

func (p *Projector) Apply(env models.Envelope) {
	var (
		rebuild bool
		cfg     models.Configuration
	)
	switch ev := env.Event.(type) {
	case models.GameCreated:
		rebuild, cfg = true, ev.Board
	case models.FieldReset:
		rebuild, cfg = true, ev.Board
	}
	// Read the configuration outside our lock: the source may be busy
	// publishing to the bus.
	if rebuild && cfg == (models.Configuration{}) {
		cfg = p.src.Configuration()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if rebuild {
		p.resetLocked(cfg)
	} else {
		p.applyLocked(env.Event)
	}
	if env.Seq > p.view.Seq {
		p.view.Seq = env.Seq
	}
	close(p.changed)
	p.changed = make(chan struct{})
}

func (p *Projector) applyLocked(ev models.GameEvent) {
	v := &p.view
	switch ev := ev.(type) {
	case models.TimeUpdate:
		v.ElapsedTime = ev.Time

	case models.PositionCleared:
		if p.inBounds(ev.Index) {
			v.Tiles[ev.Index] = models.Tile{State: models.TileCleared, Value: models.TileValue(ev.AdjacentMines)}
		}

	case models.PositionExploded:
		if p.inBounds(ev.Index) {
			v.Tiles[ev.Index] = models.Tile{State: models.TileExploded, Value: models.TileValueMine}
		}
		v.GameOver = true

	case models.PositionFlagged:
		if p.inBounds(ev.Index) {
			v.Tiles[ev.Index] = models.Tile{State: models.TileFlagged, Value: models.TileValueFlag}
			v.MinesRemaining--
		}

	case models.PositionUnflagged:
		if p.inBounds(ev.Index) {
			v.Tiles[ev.Index] = coveredTile()
			v.MinesRemaining++
		}

	case models.GameWon:
		v.GameOver = true
		v.Winner = true
		v.ElapsedTime = ev.EndTime
		v.MinesRemaining = 0
		// Whatever is still covered after a win is a mine.
		for i, tile := range v.Tiles {
			if tile.State == models.TileCovered {
				v.Tiles[i] = models.Tile{State: models.TileFlagged, Value: models.TileValueFlag}
			}
		}

	case models.GameLost:
		v.GameOver = true
	}
}

// Snapshot returns a copy of the current view.
func (p *Projector) Snapshot() models.GameView {
	p.mu.Lock()
	defer p.mu.Unlock()

	view := p.view
	view.Tiles = append([]models.Tile(nil), p.view.Tiles...)
	return view
}

// Await blocks until the event numbered seq has been applied and returns
// the view at that point.
func (p *Projector) Await(ctx context.Context, seq uint64) (models.GameView, error) {
	for {
		p.mu.Lock()
		applied := p.view.Seq >= seq
		changed := p.changed
		p.mu.Unlock()

		if applied {
			return p.Snapshot(), nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return models.GameView{}, ctx.Err()
		}
	}
}

func (p *Projector) rebuild() {
	cfg := p.src.Configuration()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked(cfg)
}

func (p *Projector) resetLocked(cfg models.Configuration) {
	tiles := make([]models.Tile, cfg.FieldSize())
	for i := range tiles {
		tiles[i] = coveredTile()
	}
	p.view = models.GameView{
		Rows:           cfg.NumRows,
		Cols:           cfg.NumCols,
		Tiles:          tiles,
		MinesRemaining: cfg.NumMines,
		Seq:            p.view.Seq,
	}
}

func (p *Projector) inBounds(index int) bool {
	return index >= 0 && index < len(p.view.Tiles)
}

func coveredTile() models.Tile {
	return models.Tile{State: models.TileCovered, Value: models.TileValueUnknown}
}
