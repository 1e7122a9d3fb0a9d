package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"minesweeper-backend/internal/models"
)

var ErrSaveUnsupported = fmt.Errorf("saving game state: %w", errors.ErrUnsupported)

type State int

const (
	StateNotCreated State = iota
	StateActive
	StateOver
)

func (s State) String() string {
	switch s {
	case StateNotCreated:
		return "not_created"
	case StateActive:
		return "active"
	case StateOver:
		return "over"
	default:
		return "unknown"
	}
}

// Publisher is where the controller sends its events.
type Publisher interface {
	Publish(ev models.GameEvent) models.Envelope
}

// GameTimer is the part of Timer the controller drives.
type GameTimer interface {
	Start()
	Pause()
	Resume()
	Stop()
	Time() int64
}

type Options struct {
	// Board is used for every reset that does not bring its own configuration.
	Board models.Configuration
	// EndGameOnLastFlag ends the game as soon as the number of flags equals
	// the number of mines.
	EndGameOnLastFlag bool
}

// GameController turns player actions into field mutations and events. All
// exported methods are safe for concurrent use and never fail: calls that do
// not fit the current state are ignored.
type GameController struct {
	mu     sync.Mutex
	field  *Field
	timer  GameTimer
	events Publisher
	opts   Options
	log    logrus.FieldLogger

	created  bool
	gameOver bool
	won      bool
	gameID   string
}

func NewGameController(field *Field, timer GameTimer, events Publisher, opts Options, log logrus.FieldLogger) *GameController {
	if opts.Board == (models.Configuration{}) {
		opts.Board = field.Configuration()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GameController{
		field:  field,
		timer:  timer,
		events: events,
		opts:   opts,
		log:    log,
	}
}

// MaybeCreateGame starts a game whose first safe cell is index. It returns
// false when a game already exists.
func (c *GameController) MaybeCreateGame(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maybeCreateGame(index)
}

func (c *GameController) Clear(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active() {
		return
	}
	c.clear(index)
}

func (c *GameController) ToggleFlag(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toggleFlag(index)
}

func (c *GameController) ClearAdjacentTiles(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active() || !c.inBounds(index) {
		return
	}
	c.clearAdjacentTiles(index)
}

func (c *GameController) ClearEverything() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active() {
		return
	}
	c.clearEverything()
}

// Click is the plain tap on a cell: the first one creates the game.
func (c *GameController) Click(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeCreateGame(index)
	if c.active() {
		c.clear(index)
	}
}

// LongClick toggles a flag, creating the game first if needed.
func (c *GameController) LongClick(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeCreateGame(index)
	c.toggleFlag(index)
}

// Chord clears the neighbours of a cleared cell whose adjacent flag count
// matches its number. It reports whether the chord was applied.
func (c *GameController) Chord(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active() || !c.inBounds(index) || !c.field.IsCleared(index) {
		return false
	}
	if c.field.AdjacentFlagCount(index) != c.field.AdjacentMineCount(index) {
		return false
	}
	c.clearAdjacentTiles(index)
	return true
}

// CountAdjacentFlags returns -1 when there is no game.
func (c *GameController) CountAdjacentFlags(index int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.created || !c.inBounds(index) {
		return -1
	}
	return c.field.AdjacentFlagCount(index)
}

func (c *GameController) FlagIsCorrect(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.created || !c.inBounds(index) {
		return false
	}
	return c.field.IsMine(index)
}

// ResetGame discards the current game and prepares an empty field with the
// default configuration.
func (c *GameController) ResetGame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(c.opts.Board)
}

// ResetGameWith validates cfg, makes it the new default and resets.
func (c *GameController) ResetGameWith(cfg models.Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Board = cfg
	c.reset(cfg)
	return nil
}

func (c *GameController) PauseTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active() {
		c.timer.Pause()
	}
}

func (c *GameController) ResumeTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active() {
		c.timer.Resume()
	}
}

func (c *GameController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !c.created:
		return StateNotCreated
	case c.gameOver:
		return StateOver
	default:
		return StateActive
	}
}

func (c *GameController) Won() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.won
}

func (c *GameController) GameID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

func (c *GameController) Configuration() models.Configuration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.field.Configuration()
}

func (c *GameController) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

func (c *GameController) Elapsed() int64 {
	return c.timer.Time()
}

func (c *GameController) SaveState() ([]byte, error) {
	return nil, ErrSaveUnsupported
}

func (c *GameController) RestoreState(data []byte) error {
	return ErrSaveUnsupported
}

func (c *GameController) active() bool {
	return c.created && !c.gameOver
}

func (c *GameController) inBounds(index int) bool {
	return c.field.Configuration().Contains(index)
}

func (c *GameController) maybeCreateGame(index int) bool {
	if c.created || !c.inBounds(index) {
		return false
	}
	c.created = true
	c.gameID = models.GenerateGameID()
	c.events.Publish(models.GameCreated{Board: c.field.Configuration()})
	c.field.CreateMines(index)
	c.timer.Start()

	cfg := c.field.Configuration()
	c.log.WithFields(logrus.Fields{
		"game_id":   c.gameID,
		"rows":      cfg.NumRows,
		"cols":      cfg.NumCols,
		"mines":     cfg.NumMines,
		"first_hit": index,
	}).Debug("game created")
	return true
}

// clear is the per-cell step shared by player clears, flood fill and the
// final reveal. It only requires that a game exists.
func (c *GameController) clear(index int) {
	if !c.created || !c.inBounds(index) {
		return
	}
	if c.field.IsFlag(index) || c.field.IsCleared(index) || c.field.IsExploded(index) {
		return
	}
	// Mines stay covered once the game is won.
	if c.won && c.field.IsMine(index) {
		return
	}

	if c.field.Clear(index) {
		c.events.Publish(models.PositionExploded{Index: index})
		if !c.gameOver {
			c.lose(index)
		}
		return
	}

	adjacentMines := c.field.AdjacentMineCount(index)
	c.events.Publish(models.PositionCleared{Index: index, AdjacentMines: adjacentMines})
	if adjacentMines == 0 {
		c.clearAdjacentTiles(index)
	}
	if c.field.AllClear() {
		c.win()
	}
}

func (c *GameController) clearAdjacentTiles(index int) {
	for _, adjacent := range c.field.AdjacentFieldIndexes(index) {
		if !c.field.IsFlag(adjacent) && !c.field.IsCleared(adjacent) {
			c.clear(adjacent)
		}
	}
}

func (c *GameController) clearEverything() {
	if !c.created {
		return
	}
	for index := 0; index < c.field.FieldSize(); index++ {
		c.clear(index)
	}
}

func (c *GameController) toggleFlag(index int) {
	if !c.active() || !c.inBounds(index) || c.field.IsCleared(index) {
		return
	}

	if c.field.Flag(index) {
		c.events.Publish(models.PositionUnflagged{Index: index})
		return
	}
	c.events.Publish(models.PositionFlagged{Index: index})
	c.maybeEndGame()
}

func (c *GameController) maybeEndGame() {
	if !c.opts.EndGameOnLastFlag || c.gameOver || !c.field.FlaggedAllMines() {
		return
	}

	if c.field.AllFlagsCorrect() {
		c.win()
		return
	}
	c.gameOver = true
	c.timer.Pause()
	c.events.Publish(models.GameLost{})
	c.logResult("lost on last flag")
	c.clearEverything()
}

func (c *GameController) win() {
	if c.gameOver {
		return
	}
	c.gameOver = true
	c.won = true
	// Pausing first guarantees no TimeUpdate follows GameWon.
	c.timer.Pause()
	c.events.Publish(models.GameWon{EndTime: c.timer.Time()})
	c.logResult("won")
	c.clearEverything()
}

func (c *GameController) lose(index int) {
	c.gameOver = true
	c.timer.Pause()
	c.events.Publish(models.GameLost{})
	c.log.WithField("index", index).Debug("mine exploded")
	c.logResult("lost")
	c.clearEverything()
}

func (c *GameController) logResult(result string) {
	c.log.WithFields(logrus.Fields{
		"game_id": c.gameID,
		"elapsed": c.timer.Time(),
		"flags":   len(c.field.Flags()),
	}).Infof("game %s", result)
}

func (c *GameController) reset(cfg models.Configuration) {
	c.timer.Stop()
	c.created = false
	c.gameOver = false
	c.won = false
	c.gameID = ""
	c.events.Publish(models.FieldReset{Board: cfg})
	c.field.Reset(cfg)
}
