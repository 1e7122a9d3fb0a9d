package models

type TileState string

const (
	TileCovered  TileState = "COVERED"
	TileCleared  TileState = "CLEARED"
	TileFlagged  TileState = "FLAGGED"
	TileExploded TileState = "EXPLODED"
)

// TileValue is 0..8 for a cleared tile, or one of the negative markers.
type TileValue int

const (
	TileValueUnknown TileValue = -1
	TileValueMine    TileValue = -2
	TileValueFlag    TileValue = -3
)

func (v TileValue) String() string {
	switch v {
	case TileValueUnknown:
		return "UNKNOWN"
	case TileValueMine:
		return "MINE"
	case TileValueFlag:
		return "FLAG"
	default:
		return string(rune('0' + int(v)))
	}
}

func (v TileValue) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

type Tile struct {
	State TileState `json:"state"`
	Value TileValue `json:"value"`
}

// GameView is the renderable snapshot built from the event stream.
type GameView struct {
	Rows           int    `json:"rows"`
	Cols           int    `json:"cols"`
	Tiles          []Tile `json:"tiles"`
	MinesRemaining int    `json:"mines_remaining"`
	ElapsedTime    int64  `json:"elapsed_time"`
	GameOver       bool   `json:"game_over"`
	Winner         bool   `json:"winner"`
	Seq            uint64 `json:"seq"`
}
