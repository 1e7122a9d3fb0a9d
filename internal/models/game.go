package models

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventGameCreated       EventType = "GameCreated"
	EventFieldReset        EventType = "FieldReset"
	EventTimeUpdate        EventType = "TimeUpdate"
	EventPositionCleared   EventType = "PositionCleared"
	EventPositionExploded  EventType = "PositionExploded"
	EventPositionFlagged   EventType = "PositionFlagged"
	EventPositionUnflagged EventType = "PositionUnflagged"
	EventGameWon           EventType = "GameWon"
	EventGameLost          EventType = "GameLost"
)

// GameEvent is one of the nine event variants below. The set is closed.
type GameEvent interface {
	Type() EventType
	gameEvent()
}

// GameCreated and FieldReset carry the board the new game is played on.
type GameCreated struct {
	Board Configuration `json:"board"`
}

type FieldReset struct {
	Board Configuration `json:"board"`
}

// TimeUpdate carries the elapsed game time in milliseconds.
type TimeUpdate struct {
	Time int64 `json:"time"`
}

type PositionCleared struct {
	Index         int `json:"index"`
	AdjacentMines int `json:"adjacent_mines"`
}

type PositionExploded struct {
	Index int `json:"index"`
}

type PositionFlagged struct {
	Index int `json:"index"`
}

type PositionUnflagged struct {
	Index int `json:"index"`
}

// GameWon carries the elapsed time in milliseconds at the moment of the win.
type GameWon struct {
	EndTime int64 `json:"end_time"`
}

type GameLost struct{}

func (GameCreated) Type() EventType       { return EventGameCreated }
func (FieldReset) Type() EventType        { return EventFieldReset }
func (TimeUpdate) Type() EventType        { return EventTimeUpdate }
func (PositionCleared) Type() EventType   { return EventPositionCleared }
func (PositionExploded) Type() EventType  { return EventPositionExploded }
func (PositionFlagged) Type() EventType   { return EventPositionFlagged }
func (PositionUnflagged) Type() EventType { return EventPositionUnflagged }
func (GameWon) Type() EventType           { return EventGameWon }
func (GameLost) Type() EventType          { return EventGameLost }

func (GameCreated) gameEvent()       {}
func (FieldReset) gameEvent()        {}
func (TimeUpdate) gameEvent()        {}
func (PositionCleared) gameEvent()   {}
func (PositionExploded) gameEvent()  {}
func (PositionFlagged) gameEvent()   {}
func (PositionUnflagged) gameEvent() {}
func (GameWon) gameEvent()           {}
func (GameLost) gameEvent()          {}

// Envelope is an event as delivered by the event bus. Seq is the position
// of the event in the bus-wide total order.
type Envelope struct {
	Seq   uint64
	At    time.Time
	Event GameEvent
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	var eventType EventType
	if e.Event != nil {
		eventType = e.Event.Type()
	}
	return json.Marshal(struct {
		Seq  uint64    `json:"seq"`
		Type EventType `json:"type"`
		At   time.Time `json:"at"`
		Data GameEvent `json:"data"`
	}{
		Seq:  e.Seq,
		Type: eventType,
		At:   e.At,
		Data: e.Event,
	})
}
