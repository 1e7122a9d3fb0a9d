package models

import "time"

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PlayerSession struct {
	Player    Player    `json:"player"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionRequest struct {
	Name string `json:"name" binding:"required,min=1,max=32"`
}
