package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"minesweeper-backend/internal/config"
	"minesweeper-backend/internal/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"name"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTService(cfg *config.Config) *JWTService {
	return &JWTService{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL}
}

// NewSession creates a player session for name and signs a token for it.
func (s *JWTService) NewSession(name string) (*models.PlayerSession, string, error) {
	now := time.Now()
	session := &models.PlayerSession{
		Player:    models.Player{ID: models.GeneratePlayerID(), Name: name},
		SessionID: uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	token, err := s.GenerateToken(session)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

func (s *JWTService) GenerateToken(session *models.PlayerSession) (string, error) {
	claims := Claims{
		PlayerID:  session.Player.ID,
		Name:      session.Player.Name,
		SessionID: session.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Player.ID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.PlayerID == "" {
		return nil, fmt.Errorf("%w: missing player id", ErrInvalidToken)
	}
	return claims, nil
}
