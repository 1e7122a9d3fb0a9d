package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"minesweeper-backend/internal/middleware"
	"minesweeper-backend/internal/models"
	"minesweeper-backend/internal/services"
)

type SessionHandler struct {
	jwtService *services.JWTService
	log        logrus.FieldLogger
}

func NewSessionHandler(jwtService *services.JWTService, log logrus.FieldLogger) *SessionHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SessionHandler{jwtService: jwtService, log: log}
}

// CreateSession starts an anonymous player session and returns its token.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req models.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	session, token, err := h.jwtService.NewSession(req.Name)
	if err != nil {
		h.log.WithError(err).Error("failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	h.log.WithFields(logrus.Fields{
		"player_id":  session.Player.ID,
		"session_id": session.SessionID,
	}).Info("session created")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"session": session,
	})
}

func (h *SessionHandler) GetCurrentPlayer(c *gin.Context) {
	playerID, exists := c.Get(middleware.KeyPlayerID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Player not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player": gin.H{
			"id":   playerID,
			"name": c.GetString("player_name"),
		},
		"session_id": c.GetString("session_id"),
	})
}
