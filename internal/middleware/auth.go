package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"minesweeper-backend/internal/services"
)

const (
	KeyPlayerID   = "player_id"
	KeyPlayerName = "player_name"
	KeySessionID  = "session_id"
)

type TokenValidator interface {
	ValidateToken(token string) (*services.Claims, error)
}

type RateLimiter interface {
	CheckRateLimit(playerID string, action string, limit int, window time.Duration) (bool, error)
}

func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
				c.Abort()
				return
			}
			tokenString = parts[1]
		} else {
			// Browsers cannot set headers on a WebSocket handshake.
			tokenString = c.Query("token")
			if tokenString == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
				c.Abort()
				return
			}
		}

		claims, err := validator.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(KeyPlayerID, claims.PlayerID)
		c.Set(KeyPlayerName, claims.Name)
		c.Set(KeySessionID, claims.SessionID)

		c.Next()
	}
}

// RateLimitMiddleware limits board actions per player. A nil limiter or a
// non-positive limit lets every request through.
func RateLimitMiddleware(limiter RateLimiter, limit int, log logrus.FieldLogger) gin.HandlerFunc {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(c *gin.Context) {
		playerID := c.GetString(KeyPlayerID)
		if limiter == nil || limit <= 0 || playerID == "" {
			c.Next()
			return
		}

		path := c.Request.URL.Path

		var action string
		actionLimit := limit
		switch {
		case strings.HasSuffix(path, "/game/click"),
			strings.HasSuffix(path, "/game/flag"),
			strings.HasSuffix(path, "/game/chord"):
			action = "action"
		case strings.HasSuffix(path, "/game/reset"):
			action = "reset"
			actionLimit = max(limit/10, 1)
		default:
			c.Next()
			return
		}

		window := services.DefaultRateLimitWindow
		allowed, err := limiter.CheckRateLimit(playerID, action, actionLimit, window)
		if err != nil {
			// A failing limiter lets the request through.
			log.WithError(err).Warn("rate limit check failed")
			c.Next()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
