package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"minesweeper-backend/internal/game"
	"minesweeper-backend/internal/middleware"
	"minesweeper-backend/internal/models"
	"minesweeper-backend/internal/services"
	"minesweeper-backend/internal/viewmodel"
)

const stateTimeout = 2 * time.Second

// SeqSource reports the sequence number of the last published event.
type SeqSource interface {
	LastSeq() uint64
}

type GameHandler struct {
	controller *game.GameController
	projector  *viewmodel.Projector
	events     SeqSource
	stats      services.StatsStore
	log        logrus.FieldLogger

	adjustFieldToView bool
}

func NewGameHandler(
	controller *game.GameController,
	projector *viewmodel.Projector,
	events SeqSource,
	stats services.StatsStore,
	adjustFieldToView bool,
	log logrus.FieldLogger,
) *GameHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GameHandler{
		controller:        controller,
		projector:         projector,
		events:            events,
		stats:             stats,
		log:               log,
		adjustFieldToView: adjustFieldToView,
	}
}

func (h *GameHandler) Click(c *gin.Context) {
	index, ok := h.bindIndex(c)
	if !ok {
		return
	}

	h.controller.Click(index)
	h.respondState(c, nil)
}

// Flag is the long click: it toggles a flag and creates the game if needed.
func (h *GameHandler) Flag(c *gin.Context) {
	index, ok := h.bindIndex(c)
	if !ok {
		return
	}

	h.controller.LongClick(index)
	h.respondState(c, nil)
}

func (h *GameHandler) Chord(c *gin.Context) {
	index, ok := h.bindIndex(c)
	if !ok {
		return
	}

	applied := h.controller.Chord(index)
	h.respondState(c, gin.H{"applied": applied})
}

func (h *GameHandler) Reset(c *gin.Context) {
	var req models.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if req.IsEmpty() {
		h.controller.ResetGame()
	} else if err := h.controller.ResetGameWith(req.Configuration()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid board",
			"details": err.Error(),
		})
		return
	}

	h.log.WithFields(logrus.Fields{
		"player_id": c.GetString(middleware.KeyPlayerID),
		"board":     h.controller.Configuration(),
	}).Info("game reset")
	h.respondState(c, nil)
}

func (h *GameHandler) Pause(c *gin.Context) {
	h.controller.PauseTimer()
	h.respondState(c, nil)
}

func (h *GameHandler) Resume(c *gin.Context) {
	h.controller.ResumeTimer()
	h.respondState(c, nil)
}

func (h *GameHandler) GetState(c *gin.Context) {
	h.respondState(c, nil)
}

func (h *GameHandler) GetStats(c *gin.Context) {
	if h.stats == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Statistics are not available"})
		return
	}

	stats, err := h.stats.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(statsErrorStatus(err), gin.H{
			"error":   "Failed to get statistics",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   models.NewStatsResponse(stats),
	})
}

func (h *GameHandler) ResetStats(c *gin.Context) {
	if h.stats == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Statistics are not available"})
		return
	}

	if err := h.stats.ResetStats(c.Request.Context()); err != nil {
		c.JSON(statsErrorStatus(err), gin.H{
			"error":   "Failed to reset statistics",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) GetConfig(c *gin.Context) {
	opts := h.controller.Options()

	c.JSON(http.StatusOK, gin.H{
		"board":                 opts.Board,
		"end_game_on_last_flag": opts.EndGameOnLastFlag,
		"adjust_field_to_view":  h.adjustFieldToView,
		"presets": gin.H{
			string(models.PresetBeginner):     mustPreset(models.PresetBeginner),
			string(models.PresetIntermediate): mustPreset(models.PresetIntermediate),
			string(models.PresetExpert):       mustPreset(models.PresetExpert),
		},
	})
}

func (h *GameHandler) bindIndex(c *gin.Context) (int, bool) {
	var req models.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return 0, false
	}

	index, err := req.ResolveIndex(h.controller.Configuration())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid position",
			"details": err.Error(),
		})
		return 0, false
	}
	return index, true
}

// respondState answers with the board as it stands after every event
// published so far.
func (h *GameHandler) respondState(c *gin.Context, extra gin.H) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), stateTimeout)
	defer cancel()

	view, err := h.projector.Await(ctx, h.events.LastSeq())
	if err != nil {
		h.log.WithError(err).Warn("board projection is lagging")
		view = h.projector.Snapshot()
	}

	body := gin.H{
		"success": true,
		"state":   h.controller.State().String(),
		"game_id": h.controller.GameID(),
		"game":    view,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func statsErrorStatus(err error) int {
	if errors.Is(err, services.ErrStatsUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func mustPreset(p models.Preset) models.Configuration {
	cfg, err := models.PresetConfiguration(p)
	if err != nil {
		panic(err)
	}
	return cfg
}
