package handlers

import (
	"errors"
	"net/http"

	"algoquest/logger"
	"algoquest/services"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	progressService *services.ProgressService
	log             *logger.Logger
}

func NewProgressHandler(progressService *services.ProgressService, log *logger.Logger) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		log:             log.With("handler", "ProgressHandler"),
	}
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.progressService.GetProgress(c.Request.Context(), userID)
	if err != nil {
		serverError(c, h.log, "Failed to load progress", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *ProgressHandler) RecordProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.progressService.RecordMissionComplete(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrUnknownMission) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		serverError(c, h.log, "Failed to record progress", err)
		return
	}

	c.JSON(http.StatusOK, row)
}

func (h *ProgressHandler) ListMissionScores(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	scores, err := h.progressService.ListMissionScores(c.Request.Context(), userID)
	if err != nil {
		serverError(c, h.log, "Failed to load mission scores", err)
		return
	}

	c.JSON(http.StatusOK, scores)
}
