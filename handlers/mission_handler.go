package handlers

import (
	"errors"
	"net/http"

	"algoquest/logger"
	"algoquest/missions"
	"algoquest/services"

	"github.com/gin-gonic/gin"
)

type MissionHandler struct {
	ledgerService *services.LedgerService
	log           *logger.Logger
}

func NewMissionHandler(ledgerService *services.LedgerService, log *logger.Logger) *MissionHandler {
	return &MissionHandler{
		ledgerService: ledgerService,
		log:           log.With("handler", "MissionHandler"),
	}
}

func (h *MissionHandler) ListMissions(c *gin.Context) {
	c.JSON(http.StatusOK, missions.Missions())
}

func (h *MissionHandler) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.ledgerService.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, missions.ErrUnknownPhase), errors.Is(err, services.ErrInvalidAnswer):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			serverError(c, h.log, "Submit failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
