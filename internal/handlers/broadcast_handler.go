package handlers

import (
	"errors"
	"net/http"

	"github.com/cryptocast/cryptocast/internal/billing"
	"github.com/cryptocast/cryptocast/internal/domains/broadcast"
	"github.com/cryptocast/cryptocast/pkg/Logger"
	"github.com/gin-gonic/gin"
)

// BroadcastHandler exposes the stream control surface.
type BroadcastHandler struct {
	svc     broadcast.BroadcastService
	credits *billing.CreditLedger
	logger  *Logger.Logger
}

// NewBroadcastHandler creates a new broadcast handler
func NewBroadcastHandler(svc broadcast.BroadcastService, credits *billing.CreditLedger, logger *Logger.Logger) *BroadcastHandler {
	return &BroadcastHandler{svc: svc, credits: credits, logger: logger}
}

// Start brings the broadcast live
func (h *BroadcastHandler) Start(c *gin.Context) {
	sessionID, err := h.svc.StartStream(c.Request.Context())
	if err != nil {
		if errors.Is(err, broadcast.ErrAlreadyLive) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "A stream is already live"})
			return
		}
		h.logger.Errorf("stream start error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, StreamStartResponse{
		Message:   "Stream started",
		SessionID: sessionID.String(),
	})
}

// Stop tears the broadcast down
func (h *BroadcastHandler) Stop(c *gin.Context) {
	if err := h.svc.StopStream(c.Request.Context()); err != nil {
		if errors.Is(err, broadcast.ErrNoActiveStream) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No active stream"})
			return
		}
		h.logger.Errorf("stream stop error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Stream stopped"})
}

// Skip cuts the current segment and dispatches the next one
func (h *BroadcastHandler) Skip(c *gin.Context) {
	if err := h.svc.SkipSegment(c.Request.Context()); err != nil {
		if errors.Is(err, broadcast.ErrNoActiveStream) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No active stream"})
			return
		}
		h.logger.Errorf("segment skip error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Segment skipped"})
}

// Status reports the live stream cursor
func (h *BroadcastHandler) Status(c *gin.Context) {
	status, err := h.svc.Status(c.Request.Context())
	if err != nil {
		if errors.Is(err, broadcast.ErrNoActiveStream) {
			c.JSON(http.StatusOK, gin.H{"live": false})
			return
		}
		h.logger.Errorf("stream status error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// Credits reports the remaining generation credit
func (h *BroadcastHandler) Credits(c *gin.Context) {
	balance, err := h.credits.Balance()
	if err != nil {
		h.logger.Errorf("credit balance error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, CreditsResponse{Balance: balance})
}
