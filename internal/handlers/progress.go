package handlers

import (
	"net/http"

	"leadcaller/internal/models"
	"leadcaller/internal/services"

	"github.com/gin-gonic/gin"
)

// ReportProgress records the agent's current step and merges its context
func (h *Handler) ReportProgress(c *gin.Context) {
	var req models.ProgressReport
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn().Err(err).Msg("invalid progress report")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.progress.ReportProgress(c.Request.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("call_id", req.CallID).Msg("progress report failed")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	p := result.Progress
	c.JSON(http.StatusOK, gin.H{
		"status":       result.Status,
		"id":           p.ID,
		"call_id":      p.CallID,
		"current_step": p.CurrentStep,
		"context":      p.Context,
	})
}

// PatchCallIDVoice sets call_id_voice on the progress row for :call_id
func (h *Handler) PatchCallIDVoice(c *gin.Context) {
	callID := c.Param("call_id")

	var req models.PatchCallIDVoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CallIDVoice == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "call_id_voice is required"})
		return
	}

	if err := h.progress.PatchCallIDVoice(c.Request.Context(), callID, req.CallIDVoice); err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			c.JSON(status, gin.H{"error": "No progress found for call_id"})
			return
		}
		h.log.Error().Err(err).Str("call_id", callID).Msg("patch call_id_voice failed")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        services.ProgressUpdated,
		"call_id":       callID,
		"call_id_voice": req.CallIDVoice,
	})
}
