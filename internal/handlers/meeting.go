package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"leadcaller/internal/models"
	"leadcaller/internal/services"

	"github.com/gin-gonic/gin"
)

var scheduleMessages = map[string]string{
	services.ScheduleCalled:    "Meeting saved and call started",
	services.ScheduleScheduled: "Meeting scheduled successfully",
	services.ScheduleUpdated:   "Meeting updated successfully",
}

// ScheduleMeeting saves a meeting and calls the lead now when no date or time was given
func (h *Handler) ScheduleMeeting(c *gin.Context) {
	var req models.ScheduleMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, fmt.Errorf("invalid input: %w", err))
		return
	}

	result, err := h.meetings.ScheduleMeeting(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		h.log.Error().Err(err).Int("status", status).Msg("schedule meeting failed")
		_ = c.Error(err)
		body := gin.H{"success": false, "error": err.Error()}
		if result != nil && result.MeetingID != 0 {
			body["meeting_id"] = result.MeetingID
		}
		c.JSON(status, body)
		return
	}

	body := gin.H{
		"success":    true,
		"message":    scheduleMessages[result.Status],
		"meeting_id": result.MeetingID,
	}
	if result.CallID != "" {
		body["call_id"] = result.CallID
	}
	c.JSON(http.StatusOK, body)
}

// MeetingAgent hands the current call over to a pathway voice agent
func (h *Handler) MeetingAgent(c *gin.Context) {
	var req models.AgentHandoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, fmt.Errorf("invalid input: %w", err))
		return
	}

	callIDVoice, err := h.meetings.AgentHandoff(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Agent call started",
		"call_id_voice": callIDVoice,
	})
}

// ListMeetings returns every stored meeting
func (h *Handler) ListMeetings(c *gin.Context) {
	meetings, err := h.meetings.ListMeetings(c.Request.Context())
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "meetings": meetings})
}

// ListCallAttempts returns the provider calls placed for one meeting
func (h *Handler) ListCallAttempts(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.handleError(c, http.StatusBadRequest, fmt.Errorf("invalid meeting id %q", c.Param("id")))
		return
	}

	attempts, err := h.meetings.ListCallAttempts(c.Request.Context(), uint(id))
	if err != nil {
		h.handleError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "call_attempts": attempts})
}
