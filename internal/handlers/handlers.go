package handlers

import (
	"errors"
	"net/http"

	"leadcaller/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler serves the HTTP API
type Handler struct {
	meetings *services.MeetingService
	progress *services.ProgressService
	email    *services.EmailService
	log      zerolog.Logger
}

// New builds the HTTP handlers around the services
func New(meetings *services.MeetingService, progress *services.ProgressService, email *services.EmailService, log zerolog.Logger) *Handler {
	return &Handler{
		meetings: meetings,
		progress: progress,
		email:    email,
		log:      log.With().Str("component", "http").Logger(),
	}
}

// handleError logs err and writes the {success:false, error} body. The error
// text goes back to the caller as is.
func (h *Handler) handleError(c *gin.Context, status int, err error) {
	h.log.Error().Err(err).Str("path", c.FullPath()).Int("status", status).Msg("request failed")
	_ = c.Error(err)
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrMissingProgress):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// HomeHandler handles requests to the root path "/"
func HomeHandler(c *gin.Context) {
	c.String(http.StatusOK, "Lead caller is running")
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
