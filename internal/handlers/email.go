package handlers

import (
	"net/http"

	"leadcaller/internal/services"

	"github.com/gin-gonic/gin"
)

// SendEmailRequest is the body of POST /send-email
type SendEmailRequest struct {
	To           string                 `json:"to"`
	Subject      string                 `json:"subject"`
	TemplateData map[string]interface{} `json:"templateData"`
}

// SendEmail renders the email template with templateData and sends it
func (h *Handler) SendEmail(c *gin.Context) {
	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.To == "" || req.Subject == "" || req.TemplateData == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Missing required fields: (to, subject, templateData)",
		})
		return
	}

	if err := h.email.SendTemplate(req.To, req.Subject, services.DefaultEmailTemplate, req.TemplateData); err != nil {
		h.handleError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email sent successfully"})
}
