package services

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"leadcaller/internal/config"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

//go:embed templates/*.html
var templateFS embed.FS

// Email errors
var (
	ErrRenderTemplate = errors.New("failed to render email template")
	ErrSendEmail      = errors.New("failed to send email")
)

// DefaultEmailTemplate is the template POST /send-email renders
const DefaultEmailTemplate = "email"

// MailSender is the subset of the SendGrid client the email service uses
type MailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// EmailService renders HTML templates and sends them through SendGrid
type EmailService struct {
	client    MailSender
	templates *template.Template
	fromEmail string
	fromName  string
}

// NewEmailService builds the service with a SendGrid client from configuration
func NewEmailService(cfg config.Email) (*EmailService, error) {
	return NewEmailServiceWithSender(cfg, sendgrid.NewSendClient(cfg.APIKey))
}

// NewEmailServiceWithSender builds the service around an existing sender
func NewEmailServiceWithSender(cfg config.Email, client MailSender) (*EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &EmailService{
		client:    client,
		templates: tmpl,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}, nil
}

// Render executes the named template with data
func (s *EmailService) Render(name string, data map[string]interface{}) (string, error) {
	tmpl := s.templates.Lookup(name + ".html")
	if tmpl == nil {
		return "", fmt.Errorf("%w: unknown template %q", ErrRenderTemplate, name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderTemplate, err)
	}
	return buf.String(), nil
}

// SendTemplate renders the named template and sends it to a single recipient
func (s *EmailService) SendTemplate(to, subject, name string, data map[string]interface{}) error {
	view := map[string]interface{}{"subject": subject}
	for k, v := range data {
		view[k] = v
	}

	htmlContent, err := s.Render(name, view)
	if err != nil {
		return err
	}

	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail("", to))

	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(s.fromName, s.fromEmail))
	message.Subject = subject
	message.AddPersonalizations(personalization)
	message.AddContent(mail.NewContent("text/html", htmlContent))

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendEmail, err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid returned %d: %s", ErrSendEmail, response.StatusCode, response.Body)
	}
	return nil
}
