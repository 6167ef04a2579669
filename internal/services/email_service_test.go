package services

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"leadcaller/internal/config"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type fakeSender struct {
	sent     []*mail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeSender) Send(email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	if f.response != nil {
		return f.response, nil
	}
	return &rest.Response{StatusCode: http.StatusAccepted}, nil
}

func newTestEmailService(t *testing.T, sender MailSender) *EmailService {
	t.Helper()
	svc, err := NewEmailServiceWithSender(config.Email{FromEmail: "hello@example.com", FromName: "M&J"}, sender)
	if err != nil {
		t.Fatalf("NewEmailServiceWithSender: %v", err)
	}
	return svc
}

func TestSendTemplate(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestEmailService(t, sender)

	data := map[string]interface{}{"name": "Bob", "date": "2025-03-02", "time": "09:05"}
	if err := svc.SendTemplate("bob@example.com", "Your call", DefaultEmailTemplate, data); err != nil {
		t.Fatalf("SendTemplate returned error: %v", err)
	}
	if _, ok := data["subject"]; ok {
		t.Fatal("SendTemplate must not modify the caller's data")
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Subject != "Your call" || msg.From.Address != "hello@example.com" || msg.From.Name != "M&J" {
		t.Fatalf("unexpected envelope %+v %+v", msg.Subject, msg.From)
	}
	if len(msg.Personalizations) != 1 || msg.Personalizations[0].To[0].Address != "bob@example.com" {
		t.Fatalf("unexpected recipients %+v", msg.Personalizations)
	}
	if len(msg.Content) != 1 || msg.Content[0].Type != "text/html" {
		t.Fatalf("expected a single html body, got %+v", msg.Content)
	}
	body := msg.Content[0].Value
	for _, want := range []string{"<title>Your call</title>", "Hi Bob,", "2025-03-02", "09:05"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body:\n%s", want, body)
		}
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	svc := newTestEmailService(t, &fakeSender{})
	out, err := svc.Render(DefaultEmailTemplate, map[string]interface{}{"name": "<script>x</script>"})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected escaped name, got %s", out)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	svc := newTestEmailService(t, &fakeSender{})
	if _, err := svc.Render("missing", nil); !errors.Is(err, ErrRenderTemplate) {
		t.Fatalf("expected ErrRenderTemplate, got %v", err)
	}
}

func TestSendTemplateFailures(t *testing.T) {
	tests := []struct {
		name   string
		sender *fakeSender
	}{
		{"transport error", &fakeSender{err: errors.New("dial tcp: timeout")}},
		{"rejected", &fakeSender{response: &rest.Response{StatusCode: http.StatusUnauthorized, Body: `{"errors":[]}`}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestEmailService(t, tt.sender)
			err := svc.SendTemplate("bob@example.com", "s", DefaultEmailTemplate, map[string]interface{}{})
			if !errors.Is(err, ErrSendEmail) {
				t.Fatalf("expected ErrSendEmail, got %v", err)
			}
		})
	}
}
