// internal/infra/channel/sendgrid.go
package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"hydration_notification_bot/internal/domain/delivery"
)

const emailSubject = "💧 Hydration Reminder"

var emailTemplate = template.Must(template.New("reminder").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f4f9ff; border-radius: 10px;">
  <div style="text-align: center; padding-bottom: 20px; border-bottom: 1px solid #cce3ff;">
    <h1 style="color: #0066cc; margin: 0;">💧 Hydration Reminder</h1>
  </div>
  <div style="padding: 20px 0;">
    <p style="font-size: 18px; line-height: 1.6; color: #444;">{{.}}</p>
  </div>
  <div style="background-color: #e6f2ff; padding: 15px; border-radius: 5px; margin-top: 20px;">
    <p style="margin: 0; color: #0066cc; font-size: 14px;">Stay hydrated for better health, focus, and energy throughout your day!</p>
  </div>
  <div style="text-align: center; margin-top: 30px; font-size: 12px; color: #888;">
    <p>This is an automated reminder from your Hydration Tracker app.</p>
  </div>
</div>`))

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	BaseURL   string
	Timeout   time.Duration
}

// SendGridSender delivers email through the SendGrid v3 mail/send endpoint.
type SendGridSender struct {
	cfg    SendGridConfig
	client *http.Client
}

func NewEmailSender(cfg SendGridConfig) *SendGridSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = "hydration@example.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &SendGridSender{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (s *SendGridSender) Channel() delivery.Channel {
	return delivery.ChannelEmail
}

type mailAddress struct {
	Email string `json:"email"`
}

type mailPersonalization struct {
	To []mailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailRequest struct {
	Personalizations []mailPersonalization `json:"personalizations"`
	From             mailAddress           `json:"from"`
	Subject          string                `json:"subject"`
	Content          []mailContent         `json:"content"`
}

// renderHTML wraps text in the reminder layout with the text escaped.
func renderHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, text); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *SendGridSender) Send(ctx context.Context, address, text string) delivery.Outcome {
	if !delivery.ValidEmail(address) {
		return delivery.Failed("invalid email format")
	}
	if s.cfg.APIKey == "" {
		return delivery.Failed("missing SendGrid API key")
	}

	html, err := renderHTML(text)
	if err != nil {
		return delivery.Failed(fmt.Sprintf("render email: %v", err))
	}
	payload, err := json.Marshal(mailRequest{
		Personalizations: []mailPersonalization{{To: []mailAddress{{Email: address}}}},
		From:             mailAddress{Email: s.cfg.FromEmail},
		Subject:          emailSubject,
		Content: []mailContent{
			{Type: "text/plain", Value: text},
			{Type: "text/html", Value: html},
		},
	})
	if err != nil {
		return delivery.Failed(fmt.Sprintf("encode payload: %v", err))
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/v3/mail/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return delivery.Failed(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return delivery.Failed(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		return delivery.Failed(fmt.Sprintf("sendgrid status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
	ref := resp.Header.Get("X-Message-Id")
	if ref == "" {
		ref = "sent"
	}
	return delivery.Outcome{Success: true, ProviderRef: ref}
}
