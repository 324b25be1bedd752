// internal/infra/channel/twilio.go
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hydration_notification_bot/internal/domain/delivery"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseBody = 64 << 10
)

// TwilioConfig carries the Messages API credentials shared by SMS and WhatsApp.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	Timeout    time.Duration
}

// TwilioSender sends through the Twilio Messages API. SMS and WhatsApp differ
// only by the routing prefix on To and From.
type TwilioSender struct {
	channel delivery.Channel
	prefix  string
	cfg     TwilioConfig
	client  *http.Client
}

func NewSMSSender(cfg TwilioConfig) *TwilioSender {
	return newTwilioSender(delivery.ChannelSMS, "", cfg)
}

func NewWhatsAppSender(cfg TwilioConfig) *TwilioSender {
	return newTwilioSender(delivery.ChannelWhatsApp, "whatsapp:", cfg)
}

func newTwilioSender(ch delivery.Channel, prefix string, cfg TwilioConfig) *TwilioSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &TwilioSender{
		channel: ch,
		prefix:  prefix,
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *TwilioSender) Channel() delivery.Channel {
	return s.channel
}

type twilioResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Send posts one message. It never retries and never returns an error; every
// problem is reported through the outcome.
func (s *TwilioSender) Send(ctx context.Context, address, text string) delivery.Outcome {
	if !delivery.ValidPhone(address) {
		return delivery.Failed("invalid phone number format")
	}
	if s.cfg.AccountSID == "" || s.cfg.AuthToken == "" || s.cfg.FromNumber == "" {
		return delivery.Failed("missing Twilio credentials")
	}

	values := url.Values{}
	values.Set("To", s.prefix+address)
	values.Set("From", s.prefix+s.cfg.FromNumber)
	values.Set("Body", text)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(s.cfg.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return delivery.Failed(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return delivery.Failed(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	var result twilioResponse
	_ = json.Unmarshal(body, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := result.Message
		if detail == "" {
			detail = strings.TrimSpace(string(body))
		}
		return delivery.Failed(fmt.Sprintf("twilio status %d: %s", resp.StatusCode, detail))
	}
	return delivery.Outcome{Success: true, ProviderRef: result.SID}
}
