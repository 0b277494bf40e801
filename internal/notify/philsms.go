package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	dErrors "lingkod/pkg/domain-errors"
)

const defaultPhilSMSBaseURL = "https://app.philsms.com/api/v3"

// PhilSMS sends messages through the PhilSMS gateway.
type PhilSMS struct {
	baseURL    string
	apiToken   string
	senderID   string
	httpClient *http.Client
}

// PhilSMSOption configures the gateway client.
type PhilSMSOption func(*PhilSMS)

// WithBaseURL points the client at an alternate gateway, for tests.
func WithBaseURL(baseURL string) PhilSMSOption {
	return func(p *PhilSMS) { p.baseURL = strings.TrimRight(baseURL, "/") }
}

func NewPhilSMS(apiToken, senderID string, opts ...PhilSMSOption) *PhilSMS {
	p := &PhilSMS{
		baseURL:    defaultPhilSMSBaseURL,
		apiToken:   apiToken,
		senderID:   senderID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PhilSMS) Send(ctx context.Context, to, message string) error {
	payload, err := json.Marshal(map[string]string{
		"recipient": to,
		"sender_id": p.senderID,
		"type":      "plain",
		"message":   message,
	})
	if err != nil {
		return fmt.Errorf("encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/sms/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstream, "sms gateway unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusUnauthorized {
			return dErrors.New(dErrors.CodeUpstreamAuth, "sms gateway rejected the api token")
		}
		return dErrors.Newf(dErrors.CodeUpstream, "sms gateway returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
