package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ignite/dealthread-monitor/internal/pkg/httpretry"
)

// WebhookSender posts alert text to a chat webhook (Slack-compatible
// payload shape).
type WebhookSender struct {
	url        string
	httpClient httpretry.HTTPDoer
}

// NewWebhookSender creates a webhook sender for the given URL.
func NewWebhookSender(url string, timeout time.Duration) *WebhookSender {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WebhookSender{
		url:        url,
		httpClient: httpretry.NewRetryClient(&http.Client{Timeout: timeout}, 3),
	}
}

type webhookPayload struct {
	Text string `json:"text"`
}

// Send posts one message to the webhook.
func (w *WebhookSender) Send(ctx context.Context, text string) error {
	if w.url == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	data, err := json.Marshal(webhookPayload{Text: text})
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
