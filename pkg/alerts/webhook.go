package alerts

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// WebhookNotifier sends messages to a generic HTTP webhook.
type WebhookNotifier struct {
	url    string
	secret string
	client *retryablehttp.Client
}

// NewWebhookNotifier creates a generic webhook notifier.
// If secret is non-empty, requests are signed with HMAC-SHA256.
func NewWebhookNotifier(url, secret string, client *retryablehttp.Client) *WebhookNotifier {
	if client == nil {
		client = NewHTTPClient(ClientOptions{})
	}
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: client,
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

func (w *WebhookNotifier) Send(ctx context.Context, msg Message) error {
	payload := webhookPayload{
		Event:     string(msg.Kind),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Message:   msg,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	headers := map[string]string{"User-Agent": "Quartermaster/1.0"}
	if w.secret != "" {
		headers["X-Signature-256"] = "sha256=" + computeHMAC(body, []byte(w.secret))
	}

	if err := postJSON(ctx, w.client, w.url, body, headers); err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}

type webhookPayload struct {
	Event     string  `json:"event"`
	Timestamp string  `json:"timestamp"`
	Message   Message `json:"message"`
}

func computeHMAC(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
