// Package notify delivers extraction events to a configured webhook.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// EventExtractCompleted is emitted after every successful extraction run.
const EventExtractCompleted = "extract.completed"

// Event is the payload sent to the webhook endpoint.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	URL       string `json:"url"`    // listing page that was scanned
	Total     int    `json:"total"`  // records in the merged result
	Engine    string `json:"engine"` // fetch engine used
}

// Notifier posts events to one endpoint. A Notifier with an empty URL is a
// no-op, so callers never need a nil check.
type Notifier struct {
	url    string
	secret string
	client *http.Client
}

// New creates a Notifier for the given endpoint.
func New(url, secret string) *Notifier {
	return &Notifier{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook endpoint is configured.
func (n *Notifier) Enabled() bool { return n.url != "" }

// Deliver sends one event synchronously. The body is signed with HMAC-SHA256
// when a secret is configured (header: X-Mallscan-Signature: sha256=<hex>).
func (n *Notifier) Deliver(ctx context.Context, event *Event) error {
	if !n.Enabled() {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mallscan-Webhook/1.0")

	if n.secret != "" {
		mac := hmac.New(sha256.New, []byte(n.secret))
		mac.Write(body)
		req.Header.Set("X-Mallscan-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DeliverAsync sends an event in the background with up to 3 attempts and
// exponential backoff. Failures are logged, never surfaced to the request.
func (n *Notifier) DeliverAsync(event *Event) {
	if !n.Enabled() {
		return
	}
	go func() {
		backoff := time.Second
		for attempt := 1; attempt <= 3; attempt++ {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			err := n.Deliver(ctx, event)
			cancel()
			if err == nil {
				return
			}
			slog.Warn("webhook delivery failed",
				"attempt", attempt, "type", event.Type, "error", err)
			time.Sleep(backoff)
			backoff *= 2
		}
	}()
}
