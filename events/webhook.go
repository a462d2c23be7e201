package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/ZeMendes2393/sailscore/metrics"
)

// Notifier posts every event to an external webhook.
type Notifier struct {
	url    string
	client *retryablehttp.Client
	logger *zap.Logger
}

type envelope struct {
	ID      string          `json:"id"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// NewNotifier returns a notifier for url with a bounded retry budget.
func NewNotifier(url string, logger *zap.Logger) *Notifier {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = 10 * time.Second
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.CheckRetry = retryPolicy
	client.Logger = retryLogger{s: logger.Sugar()}

	return &Notifier{url: url, client: client, logger: logger}
}

// retryPolicy retries network errors, 429 and 5xx.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return true, nil
	}
	return false, nil
}

// Handle is the subscriber for every topic.
func (n *Notifier) Handle(ctx context.Context, msg *message.Message) error {
	body, err := json.Marshal(envelope{
		ID:      msg.UUID,
		Topic:   msg.Metadata.Get("topic"),
		Payload: json.RawMessage(msg.Payload),
	})
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.RecordSideEffectFailure("webhook")
		return fmt.Errorf("webhook %s: %w", msg.Metadata.Get("topic"), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		metrics.RecordSideEffectFailure("webhook")
		return fmt.Errorf("webhook %s: status %d", msg.Metadata.Get("topic"), resp.StatusCode)
	}
	return nil
}
