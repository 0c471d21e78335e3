package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"swap-settlement/internal/domain/settlement"
	"swap-settlement/internal/infrastructure/config"
)

// WebhookSink 決済完了レコードをHTTPで送信する
// 5xx と通信エラーはリトライし、4xx はリトライしない
type WebhookSink struct {
	url        string
	client     *http.Client
	maxElapsed time.Duration
}

// NewWebhookSink 新しいWebhookSinkを作成
func NewWebhookSink(cfg *config.NotifyConfig) *WebhookSink {
	return &WebhookSink{
		url:        cfg.WebhookURL,
		client:     &http.Client{Timeout: cfg.WebhookTimeout},
		maxElapsed: cfg.WebhookMaxElapsed,
	}
}

// Name 通知先名
func (s *WebhookSink) Name() string {
	return "webhook"
}

// Publish レコードをPOSTする
func (s *WebhookSink) Publish(ctx context.Context, result *settlement.Result) error {
	body, err := json.Marshal(NewRecord(result))
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, s.post(ctx, result.SettlementID(), body)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(s.maxElapsed),
	)
	return err
}

func (s *WebhookSink) post(ctx context.Context, settlementID string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", settlementID)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	default:
		return backoff.Permanent(fmt.Errorf("webhook responded %d", resp.StatusCode))
	}
}
