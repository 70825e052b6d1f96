package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safetube/safetube-backend/internal/queue"
)

// Deliverer performs the HTTP side of a webhook delivery. It runs inside the
// worker binary, driven by webhook:deliver tasks.
type Deliverer struct {
	db         *pgxpool.Pool
	httpClient *http.Client
}

func NewDeliverer(db *pgxpool.Pool) *Deliverer {
	return &Deliverer{
		db: db,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Deliver signs and posts the payload, then records the attempt. A non-2xx
// response returns an error so asynq retries the task.
func (d *Deliverer) Deliver(ctx context.Context, task queue.WebhookDeliverPayload) error {
	payload := []byte(task.Payload)
	signature := sign(payload, task.Secret)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, task.URL, bytes.NewReader(payload))
	if err != nil {
		d.recordDelivery(ctx, task, 0, err)
		return fmt.Errorf("build webhook request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Webhook-Event", task.Event)
	httpReq.Header.Set("X-Webhook-Signature", signature)
	httpReq.Header.Set("X-Webhook-ID", task.WebhookID)

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		d.recordDelivery(ctx, task, 0, err)
		return fmt.Errorf("deliver webhook %s: %w", task.WebhookID, err)
	}
	defer resp.Body.Close()

	d.recordDelivery(ctx, task, resp.StatusCode, nil)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook %s responded %d", task.WebhookID, resp.StatusCode)
	}
	return nil
}

func (d *Deliverer) recordDelivery(ctx context.Context, task queue.WebhookDeliverPayload, status int, deliveryErr error) {
	var deliveredAt *time.Time
	if deliveryErr == nil && status < 400 {
		now := time.Now()
		deliveredAt = &now
	}

	_, err := d.db.Exec(ctx,
		`INSERT INTO webhook_deliveries (webhook_id, event, payload, response_status, attempts, delivered_at)
		 VALUES ($1, $2, $3, $4, 1, $5)`,
		task.WebhookID, task.Event, []byte(task.Payload), status, deliveredAt,
	)
	if err != nil {
		slog.Error("failed to record webhook delivery", "error", err)
	}
}

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}
