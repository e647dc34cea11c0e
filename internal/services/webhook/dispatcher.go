package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"payflow/internal/models"
	"payflow/internal/repositories"
)

const (
	signatureHeader = "X-PayFlow-Signature"
	eventHeader     = "X-PayFlow-Event"
	deliveryTimeout = 10 * time.Second
)

// DeliveryResult is the outcome of one delivery attempt.
type DeliveryResult struct {
	StatusCode int           `json:"statusCode"`
	Success    bool          `json:"success"`
	Duration   time.Duration `json:"-"`
	Error      string        `json:"error,omitempty"`
}

// Dispatcher POSTs signed event payloads and records every attempt.
type Dispatcher struct {
	client *http.Client
	repo   repositories.WebhookRepository
	log    zerolog.Logger
}

func NewDispatcher(repo repositories.WebhookRepository, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		client: &http.Client{Timeout: deliveryTimeout},
		repo:   repo,
		log:    log.With().Str("component", "webhook_dispatcher").Logger(),
	}
}

// Deliver sends one event to one endpoint. The body is signed with
// HMAC-SHA256 over the raw bytes using the webhook secret.
func (d *Dispatcher) Deliver(ctx context.Context, webhook *models.Webhook, event string, payload models.JSON) DeliveryResult {
	body, err := json.Marshal(map[string]interface{}{
		"event":     event,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"data":      payload,
	})
	if err != nil {
		return d.record(ctx, webhook, event, payload, DeliveryResult{Error: err.Error()})
	}

	start := time.Now()
	result := d.post(ctx, webhook, event, body)
	result.Duration = time.Since(start)

	return d.record(ctx, webhook, event, payload, result)
}

func (d *Dispatcher) post(ctx context.Context, webhook *models.Webhook, event string, body []byte) DeliveryResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(body))
	if err != nil {
		return DeliveryResult{Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(eventHeader, event)
	req.Header.Set(signatureHeader, Sign(webhook.Secret, body))

	resp, err := d.client.Do(req)
	if err != nil {
		return DeliveryResult{Error: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return DeliveryResult{
		StatusCode: resp.StatusCode,
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
	}
}

func (d *Dispatcher) record(ctx context.Context, webhook *models.Webhook, event string, payload models.JSON, result DeliveryResult) DeliveryResult {
	if !result.Success {
		d.log.Warn().
			Uint("webhook_id", webhook.ID).
			Str("event", event).
			Int("status", result.StatusCode).
			Str("error", result.Error).
			Msg("webhook delivery failed")
	}

	if d.repo != nil {
		delivery := &models.WebhookDelivery{
			WebhookID:  webhook.ID,
			Event:      event,
			Payload:    payload,
			StatusCode: result.StatusCode,
			Success:    result.Success,
			DurationMS: result.Duration.Milliseconds(),
			Error:      result.Error,
		}
		if err := d.repo.RecordDelivery(ctx, delivery); err != nil {
			d.log.Error().Err(err).Uint("webhook_id", webhook.ID).Msg("failed to record delivery")
		}
	}
	return result
}

// Sign computes the hex HMAC-SHA256 signature receivers verify against.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
