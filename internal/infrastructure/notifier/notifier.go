package notifier

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/metrics"
)

const (
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// ErrStreamClosed is returned by Run when the event stream ends while the
// service is still running.
var ErrStreamClosed = errors.New("coupon event stream closed")

// Dispatcher turns coupon.used events into signed store webhook calls.
type Dispatcher struct {
	stores  domain.StoreRepository
	client  *http.Client
	secret  []byte
	metrics *metrics.CouponMetrics
	backoff time.Duration
}

func NewDispatcher(stores domain.StoreRepository, secret string, timeout time.Duration, couponMetrics *metrics.CouponMetrics) *Dispatcher {
	return &Dispatcher{
		stores:  stores,
		client:  &http.Client{Timeout: timeout},
		secret:  []byte(secret),
		metrics: couponMetrics,
		backoff: retryBackoff,
	}
}

// Run consumes msgs until ctx is done. A channel that closes before that is
// reported as ErrStreamClosed.
func (d *Dispatcher) Run(ctx context.Context, msgs <-chan domain.Message) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrStreamClosed
			}
			var event domain.CouponEvent
			if err := json.Unmarshal(m.Value, &event); err != nil {
				slog.Error("skipping malformed coupon event", "error", err)
				continue
			}
			d.Handle(ctx, event)
		}
	}
}

// Handle delivers one event. Events other than coupon.used and stores without
// a webhook are ignored.
func (d *Dispatcher) Handle(ctx context.Context, event domain.CouponEvent) {
	if event.Kind != domain.EventCouponUsed {
		return
	}
	store, err := d.stores.GetStoreByID(ctx, event.StoreID)
	if err != nil {
		slog.Error("webhook store lookup failed", "store_id", event.StoreID, "error", err)
		d.metrics.RecordWebhook("error")
		return
	}
	if store.WebhookURL == "" {
		return
	}

	body, err := json.Marshal(CallbackPayload{
		EventID:      event.EventID,
		Event:        string(event.Kind),
		StoreID:      event.StoreID,
		CampaignID:   event.CampaignID,
		CouponID:     event.CouponID,
		InstanceID:   event.InstanceID,
		Code:         event.Code,
		Value:        event.Value,
		DiscountType: string(event.DiscountType),
		ValidatedBy:  event.ValidatedBy,
		OccurredAt:   event.OccurredAt,
	})
	if err != nil {
		slog.Error("failed to marshal callback", "error", err)
		return
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retry, err := d.send(ctx, store.WebhookURL, body)
		if err == nil {
			d.metrics.RecordWebhook("ok")
			slog.Info("callback sent", "store_id", store.ID, "instance_id", event.InstanceID)
			return
		}
		slog.Warn("callback failed", "store_id", store.ID, "attempt", attempt, "error", err)
		if !retry || attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			d.metrics.RecordWebhook("failed")
			return
		case <-time.After(d.backoff * time.Duration(attempt)):
		}
	}
	d.metrics.RecordWebhook("failed")
}

// Sign returns the hex HMAC-SHA256 of body, sent as X-Signature.
func (d *Dispatcher) Sign(body []byte) string {
	mac := hmac.New(sha256.New, d.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (d *Dispatcher) send(ctx context.Context, url string, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", d.Sign(body))

	resp, err := d.client.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}
	// 4xx means the store rejected the payload; repeating it will not help.
	return resp.StatusCode >= 500, fmt.Errorf("callback returned status %d", resp.StatusCode)
}
