package usecase

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/metrics"
)

// EventEmitter publishes coupon events after the database work has been
// committed. Publishing never fails the caller. Events leave in the order
// Emit was called, through at most one draining goroutine.
type EventEmitter struct {
	publisher domain.CouponEventPublisher
	metrics   *metrics.CouponMetrics

	mu       sync.Mutex
	queue    []domain.CouponEvent
	draining bool
	wg       sync.WaitGroup
}

func NewEventEmitter(publisher domain.CouponEventPublisher, couponMetrics *metrics.CouponMetrics) *EventEmitter {
	return &EventEmitter{publisher: publisher, metrics: couponMetrics}
}

func (e *EventEmitter) Emit(kind domain.CouponEventType, ci *domain.CouponInstance) {
	if e == nil || e.publisher == nil {
		return
	}
	event := domain.CouponEvent{
		EventID:      uuid.NewString(),
		Kind:         kind,
		InstanceID:   ci.ID,
		Code:         ci.Code,
		CouponID:     ci.CouponID,
		CampaignID:   ci.CampaignID,
		StoreID:      ci.StoreID,
		UserID:       ci.UserID,
		Value:        ci.Value.String(),
		DiscountType: ci.Type,
		ValidatedBy:  ci.ValidatedBy,
		OccurredAt:   time.Now().UTC(),
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append(e.queue, event)
	e.wg.Add(1)
	if !e.draining {
		e.draining = true
		go e.drain()
	}
}

func (e *EventEmitter) drain() {
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.draining = false
			e.mu.Unlock()
			return
		}
		event := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()

		if err := e.publisher.PublishCouponEvent(event); err != nil {
			e.metrics.RecordPublishError(string(event.Kind))
			slog.Error("failed to publish coupon event", "type", event.Kind, "instance_id", event.InstanceID, "error", err)
		}
		e.wg.Done()
	}
}

// Wait blocks until every queued event has been published. Used on shutdown and in tests.
func (e *EventEmitter) Wait() {
	if e == nil {
		return
	}
	e.wg.Wait()
}
