package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/metrics"
)

// StockReconciler loads the remaining units of every claimable coupon into
// the claim gate.
type StockReconciler interface {
	Reconcile(ctx context.Context, stock map[int64]int) error
}

// BackgroundTasks refreshes derived state only. Coupon instances expire
// lazily on read and are never rewritten here.
type BackgroundTasks struct {
	CouponRepo   domain.CouponRepository
	InstanceRepo domain.CouponInstanceRepository
	// Gate is nil when the claim gate is disabled.
	Gate    StockReconciler
	Metrics *metrics.CouponMetrics

	ReconcileInterval time.Duration
	GaugeInterval     time.Duration
	Now               func() time.Time
}

func NewBackgroundTasks(
	couponRepo domain.CouponRepository,
	instanceRepo domain.CouponInstanceRepository,
	gate StockReconciler,
	couponMetrics *metrics.CouponMetrics,
	reconcileInterval, gaugeInterval time.Duration,
) *BackgroundTasks {
	return &BackgroundTasks{
		CouponRepo:        couponRepo,
		InstanceRepo:      instanceRepo,
		Gate:              gate,
		Metrics:           couponMetrics,
		ReconcileInterval: reconcileInterval,
		GaugeInterval:     gaugeInterval,
		Now:               time.Now,
	}
}

// StartAll runs every task once and then on its interval until ctx is done.
func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	if bt.Gate != nil {
		go bt.every(ctx, "gate reconcile", bt.ReconcileInterval, bt.ReconcileGate)
	}
	go bt.every(ctx, "active instances gauge", bt.GaugeInterval, bt.RefreshActiveGauge)
}

func (bt *BackgroundTasks) every(ctx context.Context, name string, interval time.Duration, task func(context.Context) error) {
	if interval <= 0 {
		slog.Warn("background task disabled", "task", name)
		return
	}
	run := func() {
		if err := task(ctx); err != nil && ctx.Err() == nil {
			slog.Error("background task failed", "task", name, "error", err)
		}
	}

	run()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// ReconcileGate resets the gate stock of every claimable coupon to qtd - usados.
func (bt *BackgroundTasks) ReconcileGate(ctx context.Context) error {
	if bt.Gate == nil {
		return nil
	}
	stock, err := bt.CouponRepo.ListGateStock(ctx, bt.Now())
	if err != nil {
		return err
	}
	if err := bt.Gate.Reconcile(ctx, stock); err != nil {
		return err
	}
	slog.Debug("claim gate reconciled", "coupons", len(stock))
	return nil
}

func (bt *BackgroundTasks) RefreshActiveGauge(ctx context.Context) error {
	n, err := bt.InstanceRepo.CountActiveInstances(ctx, bt.Now())
	if err != nil {
		return err
	}
	bt.Metrics.SetActiveInstances(n)
	return nil
}
