// Package jobs runs the portal's background maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ScheduleOff disables the reconciler.
const ScheduleOff = "off"

// Reconciler removes drafts left behind by a promotion whose cleanup failed.
type Reconciler interface {
	ReconcilePromotions(ctx context.Context) (int64, error)
}

type PromotionReconciler struct {
	target  Reconciler
	timeout time.Duration
	logger  *zap.Logger

	cron *cron.Cron

	mu      sync.Mutex
	running bool
}

func NewPromotionReconciler(target Reconciler, timeout time.Duration, logger *zap.Logger) *PromotionReconciler {
	return &PromotionReconciler{
		target:  target,
		timeout: timeout,
		logger:  logger.With(zap.String("component", "reconcile")),
	}
}

// Start schedules RunOnce on schedule, a standard cron expression or a descriptor
// such as "@every 10m". ScheduleOff leaves the job unscheduled.
func (r *PromotionReconciler) Start(schedule string) error {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" || strings.EqualFold(schedule, ScheduleOff) {
		r.logger.Info("draft reconciler disabled")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { r.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("reconcile schedule %q: %w", schedule, err)
	}
	c.Start()
	r.cron = c
	r.logger.Info("draft reconciler scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop unschedules the job and waits for a running pass to finish.
func (r *PromotionReconciler) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

// RunOnce runs a single pass and reports how many drafts were removed. A pass
// that starts while another is in progress is skipped.
func (r *PromotionReconciler) RunOnce(ctx context.Context) (int64, bool) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		r.logger.Warn("reconcile already running, skipping")
		return 0, true
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	removed, err := r.target.ReconcilePromotions(ctx)
	if err != nil {
		r.logger.Error("reconcile failed", zap.Error(err))
		return removed, false
	}
	if removed > 0 {
		r.logger.Info("removed promoted drafts", zap.Int64("count", removed), zap.Duration("took", time.Since(start)))
	} else {
		r.logger.Debug("no promoted drafts to remove")
	}
	return removed, false
}
