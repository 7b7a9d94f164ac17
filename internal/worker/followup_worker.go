package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/admissions-crm/internal/config"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/events"
	"github.com/spec-kit/admissions-crm/internal/observability"
)

// DueLister finds leads whose follow-up fell due.
type DueLister interface {
	DueFollowUps(ctx context.Context, now time.Time, window time.Duration) ([]domain.Lead, error)
	FollowUpTime(lead domain.Lead) (time.Time, bool)
}

// FollowUpWorker periodically publishes reminders for due follow-ups. Each
// (lead, notes date) pair is announced once.
type FollowUpWorker struct {
	leads      DueLister
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	interval   time.Duration
	window     time.Duration
	now        func() time.Time
	announced  map[string]time.Time
}

// NewFollowUpWorker creates the worker.
func NewFollowUpWorker(cfg config.FollowUpConfig, leads DueLister, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *FollowUpWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowUpWorker{
		leads:      leads,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		interval:   cfg.Interval(),
		window:     cfg.Window(),
		now:        time.Now,
		announced:  make(map[string]time.Time),
	}
}

// Run scans on every tick until ctx is cancelled.
func (w *FollowUpWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("follow-up worker started", zap.Duration("interval", w.interval), zap.Duration("window", w.window))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("follow-up worker stopped")
			return
		case <-ticker.C:
			if _, err := w.Scan(ctx); err != nil {
				w.logger.Warn("follow-up scan failed", zap.Error(err))
			}
		}
	}
}

// Scan publishes a reminder for every newly due follow-up and returns how many were sent.
func (w *FollowUpWorker) Scan(ctx context.Context) (int, error) {
	now := w.now()
	due, err := w.leads.DueFollowUps(ctx, now, w.window)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, lead := range due {
		key := lead.ID + "|" + lead.NotesDate
		if _, seen := w.announced[key]; seen {
			continue
		}
		at, _ := w.leads.FollowUpTime(lead)
		event := events.New(events.EventLeadFollowUpDue, lead.ID, "", events.LeadFollowUpDuePayload{
			FullName:   lead.FullName,
			AssignedTo: lead.AssignedTo,
			Notes:      lead.Notes,
			DueAt:      at.UTC(),
		})
		if w.dispatcher != nil {
			if err := w.dispatcher.Publish(ctx, event); err != nil {
				w.logger.Warn("follow-up handler failed", zap.String("lead_id", lead.ID), zap.Error(err))
			}
		}
		w.announced[key] = at
		w.metrics.RecordFollowUpDue()
		sent++
	}
	w.forget(now)
	return sent, nil
}

// forget drops keys whose due time has left the window.
func (w *FollowUpWorker) forget(now time.Time) {
	for key, at := range w.announced {
		if now.Sub(at) >= w.window {
			delete(w.announced, key)
		}
	}
}
