package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/admissions-crm/internal/config"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/events"
	"github.com/spec-kit/admissions-crm/internal/observability"
)

type stubLeads struct {
	leads []domain.Lead
}

func (s *stubLeads) FollowUpTime(lead domain.Lead) (time.Time, bool) {
	at, err := time.ParseInLocation(domain.NotesDateLayout, lead.NotesDate, time.UTC)
	return at, err == nil
}

func (s *stubLeads) DueFollowUps(_ context.Context, now time.Time, window time.Duration) ([]domain.Lead, error) {
	var due []domain.Lead
	for _, lead := range s.leads {
		at, ok := s.FollowUpTime(lead)
		if ok && !at.After(now) && now.Sub(at) < window {
			due = append(due, lead)
		}
	}
	return due, nil
}

func newWorker(t *testing.T, leads *stubLeads, now *time.Time) (*FollowUpWorker, *[]events.Event, *observability.Metrics) {
	t.Helper()
	dispatcher := events.NewInMemoryDispatcher()
	var received []events.Event
	dispatcher.Subscribe(events.EventLeadFollowUpDue, func(_ context.Context, e events.Event) error {
		received = append(received, e)
		return nil
	})
	metrics := observability.NewMetrics()
	w := NewFollowUpWorker(config.FollowUpConfig{IntervalSeconds: 60, WindowSeconds: 120}, leads, dispatcher, metrics, nil)
	w.now = func() time.Time { return *now }
	return w, &received, metrics
}

func followUpsDue(t *testing.T, metrics *observability.Metrics) float64 {
	t.Helper()
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == "crm_followups_due_total" {
			return family.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestFollowUpWorker_AnnouncesOnce(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 31, 0, 0, time.UTC)
	leads := &stubLeads{leads: []domain.Lead{
		{ID: "L1", FullName: "Ananya Rao", NotesDate: "2025-01-10 09:30", AssignedTo: "u1"},
		{ID: "L2", FullName: "Later", NotesDate: "2025-01-10 10:00"},
		{ID: "L3", FullName: "Stale", NotesDate: "2025-01-10 09:00"},
	}}
	w, received, metrics := newWorker(t, leads, &now)

	sent, err := w.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Len(t, *received, 1)
	require.Equal(t, "L1", (*received)[0].LeadID)
	payload, ok := (*received)[0].Payload.(events.LeadFollowUpDuePayload)
	require.True(t, ok)
	require.Equal(t, "u1", payload.AssignedTo)
	require.Equal(t, time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC), payload.DueAt)

	now = now.Add(30 * time.Second)
	sent, err = w.Scan(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)
	require.Equal(t, float64(1), followUpsDue(t, metrics))
}

func TestFollowUpWorker_RescheduledFollowUpFiresAgain(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)
	leads := &stubLeads{leads: []domain.Lead{{ID: "L1", NotesDate: "2025-01-10 09:30"}}}
	w, received, _ := newWorker(t, leads, &now)

	_, err := w.Scan(context.Background())
	require.NoError(t, err)

	leads.leads[0].NotesDate = "2025-01-10 11:00"
	now = time.Date(2025, 1, 10, 11, 0, 30, 0, time.UTC)
	_, err = w.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, *received, 2)
	require.NotContains(t, w.announced, "L1|2025-01-10 09:30")
}

func TestFollowUpWorker_RunStopsOnCancel(t *testing.T) {
	now := time.Now()
	w, _, _ := newWorker(t, &stubLeads{}, &now)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
