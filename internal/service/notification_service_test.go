package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/admissions-crm/internal/config"
	"github.com/spec-kit/admissions-crm/internal/events"
	"github.com/spec-kit/admissions-crm/internal/observability"
)

func eventsPublished(t *testing.T, metrics *observability.Metrics, eventType events.EventType) float64 {
	t.Helper()
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "crm_events_published_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "type" && label.GetValue() == string(eventType) {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestNotificationService_CountsLeadEvents(t *testing.T) {
	o := newOffice(t)
	metrics := observability.NewMetrics()
	notifications := NewNotificationService(o.dispatcher, zap.NewNop(), metrics, config.NotificationConfig{})
	notifications.RegisterHandlers()

	svc := o.leadService()
	_, err := svc.Create(context.Background(), o.leader, CreateLeadInput{FullName: "Ishaan Mehta", AssignedTo: o.counselor.ID})
	require.NoError(t, err)

	require.Equal(t, 1.0, eventsPublished(t, metrics, events.EventLeadCreated))
	require.Equal(t, 0.0, eventsPublished(t, metrics, events.EventLeadAssigned))
}

func TestNotificationService_NilDispatcherIsNoop(t *testing.T) {
	notifications := NewNotificationService(nil, zap.NewNop(), nil, config.NotificationConfig{})
	notifications.RegisterHandlers()
}
