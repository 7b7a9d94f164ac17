package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/admissions-crm/internal/config"
	"github.com/spec-kit/admissions-crm/internal/events"
	"github.com/spec-kit/admissions-crm/internal/service"
)

func TestStartNotificationWorker_SubscribesLeadEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	dispatcher := events.NewInMemoryDispatcher()

	StartNotificationWorker(service.NewNotificationService(dispatcher, logger, nil, config.NotificationConfig{}), logger)
	require.Equal(t, 1, logs.FilterMessage("lead notification handlers registered").Len())

	created := events.New(events.EventLeadCreated, "lead-1", "user-1", events.LeadCreatedPayload{FullName: "Ananya"})
	require.NoError(t, dispatcher.Publish(context.Background(), created))
	require.NotZero(t, logs.FilterField(zap.String("lead_id", "lead-1")).Len())
}

func TestStartNotificationWorker_NilServiceWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	StartNotificationWorker(nil, zap.New(core))
	require.Equal(t, 1, logs.FilterMessage("lead notifications disabled").Len())

	StartNotificationWorker(nil, nil)
}
