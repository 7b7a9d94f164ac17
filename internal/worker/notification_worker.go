package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/admissions-crm/internal/service"
)

// StartNotificationWorker subscribes the lead and user event handlers on the
// shared dispatcher. Without a service, events are published with no listener.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifications == nil {
		logger.Warn("lead notifications disabled")
		return
	}
	notifications.RegisterHandlers()
	logger.Info("lead notification handlers registered")
}
