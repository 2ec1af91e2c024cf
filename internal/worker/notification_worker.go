package worker

import (
	"github.com/cablesur/claims-service/internal/events"
	"github.com/cablesur/claims-service/internal/service"
)

// StartNotificationWorker registers post-commit event observers.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher) {
	if notificationService == nil || dispatcher == nil {
		return
	}
	notificationService.RegisterHandlers(dispatcher)
}
