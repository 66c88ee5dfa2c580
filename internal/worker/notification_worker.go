package worker

import (
	"github.com/quickdesk/helpdesk-service/internal/service"
)

// StartNotificationWorker subscribes the fanout engine to the event
// dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
