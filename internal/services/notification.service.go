package services

import (
	"time"

	"monitor/internal/events"
	"monitor/internal/logger"

	"github.com/google/uuid"
)

// Notification event types pushed to connected clients.
const (
	NotificationTaskCreated    = "task_created"
	NotificationReportApproved = "report_approved"
	NotificationCommentPosted  = "comment_posted"
)

// NotificationService publishes user-facing events onto the bus; the
// websocket manager on each instance fans them out to open connections.
type NotificationService struct {
	eventBus *events.EventBus
	log      logger.Logger
}

func NewNotificationService(eventBus *events.EventBus) *NotificationService {
	return &NotificationService{
		eventBus: eventBus,
		log:      logger.New("NotificationService"),
	}
}

// NotifyUser pushes an event addressed to one user. Delivery is best
// effort; failures are logged and never fail the triggering workflow.
func (s *NotificationService) NotifyUser(userID, eventType string, data map[string]any) {
	log := s.log.Function("NotifyUser")

	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Channel:   "notifications",
		UserID:    userID,
		Data:      data,
		Timestamp: time.Now(),
	}

	if err := s.eventBus.Publish("notifications", event); err != nil {
		log.Warn("failed to publish notification", "type", eventType, "userID", userID, "error", err)
	}
}
