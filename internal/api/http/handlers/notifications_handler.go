package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/helpdesk-service/internal/api/dto"
	"github.com/quickdesk/helpdesk-service/internal/auth"
	"github.com/quickdesk/helpdesk-service/internal/service"
	"github.com/quickdesk/helpdesk-service/internal/state"
	"github.com/quickdesk/helpdesk-service/internal/view"
	apperrors "github.com/quickdesk/helpdesk-service/pkg/util"
)

// NotificationsHandler serves the bell panel. Delivery is pull-based:
// opening the panel refreshes the snapshot, so a recipient sees new
// notifications on their next check, not in real time.
type NotificationsHandler struct {
	cache  *state.Cache
	notify *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(cache *state.Cache, notify *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{cache: cache, notify: notify}
}

// Inbox handles GET /api/notifications: the viewer's notifications
// newest-first plus the unread badge count.
func (h *NotificationsHandler) Inbox(c *fiber.Ctx) error {
	viewer, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.cache.Refresh(c.Context()); err != nil {
		return err
	}
	snap := h.cache.Snapshot()

	notifications := view.Inbox(snap, *viewer)
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		items = append(items, dto.NotificationResponse{
			ID:        notification.ID,
			Message:   notification.Message,
			TicketID:  notification.TicketID,
			Read:      notification.Read,
			CreatedAt: notification.CreatedAt,
		})
	}

	unread, err := h.notify.UnreadCount(c.Context(), viewer.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.InboxResponse{Notifications: items, UnreadCount: unread}})
}

// MarkRead handles PUT /api/notifications/read: flips everything unread
// for the viewer. Idempotent.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	viewer, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.cache.MarkNotificationsRead(c.Context(), viewer); err != nil {
		return err
	}
	return c.SendStatus(http.StatusOK)
}
