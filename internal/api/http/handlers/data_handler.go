package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/helpdesk-service/internal/api/dto"
	"github.com/quickdesk/helpdesk-service/internal/auth"
	"github.com/quickdesk/helpdesk-service/internal/state"
	apperrors "github.com/quickdesk/helpdesk-service/pkg/util"
)

// DataHandler serves the full entity snapshot clients hydrate from.
type DataHandler struct {
	cache *state.Cache
}

// NewDataHandler constructs handler.
func NewDataHandler(cache *state.Cache) *DataHandler {
	return &DataHandler{cache: cache}
}

// Snapshot handles GET /api/data: a fresh read of every entity. Users
// are sanitized; tickets carry their nested comment threads.
func (h *DataHandler) Snapshot(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.cache.Refresh(c.Context()); err != nil {
		return err
	}
	snap := h.cache.Snapshot()

	users := make([]dto.UserResponse, 0, len(snap.Users))
	for i := range snap.Users {
		users = append(users, dto.NewUserResponse(&snap.Users[i]))
	}
	tickets := make([]dto.TicketResponse, 0, len(snap.Tickets))
	for i := range snap.Tickets {
		tickets = append(tickets, ticketResponse(snap, snap.Tickets[i]))
	}
	categories := make([]dto.CategoryResponse, 0, len(snap.Categories))
	for _, category := range snap.Categories {
		categories = append(categories, dto.CategoryResponse{ID: category.ID, Name: category.Name})
	}
	notifications := make([]dto.NotificationResponse, 0, len(snap.Notifications))
	for _, notification := range snap.Notifications {
		notifications = append(notifications, dto.NotificationResponse{
			ID:        notification.ID,
			Message:   notification.Message,
			TicketID:  notification.TicketID,
			Read:      notification.Read,
			CreatedAt: notification.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"users":         users,
		"tickets":       tickets,
		"categories":    categories,
		"notifications": notifications,
	}})
}
