package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/helpdesk-service/internal/api/dto"
	"github.com/quickdesk/helpdesk-service/internal/auth"
	"github.com/quickdesk/helpdesk-service/internal/domain"
	"github.com/quickdesk/helpdesk-service/internal/service"
	"github.com/quickdesk/helpdesk-service/internal/state"
	"github.com/quickdesk/helpdesk-service/internal/view"
	apperrors "github.com/quickdesk/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	cache *state.Cache
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(cache *state.Cache) *TicketsHandler {
	return &TicketsHandler{cache: cache}
}

// List handles GET /api/tickets. The dashboard projection applies the
// viewer's author scope, the search term, and the status filter.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	viewer, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	snap := h.cache.Snapshot()
	statusFilter := c.Query("status", view.StatusFilterAll)
	tickets := view.Dashboard(snap, *viewer, c.Query("search"), statusFilter)

	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(snap, tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /api/tickets/:id. End-users may only open their own
// tickets; a missing ticket is a 404 the client turns into a dashboard
// fallback.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	viewer, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	snap := h.cache.Snapshot()
	id := c.Params("id")
	for _, ticket := range snap.Tickets {
		if ticket.ID != id {
			continue
		}
		if viewer.Role == domain.RoleEndUser && ticket.AuthorEmail != viewer.Email {
			return apperrors.NewForbidden("access denied")
		}
		return c.JSON(fiber.Map{"data": ticketResponse(snap, ticket)})
	}
	return apperrors.NewNotFound("ticket", map[string]any{"id": id})
}

// Create handles POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.cache.CreateTicket(c.Context(), actor, service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(h.cache.Snapshot(), *ticket)})
}

// AddComment handles POST /api/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.cache.AddComment(c.Context(), actor, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(h.cache.Snapshot(), *comment)})
}

// UpdateStatus handles PUT /api/tickets/:id/status. Staff only; the
// route guard and the service both enforce it.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.cache.UpdateStatus(c.Context(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(h.cache.Snapshot(), *ticket)})
}

// Vote handles PUT /api/tickets/:id/vote.
func (h *TicketsHandler) Vote(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.cache.Vote(c.Context(), actor, c.Params("id"), service.VoteDirection(req.Vote))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(h.cache.Snapshot(), *ticket)})
}

func ticketResponse(snap state.Snapshot, ticket domain.Ticket) dto.TicketResponse {
	comments := view.Comments(ticket)
	items := make([]dto.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		items = append(items, commentResponse(snap, comment))
	}
	return dto.TicketResponse{
		ID:           ticket.ID,
		AuthorEmail:  ticket.AuthorEmail,
		AuthorName:   view.AuthorName(snap, ticket.AuthorEmail),
		Subject:      ticket.Subject,
		Description:  ticket.Description,
		CategoryID:   ticket.CategoryID,
		CategoryName: view.CategoryName(snap, ticket.CategoryID),
		Status:       ticket.Status,
		Votes:        ticket.Votes,
		Comments:     items,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func commentResponse(snap state.Snapshot, comment domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:          comment.ID,
		AuthorEmail: comment.AuthorEmail,
		AuthorName:  view.AuthorName(snap, comment.AuthorEmail),
		Text:        comment.Text,
		CreatedAt:   comment.CreatedAt,
	}
}
