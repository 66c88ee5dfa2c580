package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quickdesk/helpdesk-service/internal/domain"
	"github.com/quickdesk/helpdesk-service/internal/events"
	"github.com/quickdesk/helpdesk-service/internal/repository"
	apperrors "github.com/quickdesk/helpdesk-service/pkg/util"
)

// TicketService coordinates ticket workflows. Every mutation verifies
// the actor's role here, not just in the UI routing layer, and publishes
// its fanout event only after the store write succeeds.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CommentRepo  repository.CommentRepository
	CategoryRepo repository.CategoryRepository
	Dispatcher   events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	CategoryID  string
}

// VoteDirection is the relative vote applied per click.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		categories: deps.CategoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket creates a ticket for the actor and fans out to staff.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject required", nil)
	}

	var categoryID *string
	if input.CategoryID != "" {
		category, err := s.categories.GetByID(ctx, input.CategoryID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("category", map[string]any{"id": input.CategoryID})
			}
			return nil, err
		}
		categoryID = &category.ID
	}

	ticket := &domain.Ticket{
		AuthorID:    &actor.ID,
		AuthorEmail: actor.Email,
		Subject:     subject,
		Description: strings.TrimSpace(input.Description),
		CategoryID:  categoryID,
		Status:      domain.TicketStatusOpen,
		Votes:       0,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    *actor,
		Payload:  events.TicketCreatedPayload{Ticket: *ticket},
	})
	return ticket, nil
}

// AddComment appends a comment to a ticket thread.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("comment text required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}

	comment := &domain.Comment{
		TicketID:    ticket.ID,
		AuthorID:    &actor.ID,
		AuthorEmail: actor.Email,
		Text:        text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Actor:    *actor,
		Payload:  events.CommentAddedPayload{Ticket: *ticket, Comment: *comment},
	})
	return comment, nil
}

// UpdateStatus moves a ticket to any valid status. Staff only; there is
// no transition guard between states.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("support agent or admin required")
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(status)})
	}

	before, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}

	ticket, err := s.tickets.UpdateStatus(ctx, ticketID, status)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    *actor,
		Payload: events.TicketStatusChangedPayload{
			Ticket:    *ticket,
			OldStatus: before.Status,
			NewStatus: status,
		},
	})
	return ticket, nil
}

// Vote applies a single relative increment. Votes are unbounded and
// undeduplicated: the same user may vote any number of times.
func (s *TicketService) Vote(ctx context.Context, actor *domain.User, ticketID string, direction VoteDirection) (*domain.Ticket, error) {
	var delta int
	switch direction {
	case VoteUp:
		delta = 1
	case VoteDown:
		delta = -1
	default:
		return nil, apperrors.NewValidationError("vote must be up or down", nil)
	}

	ticket, err := s.tickets.IncrementVotes(ctx, ticketID, delta)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
