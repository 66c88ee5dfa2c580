package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quickdesk/helpdesk-service/internal/domain"
	"github.com/quickdesk/helpdesk-service/internal/events"
	"github.com/quickdesk/helpdesk-service/internal/repository"
)

// NotificationService is the fanout engine: it expands a domain event
// into zero or more notification records. Fanout is not atomic with the
// triggering mutation; if a recipient write fails the mutation stands
// and the miss is logged, never retried.
type NotificationService struct {
	dispatcher    events.Dispatcher
	users         repository.UserRepository
	notifications repository.NotificationRepository
	unread        *UnreadCache
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, users repository.UserRepository, notifications repository.NotificationRepository, unread *UnreadCache, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher:    dispatcher,
		users:         users,
		notifications: notifications,
		unread:        unread,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStatusChanged)
}

// handleTicketCreated notifies every support agent and admin. One record
// per recipient; no deduplication.
func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	staff, err := n.staffRecipients(ctx)
	if err != nil {
		n.logger.Error("fanout recipient lookup failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}

	message := fmt.Sprintf("New ticket from %s: %q", event.Actor.Name, payload.Ticket.Subject)
	for _, recipient := range staff {
		n.append(ctx, recipient.Email, message, payload.Ticket.ID)
	}
	return nil
}

// handleCommentAdded notifies the ticket author, but only for staff
// comments and never for the author's own comments.
func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	if !event.Actor.Role.IsStaff() {
		return nil
	}
	if event.Actor.Email == payload.Ticket.AuthorEmail {
		return nil
	}

	author, err := n.resolveRecipient(ctx, payload.Ticket.AuthorEmail)
	if err != nil || author == nil {
		return err
	}

	message := fmt.Sprintf("%s commented on your ticket: %q", event.Actor.Name, payload.Ticket.Subject)
	n.append(ctx, author.Email, message, payload.Ticket.ID)
	return nil
}

// handleStatusChanged notifies the ticket author on any status change by
// someone else. Unlike comments there is no role condition; end-users
// never reach the status endpoint, so the gate would be dead weight.
func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	if event.Actor.Email == payload.Ticket.AuthorEmail {
		return nil
	}

	author, err := n.resolveRecipient(ctx, payload.Ticket.AuthorEmail)
	if err != nil || author == nil {
		return err
	}

	message := fmt.Sprintf("Status of your ticket %q was changed to %s", payload.Ticket.Subject, payload.NewStatus)
	n.append(ctx, author.Email, message, payload.Ticket.ID)
	return nil
}

func (n *NotificationService) staffRecipients(ctx context.Context) ([]domain.User, error) {
	all, err := n.users.List(ctx)
	if err != nil {
		return nil, err
	}
	var staff []domain.User
	for _, user := range all {
		if user.Role.IsStaff() {
			staff = append(staff, user)
		}
	}
	return staff, nil
}

// resolveRecipient checks the recipient is still a known user. A nil
// result with nil error means the author was deleted; the notification
// is dropped.
func (n *NotificationService) resolveRecipient(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, nil
	}
	user, err := n.users.GetByEmail(ctx, email)
	if err != nil {
		n.logger.Warn("fanout recipient not resolvable",
			zap.String("recipient", email),
			zap.Error(err))
		return nil, nil
	}
	return user, nil
}

func (n *NotificationService) append(ctx context.Context, recipientEmail, message, ticketID string) {
	notification := &domain.Notification{
		RecipientEmail: recipientEmail,
		Message:        message,
		TicketID:       ticketID,
		Read:           false,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("notification write failed",
			zap.String("recipient", recipientEmail),
			zap.String("ticket_id", ticketID),
			zap.Error(err))
		return
	}
	n.unread.Invalidate(ctx, recipientEmail)
}

// MarkAllRead flips every unread notification for the recipient.
// Idempotent.
func (n *NotificationService) MarkAllRead(ctx context.Context, recipientEmail string) error {
	if err := n.notifications.MarkAllRead(ctx, recipientEmail); err != nil {
		return err
	}
	n.unread.Invalidate(ctx, recipientEmail)
	return nil
}

// UnreadCount returns the recipient's unread total, served from the
// redis cache when warm.
func (n *NotificationService) UnreadCount(ctx context.Context, recipientEmail string) (int, error) {
	if count, ok := n.unread.Get(ctx, recipientEmail); ok {
		return count, nil
	}

	all, err := n.notifications.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, notification := range all {
		if notification.RecipientEmail == recipientEmail && !notification.Read {
			count++
		}
	}
	n.unread.Set(ctx, recipientEmail, count)
	return count, nil
}
