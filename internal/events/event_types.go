package events

import (
	"time"

	"github.com/quickdesk/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventCommentAdded        EventType = "comment_added"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted after a successful store
// mutation. Actor is the user who performed the mutation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     domain.User `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	Ticket  domain.Ticket  `json:"ticket"`
	Comment domain.Comment `json:"comment"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	Ticket    domain.Ticket       `json:"ticket"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}
