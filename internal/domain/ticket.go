package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The literals
// are the user-facing labels and are stored as-is.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
)

// Valid reports whether the status is a known state. Any valid status is
// reachable from any other; there is no transition guard.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. Votes is an unbounded
// signed tally; AuthorID and CategoryID may dangle after deletes and
// are rendered with fallbacks by projections.
type Ticket struct {
	ID          string
	AuthorID    *string
	AuthorEmail string
	Subject     string
	Description string
	CategoryID  *string
	Status      TicketStatus
	Votes       int
	Comments    []Comment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is an append-only entry in a ticket thread.
type Comment struct {
	ID          string
	TicketID    string
	AuthorID    *string
	AuthorEmail string
	Text        string
	CreatedAt   time.Time
}
