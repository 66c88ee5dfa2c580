package domain

import "time"

// Notification informs a user about activity on a ticket. Recipients
// are keyed by email; records are created only by the fanout engine and
// mutated only by the bulk mark-read operation.
type Notification struct {
	ID             string
	RecipientEmail string
	Message        string
	TicketID       string
	Read           bool
	CreatedAt      time.Time
}
