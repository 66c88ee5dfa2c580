package domain

import "testing"

func TestTicketStatusValid(t *testing.T) {
	t.Parallel()
	for _, status := range []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved} {
		if !status.Valid() {
			t.Errorf("%q not valid", status)
		}
	}
	// The stored literal is user-facing and space-sensitive.
	for _, status := range []TicketStatus{"", "open", "InProgress", "Closed"} {
		if status.Valid() {
			t.Errorf("%q accepted as valid", status)
		}
	}
}
