package dto

import "time"

// NotificationResponse shape for the inbox panel.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	TicketID  string    `json:"ticket_id"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// InboxResponse bundles the panel contents with the unread badge count.
type InboxResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}
