// Package view computes derived, read-only views from the cached
// snapshot: the filtered dashboard, comment threads, and the
// notification inbox. Nothing here mutates state.
package view

import (
	"sort"
	"strings"

	"github.com/quickdesk/helpdesk-service/internal/domain"
	"github.com/quickdesk/helpdesk-service/internal/state"
)

// StatusFilterAll is the sentinel meaning "no status filter".
const StatusFilterAll = "all"

// Fallback labels for dangling references left by deletes.
const (
	MissingCategoryLabel = "N/A"
	MissingAuthorLabel   = "Unknown"
)

// Dashboard returns the viewer's ticket list. End-users only ever see
// their own tickets; the search term matches the subject
// case-insensitively; status filters exactly unless it is the "all"
// sentinel. Order is store order.
func Dashboard(snap state.Snapshot, viewer domain.User, searchTerm, statusFilter string) []domain.Ticket {
	var result []domain.Ticket
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	for _, ticket := range snap.Tickets {
		if viewer.Role == domain.RoleEndUser && ticket.AuthorEmail != viewer.Email {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(ticket.Subject), term) {
			continue
		}
		if statusFilter != "" && statusFilter != StatusFilterAll && string(ticket.Status) != statusFilter {
			continue
		}
		result = append(result, ticket)
	}
	return result
}

// Comments returns the ticket's thread oldest-first, regardless of
// store return order.
func Comments(ticket domain.Ticket) []domain.Comment {
	comments := append([]domain.Comment(nil), ticket.Comments...)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments
}

// Inbox returns the viewer's notifications newest-first, the inverse of
// the comment ordering.
func Inbox(snap state.Snapshot, viewer domain.User) []domain.Notification {
	var result []domain.Notification
	for _, notification := range snap.Notifications {
		if notification.RecipientEmail == viewer.Email {
			result = append(result, notification)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// UnreadCount counts the viewer's unread notifications.
func UnreadCount(snap state.Snapshot, viewer domain.User) int {
	count := 0
	for _, notification := range snap.Notifications {
		if notification.RecipientEmail == viewer.Email && !notification.Read {
			count++
		}
	}
	return count
}

// CategoryName resolves a ticket's category label, falling back for
// dangling references.
func CategoryName(snap state.Snapshot, categoryID *string) string {
	if categoryID == nil {
		return MissingCategoryLabel
	}
	for _, category := range snap.Categories {
		if category.ID == *categoryID {
			return category.Name
		}
	}
	return MissingCategoryLabel
}

// AuthorName resolves a user's display name by email, falling back for
// deleted accounts.
func AuthorName(snap state.Snapshot, email string) string {
	for _, user := range snap.Users {
		if user.Email == email {
			return user.Name
		}
	}
	return MissingAuthorLabel
}

// CanViewAdmin gates the admin panel. This duplicates the server-side
// guard on the admin routes; the projection check alone is not a trust
// boundary.
func CanViewAdmin(viewer domain.User) bool {
	return viewer.Role == domain.RoleAdmin
}
