// Package memory provides an in-process record store implementing the
// repository interfaces. It backs local development runs where no
// Postgres DSN is configured, and the package-level tests.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quickdesk/helpdesk-service/internal/domain"
)

// ErrDuplicateEmail is returned when a user insert collides on email,
// mirroring the unique constraint the Postgres schema enforces.
var ErrDuplicateEmail = errors.New("email already exists")

// ErrDuplicateCategory mirrors the unique constraint on category names.
var ErrDuplicateCategory = errors.New("category already exists")

// Store holds every entity behind one mutex. Slices preserve insertion
// order, matching the ORDER BY created_at reads of the Postgres store.
type Store struct {
	mu            sync.RWMutex
	users         []domain.User
	tickets       []domain.Ticket
	comments      []domain.Comment
	categories    []domain.Category
	notifications []domain.Notification
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Users() *UserStore                 { return &UserStore{s} }
func (s *Store) Tickets() *TicketStore             { return &TicketStore{s} }
func (s *Store) Comments() *CommentStore           { return &CommentStore{s} }
func (s *Store) Categories() *CategoryStore        { return &CategoryStore{s} }
func (s *Store) Notifications() *NotificationStore { return &NotificationStore{s} }

// UserStore implements repository.UserRepository.
type UserStore struct{ store *Store }

func (u *UserStore) Create(_ context.Context, user *domain.User) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for i := range u.store.users {
		if u.store.users[i].Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	u.store.users = append(u.store.users, *user)
	return nil
}

func (u *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	for i := range u.store.users {
		if u.store.users[i].ID == id {
			user := u.store.users[i]
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (u *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	for i := range u.store.users {
		if u.store.users[i].Email == email {
			user := u.store.users[i]
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (u *UserStore) List(_ context.Context) ([]domain.User, error) {
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	return append([]domain.User(nil), u.store.users...), nil
}

func (u *UserStore) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for i := range u.store.users {
		if u.store.users[i].ID == id {
			u.store.users[i].Role = role
			u.store.users[i].UpdatedAt = time.Now()
			user := u.store.users[i]
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// Delete removes the user only. Tickets and comments keep their author
// columns dangling, as the Postgres schema's ON DELETE SET NULL does.
func (u *UserStore) Delete(_ context.Context, id string) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for i := range u.store.users {
		if u.store.users[i].ID == id {
			u.store.users = append(u.store.users[:i], u.store.users[i+1:]...)
			u.clearAuthorRefsLocked(id)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (u *UserStore) clearAuthorRefsLocked(userID string) {
	for i := range u.store.tickets {
		if u.store.tickets[i].AuthorID != nil && *u.store.tickets[i].AuthorID == userID {
			u.store.tickets[i].AuthorID = nil
		}
	}
	for i := range u.store.comments {
		if u.store.comments[i].AuthorID != nil && *u.store.comments[i].AuthorID == userID {
			u.store.comments[i].AuthorID = nil
		}
	}
}

// TicketStore implements repository.TicketRepository.
type TicketStore struct{ store *Store }

func (t *TicketStore) Create(_ context.Context, ticket *domain.Ticket) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	now := time.Now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	stored := *ticket
	stored.Comments = nil
	t.store.tickets = append(t.store.tickets, stored)
	return nil
}

func (t *TicketStore) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	for i := range t.store.tickets {
		if t.store.tickets[i].ID == id {
			ticket := t.store.tickets[i]
			ticket.Comments = t.commentsForLocked(id)
			return &ticket, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (t *TicketStore) List(_ context.Context) ([]domain.Ticket, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	result := make([]domain.Ticket, len(t.store.tickets))
	for i := range t.store.tickets {
		result[i] = t.store.tickets[i]
		result[i].Comments = t.commentsForLocked(t.store.tickets[i].ID)
	}
	return result, nil
}

func (t *TicketStore) commentsForLocked(ticketID string) []domain.Comment {
	var result []domain.Comment
	for i := range t.store.comments {
		if t.store.comments[i].TicketID == ticketID {
			result = append(result, t.store.comments[i])
		}
	}
	return result
}

func (t *TicketStore) UpdateStatus(_ context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for i := range t.store.tickets {
		if t.store.tickets[i].ID == id {
			t.store.tickets[i].Status = status
			t.store.tickets[i].UpdatedAt = time.Now()
			ticket := t.store.tickets[i]
			ticket.Comments = t.commentsForLocked(id)
			return &ticket, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (t *TicketStore) IncrementVotes(_ context.Context, id string, delta int) (*domain.Ticket, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for i := range t.store.tickets {
		if t.store.tickets[i].ID == id {
			t.store.tickets[i].Votes += delta
			t.store.tickets[i].UpdatedAt = time.Now()
			ticket := t.store.tickets[i]
			ticket.Comments = t.commentsForLocked(id)
			return &ticket, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// CommentStore implements repository.CommentRepository.
type CommentStore struct{ store *Store }

func (c *CommentStore) Create(_ context.Context, comment *domain.Comment) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	found := false
	for i := range c.store.tickets {
		if c.store.tickets[i].ID == comment.TicketID {
			found = true
			break
		}
	}
	if !found {
		return pgx.ErrNoRows
	}
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now()
	c.store.comments = append(c.store.comments, *comment)
	return nil
}

func (c *CommentStore) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	var result []domain.Comment
	for i := range c.store.comments {
		if c.store.comments[i].TicketID == ticketID {
			result = append(result, c.store.comments[i])
		}
	}
	return result, nil
}

// CategoryStore implements repository.CategoryRepository.
type CategoryStore struct{ store *Store }

func (c *CategoryStore) Create(_ context.Context, category *domain.Category) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	for i := range c.store.categories {
		if c.store.categories[i].Name == category.Name {
			return ErrDuplicateCategory
		}
	}
	category.ID = uuid.NewString()
	category.CreatedAt = time.Now()
	c.store.categories = append(c.store.categories, *category)
	return nil
}

func (c *CategoryStore) GetByID(_ context.Context, id string) (*domain.Category, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	for i := range c.store.categories {
		if c.store.categories[i].ID == id {
			category := c.store.categories[i]
			return &category, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (c *CategoryStore) List(_ context.Context) ([]domain.Category, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return append([]domain.Category(nil), c.store.categories...), nil
}

// Delete does not cascade: tickets referencing the category keep a
// dangling reference and render as "N/A".
func (c *CategoryStore) Delete(_ context.Context, id string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	for i := range c.store.categories {
		if c.store.categories[i].ID == id {
			c.store.categories = append(c.store.categories[:i], c.store.categories[i+1:]...)
			for j := range c.store.tickets {
				if c.store.tickets[j].CategoryID != nil && *c.store.tickets[j].CategoryID == id {
					c.store.tickets[j].CategoryID = nil
				}
			}
			return nil
		}
	}
	return pgx.ErrNoRows
}

// NotificationStore implements repository.NotificationRepository.
type NotificationStore struct{ store *Store }

func (n *NotificationStore) Create(_ context.Context, notification *domain.Notification) error {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now()
	n.store.notifications = append(n.store.notifications, *notification)
	return nil
}

func (n *NotificationStore) List(_ context.Context) ([]domain.Notification, error) {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()
	return append([]domain.Notification(nil), n.store.notifications...), nil
}

func (n *NotificationStore) MarkAllRead(_ context.Context, recipientEmail string) error {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()
	for i := range n.store.notifications {
		if n.store.notifications[i].RecipientEmail == recipientEmail {
			n.store.notifications[i].Read = true
		}
	}
	return nil
}
