// Package state holds the application-state snapshot that projections
// read from. It replaces ad hoc globals: all writes funnel through the
// mutation operations here, and every successful mutation is followed by
// a full re-read of the store rather than a local patch, so the snapshot
// can never drift from the last successful store read.
package state

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quickdesk/helpdesk-service/internal/domain"
	"github.com/quickdesk/helpdesk-service/internal/repository"
	"github.com/quickdesk/helpdesk-service/internal/service"
)

// Snapshot is the last-fetched view of every entity. Users carry no
// credential hashes. Slices are in store order.
type Snapshot struct {
	Users         []domain.User
	Tickets       []domain.Ticket
	Categories    []domain.Category
	Notifications []domain.Notification
	FetchedAt     time.Time
}

// Cache owns the snapshot and the mutation operations over it.
type Cache struct {
	mu   sync.RWMutex
	snap Snapshot

	users         repository.UserRepository
	tickets       repository.TicketRepository
	categories    repository.CategoryRepository
	notifications repository.NotificationRepository

	ticketSvc *service.TicketService
	directory *service.DirectoryService
	authSvc   *service.AuthService
	notifySvc *service.NotificationService

	logger *zap.Logger
}

// Dependencies bundles everything the cache mediates.
type Dependencies struct {
	UserRepo         repository.UserRepository
	TicketRepo       repository.TicketRepository
	CategoryRepo     repository.CategoryRepository
	NotificationRepo repository.NotificationRepository

	TicketService       *service.TicketService
	DirectoryService    *service.DirectoryService
	AuthService         *service.AuthService
	NotificationService *service.NotificationService

	Logger *zap.Logger
}

// NewCache constructs the cache with an empty snapshot.
func NewCache(deps Dependencies) *Cache {
	return &Cache{
		users:         deps.UserRepo,
		tickets:       deps.TicketRepo,
		categories:    deps.CategoryRepo,
		notifications: deps.NotificationRepo,
		ticketSvc:     deps.TicketService,
		directory:     deps.DirectoryService,
		authSvc:       deps.AuthService,
		notifySvc:     deps.NotificationService,
		logger:        deps.Logger,
	}
}

// Refresh replaces the entire snapshot from the store. On any read
// failure the previous snapshot is kept untouched.
func (c *Cache) Refresh(ctx context.Context) error {
	users, err := c.users.List(ctx)
	if err != nil {
		return err
	}
	tickets, err := c.tickets.List(ctx)
	if err != nil {
		return err
	}
	categories, err := c.categories.List(ctx)
	if err != nil {
		return err
	}
	notifications, err := c.notifications.List(ctx)
	if err != nil {
		return err
	}

	for i := range users {
		users[i] = users[i].Sanitized()
	}

	c.mu.Lock()
	c.snap = Snapshot{
		Users:         users,
		Tickets:       tickets,
		Categories:    categories,
		Notifications: notifications,
		FetchedAt:     time.Now(),
	}
	c.mu.Unlock()
	return nil
}

// Snapshot returns the current snapshot by value.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// refreshAfter re-reads the store after a successful mutation. A failed
// refresh leaves the previous snapshot in place; the mutation itself has
// already committed, so it is logged rather than surfaced as a failure.
func (c *Cache) refreshAfter(ctx context.Context, op string) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("refresh after mutation failed; snapshot is stale",
			zap.String("operation", op),
			zap.Error(err))
	}
}

// CreateTicket files a ticket for the actor.
func (c *Cache) CreateTicket(ctx context.Context, actor *domain.User, input service.TicketCreateInput) (*domain.Ticket, error) {
	ticket, err := c.ticketSvc.CreateTicket(ctx, actor, input)
	if err != nil {
		return nil, err
	}
	c.refreshAfter(ctx, "create_ticket")
	return ticket, nil
}

// AddComment appends to a ticket thread.
func (c *Cache) AddComment(ctx context.Context, actor *domain.User, ticketID, text string) (*domain.Comment, error) {
	comment, err := c.ticketSvc.AddComment(ctx, actor, ticketID, text)
	if err != nil {
		return nil, err
	}
	c.refreshAfter(ctx, "add_comment")
	return comment, nil
}

// UpdateStatus moves a ticket between states.
func (c *Cache) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := c.ticketSvc.UpdateStatus(ctx, actor, ticketID, status)
	if err != nil {
		return nil, err
	}
	c.refreshAfter(ctx, "update_status")
	return ticket, nil
}

// Vote applies one up or down vote.
func (c *Cache) Vote(ctx context.Context, actor *domain.User, ticketID string, direction service.VoteDirection) (*domain.Ticket, error) {
	ticket, err := c.ticketSvc.Vote(ctx, actor, ticketID, direction)
	if err != nil {
		return nil, err
	}
	c.refreshAfter(ctx, "vote")
	return ticket, nil
}

// UpdateUserRole changes a user's role (admin only).
func (c *Cache) UpdateUserRole(ctx context.Context, actor *domain.User, userID string, role domain.Role) (*domain.User, error) {
	user, err := c.directory.UpdateUserRole(ctx, actor, userID, role)
	if err != nil {
		return nil, err
	}
	c.refreshAfter(ctx, "update_user_role")
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// DeleteUser removes an account (admin only).
func (c *Cache) DeleteUser(ctx context.Context, actor *domain.User, userID string) error {
	if err := c.directory.DeleteUser(ctx, actor, userID); err != nil {
		return err
	}
	c.refreshAfter(ctx, "delete_user")
	return nil
}

// AddCategory creates a category (admin only).
func (c *Cache) AddCategory(ctx context.Context, actor *domain.User, name string) (*domain.Category, error) {
	category, err := c.directory.AddCategory(ctx, actor, name)
	if err != nil {
		return nil, err
	}
	c.refreshAfter(ctx, "add_category")
	return category, nil
}

// DeleteCategory removes a category (admin only).
func (c *Cache) DeleteCategory(ctx context.Context, actor *domain.User, categoryID string) error {
	if err := c.directory.DeleteCategory(ctx, actor, categoryID); err != nil {
		return err
	}
	c.refreshAfter(ctx, "delete_category")
	return nil
}

// Register creates an end-user account.
func (c *Cache) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	user, err := c.authSvc.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	c.refreshAfter(ctx, "register")
	return user, nil
}

// Login authenticates and refreshes so the session starts from a
// current snapshot.
func (c *Cache) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, token, exp, err := c.authSvc.Login(ctx, email, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	c.refreshAfter(ctx, "login")
	return user, token, exp, nil
}

// MarkNotificationsRead flips every unread notification for the actor.
func (c *Cache) MarkNotificationsRead(ctx context.Context, actor *domain.User) error {
	if err := c.notifySvc.MarkAllRead(ctx, actor.Email); err != nil {
		return err
	}
	c.refreshAfter(ctx, "mark_notifications_read")
	return nil
}
