package state

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/quickdesk/helpdesk-service/internal/config"
	"github.com/quickdesk/helpdesk-service/internal/domain"
	"github.com/quickdesk/helpdesk-service/internal/events"
	"github.com/quickdesk/helpdesk-service/internal/repository"
	"github.com/quickdesk/helpdesk-service/internal/repository/memory"
	"github.com/quickdesk/helpdesk-service/internal/service"
	apperrors "github.com/quickdesk/helpdesk-service/pkg/util"
)

// flakyTicketRepo lets tests force store failures on demand.
type flakyTicketRepo struct {
	repository.TicketRepository
	failCreate bool
	failList   bool
}

var errStoreDown = errors.New("store down")

func (f *flakyTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	if f.failCreate {
		return errStoreDown
	}
	return f.TicketRepository.Create(ctx, ticket)
}

func (f *flakyTicketRepo) List(ctx context.Context) ([]domain.Ticket, error) {
	if f.failList {
		return nil, errStoreDown
	}
	return f.TicketRepository.List(ctx)
}

type cacheEnv struct {
	store   *memory.Store
	tickets *flakyTicketRepo
	cache   *Cache
	notify  *service.NotificationService
}

func newCacheEnv(t *testing.T) *cacheEnv {
	t.Helper()
	store := memory.NewStore()
	tickets := &flakyTicketRepo{TicketRepository: store.Tickets()}
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	notify := service.NewNotificationService(dispatcher, store.Users(), store.Notifications(),
		service.NewUnreadCache(nil, 0, logger), logger)
	notify.RegisterHandlers()

	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            4,
	}}

	cache := NewCache(Dependencies{
		UserRepo:         store.Users(),
		TicketRepo:       tickets,
		CategoryRepo:     store.Categories(),
		NotificationRepo: store.Notifications(),
		TicketService: service.NewTicketService(service.TicketDependencies{
			TicketRepo:   tickets,
			CommentRepo:  store.Comments(),
			CategoryRepo: store.Categories(),
			Dispatcher:   dispatcher,
		}),
		DirectoryService:    service.NewDirectoryService(store.Users(), store.Categories()),
		AuthService:         service.NewAuthService(cfg, store.Users()),
		NotificationService: notify,
		Logger:              logger,
	})
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	return &cacheEnv{store: store, tickets: tickets, cache: cache, notify: notify}
}

func (e *cacheEnv) addUser(t *testing.T, name, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: email, PasswordHash: "x", Role: role}
	if err := e.store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func ticketVotes(snap Snapshot, id string) (int, bool) {
	for _, ticket := range snap.Tickets {
		if ticket.ID == id {
			return ticket.Votes, true
		}
	}
	return 0, false
}

func TestVotesAccumulateUnboundedAcrossTickets(t *testing.T) {
	t.Parallel()
	env := newCacheEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "Alice", "alice@x.com", domain.RoleEndUser)
	carol := env.addUser(t, "Carol", "carol@x.com", domain.RoleEndUser)

	first, err := env.cache.CreateTicket(ctx, alice, service.TicketCreateInput{Subject: "First"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	second, err := env.cache.CreateTicket(ctx, carol, service.TicketCreateInput{Subject: "Second"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	// Interleaved, repeated votes by the same users. No dedup, no floor.
	steps := []struct {
		voter     *domain.User
		ticketID  string
		direction service.VoteDirection
	}{
		{alice, first.ID, service.VoteUp},
		{alice, first.ID, service.VoteUp},
		{carol, second.ID, service.VoteDown},
		{alice, second.ID, service.VoteDown},
		{carol, first.ID, service.VoteUp},
		{alice, first.ID, service.VoteDown},
		{carol, second.ID, service.VoteDown},
	}
	for i, step := range steps {
		if _, err := env.cache.Vote(ctx, step.voter, step.ticketID, step.direction); err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
	}

	snap := env.cache.Snapshot()
	if got, ok := ticketVotes(snap, first.ID); !ok || got != 2 {
		t.Errorf("first ticket votes: got %d (found=%v), want 2", got, ok)
	}
	if got, ok := ticketVotes(snap, second.ID); !ok || got != -3 {
		t.Errorf("second ticket votes: got %d (found=%v), want -3", got, ok)
	}
}

func TestFailedMutationLeavesSnapshotUnchanged(t *testing.T) {
	t.Parallel()
	env := newCacheEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "Alice", "alice@x.com", domain.RoleEndUser)
	if err := env.cache.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	before := env.cache.Snapshot()

	env.tickets.failCreate = true
	if _, err := env.cache.CreateTicket(ctx, alice, service.TicketCreateInput{Subject: "Doomed"}); err == nil {
		t.Fatal("CreateTicket succeeded against a failing store")
	}

	after := env.cache.Snapshot()
	if len(after.Tickets) != len(before.Tickets) {
		t.Errorf("ticket count changed: got %d, want %d", len(after.Tickets), len(before.Tickets))
	}
	if !after.FetchedAt.Equal(before.FetchedAt) {
		t.Error("snapshot was refreshed after a failed mutation")
	}
}

func TestBlankSubjectRejectedBeforeStoreWrite(t *testing.T) {
	t.Parallel()
	env := newCacheEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "Alice", "alice@x.com", domain.RoleEndUser)

	_, err := env.cache.CreateTicket(ctx, alice, service.TicketCreateInput{Subject: "   "})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("got error %v, want VALIDATION_FAILED", err)
	}
	if got := len(env.cache.Snapshot().Tickets); got != 0 {
		t.Errorf("tickets in snapshot after rejected create: got %d, want 0", got)
	}
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()
	env := newCacheEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "Alice", "alice@x.com", domain.RoleEndUser)
	if _, err := env.cache.CreateTicket(ctx, alice, service.TicketCreateInput{Subject: "Kept"}); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	before := env.cache.Snapshot()

	env.tickets.failList = true
	if err := env.cache.Refresh(ctx); err == nil {
		t.Fatal("Refresh succeeded against a failing store")
	}

	after := env.cache.Snapshot()
	if len(after.Tickets) != 1 || after.Tickets[0].Subject != "Kept" {
		t.Errorf("snapshot tickets after failed refresh: got %+v, want the previous one", after.Tickets)
	}
	if !after.FetchedAt.Equal(before.FetchedAt) {
		t.Error("FetchedAt advanced despite failed refresh")
	}
}

func TestSnapshotOmitsPasswordHashes(t *testing.T) {
	t.Parallel()
	env := newCacheEnv(t)
	ctx := context.Background()
	env.addUser(t, "Alice", "alice@x.com", domain.RoleEndUser)
	if err := env.cache.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	for _, user := range env.cache.Snapshot().Users {
		if user.PasswordHash != "" {
			t.Errorf("snapshot user %s carries a password hash", user.Email)
		}
	}
}

func TestTicketLifecycleEndToEnd(t *testing.T) {
	t.Parallel()
	env := newCacheEnv(t)
	ctx := context.Background()
	admin := env.addUser(t, "Admin", "admin@x.com", domain.RoleAdmin)
	bob := env.addUser(t, "Bob", "bob@x.com", domain.RoleSupportAgent)
	alice := env.addUser(t, "Alice", "alice@x.com", domain.RoleEndUser)

	category, err := env.cache.AddCategory(ctx, admin, "Hardware")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}

	ticket, err := env.cache.CreateTicket(ctx, alice, service.TicketCreateInput{
		Subject:    "Printer jam",
		CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("new ticket status: got %s, want %s", ticket.Status, domain.TicketStatusOpen)
	}
	if ticket.Votes != 0 {
		t.Errorf("new ticket votes: got %d, want 0", ticket.Votes)
	}

	if _, err := env.cache.UpdateStatus(ctx, bob, ticket.ID, domain.TicketStatusInProgress); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	unread, err := env.notify.UnreadCount(ctx, alice.Email)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != 1 {
		t.Fatalf("alice unread after status change: got %d, want 1", unread)
	}

	snap := env.cache.Snapshot()
	want := `Status of your ticket "Printer jam" was changed to In Progress`
	found := false
	for _, notification := range snap.Notifications {
		if notification.RecipientEmail == alice.Email && notification.Message == want {
			found = true
		}
	}
	if !found {
		t.Errorf("snapshot missing notification %q for alice", want)
	}

	for i := 0; i < 2; i++ { // second pass proves idempotence
		if err := env.cache.MarkNotificationsRead(ctx, alice); err != nil {
			t.Fatalf("MarkNotificationsRead: %v", err)
		}
		unread, err = env.notify.UnreadCount(ctx, alice.Email)
		if err != nil {
			t.Fatalf("UnreadCount: %v", err)
		}
		if unread != 0 {
			t.Errorf("alice unread after mark-read: got %d, want 0", unread)
		}
	}
}
