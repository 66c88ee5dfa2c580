package service

import (
	"context"
	"testing"

	"github.com/quickdesk/helpdesk-service/internal/domain"
	"github.com/quickdesk/helpdesk-service/internal/repository/memory"
)

type directoryEnv struct {
	store *memory.Store
	svc   *DirectoryService
	admin *domain.User
	agent *domain.User
	user  *domain.User
}

func newDirectoryEnv(t *testing.T) *directoryEnv {
	t.Helper()
	store := memory.NewStore()
	env := &directoryEnv{store: store, svc: NewDirectoryService(store.Users(), store.Categories())}
	add := func(name, email string, role domain.Role) *domain.User {
		u := &domain.User{Name: name, Email: email, PasswordHash: "x", Role: role}
		if err := store.Users().Create(context.Background(), u); err != nil {
			t.Fatalf("create user %s: %v", email, err)
		}
		return u
	}
	env.admin = add("Admin", "admin@x.com", domain.RoleAdmin)
	env.agent = add("Bob", "bob@x.com", domain.RoleSupportAgent)
	env.user = add("Alice", "alice@x.com", domain.RoleEndUser)
	return env
}

func TestDirectoryMutationsRequireAdmin(t *testing.T) {
	t.Parallel()
	env := newDirectoryEnv(t)
	ctx := context.Background()

	for _, actor := range []*domain.User{env.agent, env.user, nil} {
		if _, err := env.svc.UpdateUserRole(ctx, actor, env.user.ID, domain.RoleSupportAgent); domainCode(err) != "FORBIDDEN" {
			t.Errorf("UpdateUserRole as %v: got %v, want FORBIDDEN", actor, err)
		}
		if err := env.svc.DeleteUser(ctx, actor, env.user.ID); domainCode(err) != "FORBIDDEN" {
			t.Errorf("DeleteUser as %v: got %v, want FORBIDDEN", actor, err)
		}
		if _, err := env.svc.AddCategory(ctx, actor, "Hardware"); domainCode(err) != "FORBIDDEN" {
			t.Errorf("AddCategory as %v: got %v, want FORBIDDEN", actor, err)
		}
		if err := env.svc.DeleteCategory(ctx, actor, "some-id"); domainCode(err) != "FORBIDDEN" {
			t.Errorf("DeleteCategory as %v: got %v, want FORBIDDEN", actor, err)
		}
	}
}

func TestUpdateUserRole(t *testing.T) {
	t.Parallel()
	env := newDirectoryEnv(t)
	ctx := context.Background()

	promoted, err := env.svc.UpdateUserRole(ctx, env.admin, env.user.ID, domain.RoleSupportAgent)
	if err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if promoted.Role != domain.RoleSupportAgent {
		t.Errorf("role: got %s, want %s", promoted.Role, domain.RoleSupportAgent)
	}

	if _, err := env.svc.UpdateUserRole(ctx, env.admin, env.user.ID, "Overlord"); domainCode(err) != "VALIDATION_FAILED" {
		t.Errorf("invalid role: got %v, want VALIDATION_FAILED", err)
	}
	if _, err := env.svc.UpdateUserRole(ctx, env.admin, env.admin.ID, domain.RoleEndUser); domainCode(err) != "FORBIDDEN" {
		t.Errorf("self demotion: got %v, want FORBIDDEN", err)
	}
	if _, err := env.svc.UpdateUserRole(ctx, env.admin, "missing", domain.RoleEndUser); domainCode(err) != "NOT_FOUND" {
		t.Errorf("missing user: got %v, want NOT_FOUND", err)
	}
}

func TestDeleteUserKeepsTheirTickets(t *testing.T) {
	t.Parallel()
	env := newDirectoryEnv(t)
	ctx := context.Background()

	ticket := &domain.Ticket{
		AuthorID:    &env.user.ID,
		AuthorEmail: env.user.Email,
		Subject:     "Orphan me",
		Status:      domain.TicketStatusOpen,
	}
	if err := env.store.Tickets().Create(ctx, ticket); err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	if err := env.svc.DeleteUser(ctx, env.admin, env.admin.ID); domainCode(err) != "FORBIDDEN" {
		t.Errorf("self delete: got %v, want FORBIDDEN", err)
	}
	if err := env.svc.DeleteUser(ctx, env.admin, env.user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	kept, err := env.store.Tickets().GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("ticket gone after author delete: %v", err)
	}
	if kept.AuthorID != nil {
		t.Error("author reference not cleared")
	}
	if kept.AuthorEmail != env.user.Email {
		t.Errorf("author email: got %q, want %q", kept.AuthorEmail, env.user.Email)
	}
}

func TestAddCategoryTrimsAndDeduplicates(t *testing.T) {
	t.Parallel()
	env := newDirectoryEnv(t)
	ctx := context.Background()

	category, err := env.svc.AddCategory(ctx, env.admin, "  Hardware ")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if category.Name != "Hardware" {
		t.Errorf("name: got %q, want %q", category.Name, "Hardware")
	}

	if _, err := env.svc.AddCategory(ctx, env.admin, "hardware"); domainCode(err) != "CONFLICT" {
		t.Errorf("case-insensitive duplicate: got %v, want CONFLICT", err)
	}
	if _, err := env.svc.AddCategory(ctx, env.admin, "   "); domainCode(err) != "VALIDATION_FAILED" {
		t.Errorf("blank name: got %v, want VALIDATION_FAILED", err)
	}
}

func TestDeleteCategoryLeavesDanglingTicketRef(t *testing.T) {
	t.Parallel()
	env := newDirectoryEnv(t)
	ctx := context.Background()

	category, err := env.svc.AddCategory(ctx, env.admin, "Hardware")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	ticket := &domain.Ticket{
		AuthorEmail: env.user.Email,
		Subject:     "Categorized",
		CategoryID:  &category.ID,
		Status:      domain.TicketStatusOpen,
	}
	if err := env.store.Tickets().Create(ctx, ticket); err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	if err := env.svc.DeleteCategory(ctx, env.admin, category.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := env.svc.DeleteCategory(ctx, env.admin, category.ID); domainCode(err) != "NOT_FOUND" {
		t.Errorf("second delete: got %v, want NOT_FOUND", err)
	}

	kept, err := env.store.Tickets().GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("ticket gone after category delete: %v", err)
	}
	if kept.CategoryID != nil {
		t.Error("category reference not cleared")
	}
}
