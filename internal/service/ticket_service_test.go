package service

import (
	"context"
	"sync"
	"testing"

	"github.com/quickdesk/helpdesk-service/internal/domain"
)

func TestCreateTicketValidatesCategory(t *testing.T) {
	t.Parallel()
	env := newFanoutEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "Alice", "alice@x.com", domain.RoleEndUser)

	_, err := env.tickets.CreateTicket(ctx, alice, TicketCreateInput{
		Subject:    "Broken",
		CategoryID: "no-such-category",
	})
	if got := domainCode(err); got != "NOT_FOUND" {
		t.Errorf("unknown category: got %v, want NOT_FOUND", err)
	}

	category := &domain.Category{Name: "Hardware"}
	if err := env.store.Categories().Create(ctx, category); err != nil {
		t.Fatalf("create category: %v", err)
	}
	ticket, err := env.tickets.CreateTicket(ctx, alice, TicketCreateInput{
		Subject:    "  Broken screen  ",
		CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Subject != "Broken screen" {
		t.Errorf("subject not trimmed: got %q", ticket.Subject)
	}
	if ticket.CategoryID == nil || *ticket.CategoryID != category.ID {
		t.Errorf("category: got %v, want %q", ticket.CategoryID, category.ID)
	}
}

func TestAddCommentRequiresExistingTicket(t *testing.T) {
	t.Parallel()
	env := newFanoutEnv(t)
	alice := env.addUser(t, "Alice", "alice@x.com", domain.RoleEndUser)

	if _, err := env.tickets.AddComment(context.Background(), alice, "missing", "hello"); domainCode(err) != "NOT_FOUND" {
		t.Errorf("comment on missing ticket: got %v, want NOT_FOUND", err)
	}
	if _, err := env.tickets.AddComment(context.Background(), alice, "missing", "  "); domainCode(err) != "VALIDATION_FAILED" {
		t.Errorf("blank comment: got %v, want VALIDATION_FAILED", err)
	}
}

func TestUpdateStatusGuards(t *testing.T) {
	t.Parallel()
	env := newFanoutEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "Alice", "alice@x.com", domain.RoleEndUser)
	agent := env.addUser(t, "Bob", "bob@x.com", domain.RoleSupportAgent)

	ticket, err := env.tickets.CreateTicket(ctx, alice, TicketCreateInput{Subject: "Guarded"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	// The role check lives in the service, not just the route guard.
	if _, err := env.tickets.UpdateStatus(ctx, alice, ticket.ID, domain.TicketStatusResolved); domainCode(err) != "FORBIDDEN" {
		t.Errorf("end-user status change: got %v, want FORBIDDEN", err)
	}
	if _, err := env.tickets.UpdateStatus(ctx, agent, ticket.ID, "Escalated"); domainCode(err) != "VALIDATION_FAILED" {
		t.Errorf("unknown status: got %v, want VALIDATION_FAILED", err)
	}
	if _, err := env.tickets.UpdateStatus(ctx, agent, "missing", domain.TicketStatusResolved); domainCode(err) != "NOT_FOUND" {
		t.Errorf("missing ticket: got %v, want NOT_FOUND", err)
	}

	// Any valid transition is allowed, including straight back to Open.
	if _, err := env.tickets.UpdateStatus(ctx, agent, ticket.ID, domain.TicketStatusResolved); err != nil {
		t.Fatalf("to Resolved: %v", err)
	}
	updated, err := env.tickets.UpdateStatus(ctx, agent, ticket.ID, domain.TicketStatusOpen)
	if err != nil {
		t.Fatalf("back to Open: %v", err)
	}
	if updated.Status != domain.TicketStatusOpen {
		t.Errorf("status: got %s, want %s", updated.Status, domain.TicketStatusOpen)
	}
}

func TestVoteDirections(t *testing.T) {
	t.Parallel()
	env := newFanoutEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "Alice", "alice@x.com", domain.RoleEndUser)

	ticket, err := env.tickets.CreateTicket(ctx, alice, TicketCreateInput{Subject: "Votable"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if _, err := env.tickets.Vote(ctx, alice, ticket.ID, "sideways"); domainCode(err) != "VALIDATION_FAILED" {
		t.Errorf("bad direction: got %v, want VALIDATION_FAILED", err)
	}
	if _, err := env.tickets.Vote(ctx, alice, "missing", VoteUp); domainCode(err) != "NOT_FOUND" {
		t.Errorf("missing ticket: got %v, want NOT_FOUND", err)
	}

	// Votes can go negative; there is no floor at zero.
	for i := 0; i < 3; i++ {
		if _, err := env.tickets.Vote(ctx, alice, ticket.ID, VoteDown); err != nil {
			t.Fatalf("vote down %d: %v", i, err)
		}
	}
	updated, err := env.tickets.Vote(ctx, alice, ticket.ID, VoteUp)
	if err != nil {
		t.Fatalf("vote up: %v", err)
	}
	if updated.Votes != -2 {
		t.Errorf("votes: got %d, want -2", updated.Votes)
	}
}

func TestConcurrentVotesAllLand(t *testing.T) {
	t.Parallel()
	env := newFanoutEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "Alice", "alice@x.com", domain.RoleEndUser)

	ticket, err := env.tickets.CreateTicket(ctx, alice, TicketCreateInput{Subject: "Contended"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	const voters = 32
	var wg sync.WaitGroup
	wg.Add(voters)
	for i := 0; i < voters; i++ {
		go func() {
			defer wg.Done()
			if _, err := env.tickets.Vote(ctx, alice, ticket.ID, VoteUp); err != nil {
				t.Errorf("Vote: %v", err)
			}
		}()
	}
	wg.Wait()

	final, err := env.store.Tickets().GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if final.Votes != voters {
		t.Errorf("votes after %d concurrent ups: got %d", voters, final.Votes)
	}
}
