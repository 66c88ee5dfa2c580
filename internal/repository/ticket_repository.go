package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdesk/helpdesk-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence. List returns tickets
// with their comment threads nested, in insertion order.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error)
	// IncrementVotes applies a relative delta server-side so concurrent
	// votes cannot lose updates.
	IncrementVotes(ctx context.Context, id string, delta int) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, author_id, author_email, subject, description, category_id, status, votes, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (author_id, author_email, subject, description, category_id, status, votes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.AuthorID,
		ticket.AuthorEmail,
		ticket.Subject,
		ticket.Description,
		ticket.CategoryID,
		ticket.Status,
		ticket.Votes,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.AuthorID,
		&ticket.AuthorEmail,
		&ticket.Subject,
		&ticket.Description,
		&ticket.CategoryID,
		&ticket.Status,
		&ticket.Votes,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}

	comments, err := r.commentsFor(ctx, []string{ticket.ID})
	if err != nil {
		return nil, err
	}
	ticket.Comments = comments[ticket.ID]
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	var ids []string
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.AuthorID,
			&ticket.AuthorEmail,
			&ticket.Subject,
			&ticket.Description,
			&ticket.CategoryID,
			&ticket.Status,
			&ticket.Votes,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
		ids = append(ids, ticket.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	comments, err := r.commentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		tickets[i].Comments = comments[tickets[i].ID]
	}
	return tickets, nil
}

func (r *ticketRepository) commentsFor(ctx context.Context, ticketIDs []string) (map[string][]domain.Comment, error) {
	result := make(map[string][]domain.Comment, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return result, nil
	}

	const query = `
        SELECT id, ticket_id, author_id, author_email, body, created_at
        FROM comments WHERE ticket_id = ANY($1) ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&comment.AuthorEmail,
			&comment.Text,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result[comment.TicketID] = append(result[comment.TicketID], comment)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	const query = `
        UPDATE tickets SET status=$1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *ticketRepository) IncrementVotes(ctx context.Context, id string, delta int) (*domain.Ticket, error) {
	const query = `
        UPDATE tickets SET votes=votes+$1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, delta, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}
