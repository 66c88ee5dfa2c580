package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdesk/helpdesk-service/internal/domain"
)

// NotificationRepository persists fanout output. Only the fanout engine
// creates records; MarkAllRead is the sole mutation.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	List(ctx context.Context) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, recipientEmail string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (recipient_email, message, ticket_id, read)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.RecipientEmail,
		notification.Message,
		notification.TicketID,
		notification.Read,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) List(ctx context.Context) ([]domain.Notification, error) {
	const query = `
        SELECT id, recipient_email, message, ticket_id, read, created_at
        FROM notifications ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.RecipientEmail,
			&notification.Message,
			&notification.TicketID,
			&notification.Read,
			&notification.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}

// MarkAllRead is idempotent: rows already read are left as-is.
func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientEmail string) error {
	const query = `
        UPDATE notifications SET read=TRUE
        WHERE recipient_email=$1 AND read=FALSE`
	_, err := r.pool.Exec(ctx, query, recipientEmail)
	return err
}
