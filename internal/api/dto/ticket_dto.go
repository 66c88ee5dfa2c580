package dto

import (
	"time"

	"github.com/quickdesk/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// VoteRequest payload. Vote is "up" or "down".
type VoteRequest struct {
	Vote string `json:"vote"`
}

// TicketResponse is the full ticket shape with its nested thread.
type TicketResponse struct {
	ID           string              `json:"id"`
	AuthorEmail  string              `json:"author_email"`
	AuthorName   string              `json:"author_name"`
	Subject      string              `json:"subject"`
	Description  string              `json:"description"`
	CategoryID   *string             `json:"category_id"`
	CategoryName string              `json:"category_name"`
	Status       domain.TicketStatus `json:"status"`
	Votes        int                 `json:"votes"`
	Comments     []CommentResponse   `json:"comments"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID          string    `json:"id"`
	AuthorEmail string    `json:"author_email"`
	AuthorName  string    `json:"author_name"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryResponse shape.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}
