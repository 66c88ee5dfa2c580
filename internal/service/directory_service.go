package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/quickdesk/helpdesk-service/internal/domain"
	"github.com/quickdesk/helpdesk-service/internal/repository"
	apperrors "github.com/quickdesk/helpdesk-service/pkg/util"
)

// DirectoryService owns the admin-only mutations over users and
// categories. The role check lives here so the HTTP guard is not the
// only line of defense.
type DirectoryService struct {
	users      repository.UserRepository
	categories repository.CategoryRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(users repository.UserRepository, categories repository.CategoryRepository) *DirectoryService {
	return &DirectoryService{users: users, categories: categories}
}

func requireAdmin(actor *domain.User) error {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin required")
	}
	return nil
}

// UpdateUserRole changes another user's role. Admins cannot demote
// themselves, matching the admin panel which renders the own row
// read-only.
func (s *DirectoryService) UpdateUserRole(ctx context.Context, actor *domain.User, userID string, role domain.Role) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}
	if actor.ID == userID {
		return nil, apperrors.NewForbidden("cannot change own role")
	}

	user, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. Historical tickets and comments keep
// dangling author references; projections render them as "Unknown".
func (s *DirectoryService) DeleteUser(ctx context.Context, actor *domain.User, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == userID {
		return apperrors.NewForbidden("cannot delete own account")
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return err
	}
	return nil
}

// AddCategory creates a category with a unique, non-empty name.
func (s *DirectoryService) AddCategory(ctx context.Context, actor *domain.User, name string) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name required", nil)
	}

	existing, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, category := range existing {
		if strings.EqualFold(category.Name, name) {
			return nil, apperrors.NewConflict("category already exists", map[string]any{"name": name})
		}
	}

	category := &domain.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category without cascading; tickets that
// referenced it render the category as "N/A".
func (s *DirectoryService) DeleteCategory(ctx context.Context, actor *domain.User, categoryID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	if err := s.categories.Delete(ctx, categoryID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("category", map[string]any{"id": categoryID})
		}
		return err
	}
	return nil
}
