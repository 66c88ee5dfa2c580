// Package seed provisions default accounts and categories on first run
// against an empty store.
package seed

import (
	"context"

	"go.uber.org/zap"

	"github.com/quickdesk/helpdesk-service/internal/auth"
	"github.com/quickdesk/helpdesk-service/internal/config"
	"github.com/quickdesk/helpdesk-service/internal/domain"
	"github.com/quickdesk/helpdesk-service/internal/repository"
)

// Run seeds default users and categories when the user table is empty.
// Non-empty stores are left untouched.
func Run(ctx context.Context, cfg config.Config, users repository.UserRepository, categories repository.CategoryRepository, logger *zap.Logger) error {
	if !cfg.Seed.Enabled {
		return nil
	}

	existing, err := users.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	logger.Info("store is empty; seeding default users and categories")

	defaults := []struct {
		name     string
		email    string
		password string
		role     domain.Role
	}{
		{"Admin", "admin@gmail.com", cfg.Seed.AdminPassword, domain.RoleAdmin},
		{"Agent 1", "agent1@gmail.com", cfg.Seed.AgentPassword, domain.RoleSupportAgent},
		{"Agent 2", "agent2@gmail.com", cfg.Seed.AgentPassword, domain.RoleSupportAgent},
		{"User 1", "user1@gmail.com", cfg.Seed.UserPassword, domain.RoleEndUser},
		{"User 2", "user2@gmail.com", cfg.Seed.UserPassword, domain.RoleEndUser},
	}

	for _, entry := range defaults {
		hash, err := auth.HashPassword(entry.password, cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		user := &domain.User{
			Name:         entry.name,
			Email:        entry.email,
			PasswordHash: hash,
			Role:         entry.role,
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
	}

	for _, name := range []string{"Technical", "Billing"} {
		if err := categories.Create(ctx, &domain.Category{Name: name}); err != nil {
			return err
		}
	}

	logger.Info("default users and categories created")
	return nil
}
