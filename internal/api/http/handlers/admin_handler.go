package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/helpdesk-service/internal/api/dto"
	"github.com/quickdesk/helpdesk-service/internal/auth"
	"github.com/quickdesk/helpdesk-service/internal/state"
	apperrors "github.com/quickdesk/helpdesk-service/pkg/util"
)

// AdminHandler exposes the admin panel mutations. Routes are mounted
// behind RequireRole(Admin); the directory service re-checks the actor.
type AdminHandler struct {
	cache *state.Cache
}

// NewAdminHandler constructs handler.
func NewAdminHandler(cache *state.Cache) *AdminHandler {
	return &AdminHandler{cache: cache}
}

// ListUsers handles GET /api/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	snap := h.cache.Snapshot()
	items := make([]dto.UserResponse, 0, len(snap.Users))
	for i := range snap.Users {
		items = append(items, dto.NewUserResponse(&snap.Users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateUserRole handles PUT /api/users/:id/role.
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.cache.UpdateUserRole(c.Context(), actor, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// DeleteUser handles DELETE /api/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.cache.DeleteUser(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateCategory handles POST /api/categories.
func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	category, err := h.cache.AddCategory(c.Context(), actor, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.CategoryResponse{ID: category.ID, Name: category.Name},
	})
}

// DeleteCategory handles DELETE /api/categories/:id.
func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.cache.DeleteCategory(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
