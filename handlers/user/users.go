package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/query"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/validation"
)

// UserHandler handles the admin user management surface
type UserHandler struct {
	users     *services.UserService
	validator *validation.Validator
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{
		users:     users,
		validator: validation.NewValidator(),
	}
}

// UpdateUserRequest represents an admin update of an account
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role" validate:"omitempty,oneof=user manager admin"`
}

// UpdateRoleRequest changes only the role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user manager admin"`
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, services.ErrEmailTaken):
		return response.Conflict(c, "Email already in use")
	case errors.Is(err, services.ErrInvalidRole):
		return response.BadRequest(c, "Invalid role")
	default:
		return err
	}
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	page := query.Pagination(c, 20)

	users, total, err := h.users.List(c.UserContext(), services.UserFilter{
		Role:   c.Query("role"),
		Search: c.Query("search"),
		Offset: page.Offset(),
		Limit:  page.Limit,
	})
	if err != nil {
		return err
	}

	return response.Paginated(c, users, page.Page, page.Limit, total)
}

// GetUser handles GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, user)
}

// UpdateUser handles PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	user, err := h.users.Update(c.UserContext(), id, services.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, user)
}

// UpdateUserRole handles PATCH /api/v1/users/:id/role
func (h *UserHandler) UpdateUserRole(c *fiber.Ctx) error {
	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	user, err := h.users.UpdateRole(c.UserContext(), id, req.Role)
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, user)
}

// DeleteUser handles DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	return response.SuccessWithMessage(c, "User deleted successfully", nil)
}
