package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/validation"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	user, tokens, err := h.accounts.Register(c.UserContext(), validation.SanitizeString(req.Name), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return response.Created(c, toAuthResponse(user, tokens))
}
