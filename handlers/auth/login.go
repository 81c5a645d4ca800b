package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"go.uber.org/zap"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	ip := c.IP()

	user, tokens, err := h.accounts.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			if rerr := h.bruteForceProtection.RecordFailedAttempt(c.UserContext(), ip); rerr != nil {
				h.log.Warn("Failed to record login attempt", zap.String("ip", ip), zap.Error(rerr))
			}
		}
		return respondError(c, err)
	}

	// Clear failed attempts on successful login
	h.bruteForceProtection.RecordSuccessfulAttempt(c.UserContext(), ip)

	return response.Success(c, toAuthResponse(user, tokens))
}
