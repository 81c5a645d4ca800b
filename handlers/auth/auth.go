package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/validation"
	"go.uber.org/zap"
)

// AuthHandler handles authentication and account self-service requests
type AuthHandler struct {
	accounts             *services.AccountService
	resets               *services.PasswordResetService
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
	log                  *zap.Logger
}

// NewAuthHandler creates a new auth handler. bruteForce may be nil.
func NewAuthHandler(accounts *services.AccountService, resets *services.PasswordResetService, bruteForce *middleware.BruteForceProtection, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:             accounts,
		resets:               resets,
		bruteForceProtection: bruteForce,
		validator:            validation.NewValidator(),
		log:                  log,
	}
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
}

// AuthResponse is returned on registration and login
type AuthResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    int64        `json:"expires_at"`
	User         UserResponse `json:"user"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
	}
}

func toAuthResponse(u *model.User, tokens *services.TokenPair) AuthResponse {
	return AuthResponse{
		Token:        tokens.Access.Token,
		RefreshToken: tokens.Refresh.Token,
		ExpiresAt:    tokens.Access.ExpiresAt.Unix(),
		User:         toUserResponse(u),
	}
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserExists):
		return response.BadRequest(c, "User already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, services.ErrWrongPassword):
		return response.BadRequest(c, "Current password is incorrect")
	case errors.Is(err, services.ErrInvalidResetCode):
		return response.BadRequest(c, "Invalid or expired code")
	case errors.Is(err, services.ErrUnsupportedFileType):
		return response.BadRequest(c, "Only JPEG, PNG, GIF and WebP images are allowed")
	case errors.Is(err, services.ErrNoAvatar):
		return response.BadRequest(c, "No avatar to remove")
	default:
		return err
	}
}
