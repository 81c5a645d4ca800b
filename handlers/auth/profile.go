package auth

import (
	"bytes"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/validation"
)

const maxAvatarSize = 5 << 20

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=2048"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}
	return response.Success(c, toUserResponse(user))
}

// UpdateProfile handles PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	if req.Name != nil {
		name := validation.SanitizeString(*req.Name)
		req.Name = &name
	}

	updated, err := h.accounts.UpdateProfile(c.UserContext(), user, services.ProfileUpdate{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, toUserResponse(updated))
}

// ChangePassword handles POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	if err := h.accounts.ChangePassword(c.UserContext(), user, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}

	return response.SuccessWithMessage(c, "Password changed successfully. Please sign in again.", nil)
}

// UploadAvatar handles POST /api/v1/auth/upload-avatar
func (h *AuthHandler) UploadAvatar(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return response.BadRequest(c, "Avatar file is required")
	}
	if file.Size > maxAvatarSize {
		return response.BadRequest(c, "Avatar must be 5MB or smaller")
	}

	f, err := file.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAvatarSize+1))
	if err != nil {
		return response.BadRequest(c, "Failed to read uploaded file")
	}

	updated, err := h.accounts.SetAvatar(c.UserContext(), user, bytes.NewReader(data), file.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, toUserResponse(updated))
}

// RemoveAvatar handles DELETE /api/v1/auth/upload-avatar
func (h *AuthHandler) RemoveAvatar(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	updated, err := h.accounts.RemoveAvatar(c.UserContext(), user)
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, toUserResponse(updated))
}
