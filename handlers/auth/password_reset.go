package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
)

const resetRequestedMessage = "If the email exists, a reset code has been sent"

// ForgotPasswordRequest represents a password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest checks a reset code
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ResetPasswordRequest represents a password reset with a code
type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,min=8"`
}

// ForgotPassword handles POST /api/v1/auth/password/forgot
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	if err := h.resets.Request(c.UserContext(), req.Email); err != nil {
		return err
	}

	// Don't reveal if email exists
	return response.SuccessWithMessage(c, resetRequestedMessage, nil)
}

// VerifyOTP handles POST /api/v1/auth/password/verify-otp
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	if err := h.resets.Verify(c.UserContext(), req.Email, req.OTP); err != nil {
		return respondError(c, err)
	}

	return response.SuccessWithMessage(c, "Code verified", nil)
}

// ResetPassword handles POST /api/v1/auth/password/reset
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	if err := h.resets.Reset(c.UserContext(), req.Email, req.OTP, req.Password); err != nil {
		return respondError(c, err)
	}

	return response.SuccessWithMessage(c, "Password has been reset. Please sign in.", nil)
}
