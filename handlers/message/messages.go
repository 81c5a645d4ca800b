package message

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"github.com/sahilchouksey/mindmeld-api/utils/query"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/validation"
)

// MessageHandler handles direct message requests
type MessageHandler struct {
	messages  *services.MessageService
	validator *validation.Validator
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{
		messages:  messages,
		validator: validation.NewValidator(),
	}
}

// SendRequest represents a new message
type SendRequest struct {
	To      uint   `json:"to" validate:"required,min=1"`
	Subject string `json:"subject" validate:"required,max=255"`
	Content string `json:"content" validate:"required,max=10000"`
}

// RecipientResponse is a user the caller may message
type RecipientResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrRecipientNotFound):
		return response.NotFound(c, "Recipient not found")
	case errors.Is(err, services.ErrRecipientForbidden):
		return response.Forbidden(c, "You are not allowed to message this user")
	case errors.Is(err, services.ErrMessageNotFound):
		return response.NotFound(c, "Message not found")
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "Not authorized to access this message")
	default:
		return err
	}
}

// Send handles POST /api/v1/messages
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req SendRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	message, err := h.messages.Send(c.UserContext(), user, services.MessageInput{
		To:      req.To,
		Subject: validation.SanitizeString(req.Subject),
		Content: validation.SanitizeString(req.Content),
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.Created(c, message)
}

// ListReceived handles GET /api/v1/messages/received
func (h *MessageHandler) ListReceived(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	messages, err := h.messages.Received(c.UserContext(), userID, query.Bool(c, "unreadOnly"))
	if err != nil {
		return err
	}
	return response.Success(c, messages)
}

// ListSent handles GET /api/v1/messages/sent
func (h *MessageHandler) ListSent(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	messages, err := h.messages.Sent(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, messages)
}

// ListRecipients handles GET /api/v1/messages/users
func (h *MessageHandler) ListRecipients(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	users, err := h.messages.Recipients(c.UserContext(), user)
	if err != nil {
		return err
	}

	recipients := make([]RecipientResponse, len(users))
	for i, u := range users {
		recipients[i] = RecipientResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, AvatarURL: u.AvatarURL}
	}
	return response.Success(c, recipients)
}

// GetMessage handles GET /api/v1/messages/:id
func (h *MessageHandler) GetMessage(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid message ID")
	}

	message, err := h.messages.Get(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, message)
}

// MarkRead handles PUT /api/v1/messages/:id/read
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid message ID")
	}

	message, err := h.messages.MarkRead(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, message)
}

// DeleteMessage handles DELETE /api/v1/messages/:id
func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid message ID")
	}

	if err := h.messages.Delete(c.UserContext(), userID, id); err != nil {
		return respondError(c, err)
	}
	return response.SuccessWithMessage(c, "Message deleted successfully", nil)
}
