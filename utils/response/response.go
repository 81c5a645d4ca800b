package response

import (
	"github.com/gofiber/fiber/v2"
)

// Response is the envelope every JSON endpoint answers with
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
}

type paginated struct {
	Success    bool           `json:"success"`
	Data       interface{}    `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

type statusInfo struct {
	code    string
	message string
}

var statuses = map[int]statusInfo{
	fiber.StatusBadRequest:            {"BAD_REQUEST", "Bad request"},
	fiber.StatusUnauthorized:          {"UNAUTHORIZED", "Unauthorized"},
	fiber.StatusForbidden:             {"FORBIDDEN", "Forbidden"},
	fiber.StatusNotFound:              {"NOT_FOUND", "Resource not found"},
	fiber.StatusMethodNotAllowed:      {"METHOD_NOT_ALLOWED", "Method not allowed"},
	fiber.StatusConflict:              {"CONFLICT", "Conflict"},
	fiber.StatusRequestEntityTooLarge: {"PAYLOAD_TOO_LARGE", "Payload too large"},
	fiber.StatusTooManyRequests:       {"TOO_MANY_REQUESTS", "Too many requests"},
	fiber.StatusInternalServerError:   {"INTERNAL_ERROR", "Internal server error"},
	fiber.StatusServiceUnavailable:    {"SERVICE_UNAVAILABLE", "Service temporarily unavailable"},
}

// Code returns the machine readable error code sent for an HTTP status
func Code(status int) string {
	if info, ok := statuses[status]; ok {
		return info.code
	}
	return "ERROR"
}

func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{Success: true, Data: data})
}

func SuccessWithMessage(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{Success: true, Message: message, Data: data})
}

func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Data: data})
}

// Paginated sends one page of a list. page and limit are expected to be
// clamped already by query.Pagination.
func Paginated(c *fiber.Ctx, data interface{}, page, limit int, total int64) error {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return c.Status(fiber.StatusOK).JSON(paginated{
		Success: true,
		Data:    data,
		Pagination: PaginationMeta{
			CurrentPage: page,
			PerPage:     limit,
			Total:       total,
			TotalPages:  totalPages,
		},
	})
}

// Fail sends an error envelope. An empty message falls back to the status default.
func Fail(c *fiber.Ctx, status int, message string) error {
	return FailWithDetails(c, status, message, nil)
}

func FailWithDetails(c *fiber.Ctx, status int, message string, details interface{}) error {
	if message == "" {
		message = statuses[status].message
	}
	return c.Status(status).JSON(Response{
		Error: &ErrorDetail{Code: Code(status), Message: message, Details: details},
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusUnauthorized, message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusForbidden, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusNotFound, message)
}

func Conflict(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusConflict, message)
}

func InternalServerError(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusInternalServerError, message)
}

func ServiceUnavailable(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusServiceUnavailable, message)
}

// ValidationError answers 400 with a field name to problem map
func ValidationError(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Response{
		Error: &ErrorDetail{Code: "VALIDATION_ERROR", Message: "Validation failed", Details: fields},
	})
}
