package enrollment

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"github.com/sahilchouksey/mindmeld-api/utils/query"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/validation"
)

// EnrollmentHandler handles enrollment and progress requests
type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
	validator   *validation.Validator
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollments *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		validator:   validation.NewValidator(),
	}
}

// EnrollRequest represents the request body for enrolling in a course
type EnrollRequest struct {
	ProductID uint `json:"product_id" validate:"required,min=1"`
}

// ProgressRequest represents a progress report. Progress outside [0, 100] is clamped.
type ProgressRequest struct {
	Progress  *int  `json:"progress"`
	Completed *bool `json:"completed"`
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrCourseNotFound):
		return response.NotFound(c, "Course not found")
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return response.BadRequest(c, "You are already enrolled in this course")
	case errors.Is(err, services.ErrEnrollmentNotFound):
		return response.NotFound(c, "Enrollment not found")
	case errors.Is(err, services.ErrNotEnrolled):
		return response.NotFound(c, "Not enrolled")
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "Not authorized to access this enrollment")
	default:
		return err
	}
}

// Enroll handles POST /api/v1/enrollments
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	enrollment, err := h.enrollments.Enroll(c.UserContext(), userID, req.ProductID)
	if err != nil {
		return respondError(c, err)
	}

	return response.Created(c, enrollment)
}

// ListEnrollments handles GET /api/v1/enrollments
func (h *EnrollmentHandler) ListEnrollments(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	enrollments, err := h.enrollments.List(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, enrollments)
}

// ListCompleted handles GET /api/v1/enrollments/completed
func (h *EnrollmentHandler) ListCompleted(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	enrollments, err := h.enrollments.Completed(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, enrollments)
}

// GetForProduct handles GET /api/v1/enrollments/product/:productId
func (h *EnrollmentHandler) GetForProduct(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	productID, err := query.UintParam(c, "productId")
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	enrollment, err := h.enrollments.ForProduct(c.UserContext(), userID, productID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, enrollment)
}

// GetEnrollment handles GET /api/v1/enrollments/:id
func (h *EnrollmentHandler) GetEnrollment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment ID")
	}

	enrollment, err := h.enrollments.Get(c.UserContext(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, enrollment)
}

// UpdateProgress handles PUT /api/v1/enrollments/:id
func (h *EnrollmentHandler) UpdateProgress(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment ID")
	}

	var req ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	enrollment, err := h.enrollments.ReportProgress(c.UserContext(), user, id, services.ProgressUpdate{
		Progress:  req.Progress,
		Completed: req.Completed,
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, enrollment)
}
