package feedback

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"github.com/sahilchouksey/mindmeld-api/utils/query"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/validation"
)

// FeedbackHandler handles course review requests
type FeedbackHandler struct {
	feedback  *services.FeedbackService
	validator *validation.Validator
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedback *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedback:  feedback,
		validator: validation.NewValidator(),
	}
}

// SubmitRequest represents a new course review
type SubmitRequest struct {
	CourseID   uint   `json:"course_id" validate:"required,min=1"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy just-right challenging difficult"`
	Content    string `json:"content" validate:"required,max=5000"`
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrCourseNotFound):
		return response.NotFound(c, "Course not found")
	case errors.Is(err, services.ErrFeedbackExists):
		return response.BadRequest(c, "You have already submitted feedback for this course")
	case errors.Is(err, services.ErrFeedbackNotFound):
		return response.NotFound(c, "Feedback not found")
	default:
		return err
	}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	feedback, err := h.feedback.Submit(c.UserContext(), userID, services.FeedbackInput{
		CourseID:   req.CourseID,
		Rating:     req.Rating,
		Difficulty: req.Difficulty,
		Content:    validation.SanitizeString(req.Content),
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.Created(c, feedback)
}

// ListMine handles GET /api/v1/feedback/my
func (h *FeedbackHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	feedback, err := h.feedback.Mine(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, feedback)
}

// ListForCourse handles GET /api/v1/feedback/course/:courseId
func (h *FeedbackHandler) ListForCourse(c *fiber.Ctx) error {
	courseID, err := query.UintParam(c, "courseId")
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	feedback, err := h.feedback.ForCourse(c.UserContext(), courseID)
	if err != nil {
		return err
	}
	return response.Success(c, feedback)
}

// Stats handles GET /api/v1/feedback/stats
func (h *FeedbackHandler) Stats(c *fiber.Ctx) error {
	courseID, err := query.OptionalUint(c, "course")
	if err != nil {
		return response.BadRequest(c, "Invalid course")
	}

	stats, err := h.feedback.Stats(c.UserContext(), courseID)
	if err != nil {
		return err
	}
	return response.Success(c, stats)
}

// ListAll handles GET /api/v1/feedback/all
func (h *FeedbackHandler) ListAll(c *fiber.Ctx) error {
	courseID, err := query.OptionalUint(c, "course")
	if err != nil {
		return response.BadRequest(c, "Invalid course")
	}

	filter := services.FeedbackFilter{CourseID: courseID}
	if raw := c.Query("rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil || rating < 1 || rating > 5 {
			return response.BadRequest(c, "Rating must be between 1 and 5")
		}
		filter.Rating = &rating
	}
	if d := c.Query("difficulty"); d != "" {
		valid := false
		for _, known := range model.Difficulties {
			valid = valid || d == known
		}
		if !valid {
			return response.BadRequest(c, "Invalid difficulty")
		}
		filter.Difficulty = d
	}

	feedback, err := h.feedback.All(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return response.Success(c, feedback)
}

// Delete handles DELETE /api/v1/feedback/:id
func (h *FeedbackHandler) Delete(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid feedback ID")
	}

	if err := h.feedback.Delete(c.UserContext(), user, id); err != nil {
		return respondError(c, err)
	}
	return response.SuccessWithMessage(c, "Feedback deleted successfully", nil)
}
