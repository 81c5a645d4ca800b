package activity

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/query"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
)

// ActivityHandler exposes the activity log to admins
type ActivityHandler struct {
	activities *services.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activities *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

func actionFilter(c *fiber.Ctx) (string, bool) {
	action := c.Query("action")
	if action != "" && !model.IsValidActivityType(action) {
		return "", false
	}
	return action, true
}

// ListActivities handles GET /api/v1/activities
func (h *ActivityHandler) ListActivities(c *fiber.Ctx) error {
	userID, err := query.OptionalUint(c, "user")
	if err != nil {
		return response.BadRequest(c, "Invalid user")
	}

	action, ok := actionFilter(c)
	if !ok {
		return response.BadRequest(c, "Invalid action")
	}

	start, end, err := query.DateRange(c)
	if err != nil {
		return response.BadRequest(c, "Invalid date range")
	}

	activities, err := h.activities.List(c.UserContext(), services.ActivityFilter{
		UserID: userID,
		Action: action,
		Start:  start,
		End:    end,
		Limit:  query.Limit(c, 100, 1000),
	})
	if err != nil {
		return err
	}
	return response.Success(c, activities)
}

// ListUserActivities handles GET /api/v1/activities/user/:userId
func (h *ActivityHandler) ListUserActivities(c *fiber.Ctx) error {
	userID, err := query.UintParam(c, "userId")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	action, ok := actionFilter(c)
	if !ok {
		return response.BadRequest(c, "Invalid action")
	}

	activities, err := h.activities.List(c.UserContext(), services.ActivityFilter{
		UserID: &userID,
		Action: action,
		Limit:  query.Limit(c, 50, 1000),
	})
	if err != nil {
		return err
	}
	return response.Success(c, activities)
}

// Stats handles GET /api/v1/activities/stats
func (h *ActivityHandler) Stats(c *fiber.Ctx) error {
	start, end, err := query.DateRange(c)
	if err != nil {
		return response.BadRequest(c, "Invalid date range")
	}

	stats, err := h.activities.Stats(c.UserContext(), start, end)
	if err != nil {
		return err
	}
	return response.Success(c, stats)
}
