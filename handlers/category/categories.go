package category

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/query"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/validation"
)

// CategoryHandler handles category requests
type CategoryHandler struct {
	categories *services.CategoryService
	validator  *validation.Validator
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		validator:  validation.NewValidator(),
	}
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// UpdateCategoryRequest represents the request body for updating a category
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		return response.NotFound(c, "Category not found")
	case errors.Is(err, services.ErrCategoryExists):
		return response.Conflict(c, "Category already exists")
	default:
		return err
	}
}

// ListCategories handles GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, categories)
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	category, err := h.categories.Create(c.UserContext(), validation.SanitizeString(req.Name), req.Description)
	if err != nil {
		return respondError(c, err)
	}

	return response.Created(c, category)
}

// UpdateCategory handles PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid category ID")
	}

	var req UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	category, err := h.categories.Update(c.UserContext(), id, req.Name, req.Description)
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, category)
}

// DeleteCategory handles DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid category ID")
	}

	if err := h.categories.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	return response.SuccessWithMessage(c, "Category deleted successfully", nil)
}
