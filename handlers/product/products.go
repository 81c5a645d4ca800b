package product

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/query"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/validation"
)

// ProductHandler handles course catalog requests
type ProductHandler struct {
	products  *services.ProductService
	validator *validation.Validator
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{
		products:  products,
		validator: validation.NewValidator(),
	}
}

// ProductRequest is the body of product create and update requests.
// name and price are required on create.
type ProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Slug        *string  `json:"slug" validate:"omitempty,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,min=0"`
	CategoryID  *uint    `json:"category_id" validate:"omitempty,min=1"`
	Image       *string  `json:"image" validate:"omitempty,max=2048"`
	Stock       *int     `json:"stock" validate:"omitempty,min=0"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=50"`
	IsFeatured  *bool    `json:"is_featured"`
}

// CreateProductRequest requires the fields a new product cannot lack
type CreateProductRequest struct {
	Name  *string  `json:"name" validate:"required"`
	Price *float64 `json:"price" validate:"required"`
}

func (r ProductRequest) input() services.ProductInput {
	in := services.ProductInput{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Price:       r.Price,
		CategoryID:  r.CategoryID,
		Image:       r.Image,
		Stock:       r.Stock,
		Tags:        r.Tags,
		IsFeatured:  r.IsFeatured,
	}
	if in.Name != nil {
		name := validation.SanitizeString(*in.Name)
		in.Name = &name
	}
	return in
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		return response.NotFound(c, "Product not found")
	case errors.Is(err, services.ErrProductInvalid):
		return response.BadRequest(c, "Name and price are required")
	case errors.Is(err, services.ErrCategoryNotFound):
		return response.NotFound(c, "Category not found")
	case errors.Is(err, services.ErrSlugTaken):
		return response.Conflict(c, "Slug already in use")
	default:
		return err
	}
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	categoryID, err := query.OptionalUint(c, "category")
	if err != nil {
		return response.BadRequest(c, "Invalid category")
	}

	products, err := h.products.List(c.UserContext(), services.ProductFilter{
		CategoryID:         categoryID,
		FeaturedOnly:       query.Bool(c, "featured"),
		IncludeEnrollments: query.Bool(c, "includeEnrollments"),
		Search:             c.Query("search"),
	})
	if err != nil {
		return err
	}

	return response.Success(c, products)
}

// GetProduct handles GET /api/v1/products/:id, where id may also be a slug
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, product)
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(CreateProductRequest{Name: req.Name, Price: req.Price}); fields != nil {
		return response.ValidationError(c, fields)
	}
	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	product, err := h.products.Create(c.UserContext(), req.input())
	if err != nil {
		return respondError(c, err)
	}

	return response.Created(c, product)
}

// UpdateProduct handles PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	product, err := h.products.Update(c.UserContext(), id, req.input())
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	if err := h.products.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	return response.SuccessWithMessage(c, "Product deleted successfully", nil)
}
