package cart

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"github.com/sahilchouksey/mindmeld-api/utils/query"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/validation"
)

// CartHandler handles shopping cart requests
type CartHandler struct {
	carts     *services.CartService
	validator *validation.Validator
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *services.CartService) *CartHandler {
	return &CartHandler{
		carts:     carts,
		validator: validation.NewValidator(),
	}
}

// AddItemRequest adds units of a product. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID uint `json:"product_id" validate:"required,min=1"`
	Quantity  int  `json:"quantity" validate:"omitempty,min=1,max=1000"`
}

// UpdateItemRequest sets the quantity of a line; zero or less removes it
type UpdateItemRequest struct {
	ProductID uint `json:"product_id" validate:"required,min=1"`
	Quantity  int  `json:"quantity" validate:"max=1000"`
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		return response.NotFound(c, "Product not found")
	case errors.Is(err, services.ErrCartNotFound):
		return response.NotFound(c, "Cart not found")
	case errors.Is(err, services.ErrCartItemNotFound):
		return response.NotFound(c, "Item not found in cart")
	default:
		return err
	}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	cart, err := h.carts.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, cart)
}

// AddItem handles POST /api/v1/cart
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.carts.Add(c.UserContext(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return response.Created(c, cart)
}

// UpdateItem handles PUT /api/v1/cart/item
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	cart, err := h.carts.Update(c.UserContext(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, cart)
}

// RemoveItem handles DELETE /api/v1/cart/item/:productId
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	productID, err := query.UintParam(c, "productId")
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	cart, err := h.carts.Remove(c.UserContext(), userID, productID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, cart)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	if err := h.carts.Clear(c.UserContext(), userID); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "Cart cleared", nil)
}
