package wishlist

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"github.com/sahilchouksey/mindmeld-api/utils/query"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/validation"
)

// WishlistHandler handles wishlist requests
type WishlistHandler struct {
	wishlists *services.WishlistService
	validator *validation.Validator
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlists *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{
		wishlists: wishlists,
		validator: validation.NewValidator(),
	}
}

// AddRequest saves a product
type AddRequest struct {
	ProductID uint `json:"product_id" validate:"required,min=1"`
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	wishlist, err := h.wishlists.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, wishlist)
}

// AddProduct handles POST /api/v1/wishlist
func (h *WishlistHandler) AddProduct(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req AddRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	wishlist, err := h.wishlists.Add(c.UserContext(), userID, req.ProductID)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return err
	}
	return response.Created(c, wishlist)
}

// RemoveProduct handles DELETE /api/v1/wishlist/:productId
func (h *WishlistHandler) RemoveProduct(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	productID, err := query.UintParam(c, "productId")
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	wishlist, err := h.wishlists.Remove(c.UserContext(), userID, productID)
	if err != nil {
		return err
	}
	return response.Success(c, wishlist)
}
