package order

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"github.com/sahilchouksey/mindmeld-api/utils/query"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/validation"
)

// OrderHandler handles order requests
type OrderHandler struct {
	orders    *services.OrderService
	validator *validation.Validator
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orders:    orders,
		validator: validation.NewValidator(),
	}
}

// OrderItemRequest is one line of an order
type OrderItemRequest struct {
	ProductID uint `json:"product_id" validate:"required,min=1"`
	Quantity  int  `json:"quantity" validate:"omitempty,min=1,max=1000"`
}

// ShippingAddressRequest is the delivery address of an order
type ShippingAddressRequest struct {
	Line1      string `json:"line1" validate:"required,max=255"`
	Line2      string `json:"line2" validate:"omitempty,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

// CreateOrderRequest represents the request body for placing an order
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address"`
}

// UpdateStatusRequest moves an order to a new status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmptyOrder):
		return response.BadRequest(c, "Order must contain at least one item")
	case errors.Is(err, services.ErrProductNotFound):
		return response.NotFound(c, "Product not found")
	case errors.Is(err, services.ErrOrderNotFound):
		return response.NotFound(c, "Order not found")
	case errors.Is(err, services.ErrInvalidOrderStatus):
		return response.BadRequest(c, "Invalid order status")
	default:
		return err
	}
}

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if len(req.Items) == 0 {
		return respondError(c, services.ErrEmptyOrder)
	}
	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	in := services.OrderInput{
		ShippingAddress: model.ShippingAddress{
			Line1:      validation.SanitizeString(req.ShippingAddress.Line1),
			Line2:      validation.SanitizeString(req.ShippingAddress.Line2),
			City:       validation.SanitizeString(req.ShippingAddress.City),
			State:      validation.SanitizeString(req.ShippingAddress.State),
			PostalCode: validation.SanitizeString(req.ShippingAddress.PostalCode),
			Country:    validation.SanitizeString(req.ShippingAddress.Country),
		},
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, services.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.orders.Create(c.UserContext(), userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return response.Created(c, order)
}

// ListMyOrders handles GET /api/v1/orders
func (h *OrderHandler) ListMyOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	orders, err := h.orders.Mine(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, orders)
}

// ListAllOrders handles GET /api/v1/orders/admin
func (h *OrderHandler) ListAllOrders(c *fiber.Ctx) error {
	orders, err := h.orders.All(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, orders)
}

// UpdateStatus handles PATCH /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := query.UintParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid order ID")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	order, err := h.orders.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, order)
}
