package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/mindmeld-api/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderLine is one requested product and quantity
type OrderLine struct {
	ProductID uint
	Quantity  int
}

// OrderInput is a new order
type OrderInput struct {
	Items           []OrderLine
	ShippingAddress model.ShippingAddress
}

// OrderService places and tracks orders
type OrderService struct {
	db          *gorm.DB
	enrollments *EnrollmentService
	log         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(db *gorm.DB, enrollments *EnrollmentService, log *zap.Logger) *OrderService {
	return &OrderService{db: db, enrollments: enrollments, log: log}
}

// Create places an order priced from the catalog. Once committed the user is
// enrolled in every ordered course and the cart is cleared.
func (s *OrderService) Create(ctx context.Context, userID uint, in OrderInput) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	// merge repeated products, keeping first-seen order
	quantities := map[uint]int{}
	var ids []uint
	for _, line := range in.Items {
		if line.Quantity < 1 {
			line.Quantity = 1
		}
		if _, seen := quantities[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}

	var products []model.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	order := &model.Order{
		UserID:          userID,
		ShippingAddress: in.ShippingAddress,
		Status:          model.OrderStatusPending,
	}
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
		}
		qty := quantities[id]
		order.Items = append(order.Items, model.OrderItem{
			ProductID: id,
			Name:      product.Name,
			Quantity:  qty,
			Price:     product.Price,
		})
		order.TotalPrice += product.Price * float64(qty)
	}

	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, err := s.enrollments.EnrollFromOrder(ctx, userID, byID[id], order.ID); err != nil {
			s.log.Error("Failed to enroll from order",
				zap.Uint("order_id", order.ID),
				zap.Uint("product_id", id),
				zap.Error(err),
			)
		}
	}

	if err := clearCart(s.db.WithContext(ctx), userID); err != nil {
		s.log.Warn("Failed to clear cart after order", zap.Uint("order_id", order.ID), zap.Error(err))
	}

	return order, nil
}

// Mine returns the user's orders newest first
func (s *OrderService) Mine(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// All returns every order newest first
func (s *OrderService) All(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// UpdateStatus moves an order to a new status
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*model.Order, error) {
	if !model.IsValidOrderStatus(status) {
		return nil, ErrInvalidOrderStatus
	}

	var order model.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&order).Update("status", status).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
