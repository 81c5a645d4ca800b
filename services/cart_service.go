package services

import (
	"context"
	"errors"

	"github.com/sahilchouksey/mindmeld-api/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartService manages per-user shopping carts
type CartService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(db *gorm.DB, log *zap.Logger) *CartService {
	return &CartService{db: db, log: log}
}

// Get returns the user's cart, or an empty one when none exists
func (s *CartService) Get(ctx context.Context, userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *CartService) ensureCart(tx *gorm.DB, userID uint) (*model.Cart, error) {
	cart := model.Cart{UserID: userID}
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cart).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// Add puts quantity units of a product in the cart, incrementing an existing line
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (*model.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&model.Product{}, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		cart, err := s.ensureCart(tx, userID)
		if err != nil {
			return err
		}

		item := model.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
			}),
		}).Create(&item).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// Update sets the quantity of a cart line. A quantity of zero or less removes it.
func (s *CartService) Update(ctx context.Context, userID, productID uint, quantity int) (*model.Cart, error) {
	var cart model.Cart
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cart.ID, productID)
	var result *gorm.DB
	if quantity <= 0 {
		result = q.Delete(&model.CartItem{})
	} else {
		result = q.Model(&model.CartItem{}).Update("quantity", quantity)
	}
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrCartItemNotFound
	}

	return s.Get(ctx, userID)
}

// Remove deletes a product line from the cart
func (s *CartService) Remove(ctx context.Context, userID, productID uint) (*model.Cart, error) {
	return s.Update(ctx, userID, productID, 0)
}

// Clear empties the user's cart
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	return clearCart(s.db.WithContext(ctx), userID)
}

func clearCart(db *gorm.DB, userID uint) error {
	return db.Where("cart_id IN (?)", db.Session(&gorm.Session{NewDB: true}).
		Model(&model.Cart{}).Select("id").Where("user_id = ?", userID)).
		Delete(&model.CartItem{}).Error
}
