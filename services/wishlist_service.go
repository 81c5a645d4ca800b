package services

import (
	"context"
	"errors"

	"github.com/sahilchouksey/mindmeld-api/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistService manages per-user sets of saved products
type WishlistService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(db *gorm.DB, log *zap.Logger) *WishlistService {
	return &WishlistService{db: db, log: log}
}

// Get returns the user's wishlist, or an empty one when none exists
func (s *WishlistService) Get(ctx context.Context, userID uint) (*model.Wishlist, error) {
	var wishlist model.Wishlist
	err := s.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("products.name") }).
		Where("user_id = ?", userID).
		First(&wishlist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.Wishlist{UserID: userID, Products: []model.Product{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// Add saves a product. Adding a saved product is a no-op.
func (s *WishlistService) Add(ctx context.Context, userID, productID uint) (*model.Wishlist, error) {
	var product model.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	wishlist := model.Wishlist{UserID: userID}
	db := s.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&wishlist).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ?", userID).First(&wishlist).Error; err != nil {
		return nil, err
	}

	// Association.Append skips join rows that already exist
	if err := db.Model(&wishlist).Association("Products").Append(&product); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// Remove unsaves a product
func (s *WishlistService) Remove(ctx context.Context, userID, productID uint) (*model.Wishlist, error) {
	var wishlist model.Wishlist
	db := s.db.WithContext(ctx)
	err := db.Where("user_id = ?", userID).First(&wishlist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.Wishlist{UserID: userID, Products: []model.Product{}}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := db.Model(&wishlist).Association("Products").Delete(&model.Product{ID: productID}); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}
