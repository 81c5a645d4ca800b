package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/utils/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserFilter narrows the admin user listing
type UserFilter struct {
	Role   string
	Search string
	Offset int
	Limit  int
}

// UserUpdate holds admin changes to an account. Nil fields are left unchanged.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// UserService is the admin surface over accounts
type UserService struct {
	db        *gorm.DB
	blacklist *auth.BlacklistService
	log       *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	return &UserService{db: db, blacklist: auth.NewBlacklistService(db), log: log}
}

// List returns a page of users newest first and the total match count
func (s *UserService) List(ctx context.Context, f UserFilter) ([]model.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := q.Order("created_at DESC").Order("id DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&users).Error
	return users, total, err
}

// Get returns a user by id
func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update applies admin changes. A new password signs the user out everywhere.
func (s *UserService) Update(ctx context.Context, id uint, update UserUpdate) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Name != nil {
		updates["name"] = strings.TrimSpace(*update.Name)
	}
	if update.Email != nil {
		email := NormalizeEmail(*update.Email)
		if email != user.Email {
			var count int64
			if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ? AND id <> ?", email, id).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrEmailTaken
			}
			updates["email"] = email
		}
	}
	if update.Role != nil {
		if !model.IsValidRole(*update.Role) {
			return nil, ErrInvalidRole
		}
		updates["role"] = *update.Role
	}
	if update.Password != nil {
		hash, err := auth.HashPassword(*update.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&model.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if update.Password != nil {
			return s.blacklist.RevokeAllUserTokens(ctx, tx, id)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.Get(ctx, id)
}

// UpdateRole changes a user's role
func (s *UserService) UpdateRole(ctx context.Context, id uint, role string) (*model.User, error) {
	return s.Update(ctx, id, UserUpdate{Role: &role})
}

// Delete soft-deletes a user. Their enrollments, orders and messages are kept.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	s.log.Info("User deleted", zap.Uint("user_id", id))
	return nil
}
