package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/services/storage"
	"github.com/sahilchouksey/mindmeld-api/utils/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenPair is the result of a successful sign-in
type TokenPair struct {
	Access  *auth.IssuedToken
	Refresh *auth.IssuedToken
}

// ProfileUpdate holds self-service profile changes. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name      *string
	AvatarURL *string
}

// AccountService handles registration, sign-in and self-service profile changes
type AccountService struct {
	db         *gorm.DB
	jwt        *auth.JWTManager
	blacklist  *auth.BlacklistService
	files      storage.FileStore
	activities *ActivityService
	log        *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(db *gorm.DB, jwt *auth.JWTManager, files storage.FileStore, activities *ActivityService, log *zap.Logger) *AccountService {
	return &AccountService{
		db:         db,
		jwt:        jwt,
		blacklist:  auth.NewBlacklistService(db),
		files:      files,
		activities: activities,
		log:        log,
	}
}

// NormalizeEmail lowercases and trims an address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user-role account and signs it in
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*model.User, *TokenPair, error) {
	email = NormalizeEmail(email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, nil, err
	}
	if count > 0 {
		return nil, nil, ErrUserExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrUserExists
		}
		return nil, nil, err
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("User registered", zap.Uint("user_id", user.ID))
	return user, tokens, nil
}

// Authenticate checks credentials and signs the user in
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*model.User, *TokenPair, error) {
	email = NormalizeEmail(email)

	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issue(&user)
	if err != nil {
		return nil, nil, err
	}

	s.activities.Log(ctx, ActivityEntry{
		UserID:  user.ID,
		Type:    model.ActivityTypeLogin,
		Details: "Logged in",
		Metadata: map[string]interface{}{
			"email":      user.Email,
			"role":       user.Role,
			"ip_address": ClientIP(ctx),
		},
	})

	return &user, tokens, nil
}

func (s *AccountService) issue(user *model.User) (*TokenPair, error) {
	access, err := s.jwt.GenerateAccessToken(user.ID, user.Role, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Role, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*auth.IssuedToken, error) {
	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, auth.ErrInvalidToken
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}

	return s.jwt.RefreshAccessToken(refreshToken, user.Role, user.TokenVersion)
}

// Logout revokes the presented access token
func (s *AccountService) Logout(ctx context.Context, user *model.User, claims *auth.Claims) error {
	if err := s.blacklist.RevokeToken(ctx, claims.ID, user.ID, claims.ExpiresAt.Time, "logout"); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}

	s.activities.Log(ctx, ActivityEntry{
		UserID:  user.ID,
		Type:    model.ActivityTypeLogout,
		Details: "Logged out",
	})
	return nil
}

// UpdateProfile applies self-service profile changes
func (s *AccountService) UpdateProfile(ctx context.Context, user *model.User, update ProfileUpdate) (*model.User, error) {
	oldName := user.Name
	updates := map[string]interface{}{}
	if update.Name != nil {
		updates["name"] = strings.TrimSpace(*update.Name)
	}
	if update.AvatarURL != nil {
		updates["avatar_url"] = *update.AvatarURL
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	var updated model.User
	if err := s.db.WithContext(ctx).First(&updated, user.ID).Error; err != nil {
		return nil, err
	}

	if updated.Name != oldName {
		s.activities.Log(ctx, ActivityEntry{
			UserID:  user.ID,
			Type:    model.ActivityTypeProfileUpdated,
			Details: "Updated profile",
			Metadata: map[string]interface{}{
				"old_name": oldName,
				"new_name": updated.Name,
			},
		})
	}

	return &updated, nil
}

// ChangePassword replaces the password after checking the current one.
// Every token issued before the change stops working.
func (s *AccountService) ChangePassword(ctx context.Context, user *model.User, current, next string) error {
	if err := auth.VerifyPassword(user.PasswordHash, current); err != nil {
		return ErrWrongPassword
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return s.blacklist.RevokeAllUserTokens(ctx, tx, user.ID)
	})
	if err != nil {
		return err
	}

	s.activities.Log(ctx, ActivityEntry{
		UserID:  user.ID,
		Type:    model.ActivityTypePasswordChanged,
		Details: "Changed password",
	})
	return nil
}

// SetAvatar stores a new avatar image and deletes the previous one
func (s *AccountService) SetAvatar(ctx context.Context, user *model.User, data io.ReadSeeker, contentType string) (*model.User, error) {
	ext, err := storage.ImageExtension(contentType)
	if err != nil {
		return nil, ErrUnsupportedFileType
	}

	url, err := s.files.Save(ctx, storage.NewAvatarKey(user.ID, ext), data, contentType)
	if err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Update("avatar_url", url).Error; err != nil {
		if derr := s.files.Delete(ctx, url); derr != nil {
			s.log.Warn("Failed to remove orphaned avatar", zap.String("url", url), zap.Error(derr))
		}
		return nil, err
	}

	s.deleteAvatarFile(ctx, user.ID, user.AvatarURL)

	user.AvatarURL = url
	return user, nil
}

// RemoveAvatar clears the avatar and deletes its file
func (s *AccountService) RemoveAvatar(ctx context.Context, user *model.User) (*model.User, error) {
	if user.AvatarURL == "" {
		return nil, ErrNoAvatar
	}

	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Update("avatar_url", "").Error; err != nil {
		return nil, err
	}

	s.deleteAvatarFile(ctx, user.ID, user.AvatarURL)

	user.AvatarURL = ""
	return user, nil
}

func (s *AccountService) deleteAvatarFile(ctx context.Context, userID uint, url string) {
	if url == "" {
		return
	}
	// the profile endpoint accepts any URL, so only files uploaded for this user are removed
	if !storage.IsAvatarOf(url, userID) {
		s.log.Debug("Skipping delete of avatar not issued for user", zap.Uint("user_id", userID), zap.String("url", url))
		return
	}
	if err := s.files.Delete(ctx, url); err != nil && !errors.Is(err, storage.ErrForeignURL) {
		s.log.Warn("Failed to delete previous avatar", zap.String("url", url), zap.Error(err))
	}
}
