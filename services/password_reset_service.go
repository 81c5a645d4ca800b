package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/utils/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResetMailer delivers password reset codes
type ResetMailer interface {
	SendPasswordResetCode(ctx context.Context, to, name, code string, validFor time.Duration) error
}

// PasswordResetService runs the emailed one-time code reset flow
type PasswordResetService struct {
	db         *gorm.DB
	mailer     ResetMailer
	blacklist  *auth.BlacklistService
	activities *ActivityService
	validFor   time.Duration
	log        *zap.Logger
}

// NewPasswordResetService creates a new password reset service
func NewPasswordResetService(db *gorm.DB, mailer ResetMailer, activities *ActivityService, validFor time.Duration, log *zap.Logger) *PasswordResetService {
	return &PasswordResetService{
		db:         db,
		mailer:     mailer,
		blacklist:  auth.NewBlacklistService(db),
		activities: activities,
		validFor:   validFor,
		log:        log,
	}
}

// GenerateOTP returns a random six digit code in [100000, 999999]
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Request issues and mails a fresh code, replacing any earlier one.
// Unknown addresses succeed silently.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Debug("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	code, err := GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.PasswordResetToken{
			UserID:    user.ID,
			OTP:       code,
			ExpiresAt: time.Now().Add(s.validFor),
		}).Error
	})
	if err != nil {
		return err
	}

	return s.mailer.SendPasswordResetCode(ctx, user.Email, user.Name, code, s.validFor)
}

func (s *PasswordResetService) check(ctx context.Context, email, code string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidResetCode
		}
		return nil, err
	}

	var token model.PasswordResetToken
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidResetCode
		}
		return nil, err
	}

	if token.IsExpired() || subtle.ConstantTimeCompare([]byte(token.OTP), []byte(code)) != 1 {
		return nil, ErrInvalidResetCode
	}
	return &user, nil
}

// Verify reports whether code is the user's current, unexpired code
func (s *PasswordResetService) Verify(ctx context.Context, email, code string) error {
	_, err := s.check(ctx, email, code)
	return err
}

// Reset sets a new password with a valid code. The code is consumed and
// every earlier token stops working.
func (s *PasswordResetService) Reset(ctx context.Context, email, code, password string) error {
	user, err := s.check(ctx, email, code)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Update("password_hash", hash).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.PasswordResetToken{}).Error; err != nil {
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
		Details: "Reset password",
		Metadata: map[string]interface{}{
			"method": "otp",
		},
	})
	return nil
}

// PurgeExpired deletes expired reset codes
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&model.PasswordResetToken{})
	return result.RowsAffected, result.Error
}
