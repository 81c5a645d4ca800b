package services

import (
	"context"
	"errors"
	"time"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/utils/auth"
	"github.com/sahilchouksey/mindmeld-api/utils/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageInput is a new direct message
type MessageInput struct {
	To      uint
	Subject string
	Content string
}

// MessageService delivers direct messages between users
type MessageService struct {
	db         *gorm.DB
	activities *ActivityService
	log        *zap.Logger
}

// NewMessageService creates a new message service
func NewMessageService(db *gorm.DB, activities *ActivityService, log *zap.Logger) *MessageService {
	return &MessageService{db: db, activities: activities, log: log}
}

// Send delivers a message if the sender's role may address the recipient's role
func (s *MessageService) Send(ctx context.Context, sender *model.User, in MessageInput) (*model.Message, error) {
	var recipient model.User
	if err := s.db.WithContext(ctx).First(&recipient, in.To).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	if !auth.CanMessage(sender.Role, recipient.Role) {
		s.log.Debug("Message blocked by role policy",
			zap.String("from_role", sender.Role),
			zap.String("to_role", recipient.Role),
		)
		return nil, ErrRecipientForbidden
	}

	message := &model.Message{
		FromID:  sender.ID,
		ToID:    recipient.ID,
		Subject: in.Subject,
		Content: in.Content,
	}
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	message.From = sender
	message.To = &recipient

	metrics.MessagesSentTotal.Inc()
	s.activities.Log(ctx, ActivityEntry{
		UserID:  sender.ID,
		Type:    model.ActivityTypeMessageSent,
		Details: "Sent message to " + recipient.Name,
		Metadata: map[string]interface{}{
			"message_id":   message.ID,
			"recipient_id": recipient.ID,
			"subject":      in.Subject,
		},
	})

	return message, nil
}

// Received returns the user's inbox newest first
func (s *MessageService) Received(ctx context.Context, userID uint, unreadOnly bool) ([]model.Message, error) {
	q := s.db.WithContext(ctx).Preload("From").Where("to_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	var messages []model.Message
	err := q.Order("created_at DESC").Order("id DESC").Find(&messages).Error
	return messages, err
}

// Sent returns the user's outbox newest first
func (s *MessageService) Sent(ctx context.Context, userID uint) ([]model.Message, error) {
	var messages []model.Message
	err := s.db.WithContext(ctx).
		Preload("To").
		Where("from_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&messages).Error
	return messages, err
}

func (s *MessageService) load(ctx context.Context, id uint) (*model.Message, error) {
	var message model.Message
	if err := s.db.WithContext(ctx).Preload("From").Preload("To").First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// Get returns a message to its sender or recipient. Opening it as the
// recipient marks it read.
func (s *MessageService) Get(ctx context.Context, userID, id uint) (*model.Message, error) {
	message, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if message.FromID != userID && message.ToID != userID {
		return nil, ErrForbidden
	}

	if message.ToID == userID && !message.Read {
		if err := s.markRead(ctx, message); err != nil {
			return nil, err
		}
	}
	return message, nil
}

// MarkRead marks a message read on behalf of its recipient
func (s *MessageService) MarkRead(ctx context.Context, userID, id uint) (*model.Message, error) {
	message, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if message.ToID != userID {
		return nil, ErrForbidden
	}
	if !message.Read {
		if err := s.markRead(ctx, message); err != nil {
			return nil, err
		}
	}
	return message, nil
}

func (s *MessageService) markRead(ctx context.Context, message *model.Message) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", message.ID).
		Updates(map[string]interface{}{"read": true, "read_at": now}).Error
	if err != nil {
		return err
	}
	message.Read = true
	message.ReadAt = &now
	return nil
}

// Delete removes a message on behalf of its sender or recipient
func (s *MessageService) Delete(ctx context.Context, userID, id uint) error {
	var message model.Message
	if err := s.db.WithContext(ctx).First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if message.FromID != userID && message.ToID != userID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Delete(&message).Error
}

// Recipients lists the users the sender may address, sorted by name
func (s *MessageService) Recipients(ctx context.Context, sender *model.User) ([]model.User, error) {
	roles := auth.MessageRecipientRoles(sender.Role)
	users := []model.User{}
	if len(roles) == 0 {
		return users, nil
	}

	err := s.db.WithContext(ctx).
		Where("role IN ? AND id <> ?", roles, sender.ID).
		Order("name").
		Find(&users).Error
	return users, err
}
