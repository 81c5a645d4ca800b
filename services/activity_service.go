package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/utils/metrics"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type clientInfoKey struct{}

type clientInfo struct {
	ip        string
	userAgent string
}

// WithClientInfo attaches the caller's address and user agent to ctx for activity records
func WithClientInfo(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, clientInfo{ip: ip, userAgent: userAgent})
}

// ClientIP returns the caller address stored by WithClientInfo
func ClientIP(ctx context.Context) string {
	info, _ := ctx.Value(clientInfoKey{}).(clientInfo)
	return info.ip
}

// ActivityEntry describes one activity record
type ActivityEntry struct {
	UserID   uint
	Type     model.ActivityType
	Details  string
	Metadata map[string]interface{}
}

// ActivityFilter narrows activity listings
type ActivityFilter struct {
	UserID *uint
	Action string
	Start  *time.Time
	End    *time.Time
	Limit  int
}

// ActionCount is one bucket of the action distribution
type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// ActivityStats summarizes activity in a period
type ActivityStats struct {
	TotalActivities    int64         `json:"total_activities"`
	UniqueUsers        int64         `json:"unique_users"`
	ActionDistribution []ActionCount `json:"action_distribution"`
}

// ActivityService writes and queries the append-only activity log
type ActivityService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(db *gorm.DB, log *zap.Logger) *ActivityService {
	return &ActivityService{db: db, log: log}
}

// Log appends an activity record. Failures are logged and counted, never returned.
func (s *ActivityService) Log(ctx context.Context, entry ActivityEntry) {
	record := model.UserActivity{
		UserID:       entry.UserID,
		ActivityType: entry.Type,
		Details:      entry.Details,
	}

	if info, ok := ctx.Value(clientInfoKey{}).(clientInfo); ok {
		record.IPAddress = info.ip
		record.UserAgent = info.userAgent
	}

	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			s.log.Warn("Dropping unencodable activity metadata", zap.Error(err))
		} else {
			record.Metadata = datatypes.JSON(raw)
		}
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		metrics.ActivityLogFailuresTotal.Inc()
		s.log.Error("Failed to record activity",
			zap.Uint("user_id", entry.UserID),
			zap.String("action", string(entry.Type)),
			zap.Error(err),
		)
	}
}

func (s *ActivityService) filtered(ctx context.Context, f ActivityFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.UserActivity{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Action != "" {
		q = q.Where("activity_type = ?", f.Action)
	}
	if f.Start != nil {
		q = q.Where("created_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("created_at <= ?", *f.End)
	}
	return q
}

// List returns activity newest first
func (s *ActivityService) List(ctx context.Context, f ActivityFilter) ([]model.UserActivity, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}

	var activities []model.UserActivity
	err := s.filtered(ctx, f).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Limit(f.Limit).
		Find(&activities).Error
	return activities, err
}

// Stats aggregates activity between optional bounds
func (s *ActivityService) Stats(ctx context.Context, start, end *time.Time) (*ActivityStats, error) {
	f := ActivityFilter{Start: start, End: end}
	stats := &ActivityStats{ActionDistribution: []ActionCount{}}

	if err := s.filtered(ctx, f).Count(&stats.TotalActivities).Error; err != nil {
		return nil, err
	}

	if err := s.filtered(ctx, f).Distinct("user_id").Count(&stats.UniqueUsers).Error; err != nil {
		return nil, err
	}

	err := s.filtered(ctx, f).
		Select("activity_type AS action, COUNT(*) AS count").
		Group("activity_type").
		Order("count DESC").
		Order("action").
		Scan(&stats.ActionDistribution).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
