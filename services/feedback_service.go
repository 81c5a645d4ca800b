package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sahilchouksey/mindmeld-api/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const feedbackStatsTTL = 10 * time.Minute

// JSONCache is the subset of the Redis cache used for computed results
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// FeedbackInput is a new course review
type FeedbackInput struct {
	CourseID   uint
	Rating     int
	Difficulty string
	Content    string
}

// FeedbackFilter narrows the admin feedback listing
type FeedbackFilter struct {
	CourseID   *uint
	Rating     *int
	Difficulty string
}

// FeedbackStats summarizes ratings and difficulty votes
type FeedbackStats struct {
	TotalFeedback          int64            `json:"total_feedback"`
	AverageRating          float64          `json:"average_rating"`
	RatingDistribution     map[string]int64 `json:"rating_distribution"`
	DifficultyDistribution map[string]int64 `json:"difficulty_distribution"`
}

// FeedbackService manages course reviews
type FeedbackService struct {
	db         *gorm.DB
	activities *ActivityService
	cache      JSONCache
	log        *zap.Logger
}

// NewFeedbackService creates a new feedback service. cache may be nil.
func NewFeedbackService(db *gorm.DB, activities *ActivityService, cache JSONCache, log *zap.Logger) *FeedbackService {
	return &FeedbackService{db: db, activities: activities, cache: cache, log: log}
}

// Submit stores the user's review of a course, one per course
func (s *FeedbackService) Submit(ctx context.Context, userID uint, in FeedbackInput) (*model.Feedback, error) {
	var course model.Product
	if err := s.db.WithContext(ctx).First(&course, in.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&model.Feedback{}).
		Where("user_id = ? AND course_id = ?", userID, in.CourseID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrFeedbackExists
	}

	feedback := &model.Feedback{
		UserID:     userID,
		CourseID:   in.CourseID,
		Rating:     in.Rating,
		Difficulty: in.Difficulty,
		Content:    in.Content,
	}
	if err := s.db.WithContext(ctx).Create(feedback).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrFeedbackExists
		}
		return nil, err
	}
	feedback.Course = &course

	s.invalidateStats(ctx, in.CourseID)
	s.activities.Log(ctx, ActivityEntry{
		UserID:  userID,
		Type:    model.ActivityTypeFeedbackSubmitted,
		Details: "Submitted feedback for " + course.Name,
		Metadata: map[string]interface{}{
			"course_id":  in.CourseID,
			"rating":     in.Rating,
			"difficulty": in.Difficulty,
		},
	})

	return feedback, nil
}

// Mine returns the user's reviews newest first
func (s *FeedbackService) Mine(ctx context.Context, userID uint) ([]model.Feedback, error) {
	var feedback []model.Feedback
	err := s.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&feedback).Error
	return feedback, err
}

// ForCourse returns a course's reviews newest first
func (s *FeedbackService) ForCourse(ctx context.Context, courseID uint) ([]model.Feedback, error) {
	var feedback []model.Feedback
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&feedback).Error
	return feedback, err
}

// All returns every review matching f, newest first
func (s *FeedbackService) All(ctx context.Context, f FeedbackFilter) ([]model.Feedback, error) {
	q := s.db.WithContext(ctx).Preload("User").Preload("Course")
	if f.CourseID != nil {
		q = q.Where("course_id = ?", *f.CourseID)
	}
	if f.Rating != nil {
		q = q.Where("rating = ?", *f.Rating)
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}

	var feedback []model.Feedback
	err := q.Order("created_at DESC").Order("id DESC").Find(&feedback).Error
	return feedback, err
}

// Delete removes a review on behalf of an admin
func (s *FeedbackService) Delete(ctx context.Context, caller *model.User, id uint) error {
	var feedback model.Feedback
	if err := s.db.WithContext(ctx).First(&feedback, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFeedbackNotFound
		}
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&feedback).Error; err != nil {
		return err
	}

	s.invalidateStats(ctx, feedback.CourseID)
	s.activities.Log(ctx, ActivityEntry{
		UserID:  caller.ID,
		Type:    model.ActivityTypeFeedbackDeleted,
		Details: fmt.Sprintf("Deleted feedback %d", feedback.ID),
		Metadata: map[string]interface{}{
			"feedback_id": feedback.ID,
			"course_id":   feedback.CourseID,
			"author_id":   feedback.UserID,
		},
	})
	return nil
}

// Stats aggregates reviews, across all courses when courseID is nil
func (s *FeedbackService) Stats(ctx context.Context, courseID *uint) (*FeedbackStats, error) {
	key := statsKey(courseID)
	if s.cache != nil {
		var cached FeedbackStats
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	q := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&model.Feedback{})
		if courseID != nil {
			q = q.Where("course_id = ?", *courseID)
		}
		return q
	}

	stats := &FeedbackStats{
		RatingDistribution:     map[string]int64{},
		DifficultyDistribution: map[string]int64{},
	}
	for r := 1; r <= 5; r++ {
		stats.RatingDistribution[strconv.Itoa(r)] = 0
	}
	for _, d := range model.Difficulties {
		stats.DifficultyDistribution[d] = 0
	}

	var ratings []struct {
		Rating int
		Count  int64
	}
	if err := q().Select("rating, COUNT(*) AS count").Group("rating").Scan(&ratings).Error; err != nil {
		return nil, err
	}

	var sum int64
	for _, r := range ratings {
		stats.TotalFeedback += r.Count
		sum += int64(r.Rating) * r.Count
		stats.RatingDistribution[strconv.Itoa(r.Rating)] = r.Count
	}
	if stats.TotalFeedback > 0 {
		avg := float64(sum) / float64(stats.TotalFeedback)
		stats.AverageRating = math.Round(avg*10) / 10
	}

	var difficulties []struct {
		Difficulty string
		Count      int64
	}
	if err := q().Select("difficulty, COUNT(*) AS count").Group("difficulty").Scan(&difficulties).Error; err != nil {
		return nil, err
	}
	for _, d := range difficulties {
		stats.DifficultyDistribution[d.Difficulty] = d.Count
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, stats, feedbackStatsTTL); err != nil {
			s.log.Warn("Failed to cache feedback stats", zap.Error(err))
		}
	}

	return stats, nil
}

func (s *FeedbackService) invalidateStats(ctx context.Context, courseID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsKey(nil), statsKey(&courseID)); err != nil {
		s.log.Warn("Failed to invalidate feedback stats", zap.Error(err))
	}
}

func statsKey(courseID *uint) string {
	if courseID == nil {
		return "feedback:stats:all"
	}
	return fmt.Sprintf("feedback:stats:course:%d", *courseID)
}
