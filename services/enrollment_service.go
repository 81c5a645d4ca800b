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

// Enrollment sources recorded in metrics
const (
	EnrollmentSourceDirect = "direct"
	EnrollmentSourceOrder  = "order"
)

// ProgressUpdate is a progress report. Nil fields are left unchanged.
type ProgressUpdate struct {
	Progress  *int
	Completed *bool
}

// EnrollmentService runs the enrollment and progress workflow
type EnrollmentService struct {
	db         *gorm.DB
	activities *ActivityService
	log        *zap.Logger
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(db *gorm.DB, activities *ActivityService, log *zap.Logger) *EnrollmentService {
	return &EnrollmentService{db: db, activities: activities, log: log}
}

// ClampProgress limits progress to [0, 100]
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Enroll creates the user's enrollment in a course
func (s *EnrollmentService) Enroll(ctx context.Context, userID, productID uint) (*model.Enrollment, error) {
	var product model.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	enrollment, err := s.create(ctx, userID, &product)
	if err != nil {
		return nil, err
	}

	metrics.EnrollmentsTotal.WithLabelValues(EnrollmentSourceDirect).Inc()
	s.activities.Log(ctx, ActivityEntry{
		UserID:  userID,
		Type:    model.ActivityTypeCourseEnrolled,
		Details: "Enrolled in " + product.Name,
		Metadata: map[string]interface{}{
			"product_id":   product.ID,
			"product_name": product.Name,
		},
	})

	return enrollment, nil
}

// EnrollFromOrder enrolls the user in an ordered course unless already
// enrolled. It reports whether a new enrollment was created.
func (s *EnrollmentService) EnrollFromOrder(ctx context.Context, userID uint, product *model.Product, orderID uint) (bool, error) {
	_, err := s.create(ctx, userID, product)
	if errors.Is(err, ErrAlreadyEnrolled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	metrics.EnrollmentsTotal.WithLabelValues(EnrollmentSourceOrder).Inc()
	s.activities.Log(ctx, ActivityEntry{
		UserID:  userID,
		Type:    model.ActivityTypeCourseEnrolled,
		Details: "Enrolled in " + product.Name + " (via order)",
		Metadata: map[string]interface{}{
			"product_id":   product.ID,
			"product_name": product.Name,
			"order_id":     orderID,
			"via":          "order",
		},
	})
	return true, nil
}

// create inserts the enrollment. The (user, product) unique index is the
// source of truth; the lookup only avoids a failed insert in the common case.
func (s *EnrollmentService) create(ctx context.Context, userID uint, product *model.Product) (*model.Enrollment, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ? AND product_id = ?", userID, product.ID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyEnrolled
	}

	enrollment := &model.Enrollment{
		UserID:     userID,
		ProductID:  product.ID,
		EnrolledAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	enrollment.Product = product
	return enrollment, nil
}

// List returns the user's enrollments newest first
func (s *EnrollmentService) List(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// Completed returns the user's completed enrollments, most recently updated first
func (s *EnrollmentService) Completed(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ? AND completed = ?", userID, true).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// ForProduct returns the user's enrollment in a course
func (s *EnrollmentService) ForProduct(ctx context.Context, userID, productID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}
	return &enrollment, nil
}

// Get returns an enrollment visible to the caller: its owner or an admin
func (s *EnrollmentService) Get(ctx context.Context, caller *model.User, id uint) (*model.Enrollment, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanActOn(caller, enrollment.UserID, auth.ResourceEnrollments, auth.ActionReadAny) {
		return nil, ErrForbidden
	}
	return enrollment, nil
}

func (s *EnrollmentService) load(ctx context.Context, id uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := s.db.WithContext(ctx).Preload("Product").First(&enrollment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// ReportProgress applies a progress report. Progress is clamped to [0, 100];
// completed is independent of progress. A course_completed activity is
// recorded only by the call that flips completed from false to true.
func (s *EnrollmentService) ReportProgress(ctx context.Context, caller *model.User, id uint, update ProgressUpdate) (*model.Enrollment, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanActOn(caller, enrollment.UserID, auth.ResourceEnrollments, auth.ActionWriteAny) {
		return nil, ErrForbidden
	}

	justCompleted := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if update.Progress != nil {
			err := tx.Model(&model.Enrollment{}).
				Where("id = ?", id).
				Update("progress", ClampProgress(*update.Progress)).Error
			if err != nil {
				return err
			}
		}

		if update.Completed != nil {
			if *update.Completed {
				// only one caller can observe the false -> true flip
				result := tx.Model(&model.Enrollment{}).
					Where("id = ? AND completed = ?", id, false).
					Update("completed", true)
				if result.Error != nil {
					return result.Error
				}
				justCompleted = result.RowsAffected == 1
			} else {
				err := tx.Model(&model.Enrollment{}).
					Where("id = ?", id).
					Update("completed", false).Error
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if justCompleted {
		metrics.CourseCompletionsTotal.Inc()
		productName := ""
		if updated.Product != nil {
			productName = updated.Product.Name
		}
		s.activities.Log(ctx, ActivityEntry{
			UserID:  updated.UserID,
			Type:    model.ActivityTypeCourseCompleted,
			Details: "Completed " + productName,
			Metadata: map[string]interface{}{
				"enrollment_id": updated.ID,
				"product_id":    updated.ProductID,
				"product_name":  productName,
				"reported_by":   caller.ID,
			},
		})
	}

	return updated, nil
}
