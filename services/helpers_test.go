package services

import (
	"context"
	"testing"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/utils/testdb"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	log        *zap.Logger
	activities *ActivityService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	log := zap.NewNop()
	return &fixture{db: db, log: log, activities: NewActivityService(db, log)}
}

func (f *fixture) countActivities(t *testing.T, userID uint, action model.ActivityType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.UserActivity{}).
		Where("user_id = ? AND activity_type = ?", userID, action).
		Count(&n).Error)
	return n
}

func ptr[T any](v T) *T { return &v }

var bg = context.Background()
