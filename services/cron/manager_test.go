package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/auth"
	"github.com/sahilchouksey/mindmeld-api/utils/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunJobRecordsResult(t *testing.T) {
	db := testdb.New(t)
	m := NewCronManager(db, zap.NewNop())

	require.NoError(t, m.Register(
		Job{Name: "ok", Schedule: "0 0 * * * *", Run: func(context.Context) (int64, error) { return 3, nil }},
		Job{Name: "bad", Schedule: "0 0 * * * *", Run: func(context.Context) (int64, error) { return 0, errors.New("boom") }},
	))

	require.NoError(t, m.RunJob("ok"))
	require.Error(t, m.RunJob("bad"))
	require.Error(t, m.RunJob("missing"))

	var logs []model.CronJobLog
	require.NoError(t, db.Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)

	assert.Equal(t, "completed", logs[0].Status)
	assert.Equal(t, int64(3), logs[0].Affected)
	assert.NotNil(t, logs[0].CompletedAt)

	assert.Equal(t, "failed", logs[1].Status)
	assert.Equal(t, "boom", logs[1].ErrorMsg)
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	m := NewCronManager(testdb.New(t), zap.NewNop())
	err := m.Register(Job{Name: "x", Schedule: "not a schedule", Run: func(context.Context) (int64, error) { return 0, nil }})
	assert.Error(t, err)
}

func TestMaintenanceJobs(t *testing.T) {
	db := testdb.New(t)
	log := zap.NewNop()
	user := testdb.CreateUser(t, db, "alice", model.RoleUser)
	product := testdb.CreateProduct(t, db, "Go Basics", 10)

	require.NoError(t, db.Create(&model.PasswordResetToken{UserID: user.ID, OTP: "123456", ExpiresAt: time.Now().Add(-time.Minute)}).Error)
	require.NoError(t, db.Create(&model.JWTTokenBlacklist{Token: "jti-1", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute)}).Error)

	activities := services.NewActivityService(db, log)
	resets := services.NewPasswordResetService(db, nil, activities, 10*time.Minute, log)
	products := services.NewProductService(db, log)

	m := NewCronManager(db, log)
	require.NoError(t, m.Register(MaintenanceJobs(resets, auth.NewBlacklistService(db), products)...))

	require.NoError(t, m.RunJob(JobPurgeResetTokens))
	require.NoError(t, m.RunJob(JobPurgeBlacklist))
	require.NoError(t, m.RunJob(JobBackfillSlugs))

	var count int64
	db.Model(&model.PasswordResetToken{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.JWTTokenBlacklist{}).Count(&count)
	assert.Zero(t, count)

	var reloaded model.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, "go-basics", reloaded.SlugValue())
}
