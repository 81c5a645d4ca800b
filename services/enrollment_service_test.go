package services

import (
	"encoding/json"
	"testing"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/utils/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollOnce(t *testing.T) {
	fx := newFixture(t)
	enrollments := NewEnrollmentService(fx.db, fx.activities, fx.log)
	user := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)
	course := testdb.CreateProduct(t, fx.db, "Go Basics", 10)

	e, err := enrollments.Enroll(bg, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Progress)
	assert.False(t, e.Completed)
	assert.False(t, e.EnrolledAt.IsZero())

	_, err = enrollments.Enroll(bg, user.ID, course.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	var rows int64
	fx.db.Model(&model.Enrollment{}).Where("user_id = ? AND product_id = ?", user.ID, course.ID).Count(&rows)
	assert.Equal(t, int64(1), rows)
	assert.Equal(t, int64(1), fx.countActivities(t, user.ID, model.ActivityTypeCourseEnrolled))

	_, err = enrollments.Enroll(bg, user.ID, 9999)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestEnrollmentUniqueIndexBackstop(t *testing.T) {
	fx := newFixture(t)
	user := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)
	course := testdb.CreateProduct(t, fx.db, "Go Basics", 10)

	require.NoError(t, fx.db.Create(&model.Enrollment{UserID: user.ID, ProductID: course.ID}).Error)
	err := fx.db.Create(&model.Enrollment{UserID: user.ID, ProductID: course.ID}).Error
	assert.Error(t, err)
}

func TestClampProgress(t *testing.T) {
	tests := map[int]int{150: 100, -5: 0, 0: 0, 42: 42, 100: 100}
	for in, want := range tests {
		assert.Equal(t, want, ClampProgress(in), "progress %d", in)
	}
}

func TestReportProgress(t *testing.T) {
	fx := newFixture(t)
	enrollments := NewEnrollmentService(fx.db, fx.activities, fx.log)
	user := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)
	course := testdb.CreateProduct(t, fx.db, "Go Basics", 10)

	e, err := enrollments.Enroll(bg, user.ID, course.ID)
	require.NoError(t, err)

	e, err = enrollments.ReportProgress(bg, user, e.ID, ProgressUpdate{Progress: ptr(150)})
	require.NoError(t, err)
	assert.Equal(t, 100, e.Progress)
	assert.False(t, e.Completed, "completed is not derived from progress")

	e, err = enrollments.ReportProgress(bg, user, e.ID, ProgressUpdate{Progress: ptr(-5)})
	require.NoError(t, err)
	assert.Equal(t, 0, e.Progress)
}

func TestCompletionLoggedOnce(t *testing.T) {
	fx := newFixture(t)
	enrollments := NewEnrollmentService(fx.db, fx.activities, fx.log)
	user := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)
	admin := testdb.CreateUser(t, fx.db, "root", model.RoleAdmin)
	course := testdb.CreateProduct(t, fx.db, "Go Basics", 10)

	e, err := enrollments.Enroll(bg, user.ID, course.ID)
	require.NoError(t, err)

	e, err = enrollments.ReportProgress(bg, user, e.ID, ProgressUpdate{Completed: ptr(true)})
	require.NoError(t, err)
	assert.True(t, e.Completed)
	assert.Equal(t, int64(1), fx.countActivities(t, user.ID, model.ActivityTypeCourseCompleted))

	// repeating the call, even as an admin, appends nothing
	_, err = enrollments.ReportProgress(bg, user, e.ID, ProgressUpdate{Completed: ptr(true)})
	require.NoError(t, err)
	_, err = enrollments.ReportProgress(bg, admin, e.ID, ProgressUpdate{Completed: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), fx.countActivities(t, user.ID, model.ActivityTypeCourseCompleted))
	assert.Zero(t, fx.countActivities(t, admin.ID, model.ActivityTypeCourseCompleted))

	var activity model.UserActivity
	require.NoError(t, fx.db.Where("activity_type = ?", model.ActivityTypeCourseCompleted).First(&activity).Error)
	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(activity.Metadata, &meta))
	assert.EqualValues(t, e.ID, meta["enrollment_id"])
	assert.EqualValues(t, course.ID, meta["product_id"])
	assert.Equal(t, "Go Basics", meta["product_name"])

	completed, err := enrollments.Completed(bg, user.ID)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, e.ID, completed[0].ID)
}

func TestEnrollmentOwnership(t *testing.T) {
	fx := newFixture(t)
	enrollments := NewEnrollmentService(fx.db, fx.activities, fx.log)
	owner := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)
	other := testdb.CreateUser(t, fx.db, "bob", model.RoleUser)
	manager := testdb.CreateUser(t, fx.db, "mia", model.RoleManager)
	admin := testdb.CreateUser(t, fx.db, "root", model.RoleAdmin)
	course := testdb.CreateProduct(t, fx.db, "Go Basics", 10)

	e, err := enrollments.Enroll(bg, owner.ID, course.ID)
	require.NoError(t, err)

	_, err = enrollments.ReportProgress(bg, other, e.ID, ProgressUpdate{Progress: ptr(10)})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = enrollments.ReportProgress(bg, manager, e.ID, ProgressUpdate{Progress: ptr(10)})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = enrollments.Get(bg, other, e.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := enrollments.ReportProgress(bg, admin, e.ID, ProgressUpdate{Progress: ptr(30)})
	require.NoError(t, err)
	assert.Equal(t, 30, got.Progress)

	got, err = enrollments.Get(bg, owner, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Progress)

	_, err = enrollments.Get(bg, owner, 9999)
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestEnrollmentLookups(t *testing.T) {
	fx := newFixture(t)
	enrollments := NewEnrollmentService(fx.db, fx.activities, fx.log)
	user := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)
	first := testdb.CreateProduct(t, fx.db, "First", 10)
	second := testdb.CreateProduct(t, fx.db, "Second", 10)

	_, err := enrollments.Enroll(bg, user.ID, first.ID)
	require.NoError(t, err)
	_, err = enrollments.Enroll(bg, user.ID, second.ID)
	require.NoError(t, err)

	list, err := enrollments.List(bg, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ProductID)
	require.NotNil(t, list[0].Product)
	assert.Equal(t, "Second", list[0].Product.Name)

	e, err := enrollments.ForProduct(bg, user.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, e.ProductID)

	other := testdb.CreateProduct(t, fx.db, "Third", 10)
	_, err = enrollments.ForProduct(bg, user.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}
