package services

import (
	"testing"
	"time"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/utils/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestActivityLogRecordsClientInfo(t *testing.T) {
	fx := newFixture(t)
	user := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)

	ctx := WithClientInfo(bg, "10.0.0.1", "curl/8.0")
	fx.activities.Log(ctx, ActivityEntry{
		UserID:   user.ID,
		Type:     model.ActivityTypeLogin,
		Details:  "Logged in",
		Metadata: map[string]interface{}{"email": user.Email},
	})

	list, err := fx.activities.List(bg, ActivityFilter{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "10.0.0.1", list[0].IPAddress)
	assert.Equal(t, "curl/8.0", list[0].UserAgent)
	assert.JSONEq(t, `{"email":"alice@example.com"}`, string(list[0].Metadata))
	require.NotNil(t, list[0].User)
	assert.Equal(t, "alice", list[0].User.Name)
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
}

func TestActivityLogFailureIsSwallowed(t *testing.T) {
	db := testdb.New(t)
	core, logs := observer.New(zap.ErrorLevel)
	activities := NewActivityService(db, zap.New(core))

	require.NoError(t, db.Migrator().DropTable(&model.UserActivity{}))

	assert.NotPanics(t, func() {
		activities.Log(bg, ActivityEntry{UserID: 1, Type: model.ActivityTypeLogin})
	})

	entries := logs.FilterMessage("Failed to record activity").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "login", entries[0].ContextMap()["action"])
}

func TestActivityListAndStats(t *testing.T) {
	fx := newFixture(t)
	alice := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)
	bob := testdb.CreateUser(t, fx.db, "bob", model.RoleUser)

	for _, e := range []ActivityEntry{
		{UserID: alice.ID, Type: model.ActivityTypeLogin},
		{UserID: alice.ID, Type: model.ActivityTypeLogin},
		{UserID: alice.ID, Type: model.ActivityTypeCourseEnrolled},
		{UserID: bob.ID, Type: model.ActivityTypeLogin},
	} {
		fx.activities.Log(bg, e)
	}

	list, err := fx.activities.List(bg, ActivityFilter{Action: string(model.ActivityTypeLogin), Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, bob.ID, list[0].UserID, "newest first")

	stats, err := fx.activities.Stats(bg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalActivities)
	assert.Equal(t, int64(2), stats.UniqueUsers)
	require.Len(t, stats.ActionDistribution, 2)
	assert.Equal(t, ActionCount{Action: "login", Count: 3}, stats.ActionDistribution[0])
	assert.Equal(t, ActionCount{Action: "course_enrolled", Count: 1}, stats.ActionDistribution[1])

	future := time.Now().Add(time.Hour)
	stats, err = fx.activities.Stats(bg, &future, nil)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalActivities)
	assert.Empty(t, stats.ActionDistribution)
}
