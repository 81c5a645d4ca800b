package auth

import (
	"testing"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/stretchr/testify/assert"
)

func TestCanMessage(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{model.RoleUser, model.RoleAdmin, true},
		{model.RoleUser, model.RoleUser, false},
		{model.RoleUser, model.RoleManager, false},
		{model.RoleManager, model.RoleAdmin, true},
		{model.RoleManager, model.RoleUser, false},
		{model.RoleManager, model.RoleManager, false},
		{model.RoleAdmin, model.RoleUser, true},
		{model.RoleAdmin, model.RoleManager, true},
		{model.RoleAdmin, model.RoleAdmin, false},
		{"guest", model.RoleAdmin, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanMessage(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCan(t *testing.T) {
	assert.True(t, Can(model.RoleAdmin, ResourceActivities, ActionReadAny))
	assert.False(t, Can(model.RoleManager, ResourceActivities, ActionReadAny))
	assert.False(t, Can(model.RoleUser, ResourceActivities, ActionReadAny))

	assert.True(t, Can(model.RoleManager, ResourceUsers, ActionReadAny))
	assert.False(t, Can(model.RoleManager, ResourceUsers, ActionWriteAny))

	assert.True(t, Can(model.RoleUser, ResourceEnrollments, ActionWrite))
	assert.False(t, Can(model.RoleUser, ResourceProducts, ActionWrite))
	assert.False(t, Can("", ResourceProducts, ActionRead))
}

func TestCanActOn(t *testing.T) {
	owner := &model.User{ID: 1, Role: model.RoleUser}
	other := &model.User{ID: 2, Role: model.RoleUser}
	admin := &model.User{ID: 3, Role: model.RoleAdmin}

	assert.True(t, CanActOn(owner, 1, ResourceEnrollments, ActionWriteAny))
	assert.False(t, CanActOn(other, 1, ResourceEnrollments, ActionWriteAny))
	assert.True(t, CanActOn(admin, 1, ResourceEnrollments, ActionWriteAny))
	assert.False(t, CanActOn(nil, 1, ResourceEnrollments, ActionWriteAny))
}

func TestMessageRecipientRolesIsACopy(t *testing.T) {
	roles := MessageRecipientRoles(model.RoleAdmin)
	roles[0] = model.RoleAdmin
	assert.False(t, CanMessage(model.RoleAdmin, model.RoleAdmin))
}
