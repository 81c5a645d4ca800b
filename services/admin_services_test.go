package services

import (
	"testing"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/utils/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAdmin(t *testing.T) {
	fx := newFixture(t)
	users := NewUserService(fx.db, fx.log)
	alice := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)
	bob := testdb.CreateUser(t, fx.db, "bob", model.RoleUser)
	testdb.CreateUser(t, fx.db, "mia", model.RoleManager)

	list, total, err := users.List(bg, UserFilter{Role: model.RoleUser, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	list, total, err = users.List(bg, UserFilter{Search: "ALI", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, alice.ID, list[0].ID)

	_, err = users.Update(bg, alice.ID, UserUpdate{Email: ptr("bob@example.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = users.UpdateRole(bg, alice.ID, "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)

	updated, err := users.UpdateRole(bg, alice.ID, model.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, updated.Role)

	updated, err = users.Update(bg, alice.ID, UserUpdate{Password: ptr("resetbyadmin")})
	require.NoError(t, err)
	assert.Equal(t, alice.TokenVersion+1, updated.TokenVersion)

	require.NoError(t, users.Delete(bg, bob.ID))
	assert.ErrorIs(t, users.Delete(bg, bob.ID), ErrUserNotFound)
	_, err = users.Get(bg, bob.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// soft delete keeps the row
	var count int64
	fx.db.Unscoped().Model(&model.User{}).Where("id = ?", bob.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCategories(t *testing.T) {
	fx := newFixture(t)
	categories := NewCategoryService(fx.db, fx.log)

	list, err := categories.List(bg)
	require.NoError(t, err)
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Compliance", "Leadership", "Soft Skills", "Technical Skills"}, names)

	_, err = categories.Create(bg, "Leadership", "")
	assert.ErrorIs(t, err, ErrCategoryExists)

	c, err := categories.Create(bg, "Design", "UX and UI")
	require.NoError(t, err)

	_, err = categories.Update(bg, c.ID, ptr("Compliance"), nil)
	assert.ErrorIs(t, err, ErrCategoryExists)

	product := testdb.CreateProduct(t, fx.db, "Figma 101", 5)
	require.NoError(t, fx.db.Model(product).Update("category_id", c.ID).Error)

	require.NoError(t, categories.Delete(bg, c.ID))
	assert.ErrorIs(t, categories.Delete(bg, c.ID), ErrCategoryNotFound)

	var reloaded model.Product
	require.NoError(t, fx.db.First(&reloaded, product.ID).Error)
	assert.Nil(t, reloaded.CategoryID)
}
