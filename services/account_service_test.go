package services

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/services/storage"
	"github.com/sahilchouksey/mindmeld-api/utils/auth"
	"github.com/sahilchouksey/mindmeld-api/utils/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountService(t *testing.T, fx *fixture) *AccountService {
	t.Helper()
	return newAccountServiceIn(t, fx, t.TempDir())
}

func newAccountServiceIn(t *testing.T, fx *fixture, uploadDir string) *AccountService {
	t.Helper()
	files, err := storage.NewLocalFileStore(uploadDir, "/uploads")
	require.NoError(t, err)
	jwt := auth.NewJWTManager(auth.JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "mindmeld-test",
	})
	auth.Cost = 4
	return NewAccountService(fx.db, jwt, files, fx.activities, fx.log)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	fx := newFixture(t)
	accounts := newAccountService(t, fx)

	user, tokens, err := accounts.Register(bg, "Alice", "  Alice@Example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEmpty(t, tokens.Access.Token)
	assert.NotEmpty(t, tokens.Refresh.Token)

	_, _, err = accounts.Register(bg, "Alice", "alice@example.com", "password123")
	assert.ErrorIs(t, err, ErrUserExists)

	_, _, err = accounts.Authenticate(bg, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = accounts.Authenticate(bg, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	ctx := WithClientInfo(bg, "10.0.0.9", "test")
	_, _, err = accounts.Authenticate(ctx, "ALICE@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fx.countActivities(t, user.ID, model.ActivityTypeLogin))

	access, err := accounts.Refresh(bg, tokens.Refresh.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, access.Token)

	_, err = accounts.Refresh(bg, tokens.Access.Token)
	assert.Error(t, err, "access tokens cannot refresh")
}

func TestChangePasswordInvalidatesTokens(t *testing.T) {
	fx := newFixture(t)
	accounts := newAccountService(t, fx)

	user, tokens, err := accounts.Register(bg, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	assert.ErrorIs(t, accounts.ChangePassword(bg, user, "nope", "newpassword1"), ErrWrongPassword)
	require.NoError(t, accounts.ChangePassword(bg, user, "password123", "newpassword1"))

	var reloaded model.User
	require.NoError(t, fx.db.First(&reloaded, user.ID).Error)
	assert.Equal(t, user.TokenVersion+1, reloaded.TokenVersion)
	assert.NoError(t, auth.VerifyPassword(reloaded.PasswordHash, "newpassword1"))
	assert.Equal(t, int64(1), fx.countActivities(t, user.ID, model.ActivityTypePasswordChanged))

	_, err = accounts.Refresh(bg, tokens.Refresh.Token)
	assert.Error(t, err)
}

func TestUpdateProfileLogsNameChange(t *testing.T) {
	fx := newFixture(t)
	accounts := newAccountService(t, fx)
	user := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)

	updated, err := accounts.UpdateProfile(bg, user, ProfileUpdate{AvatarURL: ptr("https://cdn.example.com/a.png")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", updated.AvatarURL)
	assert.Zero(t, fx.countActivities(t, user.ID, model.ActivityTypeProfileUpdated))

	updated, err = accounts.UpdateProfile(bg, updated, ProfileUpdate{Name: ptr("Alice Smith")})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", updated.Name)
	assert.Equal(t, int64(1), fx.countActivities(t, user.ID, model.ActivityTypeProfileUpdated))
}

func TestAvatarReplaceAndRemove(t *testing.T) {
	fx := newFixture(t)
	accounts := newAccountService(t, fx)
	user := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)

	_, err := accounts.SetAvatar(bg, user, bytes.NewReader([]byte("text")), "text/plain")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	user, err = accounts.SetAvatar(bg, user, bytes.NewReader([]byte("png-1")), "image/png")
	require.NoError(t, err)
	first := user.AvatarURL
	assert.Contains(t, first, "/uploads/avatar-")

	user, err = accounts.SetAvatar(bg, user, bytes.NewReader([]byte("png-2")), "image/png")
	require.NoError(t, err)
	assert.NotEqual(t, first, user.AvatarURL)

	user, err = accounts.RemoveAvatar(bg, user)
	require.NoError(t, err)
	assert.Empty(t, user.AvatarURL)

	_, err = accounts.RemoveAvatar(bg, user)
	assert.ErrorIs(t, err, ErrNoAvatar)
}

func TestRemoveAvatarKeepsOtherUsersFiles(t *testing.T) {
	fx := newFixture(t)
	dir := t.TempDir()
	accounts := newAccountServiceIn(t, fx, dir)
	alice := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)
	mallory := testdb.CreateUser(t, fx.db, "mallory", model.RoleUser)

	alice, err := accounts.SetAvatar(bg, alice, bytes.NewReader([]byte("png")), "image/png")
	require.NoError(t, err)
	aliceFile := filepath.Join(dir, filepath.Base(alice.AvatarURL))

	for _, url := range []string{alice.AvatarURL, "https://evil.example" + alice.AvatarURL} {
		mallory, err = accounts.UpdateProfile(bg, mallory, ProfileUpdate{AvatarURL: ptr(url)})
		require.NoError(t, err)

		mallory, err = accounts.RemoveAvatar(bg, mallory)
		require.NoError(t, err)
		assert.Empty(t, mallory.AvatarURL)

		_, err = os.Stat(aliceFile)
		assert.NoError(t, err, url)
	}

	// replacing an avatar that points at another user's file leaves it too
	mallory, err = accounts.UpdateProfile(bg, mallory, ProfileUpdate{AvatarURL: ptr(alice.AvatarURL)})
	require.NoError(t, err)
	_, err = accounts.SetAvatar(bg, mallory, bytes.NewReader([]byte("png")), "image/png")
	require.NoError(t, err)
	_, err = os.Stat(aliceFile)
	assert.NoError(t, err)

	_, err = accounts.RemoveAvatar(bg, alice)
	require.NoError(t, err)
	_, err = os.Stat(aliceFile)
	assert.True(t, os.IsNotExist(err))
}

func TestLogoutRevokesToken(t *testing.T) {
	fx := newFixture(t)
	accounts := newAccountService(t, fx)
	user, tokens, err := accounts.Register(bg, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	claims, err := accounts.jwt.ValidateToken(tokens.Access.Token)
	require.NoError(t, err)
	require.NoError(t, accounts.Logout(bg, user, claims))

	revoked, err := accounts.blacklist.IsTokenRevoked(bg, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, int64(1), fx.countActivities(t, user.ID, model.ActivityTypeLogout))
}
