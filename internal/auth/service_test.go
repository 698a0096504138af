package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/joseph-ayodele/edital-planner/internal/auth"
	"github.com/joseph-ayodele/edital-planner/internal/auth/authtest"
	"github.com/joseph-ayodele/edital-planner/internal/common"
)

func newService() (*auth.Service, *authtest.Profiles) {
	profiles := authtest.NewProfiles()
	return auth.NewService(authtest.NewUsers(profiles), authtest.NewTokens(), bcrypt.MinCost, nil), profiles
}

func TestRegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc, profiles := newService()

	reg, err := svc.Register(ctx, " ana@example.com ", "segredo1")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ana@example.com", reg.Email)

	id, err := svc.Authenticate(ctx, reg.Token)
	require.NoError(t, err)
	doc, err := profiles.Get(ctx, id.UserID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "ana@example.com", doc.User.Email)

	login, err := svc.Login(ctx, "ANA@example.com", "segredo1")
	require.NoError(t, err)
	assert.NotEqual(t, reg.Token, login.Token)

	require.NoError(t, svc.Logout(ctx, login.Token))
	_, err = svc.Authenticate(ctx, login.Token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Register(ctx, "not-an-email", "segredo1")
	assert.ErrorIs(t, err, common.ErrUserInputInvalid)
	_, err = svc.Register(ctx, "ana@example.com", "123")
	assert.ErrorIs(t, err, common.ErrUserInputInvalid)

	_, err = svc.Register(ctx, "ana@example.com", "segredo1")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "ana@example.com", "segredo2")
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestLoginFailuresShareMessage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	_, err := svc.Register(ctx, "ana@example.com", "segredo1")
	require.NoError(t, err)

	_, wrongPass := svc.Login(ctx, "ana@example.com", "errada")
	_, unknown := svc.Login(ctx, "bia@example.com", "segredo1")
	for _, err := range []error{wrongPass, unknown} {
		require.ErrorIs(t, err, common.ErrUnauthorized)
		assert.Equal(t, "E-mail ou senha inválidos.", common.DisplayMessage(err))
	}
}

func TestPasswordHash(t *testing.T) {
	h, err := auth.HashPassword("segredo", bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := auth.CheckPassword(h, "segredo")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.CheckPassword(h, "outro")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = auth.CheckPassword("not-a-hash", "segredo")
	assert.Error(t, err)
}
