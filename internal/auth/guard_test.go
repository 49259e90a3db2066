package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketcart-be/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRoleSource struct {
	mock.Mock
}

func (m *MockRoleSource) RoleOf(ctx context.Context, userID uint) (Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(Role), args.Error(1)
}

func TestRole_Satisfies(t *testing.T) {
	assert.True(t, RoleUser.Satisfies(RoleUser))
	assert.True(t, RoleAdmin.Satisfies(RoleUser))
	assert.True(t, RoleAdmin.Satisfies(RoleAdmin))
	assert.False(t, RoleUser.Satisfies(RoleAdmin))
	assert.False(t, Role("GUEST").Satisfies(RoleUser))
}

func TestGuard_RequireRole(t *testing.T) {
	ctx := context.Background()

	t.Run("Anonymous", func(t *testing.T) {
		g := NewGuard(new(MockRoleSource))
		err := g.RequireRole(ctx, 0, RoleUser)
		assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))
	})

	t.Run("Allowed", func(t *testing.T) {
		roles := new(MockRoleSource)
		roles.On("RoleOf", ctx, uint(1)).Return(RoleUser, nil)

		assert.NoError(t, NewGuard(roles).RequireRole(ctx, 1, RoleUser))
		roles.AssertExpectations(t)
	})

	t.Run("Forbidden", func(t *testing.T) {
		roles := new(MockRoleSource)
		roles.On("RoleOf", ctx, uint(1)).Return(RoleUser, nil)

		err := NewGuard(roles).RequireRole(ctx, 1, RoleAdmin)
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})

	t.Run("UnknownUser", func(t *testing.T) {
		roles := new(MockRoleSource)
		roles.On("RoleOf", ctx, uint(9)).Return(Role(""), apperror.UserNotFound(9))

		err := NewGuard(roles).RequireRole(ctx, 9, RoleUser)
		assert.True(t, apperror.IsKind(err, apperror.KindUserNotFound))
	})

	t.Run("LookupFailure", func(t *testing.T) {
		roles := new(MockRoleSource)
		roles.On("RoleOf", ctx, uint(2)).Return(Role(""), errors.New("db down"))

		err := NewGuard(roles).RequireRole(ctx, 2, RoleUser)
		assert.True(t, apperror.IsKind(err, apperror.KindInternal))
	})
}

func TestToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", 42, RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, string(RoleAdmin), claims.Role)
}

func TestParseToken_Rejects(t *testing.T) {
	valid, err := GenerateToken("secret", 1, RoleUser, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken("secret", 1, RoleUser, -time.Hour)
	require.NoError(t, err)

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := ParseToken("other", valid)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		_, err := ParseToken("secret", expired)
		assert.Error(t, err)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := ParseToken("secret", "not-a-token")
		assert.Error(t, err)
	})

	t.Run("MissingSecret", func(t *testing.T) {
		_, err := ParseToken("", valid)
		assert.ErrorIs(t, err, ErrMissingSecret)
	})
}

func TestIdentityContext(t *testing.T) {
	ctx := WithIdentity(context.Background(), 5, RoleUser)

	id, ok := UserIDFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint(5), id)
	assert.Equal(t, RoleUser, RoleFrom(ctx))

	_, ok = UserIDFrom(context.Background())
	assert.False(t, ok)
}
