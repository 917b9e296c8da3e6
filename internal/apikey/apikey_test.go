package apikey

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndVerify(t *testing.T) {
	keys, err := New("test-secret")
	require.NoError(t, err)

	for _, role := range []Role{RoleAnon, RoleService} {
		token, err := keys.Mint(role, time.Hour)
		require.NoError(t, err)

		claims, err := keys.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, role, claims.Role)
		assert.Equal(t, "portfolio", claims.Issuer)
	}
}

func TestCanWrite(t *testing.T) {
	assert.False(t, RoleAnon.CanWrite())
	assert.True(t, RoleService.CanWrite())
}

func TestVerifyRejects(t *testing.T) {
	keys, err := New("test-secret")
	require.NoError(t, err)
	other, err := New("other-secret")
	require.NoError(t, err)

	foreign, err := other.Mint(RoleService, 0)
	require.NoError(t, err)
	_, err = keys.Verify(foreign)
	assert.ErrorIs(t, err, ErrInvalidKey)

	claims := Claims{
		Role: RoleAnon,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "portfolio",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = keys.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidKey)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "superuser",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "portfolio"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = keys.Verify(badRole)
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = keys.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("service_role")
	require.NoError(t, err)
	assert.Equal(t, RoleService, r)

	_, err = ParseRole("admin")
	assert.Error(t, err)
}
