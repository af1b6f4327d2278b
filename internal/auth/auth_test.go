package auth

import (
	"context"
	"testing"
	"time"

	"task-manager/internal/entities"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)

	require.NoError(t, h.Compare(hash, "secret1"))
	require.ErrorIs(t, h.Compare(hash, "secret2"), entities.ErrInvalidCredentials)
	require.ErrorIs(t, h.Compare(hash, "secret2"), entities.ErrUnauthorized)
}

func TestBcryptHasherFallsBackToDefaultCost(t *testing.T) {
	require.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	require.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	user := entities.User{ID: "5d1e4c2a-0000-4000-8000-000000000001", Role: entities.RoleAdmin}

	token, expiresAt, err := m.Issue(user)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.Actor(), claims.Actor)
	require.NotEmpty(t, claims.TokenID)
	require.WithinDuration(t, expiresAt, claims.ExpiresAt, time.Second)
}

func TestTokenRejections(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	user := entities.User{ID: "u1", Role: entities.RoleMember}
	token, _, err := m.Issue(user)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenManager("other", time.Hour).Verify(token)
		require.ErrorIs(t, err, entities.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokenManager("test-secret", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Verify(token)
		require.ErrorIs(t, err, entities.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify("not.a.token")
		require.ErrorIs(t, err, entities.ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, customClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: "root",
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = m.Verify(forged)
		require.ErrorIs(t, err, entities.ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodNone, customClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: "admin",
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Verify(forged)
		require.ErrorIs(t, err, entities.ErrInvalidToken)
	})
}

func TestRedisRevoker(t *testing.T) {
	ctx := context.Background()
	s, rdb := newMiniRedis(t)
	r := NewRedisRevoker(rdb)

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	s.FastForward(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked, "entry expires with the token")

	require.NoError(t, r.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	require.False(t, s.Exists(revokedKeyPrefix+"jti-2"))

	require.NoError(t, r.Ping(ctx))
}

func TestNopRevoker(t *testing.T) {
	var r NopRevoker
	require.NoError(t, r.Revoke(context.Background(), "jti", time.Now().Add(time.Hour)))
	revoked, err := r.IsRevoked(context.Background(), "jti")
	require.NoError(t, err)
	require.False(t, revoked)
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return s, rdb
}
