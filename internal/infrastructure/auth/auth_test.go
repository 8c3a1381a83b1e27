package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenancy/backend/internal/infrastructure/config"
)

func newTestJWTService(exp time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{Secret: "test-secret", Expiration: exp, Issuer: "test"})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService(7 * 24 * time.Hour)
	userID := uuid.New()

	issued, err := svc.Generate(userID, "Landlord")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), issued.ExpiresAt, time.Minute)

	claims, err := svc.Validate(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "Landlord", claims.Role)
	assert.NotEmpty(t, claims.ID)
	got, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Greater(t, claims.GetRemainingTTL(), time.Duration(0))
}

func TestJWTService_Rejects(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	t.Run("expired", func(t *testing.T) {
		expired := newTestJWTService(-time.Minute)
		issued, err := expired.Generate(uuid.New(), "Tenant")
		require.NoError(t, err)
		_, err = svc.Validate(issued.Token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "other", Expiration: time.Hour})
		issued, err := other.Generate(uuid.New(), "Tenant")
		require.NoError(t, err)
		_, err = svc.Validate(issued.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing user id", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = svc.Validate(signed)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := NewInMemoryTokenBlacklist()
	now := time.Now()
	bl.now = func() time.Time { return now }

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", time.Minute))
	require.NoError(t, bl.AddToBlacklist(ctx, "jti-zero", 0))

	ok, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = bl.IsBlacklisted(ctx, "jti-zero")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = bl.IsBlacklisted(ctx, "jti-1")
	assert.False(t, ok)
}

// Runs only when a Redis server is provided, e.g. TEST_REDIS_ADDR=localhost:6379
func TestRedisTokenBlacklist(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	bl := NewRedisTokenBlacklistWithClient(client)
	jti := uuid.NewString()

	require.NoError(t, bl.AddToBlacklist(ctx, jti, time.Minute))
	ok, err := bl.IsBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = bl.IsBlacklisted(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok)
}
