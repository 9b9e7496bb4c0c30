package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	generator, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey:  "test-secret",
		Issuer:     "flowcanvas",
		Audience:   []string{"flowcanvas-api"},
		ExpiryTime: time.Hour,
	})
	require.NoError(t, err)

	validator, err := NewJWTValidator(JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "flowcanvas",
		Audience:  []string{"flowcanvas-api"},
	})
	require.NoError(t, err)

	token, err := generator.GenerateToken("user-1", "u@example.com", []string{"editor"})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, []string{"editor"}, claims.Roles)
}

func TestJWTValidationFailures(t *testing.T) {
	t.Run("expired token", func(t *testing.T) {
		generator, err := NewJWTGenerator(JWTGeneratorConfig{
			SecretKey:  "test-secret",
			ExpiryTime: -time.Minute,
		})
		require.NoError(t, err)
		token, err := generator.GenerateToken("user-1", "", nil)
		require.NoError(t, err)

		validator, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret"})
		require.NoError(t, err)

		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		generator, err := NewJWTGenerator(JWTGeneratorConfig{SecretKey: "secret-a"})
		require.NoError(t, err)
		token, err := generator.GenerateToken("user-1", "", nil)
		require.NoError(t, err)

		validator, err := NewJWTValidator(JWTConfig{SecretKey: "secret-b"})
		require.NoError(t, err)

		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("garbage token", func(t *testing.T) {
		validator, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret"})
		require.NoError(t, err)

		_, err = validator.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := NewJWTValidator(JWTConfig{})
		assert.Error(t, err)
	})
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()

	_, err := GetUserFromContext(ctx)
	assert.Error(t, err)

	user := &UserContext{UserID: "user-1", Roles: []string{"editor"}}
	ctx = SetUserInContext(ctx, user)

	got, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.True(t, got.HasRole("editor"))
	assert.False(t, got.HasRole("admin"))
}

func TestTokenBucketLimiter(t *testing.T) {
	limiter := NewTokenBucketLimiter(3, 0.001)
	defer limiter.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "canvas-1")
		require.NoError(t, err)
		assert.True(t, allowed, "burst request %d", i)
	}

	allowed, err := limiter.Allow(ctx, "canvas-1")
	require.NoError(t, err)
	assert.False(t, allowed, "bucket exhausted")

	// other keys have their own bucket
	allowed, err = limiter.Allow(ctx, "canvas-2")
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "canvas-1"))
	allowed, err = limiter.Allow(ctx, "canvas-1")
	require.NoError(t, err)
	assert.True(t, allowed, "reset refills the bucket")
}

func TestSlidingWindowLimiter(t *testing.T) {
	limiter := NewSlidingWindowLimiter(2, time.Minute)
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "ip:1.2.3.4")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "ip:1.2.3.4")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "ip:1.2.3.4")
	assert.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "ip:1.2.3.4"))
	allowed, _ = limiter.Allow(ctx, "ip:1.2.3.4")
	assert.True(t, allowed)
}
