package auth

import (
	"context"
	"testing"
	"time"

	"gotodo/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(ttl time.Duration) *config.Config {
	return &config.Config{
		JwtKey:   []byte("test_jwt_secret_key_for_testing_only"),
		TokenTTL: ttl,
	}
}

func TestTokenService_GenerateAndParse(t *testing.T) {
	svc := NewTokenService(testConfig(30 * time.Minute))

	tokenStr, err := svc.Generate("user-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	claims, err := svc.Parse(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc := NewTokenService(testConfig(-1 * time.Minute))

	tokenStr, err := svc.Generate("user-1", "alice")
	require.NoError(t, err)

	_, err = svc.Parse(tokenStr)
	assert.Error(t, err)
}

func TestTokenService_TamperedToken(t *testing.T) {
	svc := NewTokenService(testConfig(30 * time.Minute))
	other := NewTokenService(&config.Config{
		JwtKey:   []byte("a_completely_different_secret"),
		TokenTTL: 30 * time.Minute,
	})

	tokenStr, err := other.Generate("user-1", "alice")
	require.NoError(t, err)

	_, err = svc.Parse(tokenStr)
	assert.Error(t, err)
}

func TestTokenService_MalformedToken(t *testing.T) {
	svc := NewTokenService(testConfig(30 * time.Minute))

	_, err := svc.Parse("not.a.token")
	assert.Error(t, err)

	_, err = svc.Parse("")
	assert.Error(t, err)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	svc := NewTokenService(testConfig(time.Minute))
	tokenStr, err := svc.Generate("user-1", "alice")
	require.NoError(t, err)
	claims, err := svc.Parse(tokenStr)
	require.NoError(t, err)

	ctx := ContextWithClaims(context.Background(), claims)
	got, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, claims.Subject, got.Subject)

	_, ok = ClaimsFromContext(context.Background())
	assert.False(t, ok)
}
