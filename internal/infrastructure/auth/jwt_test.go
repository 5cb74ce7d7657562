package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "test-secret-key-at-least-32-chars"
	refreshSecret = "test-refresh-secret-key-32-chars"
	testIssuer    = "ipshield-test"
)

// jwtConfig is the baseline; mutate adjusts it per test
func jwtConfig(mutate ...func(*config.JWTConfig)) config.JWTConfig {
	cfg := config.JWTConfig{
		Secret:                 accessSecret,
		RefreshSecret:          refreshSecret,
		Issuer:                 testIssuer,
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		MaxRefreshCount:        10,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return cfg
}

// oneSecret signs both token types with the same key, so only the type
// claim tells them apart
func oneSecret(c *config.JWTConfig) { c.RefreshSecret = c.Secret }

func issue(t *testing.T, svc *JWTService) (*TokenPair, GenerateTokenInput) {
	t.Helper()
	in := GenerateTokenInput{UserID: uuid.New(), Username: "ketoan01"}
	pair, err := svc.GenerateTokenPair(in)
	require.NoError(t, err)
	return pair, in
}

func TestNewJWTService(t *testing.T) {
	t.Run("copies lifetimes and limits", func(t *testing.T) {
		cfg := jwtConfig(func(c *config.JWTConfig) { c.MaxRefreshCount = 5 })
		svc := NewJWTService(cfg)

		assert.Equal(t, []byte(accessSecret), svc.access.secret)
		assert.Equal(t, []byte(refreshSecret), svc.refresh.secret)
		assert.Equal(t, cfg.RefreshTokenExpiration, svc.refresh.ttl)
		assert.Equal(t, 5, svc.maxRefreshCount)
		assert.Equal(t, testIssuer, svc.issuer)
		assert.Equal(t, 15*time.Minute, svc.GetAccessTokenExpiration())
	})

	t.Run("refresh secret falls back to the access secret", func(t *testing.T) {
		svc := NewJWTService(jwtConfig(func(c *config.JWTConfig) { c.RefreshSecret = "" }))
		assert.Equal(t, svc.access.secret, svc.refresh.secret)
	})
}

func TestGenerateTokenPair(t *testing.T) {
	svc := NewJWTService(jwtConfig(oneSecret))
	pair, in := issue(t, svc)

	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.AccessTokenExpiresAt.After(time.Now()))
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	access, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, in.UserID.String(), access.UserID)
	assert.Equal(t, in.UserID.String(), access.Subject)
	assert.Equal(t, in.Username, access.Username)
	assert.Equal(t, TokenTypeAccess, access.TokenType)
	assert.Equal(t, testIssuer, access.Issuer)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
	assert.Zero(t, refresh.RefreshCount)

	assert.NotEmpty(t, access.ID)
	assert.NotEqual(t, access.ID, refresh.ID, "each token is revocable on its own")
}

func TestJWTService_Validate_Rejects(t *testing.T) {
	svc := NewJWTService(jwtConfig())
	shared := NewJWTService(jwtConfig(oneSecret))

	tests := []struct {
		name     string
		token    func(t *testing.T) string
		validate func(string) (*Claims, error)
		want     error
	}{
		{
			name:     "garbage",
			token:    func(*testing.T) string { return "invalid-token" },
			validate: svc.ValidateAccessToken,
			want:     ErrInvalidToken,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				expired := NewJWTService(jwtConfig(func(c *config.JWTConfig) { c.AccessTokenExpiration = -time.Hour }))
				pair, _ := issue(t, expired)
				return pair.AccessToken
			},
			validate: svc.ValidateAccessToken,
			want:     ErrExpiredToken,
		},
		{
			name: "signed with another key",
			token: func(t *testing.T) string {
				other := NewJWTService(jwtConfig(func(c *config.JWTConfig) { c.Secret = "different-secret-key-32-chars!!!" }))
				pair, _ := issue(t, other)
				return pair.AccessToken
			},
			validate: svc.ValidateAccessToken,
			want:     ErrInvalidToken,
		},
		{
			name: "another issuer",
			token: func(t *testing.T) string {
				other := NewJWTService(jwtConfig(func(c *config.JWTConfig) { c.Issuer = "another-service" }))
				pair, _ := issue(t, other)
				return pair.AccessToken
			},
			validate: svc.ValidateAccessToken,
			want:     ErrInvalidToken,
		},
		{
			name: "refresh token used as access",
			token: func(t *testing.T) string {
				pair, _ := issue(t, shared)
				return pair.RefreshToken
			},
			validate: shared.ValidateAccessToken,
			want:     ErrInvalidTokenType,
		},
		{
			name: "access token used as refresh",
			token: func(t *testing.T) string {
				pair, _ := issue(t, shared)
				return pair.AccessToken
			},
			validate: shared.ValidateRefreshToken,
			want:     ErrInvalidTokenType,
		},
		{
			name: "alg none",
			token: func(t *testing.T) string {
				claims := &Claims{
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    testIssuer,
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
					UserID:    uuid.NewString(),
					TokenType: TokenTypeAccess,
				}
				s, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return s
			},
			validate: svc.ValidateAccessToken,
			want:     ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tt.validate(tt.token(t))
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, claims)
		})
	}
}

func TestRefreshTokenPair(t *testing.T) {
	t.Run("issues a new pair for the same user", func(t *testing.T) {
		svc := NewJWTService(jwtConfig())
		pair, in := issue(t, svc)

		next, err := svc.RefreshTokenPair(pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.AccessToken, next.AccessToken)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		claims, err := svc.ValidateAccessToken(next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, in.UserID.String(), claims.UserID)
		assert.Equal(t, in.Username, claims.Username)
	})

	t.Run("counts refreshes up to the limit", func(t *testing.T) {
		svc := NewJWTService(jwtConfig(func(c *config.JWTConfig) { c.MaxRefreshCount = 2 }))
		pair, _ := issue(t, svc)

		for want := 1; want <= 2; want++ {
			var err error
			pair, err = svc.RefreshTokenPair(pair.RefreshToken)
			require.NoError(t, err)
			claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
			require.NoError(t, err)
			assert.Equal(t, want, claims.RefreshCount)
		}

		_, err := svc.RefreshTokenPair(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("rejects non-refresh tokens", func(t *testing.T) {
		svc := NewJWTService(jwtConfig(oneSecret))
		pair, _ := issue(t, svc)

		_, err := svc.RefreshTokenPair(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)

		_, err = svc.RefreshTokenPair("invalid-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims(t *testing.T) {
	svc := NewJWTService(jwtConfig())
	pair, in := issue(t, svc)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	userID, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, in.UserID, userID)
	assert.False(t, claims.GetIssuedAtTime().IsZero())

	ttl := claims.GetRemainingTTL()
	assert.Greater(t, ttl, 14*time.Minute)
	assert.LessOrEqual(t, ttl, 15*time.Minute)

	var empty Claims
	assert.Zero(t, empty.GetRemainingTTL())
	assert.True(t, empty.GetIssuedAtTime().IsZero())
}
