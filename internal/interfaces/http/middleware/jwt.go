package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/infrastructure/auth"
	"github.com/ipshield/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// gin context keys set for authenticated requests
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig configures JWTAuthMiddlewareWithConfig. TokenBlacklist,
// OnError and Logger are optional.
type JWTMiddlewareConfig struct {
	JWTService       *auth.JWTService
	TokenBlacklist   auth.TokenBlacklist
	SkipPaths        []string
	SkipPathPrefixes []string
	OnError          func(c *gin.Context, err error)
	Logger           *zap.Logger
}

// DefaultJWTConfig leaves health checks, login and refresh open
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/health/ready",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
	}
}

func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig requires a valid, unrevoked bearer access
// token and puts its claims on the gin and request contexts.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	g := jwtGuard{cfg}
	return func(c *gin.Context) {
		if g.skips(c.Request.URL.Path) {
			c.Next()
			return
		}

		token, reason := bearerToken(c.GetHeader(AuthHeaderKey))
		if reason != "" {
			g.reject(c, auth.ErrInvalidToken, reason)
			return
		}
		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			g.reject(c, err, "Token validation failed")
			return
		}
		if g.revoked(c, claims) {
			g.reject(c, auth.ErrTokenBlacklisted, "Token has been revoked")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)
		ctx := c.Request.Context()
		ctx, _ = logger.WithUser(ctx, logger.FromContext(ctx), claims.UserID, claims.Username)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// bearerToken returns the token, or a non-empty reason it is missing
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "Missing authorization header"
	}
	token, ok := strings.CutPrefix(header, BearerPrefix)
	switch {
	case !ok:
		return "", "Invalid authorization header format"
	case token == "":
		return "", "Missing token"
	}
	return token, ""
}

type jwtGuard struct {
	JWTMiddlewareConfig
}

func (g jwtGuard) skips(path string) bool {
	if slices.Contains(g.SkipPaths, path) {
		return true
	}
	return slices.ContainsFunc(g.SkipPathPrefixes, func(p string) bool {
		return strings.HasPrefix(path, p)
	})
}

// revoked checks the jti and then user-wide invalidation. A blacklist that
// cannot be reached lets the token through.
func (g jwtGuard) revoked(c *gin.Context, claims *auth.Claims) bool {
	if g.TokenBlacklist == nil {
		return false
	}
	ctx := c.Request.Context()

	if claims.ID != "" {
		hit, err := g.TokenBlacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			g.Logger.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
		} else if hit {
			return true
		}
	}
	hit, err := g.TokenBlacklist.IsRevokedForUser(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		g.Logger.Error("Failed to check user token invalidation", zap.String("user_id", claims.UserID), zap.Error(err))
		return false
	}
	return hit
}

var authFailures = []struct {
	err           error
	code, message string
}{
	{auth.ErrExpiredToken, "TOKEN_EXPIRED", "Token has expired"},
	{auth.ErrInvalidTokenType, "INVALID_TOKEN_TYPE", "Invalid token type"},
	{auth.ErrTokenNotYetValid, "TOKEN_NOT_VALID", "Token is not yet valid"},
	{auth.ErrTokenBlacklisted, "TOKEN_REVOKED", "Token has been revoked"},
	{auth.ErrInvalidToken, "INVALID_TOKEN", "Invalid token"},
}

func (g jwtGuard) reject(c *gin.Context, err error, reason string) {
	if g.OnError != nil {
		g.OnError(c, err)
		return
	}
	g.Logger.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
	)

	code, message := "UNAUTHORIZED", "Authentication required"
	for _, f := range authFailures {
		if errors.Is(err, f.err) {
			code, message = f.code, f.message
			break
		}
	}
	abortWithError(c, http.StatusUnauthorized, code, message)
}

// GetJWTClaims is nil on routes the middleware skipped
func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(JWTClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

func GetJWTUsername(c *gin.Context) string {
	return c.GetString(JWTUsernameKey)
}

// GetJWTUserUUID is false when the user ID is absent or malformed
func GetJWTUserUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(GetJWTUserID(c))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
