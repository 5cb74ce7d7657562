package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/identity"
	"github.com/ipshield/backend/internal/infrastructure/auth"
)

type LoginInput struct {
	Username string
	Password string
	IP       string // recorded as the last login address
}

// Tokens is the session a login or refresh hands back
type Tokens struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	TokenType        string
}

type LoginResult struct {
	Tokens
	User UserInfo
}

// UserInfo is the public view of a staff account
type UserInfo struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	Status      string
	LastLoginAt *time.Time
}

type RefreshTokenInput struct {
	RefreshToken string
}

// LogoutInput names the access token to revoke; TokenTTL is its remaining
// lifetime. A refresh token, when given, is revoked too.
type LogoutInput struct {
	UserID       uuid.UUID
	TokenJTI     string
	TokenTTL     time.Duration
	RefreshToken string
}

type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// BootstrapAdminInput seeds the first account of an empty users table
type BootstrapAdminInput struct {
	Username    string
	Password    string
	DisplayName string
}

func tokensFrom(pair *auth.TokenPair) Tokens {
	return Tokens{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:        pair.TokenType,
	}
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.Name(),
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
	}
}
