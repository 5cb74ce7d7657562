package identity

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ipshield/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus is the sign-in state of a staff account
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusLocked      UserStatus = "locked"
	UserStatusDeactivated UserStatus = "deactivated"
)

const (
	bcryptCost = 12

	usernameMinLen    = 3
	usernameMaxLen    = 100
	passwordMinLen    = 8
	passwordMaxBytes  = 72 // bcrypt ignores the rest
	displayNameMaxLen = 200
)

var (
	ErrAccountLocked      = shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
	ErrAccountDeactivated = shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
)

// Lockout locks an account for Duration after MaxAttempts consecutive
// failures. MaxAttempts <= 0 disables locking; Duration 0 locks until reset.
type Lockout struct {
	MaxAttempts int
	Duration    time.Duration
}

// User is a staff member of the back office. Every user has the same rights;
// the username is recorded on contract history rows.
type User struct {
	shared.BaseAggregateRoot
	Username          string
	PasswordHash      string
	DisplayName       string
	Status            UserStatus
	LastLoginAt       *time.Time
	LastLoginIP       string
	FailedAttempts    int
	LockedUntil       *time.Time
	PasswordChangedAt *time.Time
}

func NewUser(username, password, displayName string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if utf8.RuneCountInString(displayName) > displayNameMaxLen {
		return nil, shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          NormalizeUsername(username),
		PasswordHash:      hash,
		DisplayName:       displayName,
		Status:            UserStatusActive,
		PasswordChangedAt: &now,
	}
	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// NormalizeUsername is the stored and looked-up form of a username
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword requires the current password and a different new one
func (u *User) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if current == next {
		return shared.NewDomainError("INVALID_PASSWORD", "New password must differ from the current one")
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}

	now := time.Now()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	u.changed()
	u.AddDomainEvent(NewUserPasswordChangedEvent(u))
	return nil
}

// CheckSignIn reports why the account cannot sign in at now, or nil.
// A lock whose time has passed no longer blocks.
func (u *User) CheckSignIn(now time.Time) error {
	switch {
	case u.Status == UserStatusDeactivated:
		return ErrAccountDeactivated
	case u.lockedAt(now):
		return ErrAccountLocked
	}
	return nil
}

func (u *User) CanLogin() bool {
	return u.CheckSignIn(time.Now()) == nil
}

func (u *User) IsLocked() bool {
	return u.lockedAt(time.Now())
}

func (u *User) lockedAt(now time.Time) bool {
	if u.Status != UserStatusLocked {
		return false
	}
	return u.LockedUntil == nil || now.Before(*u.LockedUntil)
}

// RecordLoginSuccess resets the failure count and lifts an expired lock
func (u *User) RecordLoginSuccess(ip string, now time.Time) {
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	if u.Status == UserStatusLocked {
		u.setStatus(UserStatusActive)
		u.LockedUntil = nil
	}
	u.changed()
}

// RecordLoginFailure counts a bad password and reports whether it locked the account
func (u *User) RecordLoginFailure(policy Lockout, now time.Time) bool {
	u.FailedAttempts++
	u.changed()
	if policy.MaxAttempts <= 0 || u.FailedAttempts < policy.MaxAttempts {
		return false
	}

	u.LockedUntil = nil
	if policy.Duration > 0 {
		until := now.Add(policy.Duration)
		u.LockedUntil = &until
	}
	u.setStatus(UserStatusLocked)
	return true
}

// Deactivate blocks sign-in until the account is reactivated in the database
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}
	u.setStatus(UserStatusDeactivated)
	u.changed()
	return nil
}

// Name is what history rows and the UI show for this user
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func (u *User) setStatus(status UserStatus) {
	if u.Status == status {
		return
	}
	old := u.Status
	u.Status = status
	u.AddDomainEvent(NewUserStatusChangedEvent(u, old, status))
}

func (u *User) changed() {
	u.Touch()
	u.IncrementVersion()
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	invalid := func(msg string) error { return shared.NewDomainError("INVALID_USERNAME", msg) }

	switch n := len(username); {
	case n == 0:
		return invalid("Username cannot be empty")
	case n < usernameMinLen:
		return invalid("Username must be at least 3 characters")
	case n > usernameMaxLen:
		return invalid("Username cannot exceed 100 characters")
	}
	for _, r := range username {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_-.", r)) {
			return invalid("Username can only contain letters, numbers, underscores, hyphens, and dots")
		}
	}
	return nil
}

func validatePassword(password string) error {
	invalid := func(msg string) error { return shared.NewDomainError("INVALID_PASSWORD", msg) }

	switch n := len(password); {
	case n == 0:
		return invalid("Password cannot be empty")
	case n < passwordMinLen:
		return invalid("Password must be at least 8 characters")
	case n > passwordMaxBytes:
		return invalid("Password cannot exceed 72 bytes")
	}
	letter := strings.IndexFunc(password, unicode.IsLetter) >= 0
	digit := strings.IndexFunc(password, unicode.IsDigit) >= 0
	if !letter || !digit {
		return invalid("Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return string(hash), nil
}
