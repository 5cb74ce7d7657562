package models

import (
	"time"

	"github.com/ipshield/backend/internal/domain/identity"
)

// UserModel is a row of users, including lockout and last-login state
type UserModel struct {
	AggregateModel
	Username          string              `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash      string              `gorm:"type:varchar(255);not null"`
	DisplayName       string              `gorm:"type:varchar(200);not null;default:''"`
	Status            identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt       *time.Time
	LastLoginIP       string `gorm:"type:varchar(45)"`
	FailedAttempts    int    `gorm:"not null;default:0"`
	LockedUntil       *time.Time
	PasswordChangedAt *time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// ToDomain rebuilds the user; pending events are not restored
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.aggregate(),
		Username:          m.Username,
		PasswordHash:      m.PasswordHash,
		DisplayName:       m.DisplayName,
		Status:            m.Status,
		LastLoginAt:       m.LastLoginAt,
		LastLoginIP:       m.LastLoginIP,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
		PasswordChangedAt: m.PasswordChangedAt,
	}
}

// UserModelFromDomain maps a user onto its row
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username:          u.Username,
		PasswordHash:      u.PasswordHash,
		DisplayName:       u.DisplayName,
		Status:            u.Status,
		LastLoginAt:       u.LastLoginAt,
		LastLoginIP:       u.LastLoginIP,
		FailedAttempts:    u.FailedAttempts,
		LockedUntil:       u.LockedUntil,
		PasswordChangedAt: u.PasswordChangedAt,
	}
	m.setAggregate(u.BaseAggregateRoot)
	return m
}
