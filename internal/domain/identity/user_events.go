package identity

import (
	"time"

	"github.com/ipshield/backend/internal/domain/shared"
)

const AggregateTypeUser = "User"

const (
	EventTypeUserCreated         = "UserCreated"
	EventTypeUserPasswordChanged = "UserPasswordChanged"
	EventTypeUserStatusChanged   = "UserStatusChanged"
)

type (
	// UserCreatedEvent records a new staff account
	UserCreatedEvent struct {
		shared.BaseDomainEvent
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
	}

	// UserPasswordChangedEvent carries no secret material, only when it happened
	UserPasswordChangedEvent struct {
		shared.BaseDomainEvent
		Username  string    `json:"username"`
		ChangedAt time.Time `json:"changed_at"`
	}

	// UserStatusChangedEvent records activation, deactivation and lockout
	UserStatusChangedEvent struct {
		shared.BaseDomainEvent
		Username  string     `json:"username"`
		OldStatus UserStatus `json:"old_status"`
		NewStatus UserStatus `json:"new_status"`
	}
)

func userEnvelope(eventType string, user *User) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, AggregateTypeUser, user.ID)
}

func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: userEnvelope(EventTypeUserCreated, user),
		Username:        user.Username,
		DisplayName:     user.DisplayName,
	}
}

func NewUserPasswordChangedEvent(user *User) *UserPasswordChangedEvent {
	e := &UserPasswordChangedEvent{
		BaseDomainEvent: userEnvelope(EventTypeUserPasswordChanged, user),
		Username:        user.Username,
	}
	e.ChangedAt = e.Timestamp
	if user.PasswordChangedAt != nil {
		e.ChangedAt = *user.PasswordChangedAt
	}
	return e
}

func NewUserStatusChangedEvent(user *User, oldStatus, newStatus UserStatus) *UserStatusChangedEvent {
	return &UserStatusChangedEvent{
		BaseDomainEvent: userEnvelope(EventTypeUserStatusChanged, user),
		Username:        user.Username,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
