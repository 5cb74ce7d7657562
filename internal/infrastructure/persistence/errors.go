package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ipshield/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver errors onto domain sentinels and wraps the rest with op.
// TranslateError on the gorm config turns unique violations into gorm.ErrDuplicatedKey;
// the message check covers connections opened without it.
func translateError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case isUniqueViolation(err):
		return shared.ErrAlreadyExists.WithCause(err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
