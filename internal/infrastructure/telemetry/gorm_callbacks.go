package telemetry

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// gormOperations are the callback chains the database plugins hook into.
var gormOperations = []string{"create", "query", "update", "delete", "row", "raw"}

type startTimeKey struct{ prefix string }

// registerAround installs before/after callbacks named "<prefix>:before_<op>"
// and "<prefix>:after_<op>" around every gorm operation. The before callback
// stores the start time, read back with queryElapsed.
func registerAround(db *gorm.DB, prefix string, after func(op string) func(*gorm.DB)) error {
	key := startTimeKey{prefix: prefix}
	before := func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		tx.Statement.Context = context.WithValue(ctx, key, time.Now())
	}

	cb := db.Callback()
	var errs []error
	for _, op := range gormOperations {
		anchor := "gorm:" + op
		beforeName := prefix + ":before_" + op
		afterName := prefix + ":after_" + op
		afterFn := after(op)
		switch op {
		case "create":
			errs = append(errs,
				cb.Create().Before(anchor).Register(beforeName, before),
				cb.Create().After(anchor).Register(afterName, afterFn))
		case "query":
			errs = append(errs,
				cb.Query().Before(anchor).Register(beforeName, before),
				cb.Query().After(anchor).Register(afterName, afterFn))
		case "update":
			errs = append(errs,
				cb.Update().Before(anchor).Register(beforeName, before),
				cb.Update().After(anchor).Register(afterName, afterFn))
		case "delete":
			errs = append(errs,
				cb.Delete().Before(anchor).Register(beforeName, before),
				cb.Delete().After(anchor).Register(afterName, afterFn))
		case "row":
			errs = append(errs,
				cb.Row().Before(anchor).Register(beforeName, before),
				cb.Row().After(anchor).Register(afterName, afterFn))
		case "raw":
			errs = append(errs,
				cb.Raw().Before(anchor).Register(beforeName, before),
				cb.Raw().After(anchor).Register(afterName, afterFn))
		}
	}
	return errors.Join(errs...)
}

// queryElapsed returns the time since the before callback registered under prefix ran.
func queryElapsed(tx *gorm.DB, prefix string) (time.Duration, bool) {
	if tx.Statement.Context == nil {
		return 0, false
	}
	start, ok := tx.Statement.Context.Value(startTimeKey{prefix: prefix}).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}
