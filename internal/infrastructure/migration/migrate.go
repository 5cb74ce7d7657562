// Package migration applies the versioned SQL schema with golang-migrate and
// scaffolds new migration pairs.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

const (
	// VersionTable records the applied schema version
	VersionTable = "schema_migrations"

	lockTimeout = 30 * time.Second
)

// Migrator moves the schema between versions
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New reads *.sql pairs from the root of src (migrations.FS or os.DirFS).
func New(db *sql.DB, src fs.FS, log *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(src, ".")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: VersionTable})
	if err != nil {
		return nil, fmt.Errorf("init postgres driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	m.LockTimeout = lockTimeout
	m.Log = migrateLog{log.Named("migrate")}

	return &Migrator{m: m, log: log}, nil
}

func (mg *Migrator) Up() error {
	return mg.apply("up", mg.m.Up)
}

func (mg *Migrator) Down() error {
	return mg.apply("down", mg.m.Down)
}

// Steps moves n versions; negative n rolls back
func (mg *Migrator) Steps(n int) error {
	return mg.apply(fmt.Sprintf("steps(%d)", n), func() error { return mg.m.Steps(n) })
}

func (mg *Migrator) GoTo(version uint) error {
	return mg.apply(fmt.Sprintf("goto(%d)", version), func() error { return mg.m.Migrate(version) })
}

// Version reports the applied version; 0 means an empty schema
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return v, dirty, nil
}

// Force records version without running anything. Use it only to clear a
// dirty flag after fixing a failed migration by hand.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (mg *Migrator) apply(op string, fn func() error) error {
	before, _, err := mg.Version()
	if err != nil {
		return err
	}
	started := time.Now()

	err = fn()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("Schema already current", zap.String("op", op), zap.Uint("version", before))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}

	after, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.log.Info("Schema migrated",
		zap.String("op", op),
		zap.Uint("from", before),
		zap.Uint("to", after),
		zap.Bool("dirty", dirty),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

// migrateLog routes golang-migrate output through zap
type migrateLog struct{ l *zap.Logger }

func (ml migrateLog) Printf(format string, v ...any) {
	ml.l.Sugar().Debugf(format, v...)
}

func (ml migrateLog) Verbose() bool {
	return ml.l.Core().Enabled(zap.DebugLevel)
}
