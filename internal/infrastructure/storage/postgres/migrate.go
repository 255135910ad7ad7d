package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/alenprastyaa/hakimah-laporan-harian/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationsTable records the current schema version.
const MigrationsTable = "schema_migrations"

// MigrationSource returns the embedded migrations.
func MigrationSource() (source.Driver, error) {
	return iofs.New(migrationFS, "migrations")
}

// Migrate applies pending up migrations through a connection borrowed from
// pool and returns the versions applied. The driver holds a postgres
// advisory lock, so concurrent migrators wait for each other.
func Migrate(ctx context.Context, pool *Pool) ([]uint, error) {
	src, err := MigrationSource()
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool.Pool)
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		_ = db.Close()
		_ = src.Close()
		return nil, fmt.Errorf("open migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = driver.Close()
		_ = src.Close()
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	m.Log = migrateLog{ctx: ctx}

	stop := context.AfterFunc(ctx, func() { m.GracefulStop <- true })
	defer stop()

	from, err := schemaVersion(m)
	if err != nil {
		return nil, err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	to, err := schemaVersion(m)
	if err != nil {
		return nil, err
	}

	listing, err := MigrationSource()
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	defer func() { _ = listing.Close() }()
	return versionsBetween(listing, from, to)
}

// schemaVersion returns 0 for an empty database and fails on a dirty one.
func schemaVersion(m *migrate.Migrate) (uint, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("schema is dirty at version %d, fix it by hand and force the version", v)
	}
	return v, nil
}

// versionsBetween lists the versions in src greater than from and up to to.
func versionsBetween(src source.Driver, from, to uint) ([]uint, error) {
	var out []uint
	v, err := src.First()
	for err == nil {
		if v > to {
			break
		}
		if v > from {
			out = append(out, v)
		}
		v, err = src.Next(v)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	return out, nil
}

// migrateLog sends migrate progress to the application logger.
type migrateLog struct {
	ctx context.Context
}

func (l migrateLog) Printf(format string, v ...any) {
	logger.Info(l.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLog) Verbose() bool { return false }
