package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers pgx5://
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3" // registers sqlite3://
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/pesio-ai/be-crm-cli/migrations"
)

// Migrate applies every pending up migration for the backend's dialect.
// A schema that is already current is not an error.
func (db *DB) Migrate() error {
	m, err := db.newMigrator()
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version. Zero means no
// migration has run yet.
func (db *DB) SchemaVersion() (uint, bool, error) {
	m, err := db.newMigrator()
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(m)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading schema version: %w", err)
	}
	return version, dirty, nil
}

// newMigrator opens golang-migrate on its own connection, named by URL, so
// closing the migrator never closes db.
func (db *DB) newMigrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, string(db.dialect))
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(db.dialect, db.url))
	if err != nil {
		return nil, fmt.Errorf("initialising migrations: %w", err)
	}
	return m, nil
}

func migrateURL(dialect Dialect, url string) string {
	if dialect != DialectPostgres {
		return url
	}
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(url, prefix) {
			return "pgx5://" + strings.TrimPrefix(url, prefix)
		}
	}
	return url
}

func closeMigrator(m *migrate.Migrate) {
	_, _ = m.Close() //nolint:errcheck // migrator owns a private connection
}
