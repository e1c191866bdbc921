// Package migrations применяет SQL-миграции схемы через golang-migrate.
package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// Источник миграций из файловой системы.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirty означает, что предыдущая миграция прервалась и схему надо чинить вручную.
var ErrDirty = errors.New("database schema is dirty")

// Run доводит схему до последней версии из каталога path и возвращает
// итоговую версию. Грязная схема не трогается.
func Run(db *sql.DB, path string, log *slog.Logger) (uint, error) {
	const op = "migrations.Run"

	driver, err := pgxv5.WithInstance(db, &pgxv5.Config{})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+path, "pgx_v5", driver)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	before, dirty, err := version(m)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if dirty {
		return before, fmt.Errorf("%s: %w: version %d", op, ErrDirty, before)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debug("schema is up to date", slog.Uint64("version", uint64(before)))
		return before, nil
	case err != nil:
		return before, fmt.Errorf("%s: %w", op, err)
	}

	after, _, err := version(m)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("schema migrated",
		slog.Uint64("from_version", uint64(before)),
		slog.Uint64("to_version", uint64(after)),
	)
	return after, nil
}

// version трактует пустую схему как версию 0.
func version(m *migrate.Migrate) (uint, bool, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}
