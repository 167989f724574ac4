package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fastygo/staff-portal/assets"
	"github.com/fastygo/staff-portal/internal/config"
)

// Migration directions accepted by Migrate.
const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// RunMigrations applies pending migrations when enabled in configuration.
func RunMigrations(cfg *config.Config, logger *zap.Logger) error {
	if cfg == nil || !cfg.Migrations.Enabled {
		return nil
	}
	return Migrate(cfg, MigrateUp, logger)
}

// Migrate moves the schema up to the latest version or down one step. Migrations are read from
// cfg.Migrations.Path, or from the binary when the path is empty.
func Migrate(cfg *config.Config, direction string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return err
	}

	var m *migrate.Migrate
	if cfg.Migrations.Path == "" {
		source, err := iofs.New(assets.Migrations, "migrations")
		if err != nil {
			return err
		}
		m, err = migrate.NewWithInstance("iofs", source, cfg.Database.Name, driver)
		if err != nil {
			return err
		}
	} else {
		sourceURL := fmt.Sprintf("file://%s", filepath.ToSlash(cfg.Migrations.Path))
		m, err = migrate.NewWithDatabaseInstance(sourceURL, cfg.Database.Name, driver)
		if err != nil {
			return err
		}
	}
	defer m.Close()

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return verr
	}
	logger.Info("database migrations applied",
		zap.String("direction", direction),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}
