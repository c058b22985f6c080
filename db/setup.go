package db

import (
	"fmt"
	"log/slog"

	"github.com/homehub-dev/homehub/internal/config"
	"github.com/homehub-dev/homehub/internal/logging"
	"github.com/homehub-dev/homehub/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the configured database. The caller owns the returned
// handle and must release it with Close.
func Open(cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.NewGormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite serializes writers; a single connection avoids SQLITE_BUSY.
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return conn, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.URL), nil
	case "mysql":
		return mysql.Open(cfg.URL), nil
	case "sqlite":
		return sqlite.Open(cfg.URL), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// Close releases the connection pool behind conn.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MigrateDatabase creates missing tables in dependency order.
func MigrateDatabase(conn *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Hub{},
		&models.Device{},
		&models.Camera{},
		&models.FamilyMember{},
		&models.CameraFamilyMember{},
	}

	migrator := conn.Migrator()

	for _, model := range tables {
		if !migrator.HasTable(model) {
			if err := conn.AutoMigrate(model); err != nil {
				return fmt.Errorf("migrating %T: %w", model, err)
			}
		}
	}

	return nil
}
