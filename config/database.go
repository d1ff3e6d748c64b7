package config

import (
	"fmt"
	"strings"

	"github.com/andrewpaige1/flashcards-api/logger"
	"github.com/andrewpaige1/flashcards-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the database named by env and applies the schema.
func Connect(env Environment, log *logger.Logger) (*gorm.DB, error) {
	gormLog, err := newGormLogger(log, env.GormLogLevel)
	if err != nil {
		log.Warn("invalid GORM_LOG_LEVEL, using default", "value", env.GormLogLevel, "error", err)
	}
	return Open(env.DBDriver, env.DBURL, gormLog)
}

// Open opens driver/dsn with the given gorm logger and migrates it.
func Open(driver, dsn string, gormLog gormlogger.Interface) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(withForeignKeys(dsn))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("access sqlite handle: %w", err)
		}
		// One connection keeps in-memory databases and pragmas consistent.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := models.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// withForeignKeys makes sure sqlite enforces the cascade constraints.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}
