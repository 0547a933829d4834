package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookreviews/internal/config"
	"github.com/mrlokans/bookreviews/internal/entities"
)

const (
	defaultMaxOpenConns = 1
	defaultBusyTimeout  = 5 * time.Second
)

// Database owns the shared connection handle. It is created once at startup
// and handed to every repository constructor.
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the SQLite database, applies migrations and configures
// the connection pool.
func NewDatabase(cfg config.Database) (*Database, error) {
	return open(cfg, logger.Default.LogMode(logger.Warn))
}

// NewSilentDatabase is NewDatabase with gorm's SQL logging disabled.
func NewSilentDatabase(cfg config.Database) (*Database, error) {
	return open(cfg, logger.Default.LogMode(logger.Silent))
}

func open(cfg config.Database, gormLogger logger.Interface) (*Database, error) {
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = defaultBusyTimeout
	}

	db, err := gorm.Open(sqlite.Open(dsn(cfg)), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Review{},
		&entities.Setting{},
		&entities.AuditEvent{},
	)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", cfg.Path)

	return &Database{DB: db}, nil
}

// dsn builds a go-sqlite3 connection string with WAL journaling, a busy
// timeout and foreign key enforcement.
func dsn(cfg config.Database) string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// GetStats returns catalog-wide counters.
func (d *Database) GetStats() (totalUsers, totalBooks, totalReviews int64, err error) {
	if err = d.DB.Model(&entities.User{}).Count(&totalUsers).Error; err != nil {
		return
	}
	if err = d.DB.Model(&entities.Book{}).Count(&totalBooks).Error; err != nil {
		return
	}
	err = d.DB.Model(&entities.Review{}).Count(&totalReviews).Error
	return
}
