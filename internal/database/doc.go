// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, pool configuration, migrations
//	├── errors.go        # SQLite error classification (unique, busy)
//	├── users/           # Credential store
//	├── books/           # Book catalog
//	├── reviews/         # Review ledger and book aggregates
//	├── settings/        # Key/value application settings
//	└── audit/           # Audit event persistence
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type built on the shared handle:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	usersRepo := users.NewRepository(db.DB)
//	booksRepo := books.NewRepository(db.DB)
//	ledger := reviews.NewLedger(db.DB, cfg.Reviews)
//
// There is no package-level connection; every component receives the handle
// it uses at construction.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register the entity in NewDatabase's AutoMigrate call
//  5. Add compile-time interface check in internal/interfaces
package database
