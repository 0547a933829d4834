// Package interfaces documents the core abstractions used throughout the application.
//
// Consumers declare the narrow interface they need next to the code that
// uses it, and concrete types live in the database and service packages.
// This package only ties the two together with compile-time checks.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - auth.UserStore: Credential lookup and creation (internal/auth/service.go)
//   - reviews.BookCatalog, reviews.UserDirectory: Existence checks for the review path (internal/reviews/service.go)
//   - reviews.Ledger: Append and list reviews (internal/reviews/service.go)
//   - http.BookStore: Catalog reads and writes (internal/http/stores.go)
//   - http.SettingsReader: Last reconciliation status (internal/http/tasks.go)
//
// ## Background Job Interfaces
//
//   - tasks.BookIDLister, tasks.AggregateRepairer, tasks.StatusRecorder: Inputs of the
//     aggregate reconciler (internal/tasks/reconcile.go)
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Declare the interface where it is consumed and add a compile-time
//     check to checks.go:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
