package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookreviews/internal/auth"
	"github.com/mrlokans/bookreviews/internal/database/books"
	ledger "github.com/mrlokans/bookreviews/internal/database/reviews"
	"github.com/mrlokans/bookreviews/internal/database/settings"
	"github.com/mrlokans/bookreviews/internal/database/users"
	"github.com/mrlokans/bookreviews/internal/http"
	"github.com/mrlokans/bookreviews/internal/reviews"
	"github.com/mrlokans/bookreviews/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Credential store
var _ auth.UserStore = (*users.Repository)(nil)
var _ reviews.UserDirectory = (*users.Repository)(nil)

// Book catalog
var _ reviews.BookCatalog = (*books.Repository)(nil)
var _ http.BookStore = (*books.Repository)(nil)
var _ tasks.BookIDLister = (*books.Repository)(nil)

// Review ledger
var _ reviews.Ledger = (*ledger.Ledger)(nil)
var _ tasks.AggregateRepairer = (*ledger.Ledger)(nil)

// Settings
var _ tasks.StatusRecorder = (*settings.Repository)(nil)
var _ http.SettingsReader = (*settings.Repository)(nil)

// =============================================================================
// Services
// =============================================================================

var _ http.Authenticator = (*auth.Service)(nil)
var _ http.ReviewService = (*reviews.Service)(nil)
