package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookreviews.db"
)

// Rating bounds used when the configuration leaves them unset.
const (
	DefaultMinRating = 1
	DefaultMaxRating = 5
)
