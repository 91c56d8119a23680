// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration; ports, TLS and log level
// stay in WAFFLE's CoreConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI             string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase        string // Database name within MongoDB
	MongoUsersCollection string // Collection holding user documents
	MongoMaxPoolSize     uint64
	MongoMinPoolSize     uint64

	// Notifier (chat service) configuration
	NotifierURL     string        // Base URL, e.g. http://localhost:4000
	NotifierTimeout time.Duration // Per-call timeout for /chat and /register-toast

	// Password hashing
	BcryptCost int

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth string
}
