// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging); AppConfig is everything
// specific to this application.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Bearer token configuration
	TokenSecret string // Secret key for signing bearer tokens (must be strong in production)

	// Upload storage configuration
	UploadDir string // Local directory for uploaded images (e.g., "./uploads")
	UploadURL string // URL prefix for serving uploaded images (e.g., "/files")

	// Background reconcile sweep
	ReconcileInterval time.Duration // How often the membership reconcile job runs
}
