// internal/infra/config/config.go
package config

import "os"

// Config holds process-wide environment configuration.
type Config struct {
	Port string

	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	GCSBucket string
	GCPCreds  string

	// Postgres reporting mirror; empty host disables the archive.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// SendGrid; empty key disables confirmation mail. The key may also
	// come from Secret Manager (see platform/di).
	SendGridAPIKey    string
	SendGridFrom      string
	SendGridKeySecret string // Secret Manager resource name fallback

	AllowedCORSOrigins string
}

// Load reads configuration from the environment.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "farmlink-marketplace")

	return &Config{
		Port: getenvDefault("PORT", "8080"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		GCSBucket: os.Getenv("GCS_BUCKET"),
		GCPCreds:  os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getenvDefault("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getenvDefault("DB_NAME", "farmlink"),

		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendGridFrom:      os.Getenv("SENDGRID_FROM"),
		SendGridKeySecret: os.Getenv("SENDGRID_KEY_SECRET"),

		AllowedCORSOrigins: os.Getenv("ALLOWED_CORS_ORIGINS"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
