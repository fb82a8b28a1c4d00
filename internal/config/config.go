// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Backend names accepted in KONTOPARSE_BACKEND.
const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// AppConfig holds every runtime setting of the importer.
type AppConfig struct {
	Backend            string // "sqlite" or "firestore"
	DatabasePath       string // sqlite backend
	FirestoreProjectID string // firestore backend
	Source             string // tag stored on every imported record
	LogLevel           string
}

// Load reads the configuration. A missing .env file is not an error; the OS
// environment and the defaults below then apply.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		Backend:            getEnv("KONTOPARSE_BACKEND", BackendSQLite),
		DatabasePath:       getEnv("KONTOPARSE_DB_PATH", "./kontoparse.db"),
		FirestoreProjectID: getEnv("KONTOPARSE_FIRESTORE_PROJECT", ""),
		Source:             getEnv("KONTOPARSE_SOURCE", "kontoparse-cli"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if cfg.Backend != BackendSQLite && cfg.Backend != BackendFirestore {
		return nil, fmt.Errorf("invalid KONTOPARSE_BACKEND %q (must be %q or %q)", cfg.Backend, BackendSQLite, BackendFirestore)
	}
	if cfg.Backend == BackendFirestore && cfg.FirestoreProjectID == "" {
		return nil, fmt.Errorf("KONTOPARSE_FIRESTORE_PROJECT is required when KONTOPARSE_BACKEND is %q", BackendFirestore)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
