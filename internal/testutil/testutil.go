package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"jokes-api/internal/config"
	"jokes-api/internal/db"
)

// OpenStore opens an in-memory SQLite store private to the calling test.
// The store is closed via t.Cleanup.
func OpenStore(t *testing.T) *db.Store {
	t.Helper()
	// shared cache keeps the database alive across pooled connections
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	s, err := db.Open(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: dsn}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Config returns a configuration with the default creator ids and no
// signing key.
func Config() *config.Config {
	return &config.Config{
		LogLevel: "debug",
		Server:   config.ServerConfig{Addr: "127.0.0.1", Port: "0"},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite},
		Creators: config.CreatorConfig{
			CreatorID:  config.DefaultCreatorID,
			ReassignID: config.DefaultReassignID,
		},
		Markdown: config.MarkdownConfig{HardWraps: true, Typographer: true},
	}
}

// SeedUser inserts a user with the given id.
func SeedUser(t *testing.T, s *db.Store, id, name string) *db.User {
	t.Helper()
	u := &db.User{ID: id, Name: name, Email: name + "@example.com"}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}
