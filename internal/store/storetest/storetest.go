// Package storetest provides throwaway in-memory databases for tests.
package storetest

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/homehub-dev/homehub/db"
	"github.com/homehub-dev/homehub/internal/config"
	"github.com/homehub-dev/homehub/internal/store"
	"gorm.io/gorm"
)

// Open returns a migrated, private in-memory SQLite database that is closed
// when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		URL:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
	}

	conn, err := db.Open(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close(conn)
	})

	if err := db.MigrateDatabase(conn); err != nil {
		t.Fatalf("migrating sqlite: %v", err)
	}

	return conn
}

// New returns a Store over a fresh database from Open.
func New(t testing.TB) *store.Store {
	t.Helper()
	return store.New(Open(t), time.Second)
}
