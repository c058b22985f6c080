// Package store persists users, hubs, devices, cameras and family members.
//
// Every call runs with its own bounded timeout and returns one of the package
// sentinel errors, so callers never see driver specific failures. Rows owned
// by another user are reported as ErrNotFound.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/homehub-dev/homehub/db"
	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates that no matching row exists for the caller.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey indicates that a unique constraint rejected a write.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrUnavailable indicates a timeout, connectivity loss or any other
	// failure of the underlying database.
	ErrUnavailable = errors.New("store unavailable")
)

const DefaultTimeout = 5 * time.Second

// Store is the gorm backed persistence layer. It is safe for concurrent use.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

// New wraps an open connection. A non-positive timeout selects DefaultTimeout.
func New(conn *gorm.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{db: conn, timeout: timeout}
}

// session returns a handle bound to a context that expires after the store
// timeout. The returned cancel func must always be called.
func (s *Store) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

// WithTx runs fn inside a transaction. The transaction is rolled back when
// fn returns an error or panics and committed otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	conn, cancel := s.session(ctx)
	defer cancel()

	return translate(conn.Transaction(fn))
}

// Ping checks that the database answers within the store timeout.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil {
		return translate(err)
	}

	return translate(sqlDB.PingContext(ctx))
}

// translate maps driver and gorm errors onto the package sentinels.
// Sentinels that are already present in the chain pass through unchanged.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicateKey), errors.Is(err, ErrUnavailable):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case db.IsDuplicateKey(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
