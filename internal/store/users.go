package store

import (
	"context"

	"github.com/homehub-dev/homehub/internal/models"
	"gorm.io/gorm/clause"
)

// FindUserByUsername returns the user with the given username.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	conn, cancel := s.session(ctx)
	defer cancel()

	var user models.User

	if err := conn.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

// FindUserByID returns the user with the given id.
func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	conn, cancel := s.session(ctx)
	defer cancel()

	var user models.User

	if err := conn.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

// InsertUser persists a new user. The unique index on username is the
// authoritative guard against duplicates and surfaces as ErrDuplicateKey.
func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	conn, cancel := s.session(ctx)
	defer cancel()

	return translate(conn.Omit(clause.Associations).Create(user).Error)
}
