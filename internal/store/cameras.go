package store

import (
	"context"
	"time"

	"github.com/homehub-dev/homehub/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateCamera registers a camera for userID. When hubID is non-nil the hub
// must belong to the same user.
func (s *Store) CreateCamera(ctx context.Context, userID, name string, hubID *string) (*models.Camera, error) {
	var camera *models.Camera

	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		if hubID != nil {
			if _, err := findHub(tx, userID, *hubID); err != nil {
				return err
			}
		}

		camera = &models.Camera{
			Name:     name,
			IsOnline: true,
			HubID:    hubID,
			UserID:   userID,
		}

		return tx.Omit(clause.Associations).Create(camera).Error
	})
	if err != nil {
		return nil, err
	}

	return camera, nil
}

// ListCameras returns userID's cameras, oldest first.
func (s *Store) ListCameras(ctx context.Context, userID string) ([]models.Camera, error) {
	conn, cancel := s.session(ctx)
	defer cancel()

	var cameras []models.Camera

	if err := conn.Where("user_id = ?", userID).Order("created_at ASC").Find(&cameras).Error; err != nil {
		return nil, translate(err)
	}

	return cameras, nil
}

// RecordCameraMotion stamps a motion event and, when imageURL is non-empty,
// the reference of the image captured for it.
func (s *Store) RecordCameraMotion(ctx context.Context, userID, cameraID, imageURL string, at time.Time) (*models.Camera, error) {
	var camera *models.Camera

	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		if camera, err = findCamera(tx, userID, cameraID); err != nil {
			return err
		}

		at = at.UTC()
		camera.LastMotion = &at
		updates := map[string]interface{}{"last_motion": at}

		if imageURL != "" {
			camera.LastImageURL = &imageURL
			updates["last_image_url"] = imageURL
		}

		return tx.Model(camera).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return camera, nil
}

// DeleteCamera removes a camera and its family member associations.
func (s *Store) DeleteCamera(ctx context.Context, userID, cameraID string) error {
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		camera, err := findCamera(tx, userID, cameraID)
		if err != nil {
			return err
		}

		if err := tx.Where("camera_id = ?", camera.ID).Delete(&models.CameraFamilyMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(camera).Error
	})
}

func findCamera(conn *gorm.DB, userID, cameraID string) (*models.Camera, error) {
	var camera models.Camera

	if err := conn.Where("id = ? AND user_id = ?", cameraID, userID).First(&camera).Error; err != nil {
		return nil, err
	}

	return &camera, nil
}
