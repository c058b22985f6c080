package store

import (
	"context"
	"time"

	"github.com/homehub-dev/homehub/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateFamilyMember stores a family member with an opaque face encoding.
func (s *Store) CreateFamilyMember(ctx context.Context, userID, name, imageURL string, faceEncoding []byte) (*models.FamilyMember, error) {
	conn, cancel := s.session(ctx)
	defer cancel()

	member := models.FamilyMember{
		Name:         name,
		ImageURL:     imageURL,
		FaceEncoding: faceEncoding,
		UserID:       userID,
	}

	if err := conn.Omit(clause.Associations).Create(&member).Error; err != nil {
		return nil, translate(err)
	}

	return &member, nil
}

// ListFamilyMembers returns userID's family members ordered by name.
func (s *Store) ListFamilyMembers(ctx context.Context, userID string) ([]models.FamilyMember, error) {
	conn, cancel := s.session(ctx)
	defer cancel()

	var members []models.FamilyMember

	if err := conn.Where("user_id = ?", userID).Order("name ASC").Find(&members).Error; err != nil {
		return nil, translate(err)
	}

	return members, nil
}

// DeleteFamilyMember removes a family member and its camera associations.
func (s *Store) DeleteFamilyMember(ctx context.Context, userID, memberID string) error {
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		member, err := findFamilyMember(tx, userID, memberID)
		if err != nil {
			return err
		}

		if err := tx.Where("family_member_id = ?", member.ID).Delete(&models.CameraFamilyMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(member).Error
	})
}

// LinkFamilyMember lets cameraID recognise memberID. Linking an existing pair
// is a no-op.
func (s *Store) LinkFamilyMember(ctx context.Context, userID, cameraID, memberID string, at time.Time) error {
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := findCamera(tx, userID, cameraID); err != nil {
			return err
		}

		if _, err := findFamilyMember(tx, userID, memberID); err != nil {
			return err
		}

		link := models.CameraFamilyMember{
			CameraID:       cameraID,
			FamilyMemberID: memberID,
			CreatedAt:      at.UTC(),
		}

		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	})
}

// UnlinkFamilyMember removes the association between cameraID and memberID.
func (s *Store) UnlinkFamilyMember(ctx context.Context, userID, cameraID, memberID string) error {
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := findCamera(tx, userID, cameraID); err != nil {
			return err
		}

		res := tx.Where("camera_id = ? AND family_member_id = ?", cameraID, memberID).Delete(&models.CameraFamilyMember{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
}

// ListCameraFamilyMembers returns the family members linked to cameraID.
func (s *Store) ListCameraFamilyMembers(ctx context.Context, userID, cameraID string) ([]models.FamilyMember, error) {
	var members []models.FamilyMember

	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := findCamera(tx, userID, cameraID); err != nil {
			return err
		}

		return tx.
			Select("family_members.*").
			Joins("JOIN camera_family_members ON camera_family_members.family_member_id = family_members.id").
			Where("camera_family_members.camera_id = ?", cameraID).
			Order("family_members.name ASC").
			Find(&members).Error
	})
	if err != nil {
		return nil, err
	}

	return members, nil
}

func findFamilyMember(conn *gorm.DB, userID, memberID string) (*models.FamilyMember, error) {
	var member models.FamilyMember

	if err := conn.Where("id = ? AND user_id = ?", memberID, userID).First(&member).Error; err != nil {
		return nil, err
	}

	return &member, nil
}
