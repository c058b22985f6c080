package store

import (
	"context"
	"time"

	"github.com/homehub-dev/homehub/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateDevice attaches a new device to one of userID's hubs.
func (s *Store) CreateDevice(ctx context.Context, userID, hubID, name, deviceType string, at time.Time) (*models.Device, error) {
	var device *models.Device

	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := findHub(tx, userID, hubID); err != nil {
			return err
		}

		device = &models.Device{
			Name:        name,
			DeviceType:  deviceType,
			Status:      models.DeviceStatusUnknown,
			LastUpdated: at.UTC(),
			HubID:       hubID,
		}

		return tx.Omit(clause.Associations).Create(device).Error
	})
	if err != nil {
		return nil, err
	}

	return device, nil
}

// ListDevices returns the devices of one of userID's hubs.
func (s *Store) ListDevices(ctx context.Context, userID, hubID string) ([]models.Device, error) {
	var devices []models.Device

	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := findHub(tx, userID, hubID); err != nil {
			return err
		}

		return tx.Where("hub_id = ?", hubID).Order("name ASC").Find(&devices).Error
	})
	if err != nil {
		return nil, err
	}

	return devices, nil
}

// UpdateDeviceStatus records a new status string for a device.
func (s *Store) UpdateDeviceStatus(ctx context.Context, userID, hubID, deviceID, status string, at time.Time) (*models.Device, error) {
	var device *models.Device

	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		if device, err = findDevice(tx, userID, hubID, deviceID); err != nil {
			return err
		}

		device.Status = status
		device.LastUpdated = at.UTC()

		return tx.Model(device).Updates(map[string]interface{}{
			"status":       device.Status,
			"last_updated": device.LastUpdated,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return device, nil
}

// DeleteDevice removes a single device.
func (s *Store) DeleteDevice(ctx context.Context, userID, hubID, deviceID string) error {
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		device, err := findDevice(tx, userID, hubID, deviceID)
		if err != nil {
			return err
		}

		return tx.Delete(device).Error
	})
}

func findDevice(conn *gorm.DB, userID, hubID, deviceID string) (*models.Device, error) {
	if _, err := findHub(conn, userID, hubID); err != nil {
		return nil, err
	}

	var device models.Device

	if err := conn.Where("id = ? AND hub_id = ?", deviceID, hubID).First(&device).Error; err != nil {
		return nil, err
	}

	return &device, nil
}
