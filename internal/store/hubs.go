package store

import (
	"context"
	"time"

	"github.com/homehub-dev/homehub/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Telemetry is a live reading reported by a hub. Nil readings leave the
// stored value untouched.
type Telemetry struct {
	Temperature *float64
	Humidity    *float64
	AlarmState  bool
}

// TelemetryReport is the state of a hub after a telemetry reading.
type TelemetryReport struct {
	Hub models.Hub

	// AlarmRaised is set when the reading turned the alarm on.
	AlarmRaised bool
}

// CreateHub registers a new hub for userID. The hub starts offline until it
// reports its first heartbeat.
func (s *Store) CreateHub(ctx context.Context, userID, name string, at time.Time) (*models.Hub, error) {
	conn, cancel := s.session(ctx)
	defer cancel()

	at = at.UTC()

	hub := models.Hub{
		Name:          name,
		UserID:        userID,
		ConnectedAt:   at,
		LastHeartbeat: at,
	}

	if err := conn.Omit(clause.Associations).Create(&hub).Error; err != nil {
		return nil, translate(err)
	}

	return &hub, nil
}

// ListHubs returns the hubs owned by userID, oldest first.
func (s *Store) ListHubs(ctx context.Context, userID string) ([]models.Hub, error) {
	conn, cancel := s.session(ctx)
	defer cancel()

	var hubs []models.Hub

	if err := conn.Where("user_id = ?", userID).Order("connected_at ASC").Find(&hubs).Error; err != nil {
		return nil, translate(err)
	}

	return hubs, nil
}

// GetHub returns hubID if it belongs to userID.
func (s *Store) GetHub(ctx context.Context, userID, hubID string) (*models.Hub, error) {
	conn, cancel := s.session(ctx)
	defer cancel()

	hub, err := findHub(conn, userID, hubID)
	if err != nil {
		return nil, translate(err)
	}

	return hub, nil
}

// RenameHub changes the display name of a hub.
func (s *Store) RenameHub(ctx context.Context, userID, hubID, name string) (*models.Hub, error) {
	var hub *models.Hub

	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		if hub, err = findHub(tx, userID, hubID); err != nil {
			return err
		}

		hub.Name = name
		return tx.Model(hub).Update("name", name).Error
	})
	if err != nil {
		return nil, err
	}

	return hub, nil
}

// RecordHubTelemetry stores a reading and marks the hub online with a fresh
// heartbeat.
func (s *Store) RecordHubTelemetry(ctx context.Context, userID, hubID string, t Telemetry, at time.Time) (*TelemetryReport, error) {
	var report TelemetryReport

	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		hub, err := findHub(tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID, hubID)
		if err != nil {
			return err
		}

		report.AlarmRaised = t.AlarmState && !hub.AlarmState

		updates := map[string]interface{}{
			"alarm_state":    t.AlarmState,
			"online":         true,
			"last_heartbeat": at.UTC(),
		}

		if t.Temperature != nil {
			updates["temperature"] = *t.Temperature
		}

		if t.Humidity != nil {
			updates["humidity"] = *t.Humidity
		}

		if err := tx.Model(hub).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", hubID).First(&report.Hub).Error
	})
	if err != nil {
		return nil, err
	}

	return &report, nil
}

// DeleteHub removes a hub together with its devices. Cameras attached to the
// hub are kept and detached.
func (s *Store) DeleteHub(ctx context.Context, userID, hubID string) error {
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		hub, err := findHub(tx, userID, hubID)
		if err != nil {
			return err
		}

		if err := tx.Where("hub_id = ?", hub.ID).Delete(&models.Device{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Camera{}).Where("hub_id = ?", hub.ID).Update("hub_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(hub).Error
	})
}

// MarkStaleHubsOffline flips every online hub whose last heartbeat is older
// than cutoff to offline and returns the hubs it changed. A hub that reports
// a heartbeat while the sweep runs stays online and is not returned.
func (s *Store) MarkStaleHubsOffline(ctx context.Context, cutoff time.Time) ([]models.Hub, error) {
	var changed []models.Hub

	cutoff = cutoff.UTC()

	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		var stale []models.Hub

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("online = ? AND last_heartbeat < ?", true, cutoff).
			Find(&stale).Error
		if err != nil {
			return err
		}

		for _, hub := range stale {
			res := tx.Model(&models.Hub{}).
				Where("id = ? AND online = ? AND last_heartbeat < ?", hub.ID, true, cutoff).
				Update("online", false)
			if res.Error != nil {
				return res.Error
			}

			if res.RowsAffected == 0 {
				continue
			}

			hub.Online = false
			changed = append(changed, hub)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return changed, nil
}

func findHub(conn *gorm.DB, userID, hubID string) (*models.Hub, error) {
	var hub models.Hub

	if err := conn.Where("id = ? AND user_id = ?", hubID, userID).First(&hub).Error; err != nil {
		return nil, err
	}

	return &hub, nil
}
