package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DeviceStatusUnknown = "Unknown"

type Device struct {
	ID          string    `gorm:"type:varchar(255);primaryKey"`
	Name        string    `gorm:"type:varchar(255);not null"`
	DeviceType  string    `gorm:"type:varchar(255);not null"`
	Status      string    `gorm:"type:varchar(255);not null;default:Unknown"`
	LastUpdated time.Time `gorm:"not null"`
	HubID       string    `gorm:"type:varchar(255);not null;index"`

	// Relationships
	Hub Hub `gorm:"foreignKey:HubID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (d *Device) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = DeviceStatusUnknown
	}
	return nil
}
