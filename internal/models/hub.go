package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Hub struct {
	ID            string    `gorm:"type:varchar(255);primaryKey"`
	Name          string    `gorm:"type:varchar(255);not null"`
	UserID        string    `gorm:"type:varchar(255);not null;index"`
	ConnectedAt   time.Time `gorm:"not null"`
	LastHeartbeat time.Time `gorm:"not null;index"`
	Temperature   *float64
	Humidity      *float64
	AlarmState    bool `gorm:"not null;default:false"`
	Online        bool `gorm:"not null;default:false;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (h *Hub) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
