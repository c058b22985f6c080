package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Camera struct {
	ID           string  `gorm:"type:varchar(255);primaryKey"`
	Name         string  `gorm:"type:varchar(255);not null"`
	IsOnline     bool    `gorm:"not null;default:true"`
	LastMotion   *time.Time
	LastImageURL *string   `gorm:"type:varchar(512)"`
	CreatedAt    time.Time `gorm:"not null"`
	HubID        *string   `gorm:"type:varchar(255);index"` // nil once the hub is deleted
	UserID       string    `gorm:"type:varchar(255);not null;index"`

	// Relationships
	Hub  *Hub `gorm:"foreignKey:HubID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (c *Camera) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
