package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FamilyMember is a person the recognition pipeline should know by face.
// FaceEncoding is produced and consumed by that pipeline; it is stored as-is.
type FamilyMember struct {
	ID           string    `gorm:"type:varchar(255);primaryKey"`
	Name         string    `gorm:"type:varchar(255);not null"`
	ImageURL     string    `gorm:"type:varchar(512)"`
	FaceEncoding []byte    `json:"-"`
	CreatedAt    time.Time `gorm:"not null"`
	UserID       string    `gorm:"type:varchar(255);not null;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (f *FamilyMember) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
