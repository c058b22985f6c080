package models

import "time"

type CameraFamilyMember struct {
	CameraID       string    `gorm:"type:varchar(255);primaryKey"`
	FamilyMemberID string    `gorm:"type:varchar(255);primaryKey;index"`
	CreatedAt      time.Time `gorm:"not null"`

	// Relationships
	Camera       Camera       `gorm:"foreignKey:CameraID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	FamilyMember FamilyMember `gorm:"foreignKey:FamilyMemberID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}
