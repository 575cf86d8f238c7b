package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	MaxTags   = 10
	MaxColors = 3

	StatusCompleted = "completed"
)

type Image struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_images_user_created,priority:2"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_images_user_created,priority:1"`
	PublicID  string    `json:"public_id" gorm:"not null"`
	SecureURL string    `json:"secure_url" gorm:"not null"`

	// Relationship
	Metadata *ImageMetadata `json:"metadata,omitempty" gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE"`
}

// ImageMetadata is created together with its Image and never updated on
// its own. Colors and tags are stored lower-cased.
type ImageMetadata struct {
	ID                 uint           `json:"id" gorm:"primarykey"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	ImageID            uint           `json:"image_id" gorm:"not null;uniqueIndex"`
	Tags               pq.StringArray `json:"tags" gorm:"type:text[];not null"`
	Colors             pq.StringArray `json:"colors" gorm:"type:text[];not null"`
	Description        *string        `json:"description"`
	AIProcessingStatus string         `json:"ai_processing_status" gorm:"not null;default:'pending'"`
}

func (ImageMetadata) TableName() string {
	return "image_metadata"
}
