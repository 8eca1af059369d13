package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Material struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SectionID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"section_id"`
	Section      *Section       `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"section,omitempty"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	StorageKey   string         `gorm:"column:storage_key;not null" json:"storage_key"`
	UploadedByID uuid.UUID      `gorm:"type:uuid;not null" json:"uploaded_by_id"`
	Metadata     datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Material) TableName() string { return "materials" }
