package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Assignment struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SectionID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"section_id"`
	Section      *Section       `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"section,omitempty"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	Instructions string         `gorm:"column:instructions" json:"instructions"`
	DueAt        time.Time      `gorm:"column:due_at;not null" json:"due_at"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Assignment) TableName() string { return "assignments" }
