package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	Code            string         `gorm:"column:code;not null;uniqueIndex" json:"code"`
	OwningTeacherID *uuid.UUID     `gorm:"type:uuid;index" json:"owning_teacher_id,omitempty"`
	OwningTeacher   *User          `gorm:"constraint:OnDelete:SET NULL;foreignKey:OwningTeacherID;references:ID" json:"owning_teacher,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "courses" }
