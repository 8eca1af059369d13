package types

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment targets EITHER a section (current shape) OR a whole course (legacy
// shape meaning "member of every section of that course"). Exactly one of the two
// must be set; the schema enforces it with a NOT VALID check constraint so
// historical rows survive migration and surface as invariant violations at read
// time instead of being silently repaired.
type Enrollment struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	Student   *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	SectionID *uuid.UUID `gorm:"type:uuid;index" json:"section_id,omitempty"`
	Section   *Section   `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"section,omitempty"`
	CourseID  *uuid.UUID `gorm:"type:uuid;index" json:"course_id,omitempty"`
	Course    *Course    `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Enrollment) TableName() string { return "enrollments" }

// Malformed reports whether the row violates the single-target invariant.
func (e *Enrollment) Malformed() bool {
	if e == nil {
		return false
	}
	return (e.SectionID == nil) == (e.CourseID == nil)
}
