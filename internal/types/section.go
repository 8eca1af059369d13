package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Section is the unit every resource hangs off. MemberCount is denormalized and
// must equal the number of enrollments resolving to the section; it is only ever
// moved by the conditional updates in EnrollmentRepo.
type Section struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course             *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Label              string         `gorm:"column:label;not null" json:"label"`
	DelegatedTeacherID *uuid.UUID     `gorm:"type:uuid;index" json:"delegated_teacher_id,omitempty"`
	DelegatedTeacher   *User          `gorm:"constraint:OnDelete:SET NULL;foreignKey:DelegatedTeacherID;references:ID" json:"delegated_teacher,omitempty"`
	Capacity           int            `gorm:"column:capacity;not null" json:"capacity"`
	MemberCount        int            `gorm:"column:member_count;not null;default:0" json:"member_count"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Section) TableName() string { return "sections" }
