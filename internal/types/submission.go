package types

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one row per (assignment, student). Resubmission updates the row in
// place and bumps Attempt; rows are never appended. Late is a flag, it never blocks
// the submit transition.
type Submission struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssignmentID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_assignment_student" json:"assignment_id"`
	Assignment   *Assignment `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	StudentID    uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_assignment_student" json:"student_id"`
	Student      *User       `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	StorageKey   string      `gorm:"column:storage_key;not null" json:"storage_key"`
	SubmittedAt  time.Time   `gorm:"column:submitted_at;not null" json:"submitted_at"`
	Late         bool        `gorm:"column:late;not null;default:false" json:"late"`
	Attempt      int         `gorm:"column:attempt;not null;default:1" json:"attempt"`
	Grade        *float64    `gorm:"column:grade" json:"grade,omitempty"`
	Feedback     *string     `gorm:"column:feedback" json:"feedback,omitempty"`
	GradedAt     *time.Time  `gorm:"column:graded_at" json:"graded_at,omitempty"`
	GradedByID   *uuid.UUID  `gorm:"type:uuid" json:"graded_by_id,omitempty"`
}

func (Submission) TableName() string { return "submissions" }

// Graded reports whether the submission reached the terminal state.
func (s *Submission) Graded() bool {
	return s != nil && s.GradedAt != nil
}
