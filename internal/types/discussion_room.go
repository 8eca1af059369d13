package types

import (
	"time"

	"github.com/google/uuid"
)

// DiscussionRoom is the lazily materialized companion of a section. The unique
// index on SectionID is what makes concurrent first access converge on one row.
// Rooms are never deleted.
type DiscussionRoom struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SectionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"section_id"`
	Section   *Section  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"section,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (DiscussionRoom) TableName() string { return "discussion_rooms" }
