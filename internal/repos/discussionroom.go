package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campushub/campushub-backend/internal/logger"
	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
	"github.com/campushub/campushub-backend/internal/types"
)

type DiscussionRoomRepo interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.DiscussionRoom, error)
	GetBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.DiscussionRoom, error)
}

type discussionRoomRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiscussionRoomRepo(db *gorm.DB, baseLog *logger.Logger) DiscussionRoomRepo {
	repoLog := baseLog.With("repo", "DiscussionRoomRepo")
	return &discussionRoomRepo{db: db, log: repoLog}
}

// GetOrCreate materializes the section's room on first access. The insert rides
// the unique index on section_id (ON CONFLICT DO NOTHING), so concurrent first
// callers all converge on the same row; a separate exists-check would race.
func (dr *discussionRoomRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.DiscussionRoom, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	room := &types.DiscussionRoom{ID: uuid.New(), SectionID: sectionID}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "section_id"}},
			DoNothing: true,
		}).
		Create(room).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}

	// Re-read: either our insert landed or somebody else's did.
	return dr.GetBySectionID(ctx, transaction, sectionID)
}

func (dr *discussionRoomRepo) GetBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.DiscussionRoom, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var room types.DiscussionRoom
	if err := transaction.WithContext(ctx).
		Where("section_id = ?", sectionID).
		First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, pkgerrors.Store(err)
	}
	return &room, nil
}
