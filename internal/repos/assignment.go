package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campushub/campushub-backend/internal/logger"
	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
	"github.com/campushub/campushub-backend/internal/types"
)

type AssignmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *types.Assignment) (*types.Assignment, error)
	GetByID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.Assignment, error)
	ListBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*types.Assignment, error)
	Delete(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) error
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	repoLog := baseLog.With("repo", "AssignmentRepo")
	return &assignmentRepo{db: db, log: repoLog}
}

func (ar *assignmentRepo) Create(ctx context.Context, tx *gorm.DB, assignment *types.Assignment) (*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if err := transaction.WithContext(ctx).Create(assignment).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return assignment, nil
}

func (ar *assignmentRepo) GetByID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var assignment types.Assignment
	if err := transaction.WithContext(ctx).
		Where("id = ?", assignmentID).
		First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, pkgerrors.Store(err)
	}
	return &assignment, nil
}

func (ar *assignmentRepo) ListBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var assignments []*types.Assignment
	if err := transaction.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("due_at").
		Find(&assignments).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return assignments, nil
}

func (ar *assignmentRepo) Delete(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	res := transaction.WithContext(ctx).
		Where("id = ?", assignmentID).
		Delete(&types.Assignment{})
	if res.Error != nil {
		return pkgerrors.Store(res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}
