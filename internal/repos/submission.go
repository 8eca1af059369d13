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

type SubmissionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, submission *types.Submission) (*types.Submission, error)
	Save(ctx context.Context, tx *gorm.DB, submission *types.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, submissionID uuid.UUID) (*types.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, tx *gorm.DB, assignmentID, studentID uuid.UUID) (*types.Submission, error)
	ListByAssignmentID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.Submission, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	repoLog := baseLog.With("repo", "SubmissionRepo")
	return &submissionRepo{db: db, log: repoLog}
}

func (sr *submissionRepo) Create(ctx context.Context, tx *gorm.DB, submission *types.Submission) (*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(submission).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return submission, nil
}

func (sr *submissionRepo) Save(ctx context.Context, tx *gorm.DB, submission *types.Submission) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Save(submission).Error; err != nil {
		return pkgerrors.Store(err)
	}
	return nil
}

func (sr *submissionRepo) GetByID(ctx context.Context, tx *gorm.DB, submissionID uuid.UUID) (*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var submission types.Submission
	if err := transaction.WithContext(ctx).
		Where("id = ?", submissionID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, pkgerrors.Store(err)
	}
	return &submission, nil
}

func (sr *submissionRepo) GetByAssignmentAndStudent(ctx context.Context, tx *gorm.DB, assignmentID, studentID uuid.UUID) (*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var submission types.Submission
	if err := transaction.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, pkgerrors.Store(err)
	}
	return &submission, nil
}

func (sr *submissionRepo) ListByAssignmentID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var submissions []*types.Submission
	if err := transaction.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at").
		Find(&submissions).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return submissions, nil
}
