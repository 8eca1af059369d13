package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campushub/campushub-backend/internal/logger"
	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
	"github.com/campushub/campushub-backend/internal/repos"
	"github.com/campushub/campushub-backend/internal/types"
)

// SubmissionService drives the submitted -> resubmitted -> graded machine. One row
// per (assignment, student): Submit updates in place, Grade overwrites
// idempotently, and lateness is recorded but never blocks.
type SubmissionService interface {
	Submit(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, filename string, file io.Reader) (*types.Submission, error)
	Grade(ctx context.Context, tx *gorm.DB, submissionID uuid.UUID, grade float64, feedback *string) (*types.Submission, error)
	Get(ctx context.Context, tx *gorm.DB, submissionID uuid.UUID) (*types.Submission, error)
	GetMine(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.Submission, error)
	ListForAssignment(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.Submission, error)
}

type submissionService struct {
	db             *gorm.DB
	log            *logger.Logger
	assignmentRepo repos.AssignmentRepo
	submissionRepo repos.SubmissionRepo
	accessService  AccessService
	bucketService  BucketService
}

func NewSubmissionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	assignmentRepo repos.AssignmentRepo,
	submissionRepo repos.SubmissionRepo,
	accessService AccessService,
	bucketService BucketService,
) SubmissionService {
	serviceLog := baseLog.With("service", "SubmissionService")
	return &submissionService{
		db:             db,
		log:            serviceLog,
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		accessService:  accessService,
		bucketService:  bucketService,
	}
}

// Submit creates or updates the student's single submission row. Enrollment in
// the assignment's section is required; past-due uploads go through with the late
// flag set. A graded submission is closed.
func (ss *submissionService) Submit(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, filename string, file io.Reader) (*types.Submission, error) {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if rd.Role != types.RoleStudent {
		return nil, pkgerrors.ErrNotAuthorized
	}

	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	assignment, err := ss.assignmentRepo.GetByID(ctx, transaction, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	membership, err := ss.accessService.ResolveSectionMembership(ctx, transaction, rd.UserID, assignment.SectionID)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if !membership.OK() {
		return nil, pkgerrors.ErrNotAuthorized
	}

	now := time.Now()
	late := now.After(assignment.DueAt)

	existing, err := ss.submissionRepo.GetByAssignmentAndStudent(ctx, transaction, assignmentID, rd.UserID)
	if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, fmt.Errorf("submit: %w", err)
	}

	if existing != nil {
		if existing.Graded() {
			return nil, fmt.Errorf("assignment %s: %w", assignmentID, pkgerrors.ErrAlreadyGraded)
		}
		if err := ss.bucketService.ReplaceFile(ctx, existing.StorageKey, file); err != nil {
			ss.log.Error("Resubmission upload failed", "error", err, "submission_id", existing.ID)
			return nil, fmt.Errorf("submit: %w", err)
		}
		existing.SubmittedAt = now
		existing.Late = late
		existing.Attempt++
		if err := ss.submissionRepo.Save(ctx, transaction, existing); err != nil {
			return nil, fmt.Errorf("submit: %w", err)
		}
		ss.log.Info("Submission replaced", "submission_id", existing.ID, "attempt", existing.Attempt, "late", late)
		return existing, nil
	}

	submissionID := uuid.New()
	storageKey := fmt.Sprintf("submissions/%s/%s%s", assignmentID, rd.UserID, path.Ext(filename))
	if err := ss.bucketService.UploadFile(ctx, storageKey, file); err != nil {
		ss.log.Error("Submission upload failed", "error", err, "assignment_id", assignmentID)
		return nil, fmt.Errorf("submit: %w", err)
	}

	submission := &types.Submission{
		ID:           submissionID,
		AssignmentID: assignmentID,
		StudentID:    rd.UserID,
		StorageKey:   storageKey,
		SubmittedAt:  now,
		Late:         late,
		Attempt:      1,
	}
	if _, err := ss.submissionRepo.Create(ctx, transaction, submission); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	ss.log.Info("Submission created", "submission_id", submissionID, "assignment_id", assignmentID, "late", late)
	return submission, nil
}

// Grade is an idempotent overwrite: regrading replaces the previous grade.
func (ss *submissionService) Grade(ctx context.Context, tx *gorm.DB, submissionID uuid.UUID, grade float64, feedback *string) (*types.Submission, error) {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	submission, err := ss.submissionRepo.GetByID(ctx, transaction, submissionID)
	if err != nil {
		return nil, fmt.Errorf("grade: %w", err)
	}
	assignment, err := ss.assignmentRepo.GetByID(ctx, transaction, submission.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("grade: %w", err)
	}
	if err := ss.accessService.AuthorizeSectionWrite(ctx, transaction, assignment.SectionID); err != nil {
		return nil, err
	}

	now := time.Now()
	grader := rd.UserID
	submission.Grade = &grade
	submission.Feedback = feedback
	submission.GradedAt = &now
	submission.GradedByID = &grader
	if err := ss.submissionRepo.Save(ctx, transaction, submission); err != nil {
		return nil, fmt.Errorf("grade: %w", err)
	}
	ss.log.Info("Submission graded", "submission_id", submissionID, "grader_id", grader)
	return submission, nil
}

// Get collapses "not found" and "not yours" into one denial for student callers
// so probing for other students' submission ids leaks nothing.
func (ss *submissionService) Get(ctx context.Context, tx *gorm.DB, submissionID uuid.UUID) (*types.Submission, error) {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	submission, err := ss.submissionRepo.GetByID(ctx, transaction, submissionID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) && rd.Role == types.RoleStudent {
			return nil, pkgerrors.ErrNotAuthorized
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}

	switch rd.Role {
	case types.RoleAdmin:
		return submission, nil
	case types.RoleStudent:
		if submission.StudentID != rd.UserID {
			return nil, pkgerrors.ErrNotAuthorized
		}
		return submission, nil
	case types.RoleTeacher:
		assignment, err := ss.assignmentRepo.GetByID(ctx, transaction, submission.AssignmentID)
		if err != nil {
			return nil, fmt.Errorf("get submission: %w", err)
		}
		owned, err := ss.accessService.ResolveSectionOwnership(ctx, transaction, rd.UserID, assignment.SectionID)
		if err != nil {
			return nil, fmt.Errorf("get submission: %w", err)
		}
		if !owned {
			return nil, pkgerrors.ErrNotAuthorized
		}
		return submission, nil
	default:
		return nil, pkgerrors.ErrNotAuthorized
	}
}

func (ss *submissionService) GetMine(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.Submission, error) {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if rd.Role != types.RoleStudent {
		return nil, pkgerrors.ErrNotAuthorized
	}

	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	submission, err := ss.submissionRepo.GetByAssignmentAndStudent(ctx, transaction, assignmentID, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("get own submission: %w", err)
	}
	return submission, nil
}

func (ss *submissionService) ListForAssignment(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	assignment, err := ss.assignmentRepo.GetByID(ctx, transaction, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if err := ss.accessService.AuthorizeSectionWrite(ctx, transaction, assignment.SectionID); err != nil {
		return nil, err
	}

	submissions, err := ss.submissionRepo.ListByAssignmentID(ctx, transaction, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}
