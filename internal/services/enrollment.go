package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campushub/campushub-backend/internal/logger"
	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
	"github.com/campushub/campushub-backend/internal/repos"
	"github.com/campushub/campushub-backend/internal/types"
)

// EnrollmentService is the capacity guard. Enroll and Unenroll are the only code
// paths that move member_count, and both lean on conditional updates in the store
// so concurrent requests on the same section serialize there, not in-process.
type EnrollmentService interface {
	Enroll(ctx context.Context, tx *gorm.DB, studentID, sectionID uuid.UUID) (*types.Enrollment, error)
	Unenroll(ctx context.Context, tx *gorm.DB, studentID, sectionID uuid.UUID) error
}

type enrollmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	enrollmentRepo repos.EnrollmentRepo
	accessService  AccessService
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	enrollmentRepo repos.EnrollmentRepo,
	accessService AccessService,
) EnrollmentService {
	serviceLog := baseLog.With("service", "EnrollmentService")
	return &enrollmentService{
		db:             db,
		log:            serviceLog,
		userRepo:       userRepo,
		enrollmentRepo: enrollmentRepo,
		accessService:  accessService,
	}
}

// Enroll direct-assigns a student into a section (admin only; self-service is
// handled elsewhere). AlreadyEnrolled covers both representations: a legacy
// course-level row makes the student a member of every section of that course.
func (es *enrollmentService) Enroll(ctx context.Context, tx *gorm.DB, studentID, sectionID uuid.UUID) (*types.Enrollment, error) {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if rd.Role != types.RoleAdmin {
		return nil, pkgerrors.ErrNotAuthorized
	}

	transaction := tx
	if transaction == nil {
		transaction = es.db
	}

	isStudent, err := es.userRepo.ExistsWithRole(ctx, transaction, studentID, types.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("enroll: %w", err)
	}
	if !isStudent {
		return nil, fmt.Errorf("enroll: student %s: %w", studentID, pkgerrors.ErrNotFound)
	}

	membership, err := es.accessService.ResolveSectionMembership(ctx, transaction, studentID, sectionID)
	if err != nil {
		return nil, fmt.Errorf("enroll: %w", err)
	}
	if membership.OK() {
		return nil, fmt.Errorf("student %s already a member of section %s (%s): %w",
			studentID, sectionID, membership, pkgerrors.ErrAlreadyEnrolled)
	}

	sid := sectionID
	enrollment := &types.Enrollment{
		ID:        uuid.New(),
		StudentID: studentID,
		SectionID: &sid,
	}

	// Seat claim and row insert commit or roll back together.
	err = transaction.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		return es.enrollmentRepo.CreateClaimingSeat(ctx, txn, enrollment)
	})
	if err != nil {
		if pkgerrors.IsDomain(err) {
			return nil, err
		}
		es.log.Error("Enroll failed", "error", err, "student_id", studentID, "section_id", sectionID)
		return nil, fmt.Errorf("enroll: %w", err)
	}

	es.log.Info("Student enrolled", "student_id", studentID, "section_id", sectionID)
	return enrollment, nil
}

func (es *enrollmentService) Unenroll(ctx context.Context, tx *gorm.DB, studentID, sectionID uuid.UUID) error {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return err
	}
	if rd.Role != types.RoleAdmin {
		return pkgerrors.ErrNotAuthorized
	}

	transaction := tx
	if transaction == nil {
		transaction = es.db
	}

	// Only direct section rows are removable here; a legacy course-level row spans
	// every section of the course and cannot be released seat by seat.
	err = transaction.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		return es.enrollmentRepo.DeleteReleasingSeat(ctx, txn, studentID, sectionID)
	})
	if err != nil {
		if pkgerrors.IsDomain(err) {
			return err
		}
		es.log.Error("Unenroll failed", "error", err, "student_id", studentID, "section_id", sectionID)
		return fmt.Errorf("unenroll: %w", err)
	}

	es.log.Info("Student unenrolled", "student_id", studentID, "section_id", sectionID)
	return nil
}
