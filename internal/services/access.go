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

// Membership is the one resolved answer both enrollment representations collapse
// into. Callers branch on OK(), never on which representation produced it.
type Membership int

const (
	MembershipNone Membership = iota
	// MembershipDirectSection comes from a section-targeted enrollment row.
	MembershipDirectSection
	// MembershipFromCourse comes from a legacy course-targeted row expanded over
	// the course's sections.
	MembershipFromCourse
)

func (m Membership) OK() bool { return m != MembershipNone }

func (m Membership) String() string {
	switch m {
	case MembershipDirectSection:
		return "direct_section"
	case MembershipFromCourse:
		return "from_course"
	default:
		return "none"
	}
}

// AccessService answers the two questions every gateway asks: "is this student a
// member of that scope" and "may this teacher administer it". All authorization
// decisions in the backend route through here.
type AccessService interface {
	ResolveSectionMembership(ctx context.Context, tx *gorm.DB, studentID, sectionID uuid.UUID) (Membership, error)
	ResolveCourseMembership(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (Membership, error)
	ResolveSectionOwnership(ctx context.Context, tx *gorm.DB, teacherID, sectionID uuid.UUID) (bool, error)
	ResolveCourseOwnership(ctx context.Context, tx *gorm.DB, teacherID, courseID uuid.UUID) (bool, error)
	// AuthorizeSectionRead applies the shared gateway read contract for the caller
	// in ctx: admin always, teacher via ownership, student via membership.
	AuthorizeSectionRead(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) error
	// AuthorizeSectionWrite is the teacher-side mutation gate: admin or owner.
	AuthorizeSectionWrite(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) error
}

type accessService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	sectionRepo    repos.SectionRepo
	enrollmentRepo repos.EnrollmentRepo
}

func NewAccessService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	sectionRepo repos.SectionRepo,
	enrollmentRepo repos.EnrollmentRepo,
) AccessService {
	serviceLog := baseLog.With("service", "AccessService")
	return &accessService{
		db:             db,
		log:            serviceLog,
		courseRepo:     courseRepo,
		sectionRepo:    sectionRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (as *accessService) ResolveSectionMembership(ctx context.Context, tx *gorm.DB, studentID, sectionID uuid.UUID) (Membership, error) {
	transaction := tx
	if transaction == nil {
		transaction = as.db
	}

	section, err := as.sectionRepo.GetByID(ctx, transaction, sectionID)
	if err != nil {
		return MembershipNone, fmt.Errorf("resolve section membership: %w", err)
	}

	rows, err := as.enrollmentRepo.FindResolvingToSection(ctx, transaction, studentID, sectionID, section.CourseID)
	if err != nil {
		return MembershipNone, fmt.Errorf("resolve section membership: %w", err)
	}
	return as.classify(rows)
}

func (as *accessService) ResolveCourseMembership(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (Membership, error) {
	transaction := tx
	if transaction == nil {
		transaction = as.db
	}

	if _, err := as.courseRepo.GetByID(ctx, transaction, courseID); err != nil {
		return MembershipNone, fmt.Errorf("resolve course membership: %w", err)
	}

	rows, err := as.enrollmentRepo.FindResolvingToCourse(ctx, transaction, studentID, courseID)
	if err != nil {
		return MembershipNone, fmt.Errorf("resolve course membership: %w", err)
	}
	return as.classify(rows)
}

// classify folds the matched rows into one tagged value. A malformed row is data
// corruption and must surface as an error, not read as absence, so it is checked
// before any membership arm.
func (as *accessService) classify(rows []*types.Enrollment) (Membership, error) {
	membership := MembershipNone
	for _, row := range rows {
		if row.Malformed() {
			as.log.Error("enrollment row with malformed target, refusing to resolve",
				"enrollment_id", row.ID, "student_id", row.StudentID)
			return MembershipNone, fmt.Errorf("enrollment %s: %w", row.ID, pkgerrors.ErrInvariantViolation)
		}
		if row.SectionID != nil {
			membership = MembershipDirectSection
		} else if membership == MembershipNone {
			membership = MembershipFromCourse
		}
	}
	return membership, nil
}

func (as *accessService) ResolveSectionOwnership(ctx context.Context, tx *gorm.DB, teacherID, sectionID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = as.db
	}

	if _, err := as.sectionRepo.GetByID(ctx, transaction, sectionID); err != nil {
		return false, fmt.Errorf("resolve section ownership: %w", err)
	}
	owned, err := as.sectionRepo.OwnedBy(ctx, transaction, sectionID, teacherID)
	if err != nil {
		return false, fmt.Errorf("resolve section ownership: %w", err)
	}
	return owned, nil
}

// ResolveCourseOwnership is strictly course-level: a teacher delegated at one
// section owns that section and its children, never the whole course.
func (as *accessService) ResolveCourseOwnership(ctx context.Context, tx *gorm.DB, teacherID, courseID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = as.db
	}

	if _, err := as.courseRepo.GetByID(ctx, transaction, courseID); err != nil {
		return false, fmt.Errorf("resolve course ownership: %w", err)
	}
	owned, err := as.courseRepo.OwnedBy(ctx, transaction, courseID, teacherID)
	if err != nil {
		return false, fmt.Errorf("resolve course ownership: %w", err)
	}
	return owned, nil
}

func (as *accessService) AuthorizeSectionRead(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) error {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return err
	}

	switch rd.Role {
	case types.RoleAdmin:
		return nil
	case types.RoleTeacher:
		owned, err := as.ResolveSectionOwnership(ctx, tx, rd.UserID, sectionID)
		if err != nil {
			return err
		}
		if !owned {
			return pkgerrors.ErrNotAuthorized
		}
		return nil
	case types.RoleStudent:
		membership, err := as.ResolveSectionMembership(ctx, tx, rd.UserID, sectionID)
		if err != nil {
			return err
		}
		if !membership.OK() {
			return pkgerrors.ErrNotAuthorized
		}
		return nil
	default:
		return pkgerrors.ErrNotAuthorized
	}
}

func (as *accessService) AuthorizeSectionWrite(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) error {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return err
	}

	switch rd.Role {
	case types.RoleAdmin:
		return nil
	case types.RoleTeacher:
		owned, err := as.ResolveSectionOwnership(ctx, tx, rd.UserID, sectionID)
		if err != nil {
			return err
		}
		if !owned {
			return pkgerrors.ErrNotAuthorized
		}
		return nil
	default:
		return pkgerrors.ErrNotAuthorized
	}
}
