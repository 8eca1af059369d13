package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/campushub/campushub-backend/internal/logger"
	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
	"github.com/campushub/campushub-backend/internal/types"
)

type EnrollmentRepo interface {
	// FindResolvingToSection returns every enrollment row of the student that
	// resolves to the section, either shape, plus any malformed row so callers can
	// raise the invariant violation instead of reading it as absence.
	FindResolvingToSection(ctx context.Context, tx *gorm.DB, studentID, sectionID, courseID uuid.UUID) ([]*types.Enrollment, error)
	FindResolvingToCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) ([]*types.Enrollment, error)
	CreateClaimingSeat(ctx context.Context, tx *gorm.DB, enrollment *types.Enrollment) error
	DeleteReleasingSeat(ctx context.Context, tx *gorm.DB, studentID, sectionID uuid.UUID) error
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	repoLog := baseLog.With("repo", "EnrollmentRepo")
	return &enrollmentRepo{db: db, log: repoLog}
}

// One logical-OR query per scope. Every gateway resolves membership through this,
// so materials, assignments and chat can never diverge on the answer. The
// num_nonnulls arm surfaces corrupted rows that would otherwise match nothing.
func (er *enrollmentRepo) FindResolvingToSection(ctx context.Context, tx *gorm.DB, studentID, sectionID, courseID uuid.UUID) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var rows []*types.Enrollment
	if err := transaction.WithContext(ctx).
		Where("student_id = ? AND (section_id = ? OR course_id = ? OR num_nonnulls(section_id, course_id) <> 1)",
			studentID, sectionID, courseID).
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return rows, nil
}

func (er *enrollmentRepo) FindResolvingToCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	sectionIDs := transaction.Model(&types.Section{}).Select("id").Where("course_id = ?", courseID)

	var rows []*types.Enrollment
	if err := transaction.WithContext(ctx).
		Where("student_id = ? AND (course_id = ? OR section_id IN (?) OR num_nonnulls(section_id, course_id) <> 1)",
			studentID, courseID, sectionIDs).
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return rows, nil
}

// CreateClaimingSeat claims a seat with a conditional increment before inserting
// the row, all against the store. Run it inside a transaction: check-then-insert
// in the application would race, and an in-process lock cannot serialize across
// handler instances.
func (er *enrollmentRepo) CreateClaimingSeat(ctx context.Context, tx *gorm.DB, enrollment *types.Enrollment) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if enrollment == nil || enrollment.SectionID == nil {
		return pkgerrors.ErrInvariantViolation
	}

	res := transaction.WithContext(ctx).
		Model(&types.Section{}).
		Where("id = ? AND member_count < capacity", *enrollment.SectionID).
		UpdateColumn("member_count", gorm.Expr("member_count + 1"))
	if res.Error != nil {
		return pkgerrors.Store(res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrCapacityExceeded
	}

	if err := transaction.WithContext(ctx).Create(enrollment).Error; err != nil {
		// Two concurrent enrolls for the same student both pass the service-level
		// membership check; the loser lands on the partial unique index here.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return pkgerrors.ErrAlreadyEnrolled
		}
		return pkgerrors.Store(err)
	}
	return nil
}

// DeleteReleasingSeat removes a direct section enrollment and releases the seat.
// The decrement is guarded so member_count can never go negative.
func (er *enrollmentRepo) DeleteReleasingSeat(ctx context.Context, tx *gorm.DB, studentID, sectionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	res := transaction.WithContext(ctx).
		Where("student_id = ? AND section_id = ?", studentID, sectionID).
		Delete(&types.Enrollment{})
	if res.Error != nil {
		return pkgerrors.Store(res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}

	dec := transaction.WithContext(ctx).
		Model(&types.Section{}).
		Where("id = ? AND member_count > 0", sectionID).
		UpdateColumn("member_count", gorm.Expr("member_count - 1"))
	if dec.Error != nil {
		return pkgerrors.Store(dec.Error)
	}
	return nil
}
