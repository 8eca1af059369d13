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

type SectionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, section *types.Section) (*types.Section, error)
	GetByID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.Section, error)
	ListByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Section, error)
	ListForTeacher(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.Section, error)
	ListForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Section, error)
	OwnedBy(ctx context.Context, tx *gorm.DB, sectionID, teacherID uuid.UUID) (bool, error)
	SetDelegatedTeacher(ctx context.Context, tx *gorm.DB, sectionID, teacherID uuid.UUID) error
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	repoLog := baseLog.With("repo", "SectionRepo")
	return &sectionRepo{db: db, log: repoLog}
}

func (sr *sectionRepo) Create(ctx context.Context, tx *gorm.DB, section *types.Section) (*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(section).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return section, nil
}

func (sr *sectionRepo) GetByID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var section types.Section
	if err := transaction.WithContext(ctx).
		Where("id = ?", sectionID).
		First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, pkgerrors.Store(err)
	}
	return &section, nil
}

func (sr *sectionRepo) ListByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var sections []*types.Section
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("label").
		Find(&sections).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return sections, nil
}

// ListForTeacher returns the union of delegated sections and sections of courses
// the teacher owns, i.e. everything the teacher may administer.
func (sr *sectionRepo) ListForTeacher(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var sections []*types.Section
	if err := transaction.WithContext(ctx).
		Joins("JOIN courses ON courses.id = sections.course_id").
		Where("sections.delegated_teacher_id = ? OR courses.owning_teacher_id = ?", teacherID, teacherID).
		Find(&sections).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return sections, nil
}

// ListForStudent resolves both enrollment representations in one query: direct
// section rows and legacy course rows expanded over the course's sections. Feeds
// the calendar/notification renderer.
func (sr *sectionRepo) ListForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var sections []*types.Section
	if err := transaction.WithContext(ctx).
		Distinct("sections.*").
		Joins("JOIN enrollments ON enrollments.section_id = sections.id OR enrollments.course_id = sections.course_id").
		Where("enrollments.student_id = ?", studentID).
		Find(&sections).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return sections, nil
}

// OwnedBy evaluates the ownership union (course owner OR delegated teacher) on the
// store side so callers get one answer, not two to combine.
func (sr *sectionRepo) OwnedBy(ctx context.Context, tx *gorm.DB, sectionID, teacherID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Section{}).
		Joins("JOIN courses ON courses.id = sections.course_id").
		Where("sections.id = ? AND (sections.delegated_teacher_id = ? OR courses.owning_teacher_id = ?)", sectionID, teacherID, teacherID).
		Count(&count).Error; err != nil {
		return false, pkgerrors.Store(err)
	}
	return count > 0, nil
}

func (sr *sectionRepo) SetDelegatedTeacher(ctx context.Context, tx *gorm.DB, sectionID, teacherID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Section{}).
		Where("id = ?", sectionID).
		Update("delegated_teacher_id", teacherID)
	if res.Error != nil {
		return pkgerrors.Store(res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}
