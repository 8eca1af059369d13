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

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, course *types.Course) (*types.Course, error)
	GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	SetOwningTeacher(ctx context.Context, tx *gorm.DB, courseID, teacherID uuid.UUID) error
	OwnedBy(ctx context.Context, tx *gorm.DB, courseID, teacherID uuid.UUID) (bool, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (cr *courseRepo) Create(ctx context.Context, tx *gorm.DB, course *types.Course) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if err := transaction.WithContext(ctx).Create(course).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return course, nil
}

func (cr *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var course types.Course
	if err := transaction.WithContext(ctx).
		Where("id = ?", courseID).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, pkgerrors.Store(err)
	}
	return &course, nil
}

func (cr *courseRepo) SetOwningTeacher(ctx context.Context, tx *gorm.DB, courseID, teacherID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		Update("owning_teacher_id", teacherID)
	if res.Error != nil {
		return pkgerrors.Store(res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

// OwnedBy checks course-level ownership only. Section delegation deliberately does
// not reach up to the course.
func (cr *courseRepo) OwnedBy(ctx context.Context, tx *gorm.DB, courseID, teacherID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ? AND owning_teacher_id = ?", courseID, teacherID).
		Count(&count).Error; err != nil {
		return false, pkgerrors.Store(err)
	}
	return count > 0, nil
}
