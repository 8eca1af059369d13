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

// CourseService covers the admin-side lifecycle: courses, sections, and the two
// ownership levels (course owner, per-section delegate).
type CourseService interface {
	CreateCourse(ctx context.Context, tx *gorm.DB, title, code string, owningTeacherID *uuid.UUID) (*types.Course, error)
	CreateSection(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, label string, capacity int) (*types.Section, error)
	AssignCourseTeacher(ctx context.Context, tx *gorm.DB, courseID, teacherID uuid.UUID) error
	DelegateSectionTeacher(ctx context.Context, tx *gorm.DB, sectionID, teacherID uuid.UUID) error
	GetCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	GetSection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.Section, error)
	ListCourseSections(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Section, error)
	ListOwnSections(ctx context.Context, tx *gorm.DB) ([]*types.Section, error)
}

type courseService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	courseRepo    repos.CourseRepo
	sectionRepo   repos.SectionRepo
	accessService AccessService
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	courseRepo repos.CourseRepo,
	sectionRepo repos.SectionRepo,
	accessService AccessService,
) CourseService {
	serviceLog := baseLog.With("service", "CourseService")
	return &courseService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		courseRepo:    courseRepo,
		sectionRepo:   sectionRepo,
		accessService: accessService,
	}
}

func (cs *courseService) requireAdmin(ctx context.Context) error {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return err
	}
	if rd.Role != types.RoleAdmin {
		return pkgerrors.ErrNotAuthorized
	}
	return nil
}

func (cs *courseService) requireTeacher(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) error {
	isTeacher, err := cs.userRepo.ExistsWithRole(ctx, tx, teacherID, types.RoleTeacher)
	if err != nil {
		return err
	}
	if !isTeacher {
		return fmt.Errorf("teacher %s: %w", teacherID, pkgerrors.ErrNotFound)
	}
	return nil
}

func (cs *courseService) CreateCourse(ctx context.Context, tx *gorm.DB, title, code string, owningTeacherID *uuid.UUID) (*types.Course, error) {
	if err := cs.requireAdmin(ctx); err != nil {
		return nil, err
	}

	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}

	if owningTeacherID != nil {
		if err := cs.requireTeacher(ctx, transaction, *owningTeacherID); err != nil {
			return nil, fmt.Errorf("create course: %w", err)
		}
	}

	course := &types.Course{
		ID:              uuid.New(),
		Title:           title,
		Code:            code,
		OwningTeacherID: owningTeacherID,
	}
	if _, err := cs.courseRepo.Create(ctx, transaction, course); err != nil {
		cs.log.Error("CreateCourse failed", "error", err, "code", code)
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

func (cs *courseService) CreateSection(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, label string, capacity int) (*types.Section, error) {
	if err := cs.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("create section: capacity must be positive")
	}

	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}

	if _, err := cs.courseRepo.GetByID(ctx, transaction, courseID); err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}

	section := &types.Section{
		ID:       uuid.New(),
		CourseID: courseID,
		Label:    label,
		Capacity: capacity,
	}
	if _, err := cs.sectionRepo.Create(ctx, transaction, section); err != nil {
		cs.log.Error("CreateSection failed", "error", err, "course_id", courseID)
		return nil, fmt.Errorf("create section: %w", err)
	}
	return section, nil
}

func (cs *courseService) AssignCourseTeacher(ctx context.Context, tx *gorm.DB, courseID, teacherID uuid.UUID) error {
	if err := cs.requireAdmin(ctx); err != nil {
		return err
	}

	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}

	if err := cs.requireTeacher(ctx, transaction, teacherID); err != nil {
		return fmt.Errorf("assign course teacher: %w", err)
	}
	if err := cs.courseRepo.SetOwningTeacher(ctx, transaction, courseID, teacherID); err != nil {
		return fmt.Errorf("assign course teacher: %w", err)
	}
	cs.log.Info("Course teacher assigned", "course_id", courseID, "teacher_id", teacherID)
	return nil
}

// DelegateSectionTeacher grants ownership of exactly this section, independent of
// the course owner.
func (cs *courseService) DelegateSectionTeacher(ctx context.Context, tx *gorm.DB, sectionID, teacherID uuid.UUID) error {
	if err := cs.requireAdmin(ctx); err != nil {
		return err
	}

	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}

	if err := cs.requireTeacher(ctx, transaction, teacherID); err != nil {
		return fmt.Errorf("delegate section teacher: %w", err)
	}
	if err := cs.sectionRepo.SetDelegatedTeacher(ctx, transaction, sectionID, teacherID); err != nil {
		return fmt.Errorf("delegate section teacher: %w", err)
	}
	cs.log.Info("Section teacher delegated", "section_id", sectionID, "teacher_id", teacherID)
	return nil
}

func (cs *courseService) GetCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	if _, err := identityFromContext(ctx); err != nil {
		return nil, err
	}

	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}
	return cs.courseRepo.GetByID(ctx, transaction, courseID)
}

func (cs *courseService) GetSection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}

	if err := cs.accessService.AuthorizeSectionRead(ctx, transaction, sectionID); err != nil {
		return nil, err
	}
	return cs.sectionRepo.GetByID(ctx, transaction, sectionID)
}

// ListCourseSections is course-owner scoped: a section-delegated teacher does not
// get the course-wide listing and should call ListOwnSections instead.
func (cs *courseService) ListCourseSections(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Section, error) {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}

	if rd.Role != types.RoleAdmin {
		if rd.Role != types.RoleTeacher {
			return nil, pkgerrors.ErrNotAuthorized
		}
		owned, err := cs.accessService.ResolveCourseOwnership(ctx, transaction, rd.UserID, courseID)
		if err != nil {
			return nil, fmt.Errorf("list course sections: %w", err)
		}
		if !owned {
			return nil, pkgerrors.ErrNotAuthorized
		}
	}

	return cs.sectionRepo.ListByCourseID(ctx, transaction, courseID)
}

func (cs *courseService) ListOwnSections(ctx context.Context, tx *gorm.DB) ([]*types.Section, error) {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if rd.Role != types.RoleTeacher {
		return nil, pkgerrors.ErrNotAuthorized
	}

	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}
	return cs.sectionRepo.ListForTeacher(ctx, transaction, rd.UserID)
}
