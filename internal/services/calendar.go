package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/campushub/campushub-backend/internal/logger"
	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
	"github.com/campushub/campushub-backend/internal/repos"
	"github.com/campushub/campushub-backend/internal/types"
)

// CalendarService is the read-only consumer behind the calendar/notification
// renderer: "which sections is this user a member of". It reuses the same
// resolved-membership view as every other gateway.
type CalendarService interface {
	SectionsForUser(ctx context.Context, tx *gorm.DB) ([]*types.Section, error)
}

type calendarService struct {
	db          *gorm.DB
	log         *logger.Logger
	sectionRepo repos.SectionRepo
}

func NewCalendarService(db *gorm.DB, baseLog *logger.Logger, sectionRepo repos.SectionRepo) CalendarService {
	serviceLog := baseLog.With("service", "CalendarService")
	return &calendarService{db: db, log: serviceLog, sectionRepo: sectionRepo}
}

func (cs *calendarService) SectionsForUser(ctx context.Context, tx *gorm.DB) ([]*types.Section, error) {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}

	switch rd.Role {
	case types.RoleStudent:
		sections, err := cs.sectionRepo.ListForStudent(ctx, transaction, rd.UserID)
		if err != nil {
			return nil, fmt.Errorf("sections for user: %w", err)
		}
		return sections, nil
	case types.RoleTeacher:
		sections, err := cs.sectionRepo.ListForTeacher(ctx, transaction, rd.UserID)
		if err != nil {
			return nil, fmt.Errorf("sections for user: %w", err)
		}
		return sections, nil
	default:
		return nil, pkgerrors.ErrNotAuthorized
	}
}
