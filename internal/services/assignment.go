package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campushub/campushub-backend/internal/logger"
	"github.com/campushub/campushub-backend/internal/repos"
	"github.com/campushub/campushub-backend/internal/types"
)

type AssignmentService interface {
	List(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*types.Assignment, error)
	Get(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.Assignment, error)
	Create(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, title, instructions string, dueAt time.Time) (*types.Assignment, error)
	Delete(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) error
}

type assignmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	assignmentRepo repos.AssignmentRepo
	accessService  AccessService
}

func NewAssignmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	assignmentRepo repos.AssignmentRepo,
	accessService AccessService,
) AssignmentService {
	serviceLog := baseLog.With("service", "AssignmentService")
	return &assignmentService{
		db:             db,
		log:            serviceLog,
		assignmentRepo: assignmentRepo,
		accessService:  accessService,
	}
}

func (as *assignmentService) List(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = as.db
	}

	if err := as.accessService.AuthorizeSectionRead(ctx, transaction, sectionID); err != nil {
		return nil, err
	}
	assignments, err := as.assignmentRepo.ListBySectionID(ctx, transaction, sectionID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

func (as *assignmentService) Get(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = as.db
	}

	assignment, err := as.assignmentRepo.GetByID(ctx, transaction, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	if err := as.accessService.AuthorizeSectionRead(ctx, transaction, assignment.SectionID); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (as *assignmentService) Create(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, title, instructions string, dueAt time.Time) (*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = as.db
	}

	if err := as.accessService.AuthorizeSectionWrite(ctx, transaction, sectionID); err != nil {
		return nil, err
	}

	assignment := &types.Assignment{
		ID:           uuid.New(),
		SectionID:    sectionID,
		Title:        title,
		Instructions: instructions,
		DueAt:        dueAt,
	}
	if _, err := as.assignmentRepo.Create(ctx, transaction, assignment); err != nil {
		as.log.Error("Create assignment failed", "error", err, "section_id", sectionID)
		return nil, fmt.Errorf("create assignment: %w", err)
	}
	return assignment, nil
}

func (as *assignmentService) Delete(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = as.db
	}

	assignment, err := as.assignmentRepo.GetByID(ctx, transaction, assignmentID)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if err := as.accessService.AuthorizeSectionWrite(ctx, transaction, assignment.SectionID); err != nil {
		return err
	}
	if err := as.assignmentRepo.Delete(ctx, transaction, assignmentID); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
