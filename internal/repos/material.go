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

type MaterialRepo interface {
	Create(ctx context.Context, tx *gorm.DB, material *types.Material) (*types.Material, error)
	GetByID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) (*types.Material, error)
	ListBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*types.Material, error)
	Delete(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) error
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	repoLog := baseLog.With("repo", "MaterialRepo")
	return &materialRepo{db: db, log: repoLog}
}

func (mr *materialRepo) Create(ctx context.Context, tx *gorm.DB, material *types.Material) (*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	if err := transaction.WithContext(ctx).Create(material).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return material, nil
}

func (mr *materialRepo) GetByID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) (*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var material types.Material
	if err := transaction.WithContext(ctx).
		Where("id = ?", materialID).
		First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, pkgerrors.Store(err)
	}
	return &material, nil
}

func (mr *materialRepo) ListBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var materials []*types.Material
	if err := transaction.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("created_at DESC").
		Find(&materials).Error; err != nil {
		return nil, pkgerrors.Store(err)
	}
	return materials, nil
}

func (mr *materialRepo) Delete(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	res := transaction.WithContext(ctx).
		Where("id = ?", materialID).
		Delete(&types.Material{})
	if res.Error != nil {
		return pkgerrors.Store(res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}
