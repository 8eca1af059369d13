package services

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campushub/campushub-backend/internal/logger"
	"github.com/campushub/campushub-backend/internal/repos"
	"github.com/campushub/campushub-backend/internal/types"
)

// MaterialWithURL pairs the row with the download location so handlers never talk
// to the bucket themselves.
type MaterialWithURL struct {
	*types.Material
	URL string `json:"url"`
}

type MaterialService interface {
	List(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*MaterialWithURL, error)
	Get(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) (*MaterialWithURL, error)
	Upload(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, title, filename string, file io.Reader) (*types.Material, error)
	Delete(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) error
}

type materialService struct {
	db            *gorm.DB
	log           *logger.Logger
	materialRepo  repos.MaterialRepo
	accessService AccessService
	bucketService BucketService
}

func NewMaterialService(
	db *gorm.DB,
	baseLog *logger.Logger,
	materialRepo repos.MaterialRepo,
	accessService AccessService,
	bucketService BucketService,
) MaterialService {
	serviceLog := baseLog.With("service", "MaterialService")
	return &materialService{
		db:            db,
		log:           serviceLog,
		materialRepo:  materialRepo,
		accessService: accessService,
		bucketService: bucketService,
	}
}

func (ms *materialService) List(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*MaterialWithURL, error) {
	transaction := tx
	if transaction == nil {
		transaction = ms.db
	}

	if err := ms.accessService.AuthorizeSectionRead(ctx, transaction, sectionID); err != nil {
		return nil, err
	}

	materials, err := ms.materialRepo.ListBySectionID(ctx, transaction, sectionID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	out := make([]*MaterialWithURL, 0, len(materials))
	for _, m := range materials {
		out = append(out, &MaterialWithURL{Material: m, URL: ms.bucketService.GetPublicURL(m.StorageKey)})
	}
	return out, nil
}

func (ms *materialService) Get(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) (*MaterialWithURL, error) {
	transaction := tx
	if transaction == nil {
		transaction = ms.db
	}

	material, err := ms.materialRepo.GetByID(ctx, transaction, materialID)
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	if err := ms.accessService.AuthorizeSectionRead(ctx, transaction, material.SectionID); err != nil {
		return nil, err
	}
	return &MaterialWithURL{Material: material, URL: ms.bucketService.GetPublicURL(material.StorageKey)}, nil
}

func (ms *materialService) Upload(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, title, filename string, file io.Reader) (*types.Material, error) {
	rd, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	transaction := tx
	if transaction == nil {
		transaction = ms.db
	}

	if err := ms.accessService.AuthorizeSectionWrite(ctx, transaction, sectionID); err != nil {
		return nil, err
	}

	materialID := uuid.New()
	storageKey := fmt.Sprintf("materials/%s/%s%s", sectionID, materialID, path.Ext(filename))
	if err := ms.bucketService.UploadFile(ctx, storageKey, file); err != nil {
		ms.log.Error("Material upload to bucket failed", "error", err, "section_id", sectionID)
		return nil, fmt.Errorf("upload material: %w", err)
	}

	material := &types.Material{
		ID:           materialID,
		SectionID:    sectionID,
		Title:        title,
		StorageKey:   storageKey,
		UploadedByID: rd.UserID,
	}
	if _, err := ms.materialRepo.Create(ctx, transaction, material); err != nil {
		return nil, fmt.Errorf("upload material: %w", err)
	}
	ms.log.Info("Material uploaded", "material_id", materialID, "section_id", sectionID)
	return material, nil
}

func (ms *materialService) Delete(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ms.db
	}

	material, err := ms.materialRepo.GetByID(ctx, transaction, materialID)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if err := ms.accessService.AuthorizeSectionWrite(ctx, transaction, material.SectionID); err != nil {
		return err
	}

	if err := ms.materialRepo.Delete(ctx, transaction, materialID); err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if err := ms.bucketService.DeleteFile(ctx, material.StorageKey); err != nil {
		// Row is gone; an orphaned object is a cleanup problem, not a request failure.
		ms.log.Warn("Material object delete failed after row delete", "error", err, "storage_key", material.StorageKey)
	}
	return nil
}
