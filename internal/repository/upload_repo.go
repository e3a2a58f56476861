package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
)

// UploadRepository records stored upload artifacts.
type UploadRepository interface {
	Create(ctx context.Context, upload *models.Upload) error
	GetByRef(ctx context.Context, ref string) (models.Upload, error)
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository instantiates the repository.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, upload *models.Upload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *uploadRepository) GetByRef(ctx context.Context, ref string) (models.Upload, error) {
	var upload models.Upload
	if err := r.db.WithContext(ctx).Where("ref = ?", ref).First(&upload).Error; err != nil {
		return models.Upload{}, err
	}

	return upload, nil
}
