package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
)

// AnnouncementRepository defines data operations for announcements.
type AnnouncementRepository interface {
	List(ctx context.Context, audiences []string) ([]models.Announcement, error)
	GetByID(ctx context.Context, id uint) (models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
}

type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository instantiates the repository.
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) List(ctx context.Context, audiences []string) ([]models.Announcement, error) {
	query := r.db.WithContext(ctx).Model(&models.Announcement{})

	if len(audiences) > 0 {
		query = query.Where("audience IN ?", audiences)
	}

	var announcements []models.Announcement
	if err := query.Order("pinned DESC, created_at DESC").Find(&announcements).Error; err != nil {
		return nil, err
	}

	return announcements, nil
}

func (r *announcementRepository) GetByID(ctx context.Context, id uint) (models.Announcement, error) {
	var announcement models.Announcement
	if err := r.db.WithContext(ctx).First(&announcement, id).Error; err != nil {
		return models.Announcement{}, err
	}

	return announcement, nil
}

func (r *announcementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *announcementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Save(announcement).Error
}
