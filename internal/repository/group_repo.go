package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
)

// GroupRepository defines data operations for groups and their message
// feeds. Membership lives in a JSON column, so member-scoped listing loads
// the full set and filters in memory at the service layer.
type GroupRepository interface {
	List(ctx context.Context) ([]models.Group, error)
	GetByID(ctx context.Context, id string) (models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	CreateMessage(ctx context.Context, message *models.GroupMessage) error
	ListMessages(ctx context.Context, groupID string, since time.Time) ([]models.GroupMessage, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository instantiates the repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return models.Group{}, err
	}

	return group, nil
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *groupRepository) CreateMessage(ctx context.Context, message *models.GroupMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *groupRepository) ListMessages(ctx context.Context, groupID string, since time.Time) ([]models.GroupMessage, error) {
	query := r.db.WithContext(ctx).Model(&models.GroupMessage{}).Where("group_id = ?", groupID)

	if !since.IsZero() {
		query = query.Where("created_at > ?", since)
	}

	var messages []models.GroupMessage
	if err := query.Order("created_at ASC").Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}
