package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/auth"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/observability"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/repository"
)

// ErrNotificationNotFound indicates a notification could not be found for the caller.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationInput describes a notification to be produced.
type NotificationInput struct {
	UserID    string
	Type      string
	Title     string
	Message   string
	RelatedID string
	Link      string
}

// NotificationPublisher is the producer side of the notification sink,
// consumed by the lifecycle, announcement and group services.
type NotificationPublisher interface {
	Push(ctx context.Context, input NotificationInput) error
}

// NotificationService exposes the polled notification feed.
type NotificationService interface {
	NotificationPublisher
	List(ctx context.Context, actor auth.Identity, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, actor auth.Identity, id string) (dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, actor auth.Identity) (int64, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
}

// NewNotificationService constructs a notification service.
func NewNotificationService(repo repository.NotificationRepository, logger zerolog.Logger) NotificationService {
	return &notificationService{
		repo:      repo,
		logger:    logger.With().Str("component", "notification_service").Logger(),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *notificationService) Push(ctx context.Context, input NotificationInput) error {
	message := strings.TrimSpace(s.sanitizer.Sanitize(input.Message))
	if input.UserID == "" {
		return errors.New("notification user id is required")
	}

	model := models.Notification{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Type:      input.Type,
		Title:     strings.TrimSpace(input.Title),
		Message:   message,
		RelatedID: input.RelatedID,
		Link:      input.Link,
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		return err
	}

	observability.NotificationsPublished().WithLabelValues(model.Type).Inc()

	return nil
}

func (s *notificationService) List(ctx context.Context, actor auth.Identity, limit, offset int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.ListByUser(ctx, actor.UserID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor auth.Identity, id string) (dto.NotificationResponse, error) {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotificationResponse{}, ErrNotificationNotFound
		}
		return dto.NotificationResponse{}, err
	}

	// Ownership is the only access rule on the feed.
	if notification.UserID != actor.UserID {
		return dto.NotificationResponse{}, ErrNotificationNotFound
	}

	if !notification.Read {
		notification.Read = true
		if err := s.repo.Update(ctx, &notification); err != nil {
			return dto.NotificationResponse{}, err
		}
	}

	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor auth.Identity) (int64, error) {
	return s.repo.MarkAllRead(ctx, actor.UserID)
}
