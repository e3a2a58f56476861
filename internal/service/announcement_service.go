package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/auth"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/repository"
)

// ErrAnnouncementNotFound indicates an announcement could not be found.
var ErrAnnouncementNotFound = errors.New("announcement not found")

// AnnouncementService exposes announcement operations.
type AnnouncementService interface {
	List(ctx context.Context, actor auth.Identity) ([]dto.AnnouncementResponse, error)
	Create(ctx context.Context, actor auth.Identity, payload dto.AnnouncementCreateRequest) (dto.AnnouncementResponse, error)
	Update(ctx context.Context, actor auth.Identity, id uint, payload dto.AnnouncementUpdateRequest) (dto.AnnouncementResponse, error)
}

type announcementService struct {
	repo      repository.AnnouncementRepository
	users     repository.UserRepository
	notifier  NotificationPublisher
	validator *validator.Validate
	logger    zerolog.Logger
	policy    *bluemonday.Policy
}

// NewAnnouncementService constructs the announcement service.
func NewAnnouncementService(repo repository.AnnouncementRepository, users repository.UserRepository, notifier NotificationPublisher, validate *validator.Validate, logger zerolog.Logger) AnnouncementService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("p", "strong", "em", "a", "ul", "ol", "li", "br")
	policy.AllowAttrs("href", "title", "target").OnElements("a")

	return &announcementService{
		repo:      repo,
		users:     users,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "announcement_service").Logger(),
		policy:    policy,
	}
}

func (s *announcementService) List(ctx context.Context, actor auth.Identity) ([]dto.AnnouncementResponse, error) {
	audiences := []string{models.AudienceAll, models.AudienceStudents}
	if actor.IsProfessor() {
		audiences = []string{models.AudienceAll, models.AudienceProfessors}
	}

	announcements, err := s.repo.List(ctx, audiences)
	if err != nil {
		return nil, err
	}

	return dto.NewAnnouncementResponseSlice(announcements), nil
}

func (s *announcementService) Create(ctx context.Context, actor auth.Identity, payload dto.AnnouncementCreateRequest) (dto.AnnouncementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	audience := payload.Audience
	if audience == "" {
		audience = models.AudienceAll
	}

	announcement := models.Announcement{
		Title:    strings.TrimSpace(payload.Title),
		Body:     s.policy.Sanitize(payload.Body),
		AuthorID: actor.UserID,
		Audience: audience,
		Pinned:   payload.Pinned,
	}

	if err := s.repo.Create(ctx, &announcement); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	s.fanOut(ctx, announcement)

	s.logger.Info().Uint("announcement_id", announcement.ID).Str("audience", audience).Msg("announcement published")

	return dto.NewAnnouncementResponse(announcement), nil
}

func (s *announcementService) Update(ctx context.Context, actor auth.Identity, id uint, payload dto.AnnouncementUpdateRequest) (dto.AnnouncementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnnouncementResponse{}, ErrAnnouncementNotFound
		}
		return dto.AnnouncementResponse{}, err
	}

	if payload.Title != nil {
		announcement.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Body != nil {
		announcement.Body = s.policy.Sanitize(*payload.Body)
	}
	if payload.Audience != nil && models.ValidAudience(*payload.Audience) {
		announcement.Audience = *payload.Audience
	}
	if payload.Pinned != nil {
		announcement.Pinned = *payload.Pinned
	}

	if err := s.repo.Update(ctx, &announcement); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	return dto.NewAnnouncementResponse(announcement), nil
}

// fanOut queues one notification per audience member. Failures are logged
// and never fail the publish.
func (s *announcementService) fanOut(ctx context.Context, announcement models.Announcement) {
	if s.notifier == nil {
		return
	}

	filter := repository.UserFilter{}
	switch announcement.Audience {
	case models.AudienceStudents:
		role := models.UserRoleStudent
		filter.Role = &role
	case models.AudienceProfessors:
		role := models.UserRoleProfessor
		filter.Role = &role
	}

	recipients, err := s.users.List(ctx, filter)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to resolve announcement audience")
		return
	}

	for _, recipient := range recipients {
		if recipient.UserID == announcement.AuthorID {
			continue
		}
		input := NotificationInput{
			UserID:    recipient.UserID,
			Type:      models.NotificationAnnouncement,
			Title:     "New announcement",
			Message:   announcement.Title,
			RelatedID: fmt.Sprintf("%d", announcement.ID),
			Link:      "/announcements",
		}
		if err := s.notifier.Push(ctx, input); err != nil {
			s.logger.Warn().Err(err).Str("user_id", recipient.UserID).Msg("failed to queue announcement notification")
		}
	}
}
