package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/auth"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/repository"
)

// ErrEmptyMessage indicates a group message had no content after sanitizing.
var ErrEmptyMessage = errors.New("message text must not be empty")

// GroupService exposes group and group-feed operations.
type GroupService interface {
	Create(ctx context.Context, actor auth.Identity, payload dto.GroupCreateRequest) (dto.GroupResponse, error)
	ListMine(ctx context.Context, actor auth.Identity) ([]dto.GroupResponse, error)
	Get(ctx context.Context, actor auth.Identity, id string) (dto.GroupResponse, error)
	Update(ctx context.Context, actor auth.Identity, id string, payload dto.GroupUpdateRequest) (dto.GroupResponse, error)
	PostMessage(ctx context.Context, actor auth.Identity, id string, payload dto.GroupMessageRequest) (dto.GroupMessageResponse, error)
	ListMessages(ctx context.Context, actor auth.Identity, id string, since time.Time) ([]dto.GroupMessageResponse, error)
}

type groupService struct {
	repo      repository.GroupRepository
	notifier  NotificationPublisher
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// NewGroupService constructs the group service.
func NewGroupService(repo repository.GroupRepository, notifier NotificationPublisher, validate *validator.Validate, logger zerolog.Logger) GroupService {
	return &groupService{
		repo:      repo,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "group_service").Logger(),
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

func (s *groupService) Create(ctx context.Context, actor auth.Identity, payload dto.GroupCreateRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	members := make([]string, 0, len(payload.Members)+1)
	seen := map[string]bool{}
	for _, member := range append([]string{actor.UserID}, payload.Members...) {
		member = strings.TrimSpace(member)
		if member == "" || seen[member] {
			continue
		}
		seen[member] = true
		members = append(members, member)
	}

	group := models.Group{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		Members:     datatypes.NewJSONSlice(members),
		CreatedBy:   actor.UserID,
	}

	if err := s.repo.Create(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().Str("group_id", group.ID).Int("members", len(members)).Msg("group created")

	return dto.NewGroupResponse(group), nil
}

func (s *groupService) ListMine(ctx context.Context, actor auth.Identity) ([]dto.GroupResponse, error) {
	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var mine []models.Group
	for _, group := range groups {
		if group.HasMember(actor.UserID) {
			mine = append(mine, group)
		}
	}

	return dto.NewGroupResponseSlice(mine), nil
}

func (s *groupService) Get(ctx context.Context, actor auth.Identity, id string) (dto.GroupResponse, error) {
	group, err := s.loadMemberGroup(ctx, actor, id)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Update(ctx context.Context, actor auth.Identity, id string, payload dto.GroupUpdateRequest) (dto.GroupResponse, error) {
	group, err := s.loadMemberGroup(ctx, actor, id)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	if payload.Name != nil {
		group.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Description != nil {
		group.Description = *payload.Description
	}
	if payload.Members != nil {
		members := make([]string, 0, len(*payload.Members))
		seen := map[string]bool{}
		for _, member := range *payload.Members {
			member = strings.TrimSpace(member)
			if member == "" || seen[member] {
				continue
			}
			seen[member] = true
			members = append(members, member)
		}
		group.Members = datatypes.NewJSONSlice(members)
	}

	if err := s.repo.Update(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	return dto.NewGroupResponse(group), nil
}

func (s *groupService) PostMessage(ctx context.Context, actor auth.Identity, id string, payload dto.GroupMessageRequest) (dto.GroupMessageResponse, error) {
	group, err := s.loadMemberGroup(ctx, actor, id)
	if err != nil {
		return dto.GroupMessageResponse{}, err
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Text))
	if text == "" {
		return dto.GroupMessageResponse{}, ErrEmptyMessage
	}

	message := models.GroupMessage{
		ID:        uuid.NewString(),
		GroupID:   group.ID,
		AuthorID:  actor.UserID,
		Text:      text,
		CreatedAt: s.now(),
	}

	if err := s.repo.CreateMessage(ctx, &message); err != nil {
		return dto.GroupMessageResponse{}, err
	}

	for _, member := range group.Members {
		if member == actor.UserID || s.notifier == nil {
			continue
		}
		input := NotificationInput{
			UserID:    member,
			Type:      models.NotificationGroupMessage,
			Title:     "New group message",
			Message:   group.Name + ": " + text,
			RelatedID: group.ID,
			Link:      "/groups/" + group.ID,
		}
		if err := s.notifier.Push(ctx, input); err != nil {
			s.logger.Warn().Err(err).Str("user_id", member).Msg("failed to queue group message notification")
		}
	}

	return dto.NewGroupMessageResponse(message), nil
}

func (s *groupService) ListMessages(ctx context.Context, actor auth.Identity, id string, since time.Time) ([]dto.GroupMessageResponse, error) {
	group, err := s.loadMemberGroup(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, group.ID, since)
	if err != nil {
		return nil, err
	}

	return dto.NewGroupMessageResponseSlice(messages), nil
}

func (s *groupService) loadMemberGroup(ctx context.Context, actor auth.Identity, id string) (models.Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Group{}, ErrGroupNotFound
		}
		return models.Group{}, err
	}

	if !group.HasMember(actor.UserID) {
		return models.Group{}, ErrNotGroupMember
	}

	return group, nil
}
