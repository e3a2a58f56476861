package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/auth"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/repository"
)

// TemplateService exposes submission template operations.
type TemplateService interface {
	List(ctx context.Context) ([]dto.TemplateResponse, error)
	Create(ctx context.Context, actor auth.Identity, payload dto.TemplateCreateRequest) (dto.TemplateResponse, error)
	Update(ctx context.Context, actor auth.Identity, id string, payload dto.TemplateUpdateRequest) (dto.TemplateResponse, error)
	Delete(ctx context.Context, actor auth.Identity, id string) error
}

type templateService struct {
	repo      repository.TemplateRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTemplateService constructs the template service.
func NewTemplateService(repo repository.TemplateRepository, validate *validator.Validate, logger zerolog.Logger) TemplateService {
	return &templateService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "template_service").Logger(),
	}
}

func (s *templateService) List(ctx context.Context) ([]dto.TemplateResponse, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewTemplateResponseSlice(templates), nil
}

func (s *templateService) Create(ctx context.Context, actor auth.Identity, payload dto.TemplateCreateRequest) (dto.TemplateResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TemplateResponse{}, err
	}

	template := models.Template{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		Type:        payload.Type,
		Milestones:  datatypes.NewJSONSlice(dto.NewTemplateMilestones(payload.Milestones)),
		CreatedBy:   actor.UserID,
	}

	if err := s.repo.Create(ctx, &template); err != nil {
		return dto.TemplateResponse{}, err
	}

	s.logger.Info().Str("template_id", template.ID).Msg("template created")

	return dto.NewTemplateResponse(template), nil
}

func (s *templateService) Update(ctx context.Context, actor auth.Identity, id string, payload dto.TemplateUpdateRequest) (dto.TemplateResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TemplateResponse{}, err
	}

	template, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TemplateResponse{}, ErrTemplateNotFound
		}
		return dto.TemplateResponse{}, err
	}

	if payload.Name != nil {
		template.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Description != nil {
		template.Description = *payload.Description
	}
	if payload.Type != nil {
		template.Type = *payload.Type
	}
	if payload.Milestones != nil {
		template.Milestones = datatypes.NewJSONSlice(dto.NewTemplateMilestones(*payload.Milestones))
	}

	if err := s.repo.Update(ctx, &template); err != nil {
		return dto.TemplateResponse{}, err
	}

	return dto.NewTemplateResponse(template), nil
}

func (s *templateService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}

	return s.repo.Delete(ctx, id)
}
