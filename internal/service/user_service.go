package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/repository"
)

// Sentinel errors for the user directory.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// UserService exposes directory operations used to validate references and
// render names.
type UserService interface {
	Register(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Get(ctx context.Context, userID string) (dto.UserResponse, error)
	List(ctx context.Context, role *string, verified *bool) ([]dto.UserResponse, error)
	ListVerifiedProfessors(ctx context.Context) ([]dto.UserResponse, error)
	Seed(ctx context.Context, payloads []dto.UserCreateRequest) (int64, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the directory service.
func NewUserService(repo repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Register(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	userID := strings.TrimSpace(payload.UserID)
	if _, err := s.repo.GetByUserID(ctx, userID); err == nil {
		return dto.UserResponse{}, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, payload.Email); err == nil {
		return dto.UserResponse{}, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	user := models.User{
		UserID:   userID,
		Name:     strings.TrimSpace(payload.Name),
		Email:    strings.ToLower(strings.TrimSpace(payload.Email)),
		Role:     payload.Role,
		Verified: payload.Verified,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Str("user_id", user.UserID).Str("role", user.Role).Msg("user registered")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Get(ctx context.Context, userID string) (dto.UserResponse, error) {
	user, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, role *string, verified *bool) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx, repository.UserFilter{Role: role, Verified: verified})
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) ListVerifiedProfessors(ctx context.Context) ([]dto.UserResponse, error) {
	role := models.UserRoleProfessor
	verified := true

	return s.List(ctx, &role, &verified)
}

func (s *userService) Seed(ctx context.Context, payloads []dto.UserCreateRequest) (int64, error) {
	users := make([]models.User, 0, len(payloads))
	for _, payload := range payloads {
		if err := s.validator.Struct(payload); err != nil {
			return 0, err
		}
		users = append(users, models.User{
			UserID:   strings.TrimSpace(payload.UserID),
			Name:     strings.TrimSpace(payload.Name),
			Email:    strings.ToLower(strings.TrimSpace(payload.Email)),
			Role:     payload.Role,
			Verified: payload.Verified,
		})
	}

	inserted, err := s.repo.SeedBatch(ctx, users)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("inserted", inserted).Msg("users seeded")

	return inserted, nil
}
