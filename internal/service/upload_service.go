package service

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/auth"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/observability"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/repository"
)

// Sentinel errors for the upload sink.
var (
	ErrUploadTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrUploadInvalidPayload = errors.New("upload payload is not valid base64")
)

// UploadService accepts base64 payloads and returns stable reference paths.
// References are opaque to the rest of the system: submission contentRef
// may point here or at any external URL.
type UploadService interface {
	Store(ctx context.Context, actor auth.Identity, payload dto.UploadRequest) (dto.UploadResponse, error)
}

type uploadService struct {
	repo      repository.UploadRepository
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	dir       string
	maxSize   int64
}

// NewUploadService constructs the upload sink.
func NewUploadService(repo repository.UploadRepository, validate *validator.Validate, dir string, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}

	return &uploadService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "upload_service").Logger(),
		tracer:    otel.Tracer("github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/service/upload"),
		dir:       dir,
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
	}
}

func (s *uploadService) Store(ctx context.Context, actor auth.Identity, payload dto.UploadRequest) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "uploads.store", trace.WithAttributes(
		attribute.String("upload.original_name", payload.Filename),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.UploadResponse{}, err
	}

	// Reject before decoding: base64 inflates by 4/3.
	if int64(len(payload.Data)) > (s.maxSize*4)/3+4 {
		observability.UploadsRejected().WithLabelValues("size").Inc()
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		observability.UploadsRejected().WithLabelValues("encoding").Inc()
		span.RecordError(err)
		return dto.UploadResponse{}, ErrUploadInvalidPayload
	}

	if int64(len(data)) > s.maxSize {
		observability.UploadsRejected().WithLabelValues("size").Inc()
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(data)

	name := uuid.NewString()
	if ext := filepath.Ext(payload.Filename); ext != "" {
		name += strings.ToLower(ext)
	} else if ext := detected.Extension(); ext != "" {
		name += ext
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		span.RecordError(err)
		return dto.UploadResponse{}, err
	}

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		span.RecordError(err)
		return dto.UploadResponse{}, err
	}

	upload := models.Upload{
		ID:           uuid.NewString(),
		Ref:          "/uploads/" + name,
		OriginalName: filepath.Base(payload.Filename),
		ContentType:  detected.String(),
		Size:         int64(len(data)),
		UploadedBy:   actor.UserID,
	}

	if err := s.repo.Create(ctx, &upload); err != nil {
		return dto.UploadResponse{}, err
	}

	s.logger.Info().Str("ref", upload.Ref).Int64("size", upload.Size).Msg("upload stored")

	return dto.NewUploadResponse(upload), nil
}
