package dto

import (
	"time"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
)

// UploadRequest carries a base64-encoded payload into the upload sink.
type UploadRequest struct {
	Filename string `json:"filename" validate:"required"`
	Data     string `json:"data" validate:"required"`
}

// UploadResponse returns the stable reference for a stored artifact.
type UploadResponse struct {
	Ref          string    `json:"ref"`
	OriginalName string    `json:"originalName"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUploadResponse converts an Upload model into a DTO.
func NewUploadResponse(model models.Upload) UploadResponse {
	return UploadResponse{
		Ref:          model.Ref,
		OriginalName: model.OriginalName,
		ContentType:  model.ContentType,
		Size:         model.Size,
		CreatedAt:    model.CreatedAt,
	}
}
