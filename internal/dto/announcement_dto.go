package dto

import (
	"time"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
)

// AnnouncementCreateRequest publishes an announcement.
type AnnouncementCreateRequest struct {
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	Audience string `json:"audience" validate:"omitempty,oneof=all students professors"`
	Pinned   bool   `json:"pinned"`
}

// AnnouncementUpdateRequest patches an announcement.
type AnnouncementUpdateRequest struct {
	Title    *string `json:"title"`
	Body     *string `json:"body"`
	Audience *string `json:"audience" validate:"omitempty,oneof=all students professors"`
	Pinned   *bool   `json:"pinned"`
}

// AnnouncementResponse is the public announcement representation.
type AnnouncementResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	AuthorID  string    `json:"authorId"`
	Audience  string    `json:"audience"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewAnnouncementResponse converts an Announcement model into a DTO.
func NewAnnouncementResponse(model models.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:        model.ID,
		Title:     model.Title,
		Body:      model.Body,
		AuthorID:  model.AuthorID,
		Audience:  model.Audience,
		Pinned:    model.Pinned,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewAnnouncementResponseSlice converts announcement models into DTOs.
func NewAnnouncementResponseSlice(announcements []models.Announcement) []AnnouncementResponse {
	responses := make([]AnnouncementResponse, 0, len(announcements))
	for _, announcement := range announcements {
		responses = append(responses, NewAnnouncementResponse(announcement))
	}

	return responses
}
