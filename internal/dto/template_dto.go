package dto

import (
	"time"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
)

// TemplateMilestonePayload is a milestone blueprint entry.
type TemplateMilestonePayload struct {
	Label      string `json:"label" validate:"required"`
	OffsetDays int    `json:"offsetDays" validate:"gte=0"`
}

// TemplateCreateRequest creates a submission template.
type TemplateCreateRequest struct {
	Name        string                     `json:"name" validate:"required"`
	Description string                     `json:"description"`
	Type        string                     `json:"type" validate:"required,oneof=pdf zip link report other"`
	Milestones  []TemplateMilestonePayload `json:"milestones" validate:"omitempty,dive"`
}

// TemplateUpdateRequest patches a template.
type TemplateUpdateRequest struct {
	Name        *string                     `json:"name"`
	Description *string                     `json:"description"`
	Type        *string                     `json:"type" validate:"omitempty,oneof=pdf zip link report other"`
	Milestones  *[]TemplateMilestonePayload `json:"milestones" validate:"omitempty,dive"`
}

// TemplateResponse is the public template representation.
type TemplateResponse struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Type        string                     `json:"type"`
	Milestones  []TemplateMilestonePayload `json:"milestones"`
	CreatedBy   string                     `json:"createdBy"`
	CreatedAt   time.Time                  `json:"createdAt"`
	UpdatedAt   time.Time                  `json:"updatedAt"`
}

// NewTemplateMilestones converts blueprint payloads into model values.
func NewTemplateMilestones(payloads []TemplateMilestonePayload) []models.TemplateMilestone {
	milestones := make([]models.TemplateMilestone, 0, len(payloads))
	for _, payload := range payloads {
		milestones = append(milestones, models.TemplateMilestone{
			Label:      payload.Label,
			OffsetDays: payload.OffsetDays,
		})
	}

	return milestones
}

// NewTemplateResponse converts a Template model into a DTO.
func NewTemplateResponse(model models.Template) TemplateResponse {
	milestones := make([]TemplateMilestonePayload, 0, len(model.Milestones))
	for _, milestone := range model.Milestones {
		milestones = append(milestones, TemplateMilestonePayload{
			Label:      milestone.Label,
			OffsetDays: milestone.OffsetDays,
		})
	}

	return TemplateResponse{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Type:        model.Type,
		Milestones:  milestones,
		CreatedBy:   model.CreatedBy,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewTemplateResponseSlice converts template models into DTOs.
func NewTemplateResponseSlice(templates []models.Template) []TemplateResponse {
	responses := make([]TemplateResponse, 0, len(templates))
	for _, template := range templates {
		responses = append(responses, NewTemplateResponse(template))
	}

	return responses
}
