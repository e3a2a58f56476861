package dto

import (
	"time"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
)

// MilestonePayload carries one milestone in requests and responses.
// Duplicates are allowed and order is preserved exactly as supplied.
type MilestonePayload struct {
	Label string `json:"label" validate:"required"`
	Date  string `json:"date"`
	Done  bool   `json:"done"`
}

// SubmissionCreateRequest is the payload for creating a submission.
type SubmissionCreateRequest struct {
	Title       string             `json:"title" validate:"required"`
	Type        string             `json:"type" validate:"required,oneof=pdf zip link report other"`
	ContentRef  string             `json:"contentRef" validate:"required"`
	ProfessorID string             `json:"professorId" validate:"required"`
	Notes       string             `json:"notes"`
	Milestones  []MilestonePayload `json:"milestones" validate:"omitempty,dive"`
	GroupID     string             `json:"groupId"`
	TemplateID  string             `json:"templateId"`
}

// SubmissionUpdateRequest is the student-side patch. Nil means "not
// provided"; an explicit empty string for notes counts as provided.
type SubmissionUpdateRequest struct {
	Title       *string             `json:"title"`
	Type        *string             `json:"type" validate:"omitempty,oneof=pdf zip link report other"`
	ContentRef  *string             `json:"contentRef"`
	Notes       *string             `json:"notes"`
	Milestones  *[]MilestonePayload `json:"milestones" validate:"omitempty,dive"`
	ProfessorID *string             `json:"professorId"`
	Changes     *string             `json:"changes"`
}

// SubmissionReviewRequest is the professor-side patch: only notes and
// milestones are mutable through this path, and neither edit versions.
type SubmissionReviewRequest struct {
	Notes      *string             `json:"notes"`
	Milestones *[]MilestonePayload `json:"milestones" validate:"omitempty,dive"`
}

// CommentRequest appends a student comment to the feedback list.
type CommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// FeedbackRequest is the professor feedback payload. Any subset of the
// three fields may be supplied; an unrecognised status is ignored rather
// than rejected, so no oneof constraint is applied here.
type FeedbackRequest struct {
	Text   *string  `json:"text"`
	Status *string  `json:"status"`
	Grade  *float64 `json:"grade"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	StudentID *string `query:"studentId"`
	GroupID   *string `query:"groupId"`
}

// FeedbackEntryResponse serializes one feedback entry.
type FeedbackEntryResponse struct {
	By   string    `json:"by"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// VersionResponse serializes one version snapshot.
type VersionResponse struct {
	Version    int       `json:"version"`
	ContentRef string    `json:"contentRef"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
	CreatedBy  string    `json:"createdBy"`
	Changes    string    `json:"changes"`
}

// VersionHistoryResponse is returned when no version number is requested.
type VersionHistoryResponse struct {
	Versions       []VersionResponse `json:"versions"`
	CurrentVersion int               `json:"currentVersion"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID             string                  `json:"id"`
	StudentID      string                  `json:"studentId"`
	ProfessorID    string                  `json:"professorId"`
	GroupID        string                  `json:"groupId,omitempty"`
	Title          string                  `json:"title"`
	Type           string                  `json:"type"`
	ContentRef     string                  `json:"contentRef"`
	Notes          string                  `json:"notes"`
	Status         string                  `json:"status"`
	Grade          *float64                `json:"grade"`
	CurrentVersion int                     `json:"currentVersion"`
	Milestones     []MilestonePayload      `json:"milestones"`
	Feedback       []FeedbackEntryResponse `json:"feedback"`
	Versions       []VersionResponse       `json:"versions"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

// NewMilestones converts milestone payloads into model values.
func NewMilestones(payloads []MilestonePayload) []models.Milestone {
	milestones := make([]models.Milestone, 0, len(payloads))
	for _, payload := range payloads {
		milestones = append(milestones, models.Milestone{
			Label: payload.Label,
			Date:  payload.Date,
			Done:  payload.Done,
		})
	}

	return milestones
}

// NewVersionResponse converts a version model into a DTO.
func NewVersionResponse(model models.Version) VersionResponse {
	return VersionResponse{
		Version:    model.Version,
		ContentRef: model.ContentRef,
		Notes:      model.Notes,
		CreatedAt:  model.CreatedAt,
		CreatedBy:  model.CreatedBy,
		Changes:    model.Changes,
	}
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:             model.ID,
		StudentID:      model.StudentID,
		ProfessorID:    model.ProfessorID,
		GroupID:        model.GroupID,
		Title:          model.Title,
		Type:           model.Type,
		ContentRef:     model.ContentRef,
		Notes:          model.Notes,
		Status:         model.Status,
		Grade:          model.Grade,
		CurrentVersion: model.CurrentVersion,
		Milestones:     make([]MilestonePayload, 0, len(model.Milestones)),
		Feedback:       make([]FeedbackEntryResponse, 0, len(model.Feedback)),
		Versions:       make([]VersionResponse, 0, len(model.Versions)),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}

	for _, milestone := range model.Milestones {
		response.Milestones = append(response.Milestones, MilestonePayload{
			Label: milestone.Label,
			Date:  milestone.Date,
			Done:  milestone.Done,
		})
	}

	for _, entry := range model.Feedback {
		response.Feedback = append(response.Feedback, FeedbackEntryResponse{
			By:   entry.By,
			Text: entry.Text,
			Date: entry.Date,
		})
	}

	for _, version := range model.Versions {
		response.Versions = append(response.Versions, NewVersionResponse(version))
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
