package dto

import (
	"time"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
)

// GroupCreateRequest creates a group. The creator is always added to the
// member list even when omitted from Members.
type GroupCreateRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

// GroupUpdateRequest patches a group's name, description or member list.
type GroupUpdateRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Members     *[]string `json:"members"`
}

// GroupMessageRequest posts a message to the group feed.
type GroupMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// GroupResponse is the public group representation.
type GroupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Members     []string  `json:"members"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GroupMessageResponse serializes one feed entry.
type GroupMessageResponse struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"groupId"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewGroupResponse converts a Group model into a DTO.
func NewGroupResponse(model models.Group) GroupResponse {
	members := make([]string, 0, len(model.Members))
	members = append(members, model.Members...)

	return GroupResponse{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Members:     members,
		CreatedBy:   model.CreatedBy,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewGroupResponseSlice converts group models into DTOs.
func NewGroupResponseSlice(groups []models.Group) []GroupResponse {
	responses := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, NewGroupResponse(group))
	}

	return responses
}

// NewGroupMessageResponse converts a GroupMessage model into a DTO.
func NewGroupMessageResponse(model models.GroupMessage) GroupMessageResponse {
	return GroupMessageResponse{
		ID:        model.ID,
		GroupID:   model.GroupID,
		AuthorID:  model.AuthorID,
		Text:      model.Text,
		CreatedAt: model.CreatedAt,
	}
}

// NewGroupMessageResponseSlice converts message models into DTOs.
func NewGroupMessageResponseSlice(messages []models.GroupMessage) []GroupMessageResponse {
	responses := make([]GroupMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewGroupMessageResponse(message))
	}

	return responses
}
