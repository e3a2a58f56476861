package models

import (
	"time"

	"gorm.io/datatypes"
)

// Group is a named set of students who may jointly own submissions.
type Group struct {
	ID          string                      `gorm:"primaryKey;size:36" json:"id"`
	Name        string                      `gorm:"size:255;not null" json:"name"`
	Description string                      `gorm:"type:text" json:"description"`
	Members     datatypes.JSONSlice[string] `json:"members"`
	CreatedBy   string                      `gorm:"size:64;index" json:"createdBy"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

// HasMember reports whether userID belongs to the group.
func (g Group) HasMember(userID string) bool {
	for _, member := range g.Members {
		if member == userID {
			return true
		}
	}
	return false
}

// GroupMessage is a single entry in a group's discussion feed. Clients poll
// for new messages, so reads are filtered by CreatedAt.
type GroupMessage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	GroupID   string    `gorm:"size:36;index;not null" json:"groupId"`
	AuthorID  string    `gorm:"size:64;index;not null" json:"authorId"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
