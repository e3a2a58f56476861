package models

import "time"

// Notification types produced by the backend.
const (
	NotificationNewSubmission = "new_submission"
	NotificationFeedback      = "feedback"
	NotificationStatusChange  = "status_change"
	NotificationGrade         = "grade"
	NotificationAnnouncement  = "announcement"
	NotificationGroupMessage  = "group_message"
)

// Notification is an append-only entry targeted at a single user. Clients
// poll their list and mark entries read; nothing in the backend consumes
// notifications after producing them.
type Notification struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:64;index;not null" json:"userId"`
	Type      string    `gorm:"size:64;not null" json:"type"`
	Title     string    `gorm:"size:255" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	RelatedID string    `gorm:"size:64" json:"relatedId,omitempty"`
	Link      string    `gorm:"size:512" json:"link,omitempty"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
