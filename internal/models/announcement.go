package models

import "time"

// Announcement audiences.
const (
	AudienceAll        = "all"
	AudienceStudents   = "students"
	AudienceProfessors = "professors"
)

// Announcement is a broadcast message authored by a professor.
type Announcement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	AuthorID  string    `gorm:"size:64;index" json:"authorId"`
	Audience  string    `gorm:"size:32;not null;default:all" json:"audience"`
	Pinned    bool      `gorm:"not null;default:false" json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidAudience reports whether audience is a recognised target.
func ValidAudience(audience string) bool {
	switch audience {
	case AudienceAll, AudienceStudents, AudienceProfessors:
		return true
	}
	return false
}
