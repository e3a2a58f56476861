package models

import "time"

// User roles stored in the directory.
const (
	UserRoleStudent   = "student"
	UserRoleProfessor = "professor"
)

// User represents a directory entry for a student or professor. UserID is
// the external identifier carried on requests and referenced by submissions.
type User struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"userId"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	Verified  bool      `gorm:"not null;default:false" json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsVerifiedProfessor reports whether the user may be assigned as a grader.
func (u User) IsVerifiedProfessor() bool {
	return u.Role == UserRoleProfessor && u.Verified
}
