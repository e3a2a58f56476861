package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission statuses. The status machine is flat: any permitted actor can
// move a submission to any of the three states.
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusApproved  = "approved"
	SubmissionStatusResubmit  = "resubmit"
)

// Submission types accepted at creation.
const (
	SubmissionTypePDF    = "pdf"
	SubmissionTypeZip    = "zip"
	SubmissionTypeLink   = "link"
	SubmissionTypeReport = "report"
	SubmissionTypeOther  = "other"
)

// InitialVersionChanges is the change message recorded on version 1.
const InitialVersionChanges = "Initial submission"

// Milestone is a planning entry on a submission. Duplicates are allowed and
// caller-supplied order is preserved.
type Milestone struct {
	Label string `json:"label"`
	Date  string `json:"date"`
	Done  bool   `json:"done"`
}

// FeedbackEntry is a single comment on a submission. Students and professors
// append to the same list, distinguished only by By.
type FeedbackEntry struct {
	By   string    `json:"by"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// Version is an immutable snapshot of a submission's content and notes.
// Version numbers are 1-based and gapless.
type Version struct {
	Version    int       `json:"version"`
	ContentRef string    `json:"contentRef"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
	CreatedBy  string    `json:"createdBy"`
	Changes    string    `json:"changes"`
}

// Submission is a unit of student work tracked through review. The root
// ContentRef and Notes always mirror the entry in Versions whose number
// equals CurrentVersion; AppendVersion is the only writer of that pair.
type Submission struct {
	ID             string                             `gorm:"primaryKey;size:36" json:"id"`
	StudentID      string                             `gorm:"size:64;index;not null" json:"studentId"`
	ProfessorID    string                             `gorm:"size:64;index;not null" json:"professorId"`
	GroupID        string                             `gorm:"size:36;index" json:"groupId,omitempty"`
	Title          string                             `gorm:"size:255;not null" json:"title"`
	Type           string                             `gorm:"size:32;not null" json:"type"`
	ContentRef     string                             `gorm:"size:512;not null" json:"contentRef"`
	Notes          string                             `gorm:"type:text" json:"notes"`
	Status         string                             `gorm:"size:32;not null" json:"status"`
	Grade          *float64                           `json:"grade"`
	CurrentVersion int                                `gorm:"not null" json:"currentVersion"`
	Milestones     datatypes.JSONSlice[Milestone]     `json:"milestones"`
	Feedback       datatypes.JSONSlice[FeedbackEntry] `json:"feedback"`
	Versions       datatypes.JSONSlice[Version]       `json:"versions"`
	CreatedAt      time.Time                          `json:"createdAt"`
	UpdatedAt      time.Time                          `json:"updatedAt"`
}

// ValidSubmissionStatus reports whether status is one of the three states.
func ValidSubmissionStatus(status string) bool {
	switch status {
	case SubmissionStatusSubmitted, SubmissionStatusApproved, SubmissionStatusResubmit:
		return true
	}
	return false
}

// ValidSubmissionType reports whether t is an accepted submission type.
func ValidSubmissionType(t string) bool {
	switch t {
	case SubmissionTypePDF, SubmissionTypeZip, SubmissionTypeLink, SubmissionTypeReport, SubmissionTypeOther:
		return true
	}
	return false
}

// CurrentVersionEntry returns the version entry matching CurrentVersion.
func (s Submission) CurrentVersionEntry() (Version, bool) {
	for _, v := range s.Versions {
		if v.Version == s.CurrentVersion {
			return v, true
		}
	}
	return Version{}, false
}

// AppendVersion records a new snapshot and advances the current pointer,
// keeping the root ContentRef/Notes mirror in sync.
func (s *Submission) AppendVersion(contentRef, notes, createdBy, changes string, at time.Time) Version {
	entry := Version{
		Version:    s.CurrentVersion + 1,
		ContentRef: contentRef,
		Notes:      notes,
		CreatedAt:  at,
		CreatedBy:  createdBy,
		Changes:    changes,
	}

	s.Versions = append(s.Versions, entry)
	s.CurrentVersion = entry.Version
	s.ContentRef = contentRef
	s.Notes = notes

	return entry
}
