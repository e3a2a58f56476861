package models

import (
	"time"

	"gorm.io/datatypes"
)

// TemplateMilestone is a milestone blueprint: the label plus the number of
// days after submission creation at which it falls due.
type TemplateMilestone struct {
	Label      string `json:"label"`
	OffsetDays int    `json:"offsetDays"`
}

// Template is a professor-authored submission blueprint used to prefill
// milestones on new submissions.
type Template struct {
	ID          string                                 `gorm:"primaryKey;size:36" json:"id"`
	Name        string                                 `gorm:"size:255;not null" json:"name"`
	Description string                                 `gorm:"type:text" json:"description"`
	Type        string                                 `gorm:"size:32;not null" json:"type"`
	Milestones  datatypes.JSONSlice[TemplateMilestone] `json:"milestones"`
	CreatedBy   string                                 `gorm:"size:64;index" json:"createdBy"`
	CreatedAt   time.Time                              `json:"createdAt"`
	UpdatedAt   time.Time                              `json:"updatedAt"`
}
