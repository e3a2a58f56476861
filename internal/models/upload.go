package models

import "time"

// Upload records a stored artifact in the upload sink. Ref is the stable
// path handed back to clients and stored opaquely in submission contentRef.
type Upload struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Ref          string    `gorm:"size:512;uniqueIndex;not null" json:"ref"`
	OriginalName string    `gorm:"size:255" json:"originalName"`
	ContentType  string    `gorm:"size:128" json:"contentType"`
	Size         int64     `json:"size"`
	UploadedBy   string    `gorm:"size:64;index" json:"uploadedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}
