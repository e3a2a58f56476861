package dto

// StudentAnalyticsResponse summarises a student's own submission set.
type StudentAnalyticsResponse struct {
	TotalSubmissions int            `json:"totalSubmissions"`
	ByStatus         map[string]int `json:"byStatus"`
	ByType           map[string]int `json:"byType"`
	AverageGrade     *float64       `json:"averageGrade"`
	GradedCount      int            `json:"gradedCount"`
	TotalVersions    int            `json:"totalVersions"`
	CacheHit         bool           `json:"cacheHit,omitempty"`
}

// GradeBucket is one slice of the professor grade distribution.
type GradeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StudentAverage pairs a student with their average grade.
type StudentAverage struct {
	StudentID    string  `json:"studentId"`
	AverageGrade float64 `json:"averageGrade"`
	Graded       int     `json:"graded"`
}

// ProfessorAnalyticsResponse summarises the reconciled submission set
// assigned to a professor.
type ProfessorAnalyticsResponse struct {
	TotalSubmissions  int              `json:"totalSubmissions"`
	ByStatus          map[string]int   `json:"byStatus"`
	PendingReview     int              `json:"pendingReview"`
	GradeDistribution []GradeBucket    `json:"gradeDistribution"`
	StudentAverages   []StudentAverage `json:"studentAverages"`
	CacheHit          bool             `json:"cacheHit,omitempty"`
}
