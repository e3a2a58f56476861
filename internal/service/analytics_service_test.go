package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/auth"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
)

func seedAnalyticsSubmission(t *testing.T, repo *memorySubmissionRepo, submission models.Submission) {
	t.Helper()

	if submission.Status == "" {
		submission.Status = models.SubmissionStatusSubmitted
	}
	if submission.Type == "" {
		submission.Type = models.SubmissionTypeReport
	}
	submission.Versions = datatypes.NewJSONSlice([]models.Version{
		{Version: 1, ContentRef: submission.ContentRef, Changes: models.InitialVersionChanges},
	})
	submission.CurrentVersion = 1
	require.NoError(t, repo.Create(context.Background(), &submission))
}

func gradePtr(value float64) *float64 {
	return &value
}

func TestAnalyticsStudentAggregation(t *testing.T) {
	repo := newMemorySubmissionRepo()
	seedAnalyticsSubmission(t, repo, models.Submission{ID: "s1", StudentID: "stud-1", ProfessorID: "prof-ada", Grade: gradePtr(80)})
	seedAnalyticsSubmission(t, repo, models.Submission{ID: "s2", StudentID: "stud-1", ProfessorID: "prof-ada", Status: models.SubmissionStatusApproved, Type: models.SubmissionTypePDF, Grade: gradePtr(90)})
	seedAnalyticsSubmission(t, repo, models.Submission{ID: "s3", StudentID: "stud-1", ProfessorID: "prof-ada"})
	seedAnalyticsSubmission(t, repo, models.Submission{ID: "s4", StudentID: "stud-2", ProfessorID: "prof-ada", Grade: gradePtr(10)})

	svc := NewAnalyticsService(repo, nil, time.Minute, testLogger())

	result, err := svc.Student(context.Background(), auth.Identity{UserID: "stud-1", Role: auth.RoleStudent})
	require.NoError(t, err)

	require.Equal(t, 3, result.TotalSubmissions)
	require.Equal(t, 2, result.ByStatus[models.SubmissionStatusSubmitted])
	require.Equal(t, 1, result.ByStatus[models.SubmissionStatusApproved])
	require.Equal(t, 2, result.ByType[models.SubmissionTypeReport])
	require.Equal(t, 1, result.ByType[models.SubmissionTypePDF])
	require.Equal(t, 3, result.TotalVersions)
	require.Equal(t, 2, result.GradedCount)
	require.NotNil(t, result.AverageGrade)
	require.InDelta(t, 85.0, *result.AverageGrade, 0.001)
	require.False(t, result.CacheHit)
}

func TestAnalyticsStudentCaching(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	repo := newMemorySubmissionRepo()
	seedAnalyticsSubmission(t, repo, models.Submission{ID: "s1", StudentID: "stud-1", ProfessorID: "prof-ada", Grade: gradePtr(75)})

	svc := NewAnalyticsService(repo, redisClient, time.Minute, testLogger())
	actor := auth.Identity{UserID: "stud-1", Role: auth.RoleStudent}

	first, err := svc.Student(context.Background(), actor)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	// A submission added after the first read stays invisible until the
	// cache entry expires.
	seedAnalyticsSubmission(t, repo, models.Submission{ID: "s2", StudentID: "stud-1", ProfessorID: "prof-ada"})

	second, err := svc.Student(context.Background(), actor)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, 1, second.TotalSubmissions)

	mini.FastForward(2 * time.Minute)

	third, err := svc.Student(context.Background(), actor)
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Equal(t, 2, third.TotalSubmissions)
}

func TestAnalyticsProfessorAggregationAndReconciliation(t *testing.T) {
	repo := newMemorySubmissionRepo()
	seedAnalyticsSubmission(t, repo, models.Submission{ID: "s1", StudentID: "stud-1", ProfessorID: "prof-ada", Grade: gradePtr(95)})
	seedAnalyticsSubmission(t, repo, models.Submission{ID: "s2", StudentID: "stud-1", ProfessorID: "PROF-ADA", Status: models.SubmissionStatusApproved, Grade: gradePtr(55)})
	seedAnalyticsSubmission(t, repo, models.Submission{ID: "s3", StudentID: "stud-2", ProfessorID: "prof-ada"})
	seedAnalyticsSubmission(t, repo, models.Submission{ID: "s4", StudentID: "stud-2", ProfessorID: "prof-zed", Grade: gradePtr(40)})

	svc := NewAnalyticsService(repo, nil, time.Minute, testLogger())

	result, err := svc.Professor(context.Background(), auth.Identity{UserID: "prof-ada", Role: auth.RoleProfessor})
	require.NoError(t, err)

	require.Equal(t, 3, result.TotalSubmissions)
	require.Equal(t, 2, result.PendingReview)
	require.Equal(t, 2, result.ByStatus[models.SubmissionStatusSubmitted])
	require.Equal(t, 1, result.ByStatus[models.SubmissionStatusApproved])

	distribution := map[string]int{}
	for _, bucket := range result.GradeDistribution {
		distribution[bucket.Label] = bucket.Count
	}
	require.Equal(t, 1, distribution["90-100"])
	require.Equal(t, 1, distribution["50-59"])
	require.Equal(t, 0, distribution["0-49"])

	require.Len(t, result.StudentAverages, 1)
	require.Equal(t, "stud-1", result.StudentAverages[0].StudentID)
	require.InDelta(t, 75.0, result.StudentAverages[0].AverageGrade, 0.001)
	require.Equal(t, 2, result.StudentAverages[0].Graded)

	// The drifted id was rewritten during the read.
	reconciled, err := repo.GetByID(context.Background(), "s2")
	require.NoError(t, err)
	require.Equal(t, "prof-ada", reconciled.ProfessorID)
}
