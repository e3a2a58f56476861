package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/auth"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/observability"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/repository"
)

// AnalyticsService aggregates submission statistics per role.
type AnalyticsService interface {
	Student(ctx context.Context, actor auth.Identity) (dto.StudentAnalyticsResponse, error)
	Professor(ctx context.Context, actor auth.Identity) (dto.ProfessorAnalyticsResponse, error)
}

type analyticsService struct {
	submissions repository.SubmissionRepository
	cache       *redis.Client
	ttl         time.Duration
	logger      zerolog.Logger
}

// NewAnalyticsService constructs the analytics service. A nil cache client
// disables caching entirely.
func NewAnalyticsService(submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalyticsService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &analyticsService{
		submissions: submissions,
		cache:       cache,
		ttl:         ttl,
		logger:      logger.With().Str("component", "analytics_service").Logger(),
	}
}

func (s *analyticsService) Student(ctx context.Context, actor auth.Identity) (dto.StudentAnalyticsResponse, error) {
	cacheKey := fmt.Sprintf("analytics:student:v1:%s", actor.UserID)
	var cached dto.StudentAnalyticsResponse
	if s.readCache(ctx, cacheKey, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	studentID := actor.UserID
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		observability.AnalyticsRequests().WithLabelValues("error").Inc()
		return dto.StudentAnalyticsResponse{}, err
	}

	response := dto.StudentAnalyticsResponse{
		TotalSubmissions: len(submissions),
		ByStatus:         map[string]int{},
		ByType:           map[string]int{},
	}

	gradeSum := 0.0
	for _, submission := range submissions {
		response.ByStatus[submission.Status]++
		response.ByType[submission.Type]++
		response.TotalVersions += len(submission.Versions)
		if submission.Grade != nil {
			response.GradedCount++
			gradeSum += *submission.Grade
		}
	}

	if response.GradedCount > 0 {
		average := gradeSum / float64(response.GradedCount)
		response.AverageGrade = &average
	}

	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *analyticsService) Professor(ctx context.Context, actor auth.Identity) (dto.ProfessorAnalyticsResponse, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{})
	if err != nil {
		observability.AnalyticsRequests().WithLabelValues("error").Inc()
		return dto.ProfessorAnalyticsResponse{}, err
	}

	// Reconciliation runs before any caching so professor-id drift is
	// normalized even on analytics reads.
	var matched []models.Submission
	for i := range submissions {
		exact, ok := professorMatches(submissions[i].ProfessorID, actor.UserID)
		if !ok {
			continue
		}
		if !exact {
			submissions[i].ProfessorID = actor.UserID
			if err := s.submissions.Update(ctx, &submissions[i]); err != nil {
				s.logger.Warn().Err(err).Str("submission_id", submissions[i].ID).Msg("failed to persist reconciled professor id")
			} else {
				observability.SubmissionEvents().WithLabelValues("reconciled").Inc()
			}
		}
		matched = append(matched, submissions[i])
	}

	cacheKey := fmt.Sprintf("analytics:professor:v1:%s", actor.UserID)
	var cached dto.ProfessorAnalyticsResponse
	if s.readCache(ctx, cacheKey, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	response := dto.ProfessorAnalyticsResponse{
		TotalSubmissions: len(matched),
		ByStatus:         map[string]int{},
	}

	buckets := []struct {
		label string
		lo    float64
		hi    float64
	}{
		{"0-49", 0, 49},
		{"50-59", 50, 59},
		{"60-69", 60, 69},
		{"70-79", 70, 79},
		{"80-89", 80, 89},
		{"90-100", 90, 100},
	}
	bucketCounts := make([]int, len(buckets))

	perStudent := map[string]*dto.StudentAverage{}
	for _, submission := range matched {
		response.ByStatus[submission.Status]++
		if submission.Status == models.SubmissionStatusSubmitted {
			response.PendingReview++
		}
		if submission.Grade == nil {
			continue
		}

		grade := *submission.Grade
		for i, bucket := range buckets {
			if grade >= bucket.lo && grade <= bucket.hi {
				bucketCounts[i]++
				break
			}
		}

		entry, seen := perStudent[submission.StudentID]
		if !seen {
			entry = &dto.StudentAverage{StudentID: submission.StudentID}
			perStudent[submission.StudentID] = entry
		}
		entry.AverageGrade += grade
		entry.Graded++
	}

	response.GradeDistribution = make([]dto.GradeBucket, 0, len(buckets))
	for i, bucket := range buckets {
		response.GradeDistribution = append(response.GradeDistribution, dto.GradeBucket{
			Label: bucket.label,
			Count: bucketCounts[i],
		})
	}

	response.StudentAverages = make([]dto.StudentAverage, 0, len(perStudent))
	for _, entry := range perStudent {
		entry.AverageGrade /= float64(entry.Graded)
		response.StudentAverages = append(response.StudentAverages, *entry)
	}
	sort.Slice(response.StudentAverages, func(i, j int) bool {
		return response.StudentAverages[i].StudentID < response.StudentAverages[j].StudentID
	})

	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *analyticsService) readCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}

	payload, err := s.cache.Get(ctx, key).Result()
	if err != nil || payload == "" {
		observability.AnalyticsRequests().WithLabelValues("miss").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false
	}

	observability.AnalyticsRequests().WithLabelValues("hit").Inc()
	return true
}

func (s *analyticsService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache analytics")
	}
}
