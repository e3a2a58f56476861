package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/auth"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/observability"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/repository"
)

// Sentinel errors surfaced by the lifecycle manager.
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrVersionNotFound    = errors.New("version not found")
	ErrInvalidProfessor   = errors.New("professor does not resolve to a verified professor")
	ErrGroupNotFound      = errors.New("group not found")
	ErrNotGroupMember     = errors.New("caller is not a member of the group")
	ErrForbidden          = errors.New("caller may not access this submission")
	ErrEmptyComment       = errors.New("comment text must not be empty")
	ErrTemplateNotFound   = errors.New("template not found")
)

// Default change messages recorded when the caller supplies none.
const (
	changesContentUpdated = "Content updated"
	changesNotesUpdated   = "Notes updated"
)

// SubmissionService is the submission lifecycle manager: creation,
// versioning, status transitions, feedback and grading, plus the
// professor-id reconciliation applied on professor-scoped reads.
type SubmissionService interface {
	Create(ctx context.Context, actor auth.Identity, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, actor auth.Identity, id string) (dto.SubmissionResponse, error)
	List(ctx context.Context, actor auth.Identity, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Update(ctx context.Context, actor auth.Identity, id string, payload dto.SubmissionUpdateRequest) (dto.SubmissionResponse, error)
	Review(ctx context.Context, actor auth.Identity, id string, payload dto.SubmissionReviewRequest) (dto.SubmissionResponse, error)
	AddComment(ctx context.Context, actor auth.Identity, id string, payload dto.CommentRequest) (dto.SubmissionResponse, error)
	ApplyFeedback(ctx context.Context, actor auth.Identity, id string, payload dto.FeedbackRequest) (dto.SubmissionResponse, error)
	VersionHistory(ctx context.Context, actor auth.Identity, id string) (dto.VersionHistoryResponse, error)
	Version(ctx context.Context, actor auth.Identity, id string, number int) (dto.VersionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	groups      repository.GroupRepository
	templates   repository.TemplateRepository
	notifier    NotificationPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	now         func() time.Time
}

// NewSubmissionService constructs the lifecycle manager.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	users repository.UserRepository,
	groups repository.GroupRepository,
	templates repository.TemplateRepository,
	notifier NotificationPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		users:       users,
		groups:      groups,
		templates:   templates,
		notifier:    notifier,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/service/submission"),
		sanitizer:   bluemonday.StrictPolicy(),
		now:         time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, actor auth.Identity, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submissions.create", trace.WithAttributes(
		attribute.String("submission.student_id", actor.UserID),
		attribute.String("submission.type", payload.Type),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.resolveProfessor(ctx, payload.ProfessorID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if payload.GroupID != "" {
		group, err := s.groups.GetByID(ctx, payload.GroupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SubmissionResponse{}, ErrGroupNotFound
			}
			return dto.SubmissionResponse{}, err
		}
		if !group.HasMember(actor.UserID) {
			return dto.SubmissionResponse{}, ErrNotGroupMember
		}
	}

	now := s.now()

	milestones := dto.NewMilestones(payload.Milestones)
	if len(milestones) == 0 && payload.TemplateID != "" {
		prefilled, err := s.milestonesFromTemplate(ctx, payload.TemplateID, now)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		milestones = prefilled
	}

	submission := models.Submission{
		ID:          uuid.NewString(),
		StudentID:   actor.UserID,
		ProfessorID: payload.ProfessorID,
		GroupID:     payload.GroupID,
		Title:       payload.Title,
		Type:        payload.Type,
		Status:      models.SubmissionStatusSubmitted,
		Milestones:  datatypes.NewJSONSlice(milestones),
		Feedback:    datatypes.NewJSONSlice([]models.FeedbackEntry{}),
		Versions:    datatypes.NewJSONSlice([]models.Version{}),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	submission.AppendVersion(payload.ContentRef, payload.Notes, actor.UserID, models.InitialVersionChanges, now)

	if err := s.submissions.Create(ctx, &submission); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	s.push(ctx, NotificationInput{
		UserID:    submission.ProfessorID,
		Type:      models.NotificationNewSubmission,
		Title:     "New submission",
		Message:   fmt.Sprintf("%s submitted %q", actor.UserID, submission.Title),
		RelatedID: submission.ID,
		Link:      "/submissions/" + submission.ID,
	})

	observability.SubmissionEvents().WithLabelValues("created").Inc()
	s.logger.Info().Str("submission_id", submission.ID).Str("student_id", actor.UserID).Msg("submission created")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Get(ctx context.Context, actor auth.Identity, id string) (dto.SubmissionResponse, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.authorizeRead(ctx, actor, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, actor auth.Identity, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{})
	if err != nil {
		return nil, err
	}

	var visible []models.Submission
	if actor.IsProfessor() {
		visible, err = s.reconcileForProfessor(ctx, submissions, actor.UserID)
		if err != nil {
			return nil, err
		}
	} else {
		memberOf, err := s.memberGroupIDs(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		for _, submission := range submissions {
			if submission.StudentID == actor.UserID {
				visible = append(visible, submission)
				continue
			}
			if submission.GroupID != "" && memberOf[submission.GroupID] {
				visible = append(visible, submission)
			}
		}
	}

	filtered := visible[:0]
	for _, submission := range visible {
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		if filter.GroupID != nil && submission.GroupID != *filter.GroupID {
			continue
		}
		filtered = append(filtered, submission)
	}

	return dto.NewSubmissionResponseSlice(filtered), nil
}

func (s *submissionService) Update(ctx context.Context, actor auth.Identity, id string, payload dto.SubmissionUpdateRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submissions.update", trace.WithAttributes(
		attribute.String("submission.id", id),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.authorizeStudent(ctx, actor, submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	// Validate the reassignment target before touching any state.
	if payload.ProfessorID != nil {
		if err := s.resolveProfessor(ctx, *payload.ProfessorID); err != nil {
			return dto.SubmissionResponse{}, err
		}
	}

	now := s.now()

	contentChanged := payload.ContentRef != nil && *payload.ContentRef != submission.ContentRef
	notesChanged := payload.Notes != nil && *payload.Notes != submission.Notes

	if contentChanged || notesChanged {
		contentRef := submission.ContentRef
		if payload.ContentRef != nil {
			contentRef = *payload.ContentRef
		}
		notes := submission.Notes
		if payload.Notes != nil {
			notes = *payload.Notes
		}

		changes := ""
		if payload.Changes != nil {
			changes = strings.TrimSpace(*payload.Changes)
		}
		if changes == "" {
			if contentChanged {
				changes = changesContentUpdated
			} else {
				changes = changesNotesUpdated
			}
		}

		submission.AppendVersion(contentRef, notes, actor.UserID, changes, now)
		observability.SubmissionEvents().WithLabelValues("version_appended").Inc()
	}

	if payload.Title != nil {
		submission.Title = *payload.Title
	}
	if payload.Type != nil {
		submission.Type = *payload.Type
	}
	if payload.Milestones != nil {
		submission.Milestones = datatypes.NewJSONSlice(dto.NewMilestones(*payload.Milestones))
	}
	if payload.ProfessorID != nil {
		submission.ProfessorID = *payload.ProfessorID
	}

	submission.UpdatedAt = now

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Str("submission_id", submission.ID).Int("current_version", submission.CurrentVersion).Msg("submission updated")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Review(ctx context.Context, actor auth.Identity, id string, payload dto.SubmissionReviewRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.ProfessorID != actor.UserID {
		return dto.SubmissionResponse{}, ErrForbidden
	}

	// Professor edits overwrite the root fields without versioning; the
	// asymmetry with student notes edits is intentional.
	if payload.Notes != nil {
		submission.Notes = *payload.Notes
	}
	if payload.Milestones != nil {
		submission.Milestones = datatypes.NewJSONSlice(dto.NewMilestones(*payload.Milestones))
	}

	submission.UpdatedAt = s.now()

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) AddComment(ctx context.Context, actor auth.Identity, id string, payload dto.CommentRequest) (dto.SubmissionResponse, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	// Comments require exact ownership; group members may update content
	// but not comment on the owner's behalf.
	if submission.StudentID != actor.UserID {
		return dto.SubmissionResponse{}, ErrForbidden
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Text))
	if text == "" {
		return dto.SubmissionResponse{}, ErrEmptyComment
	}

	now := s.now()
	submission.Feedback = append(submission.Feedback, models.FeedbackEntry{
		By:   actor.UserID,
		Text: text,
		Date: now,
	})
	submission.UpdatedAt = now

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ApplyFeedback(ctx context.Context, actor auth.Identity, id string, payload dto.FeedbackRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submissions.apply_feedback", trace.WithAttributes(
		attribute.String("submission.id", id),
	))
	defer span.End()

	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	// Feedback requires the exact assigned professor; no fuzzy fallback.
	if submission.ProfessorID != actor.UserID {
		return dto.SubmissionResponse{}, ErrForbidden
	}

	now := s.now()

	if payload.Text != nil {
		text := strings.TrimSpace(s.sanitizer.Sanitize(*payload.Text))
		if text != "" {
			submission.Feedback = append(submission.Feedback, models.FeedbackEntry{
				By:   actor.UserID,
				Text: text,
				Date: now,
			})
			observability.SubmissionEvents().WithLabelValues("feedback").Inc()
			s.push(ctx, NotificationInput{
				UserID:    submission.StudentID,
				Type:      models.NotificationFeedback,
				Title:     "New feedback",
				Message:   fmt.Sprintf("New feedback on %q", submission.Title),
				RelatedID: submission.ID,
				Link:      "/submissions/" + submission.ID,
			})
		}
	}

	// An unrecognised status is ignored rather than rejected.
	if payload.Status != nil && models.ValidSubmissionStatus(*payload.Status) {
		if submission.Status != *payload.Status {
			s.push(ctx, NotificationInput{
				UserID:    submission.StudentID,
				Type:      models.NotificationStatusChange,
				Title:     "Status changed",
				Message:   fmt.Sprintf("%q is now %s", submission.Title, *payload.Status),
				RelatedID: submission.ID,
				Link:      "/submissions/" + submission.ID,
			})
			observability.SubmissionEvents().WithLabelValues("status_change").Inc()
		}
		submission.Status = *payload.Status
	}

	if payload.Grade != nil {
		if submission.Grade == nil || *submission.Grade != *payload.Grade {
			s.push(ctx, NotificationInput{
				UserID:    submission.StudentID,
				Type:      models.NotificationGrade,
				Title:     "Grade posted",
				Message:   fmt.Sprintf("%q was graded %.4g", submission.Title, *payload.Grade),
				RelatedID: submission.ID,
				Link:      "/submissions/" + submission.ID,
			})
			observability.SubmissionEvents().WithLabelValues("grade").Inc()
		}
		grade := *payload.Grade
		submission.Grade = &grade
	}

	submission.UpdatedAt = now

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Str("submission_id", submission.ID).Str("professor_id", actor.UserID).Msg("professor feedback applied")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) VersionHistory(ctx context.Context, actor auth.Identity, id string) (dto.VersionHistoryResponse, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.VersionHistoryResponse{}, err
	}

	if err := s.authorizeRead(ctx, actor, &submission); err != nil {
		return dto.VersionHistoryResponse{}, err
	}

	versions := make([]dto.VersionResponse, 0, len(submission.Versions))
	for _, version := range submission.Versions {
		versions = append(versions, dto.NewVersionResponse(version))
	}

	return dto.VersionHistoryResponse{
		Versions:       versions,
		CurrentVersion: submission.CurrentVersion,
	}, nil
}

func (s *submissionService) Version(ctx context.Context, actor auth.Identity, id string, number int) (dto.VersionResponse, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.VersionResponse{}, err
	}

	if err := s.authorizeRead(ctx, actor, &submission); err != nil {
		return dto.VersionResponse{}, err
	}

	for _, version := range submission.Versions {
		if version.Version == number {
			return dto.NewVersionResponse(version), nil
		}
	}

	return dto.VersionResponse{}, ErrVersionNotFound
}

func (s *submissionService) load(ctx context.Context, id string) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}

	return submission, nil
}

// resolveProfessor checks that id refers to an existing verified professor.
func (s *submissionService) resolveProfessor(ctx context.Context, id string) error {
	professor, err := s.users.GetByUserID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidProfessor
		}
		return err
	}

	if !professor.IsVerifiedProfessor() {
		return ErrInvalidProfessor
	}

	return nil
}

// authorizeStudent grants access to the student owner or, when the
// submission is group-owned, to any member of that group.
func (s *submissionService) authorizeStudent(ctx context.Context, actor auth.Identity, submission models.Submission) error {
	if submission.StudentID == actor.UserID {
		return nil
	}

	if submission.GroupID != "" {
		group, err := s.groups.GetByID(ctx, submission.GroupID)
		if err == nil && group.HasMember(actor.UserID) {
			return nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	return ErrForbidden
}

// authorizeRead applies the student rule for students and the
// reconciliation rule for professors. A non-exact professor match rewrites
// the stored professorId to the caller's canonical id and persists it.
func (s *submissionService) authorizeRead(ctx context.Context, actor auth.Identity, submission *models.Submission) error {
	if actor.IsProfessor() {
		exact, ok := professorMatches(submission.ProfessorID, actor.UserID)
		if !ok {
			return ErrForbidden
		}
		if !exact {
			s.persistReconciled(ctx, submission, actor.UserID)
		}
		return nil
	}

	return s.authorizeStudent(ctx, actor, *submission)
}

// reconcileForProfessor selects the submissions assigned to professorID
// under the reconciliation rules and persists rewrites for non-exact
// matches, progressively normalizing historical drift.
func (s *submissionService) reconcileForProfessor(ctx context.Context, submissions []models.Submission, professorID string) ([]models.Submission, error) {
	var matched []models.Submission
	for i := range submissions {
		exact, ok := professorMatches(submissions[i].ProfessorID, professorID)
		if !ok {
			continue
		}
		if !exact {
			s.persistReconciled(ctx, &submissions[i], professorID)
		}
		matched = append(matched, submissions[i])
	}

	return matched, nil
}

func (s *submissionService) persistReconciled(ctx context.Context, submission *models.Submission, professorID string) {
	previous := submission.ProfessorID
	submission.ProfessorID = professorID
	if err := s.submissions.Update(ctx, submission); err != nil {
		s.logger.Warn().Err(err).Str("submission_id", submission.ID).Msg("failed to persist reconciled professor id")
		return
	}

	observability.SubmissionEvents().WithLabelValues("reconciled").Inc()
	s.logger.Debug().
		Str("submission_id", submission.ID).
		Str("previous", previous).
		Str("canonical", professorID).
		Msg("professor id reconciled")
}

func (s *submissionService) memberGroupIDs(ctx context.Context, userID string) (map[string]bool, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, err
	}

	memberOf := make(map[string]bool, len(groups))
	for _, group := range groups {
		if group.HasMember(userID) {
			memberOf[group.ID] = true
		}
	}

	return memberOf, nil
}

func (s *submissionService) milestonesFromTemplate(ctx context.Context, templateID string, now time.Time) ([]models.Milestone, error) {
	template, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	milestones := make([]models.Milestone, 0, len(template.Milestones))
	for _, blueprint := range template.Milestones {
		milestones = append(milestones, models.Milestone{
			Label: blueprint.Label,
			Date:  now.AddDate(0, 0, blueprint.OffsetDays).Format("2006-01-02"),
		})
	}

	return milestones, nil
}

// push records a notification; delivery failures never fail the mutation
// that produced them.
func (s *submissionService) push(ctx context.Context, input NotificationInput) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Push(ctx, input); err != nil {
		s.logger.Warn().Err(err).Str("type", input.Type).Msg("failed to queue notification")
	}
}
