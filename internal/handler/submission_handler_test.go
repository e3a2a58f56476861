package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/config"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/handler"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/middleware"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/repository"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/router"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/service"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Submission{},
		&models.Group{},
		&models.GroupMessage{},
		&models.Announcement{},
		&models.Template{},
		&models.Notification{},
		&models.Upload{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	userRepo := repository.NewUserRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, userRepo, groupRepo, templateRepo, notificationService, validate, logger)
	analyticsService := service.NewAnalyticsService(submissionRepo, nil, 0, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, userRepo, notificationService, validate, logger)
	groupService := service.NewGroupService(groupRepo, notificationService, validate, logger)
	templateService := service.NewTemplateService(templateRepo, validate, logger)
	uploadService := service.NewUploadService(uploadRepo, validate, t.TempDir(), 1, logger)

	app := fiber.New()
	app.Use(middleware.Identity())

	router.Register(app, config.Config{AppName: "Test", UploadDir: t.TempDir()}, router.Dependencies{
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, logger),
		AnalyticsHandler:    handler.NewAnalyticsHandler(analyticsService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		AnnouncementHandler: handler.NewAnnouncementHandler(announcementService, logger),
		GroupHandler:        handler.NewGroupHandler(groupService, logger),
		TemplateHandler:     handler.NewTemplateHandler(templateService, logger),
		UserHandler:         handler.NewUserHandler(userService, logger),
		UploadHandler:       handler.NewUploadHandler(uploadService, logger),
	})

	return app, db
}

func seedDirectory(t *testing.T, db *gorm.DB) {
	t.Helper()

	users := []models.User{
		{UserID: "prof-ada", Name: "Ada", Email: "ada@uni.test", Role: models.UserRoleProfessor, Verified: true},
		{UserID: "stud-1", Name: "Student One", Email: "one@uni.test", Role: models.UserRoleStudent},
		{UserID: "stud-2", Name: "Student Two", Email: "two@uni.test", Role: models.UserRoleStudent},
	}
	for i := range users {
		require.NoError(t, db.Create(&users[i]).Error)
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path, userID, role string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
		req.Header.Set("X-User-Role", role)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

type submissionEnvelope struct {
	Success bool                   `json:"success"`
	Data    dto.SubmissionResponse `json:"data"`
	Message string                 `json:"message"`
}

func createSubmission(t *testing.T, app *fiber.App, studentID string) dto.SubmissionResponse {
	t.Helper()

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/submissions", studentID, "student", dto.SubmissionCreateRequest{
		Title:       "Thesis draft",
		Type:        "report",
		ContentRef:  "/uploads/draft-v1.pdf",
		ProfessorID: "prof-ada",
		Notes:       "First full draft",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var envelope submissionEnvelope
	decodeResponse(t, resp, &envelope)
	require.True(t, envelope.Success)
	return envelope.Data
}

func TestSubmissionEndpointsRequireIdentity(t *testing.T) {
	app, _ := setupApp(t)

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/submissions", "", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSubmissionLifecycleOverHTTP(t *testing.T) {
	app, db := setupApp(t)
	seedDirectory(t, db)

	created := createSubmission(t, app, "stud-1")
	require.Equal(t, 1, created.CurrentVersion)
	require.Equal(t, "submitted", created.Status)
	require.Len(t, created.Versions, 1)

	// Student patch with a new contentRef appends exactly one version.
	resp := doJSON(t, app, fiber.MethodPatch, "/api/v1/submissions/"+created.ID, "stud-1", "student", map[string]interface{}{
		"contentRef": "/uploads/draft-v2.pdf",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var patched submissionEnvelope
	decodeResponse(t, resp, &patched)
	require.Equal(t, 2, patched.Data.CurrentVersion)
	require.Len(t, patched.Data.Versions, 2)
	require.Equal(t, "Content updated", patched.Data.Versions[1].Changes)

	// The assigned professor's patch edits notes without versioning.
	resp = doJSON(t, app, fiber.MethodPatch, "/api/v1/submissions/"+created.ID, "prof-ada", "professor", map[string]interface{}{
		"notes": "Needs a stronger conclusion",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reviewed submissionEnvelope
	decodeResponse(t, resp, &reviewed)
	require.Equal(t, "Needs a stronger conclusion", reviewed.Data.Notes)
	require.Equal(t, 2, reviewed.Data.CurrentVersion)
	require.Len(t, reviewed.Data.Versions, 2)

	// Professor feedback with text, status and grade.
	resp = doJSON(t, app, fiber.MethodPost, "/api/v1/submissions/"+created.ID+"/feedback", "prof-ada", "professor", map[string]interface{}{
		"text":   "Solid revision",
		"status": "approved",
		"grade":  88.5,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var graded submissionEnvelope
	decodeResponse(t, resp, &graded)
	require.Equal(t, "approved", graded.Data.Status)
	require.NotNil(t, graded.Data.Grade)
	require.Equal(t, 88.5, *graded.Data.Grade)
	require.Len(t, graded.Data.Feedback, 1)

	// Version history reflects both snapshots.
	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/submissions/"+created.ID+"/versions", "stud-1", "student", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var history struct {
		Success bool                       `json:"success"`
		Data    dto.VersionHistoryResponse `json:"data"`
	}
	decodeResponse(t, resp, &history)
	require.Equal(t, 2, history.Data.CurrentVersion)
	require.Len(t, history.Data.Versions, 2)

	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/submissions/"+created.ID+"/versions/1", "stud-1", "student", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var version struct {
		Success bool                `json:"success"`
		Data    dto.VersionResponse `json:"data"`
	}
	decodeResponse(t, resp, &version)
	require.Equal(t, "/uploads/draft-v1.pdf", version.Data.ContentRef)

	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/submissions/"+created.ID+"/versions/9", "stud-1", "student", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmissionCreateRequiresStudentRole(t *testing.T) {
	app, db := setupApp(t)
	seedDirectory(t, db)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/submissions", "prof-ada", "professor", dto.SubmissionCreateRequest{
		Title:       "Not allowed",
		Type:        "report",
		ContentRef:  "/uploads/x.pdf",
		ProfessorID: "prof-ada",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSubmissionFeedbackRequiresProfessorRole(t *testing.T) {
	app, db := setupApp(t)
	seedDirectory(t, db)
	created := createSubmission(t, app, "stud-1")

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/submissions/"+created.ID+"/feedback", "stud-1", "student", map[string]interface{}{
		"text": "grading myself",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSubmissionInvalidProfessorRejected(t *testing.T) {
	app, db := setupApp(t)
	seedDirectory(t, db)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/submissions", "stud-1", "student", dto.SubmissionCreateRequest{
		Title:       "Orphan",
		Type:        "report",
		ContentRef:  "/uploads/x.pdf",
		ProfessorID: "stud-2",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmissionListReconciliationOverHTTP(t *testing.T) {
	app, db := setupApp(t)
	seedDirectory(t, db)
	created := createSubmission(t, app, "stud-1")

	// Introduce the kind of drift the reconciliation pass exists for.
	require.NoError(t, db.Model(&models.Submission{}).Where("id = ?", created.ID).Update("professor_id", "Ada").Error)

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/submissions", "prof-ada", "professor", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed struct {
		Success bool                     `json:"success"`
		Data    []dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &listed)
	require.Len(t, listed.Data, 1)
	require.Equal(t, "prof-ada", listed.Data[0].ProfessorID)

	var stored models.Submission
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	require.Equal(t, "prof-ada", stored.ProfessorID)
}

func TestSubmissionCommentOwnershipOverHTTP(t *testing.T) {
	app, db := setupApp(t)
	seedDirectory(t, db)
	created := createSubmission(t, app, "stud-1")

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/submissions/"+created.ID+"/comments", "stud-2", "student", map[string]interface{}{
		"text": "not mine",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/v1/submissions/"+created.ID+"/comments", "stud-1", "student", map[string]interface{}{
		"text": "Reworked chapter 2",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var commented submissionEnvelope
	decodeResponse(t, resp, &commented)
	require.Len(t, commented.Data.Feedback, 1)
	require.Equal(t, "stud-1", commented.Data.Feedback[0].By)
}

func TestSubmissionValidationErrorsOverHTTP(t *testing.T) {
	app, db := setupApp(t)
	seedDirectory(t, db)

	// Missing required fields.
	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/submissions", "stud-1", "student", map[string]interface{}{
		"title": "half-filled",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/submissions/missing", "stud-1", "student", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
