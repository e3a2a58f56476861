package service

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/auth"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
)

type memoryUploadRepo struct {
	uploads map[string]models.Upload
}

func newMemoryUploadRepo() *memoryUploadRepo {
	return &memoryUploadRepo{uploads: make(map[string]models.Upload)}
}

func (m *memoryUploadRepo) Create(ctx context.Context, upload *models.Upload) error {
	m.uploads[upload.Ref] = *upload
	return nil
}

func (m *memoryUploadRepo) GetByRef(ctx context.Context, ref string) (models.Upload, error) {
	upload, ok := m.uploads[ref]
	if !ok {
		return models.Upload{}, gorm.ErrRecordNotFound
	}
	return upload, nil
}

func TestUploadStoreWritesFileAndRecord(t *testing.T) {
	dir := t.TempDir()
	repo := newMemoryUploadRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewUploadService(repo, validate, dir, 1, testLogger())

	payload := dto.UploadRequest{
		Filename: "report.PDF",
		Data:     base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 minimal")),
	}

	stored, err := svc.Store(context.Background(), auth.Identity{UserID: "stud-1", Role: auth.RoleStudent}, payload)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(stored.Ref, "/uploads/"))
	require.True(t, strings.HasSuffix(stored.Ref, ".pdf"))
	require.Equal(t, "report.PDF", stored.OriginalName)
	require.Equal(t, int64(16), stored.Size)

	onDisk, err := os.ReadFile(filepath.Join(dir, filepath.Base(stored.Ref)))
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 minimal", string(onDisk))

	record, err := repo.GetByRef(context.Background(), stored.Ref)
	require.NoError(t, err)
	require.Equal(t, "stud-1", record.UploadedBy)
}

func TestUploadStoreRejectsOversizedPayload(t *testing.T) {
	repo := newMemoryUploadRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewUploadService(repo, validate, t.TempDir(), 1, testLogger())

	payload := dto.UploadRequest{
		Filename: "big.bin",
		Data:     base64.StdEncoding.EncodeToString(make([]byte, 2*1024*1024)),
	}

	_, err := svc.Store(context.Background(), auth.Identity{UserID: "stud-1", Role: auth.RoleStudent}, payload)
	require.ErrorIs(t, err, ErrUploadTooLarge)
	require.Empty(t, repo.uploads)
}

func TestUploadStoreRejectsInvalidBase64(t *testing.T) {
	repo := newMemoryUploadRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewUploadService(repo, validate, t.TempDir(), 1, testLogger())

	payload := dto.UploadRequest{Filename: "report.pdf", Data: "not-base64!!"}

	_, err := svc.Store(context.Background(), auth.Identity{UserID: "stud-1", Role: auth.RoleStudent}, payload)
	require.ErrorIs(t, err, ErrUploadInvalidPayload)
}

func TestUploadStoreRequiresFilename(t *testing.T) {
	repo := newMemoryUploadRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewUploadService(repo, validate, t.TempDir(), 1, testLogger())

	payload := dto.UploadRequest{Data: base64.StdEncoding.EncodeToString([]byte("x"))}

	_, err := svc.Store(context.Background(), auth.Identity{UserID: "stud-1", Role: auth.RoleStudent}, payload)
	require.Error(t, err)
}
