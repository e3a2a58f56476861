package service

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/auth"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
)

type memoryNotificationRepo struct {
	notifications map[string]models.Notification
	order         []string
}

func newMemoryNotificationRepo() *memoryNotificationRepo {
	return &memoryNotificationRepo{notifications: make(map[string]models.Notification)}
}

func (m *memoryNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	m.notifications[notification.ID] = *notification
	m.order = append(m.order, notification.ID)
	return nil
}

func (m *memoryNotificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	var results []models.Notification
	for _, id := range m.order {
		notification := m.notifications[id]
		if notification.UserID == userID {
			results = append(results, notification)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return !results[i].Read && results[j].Read
	})
	if offset > len(results) {
		offset = len(results)
	}
	results = results[offset:]
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (m *memoryNotificationRepo) GetByID(ctx context.Context, id string) (models.Notification, error) {
	notification, ok := m.notifications[id]
	if !ok {
		return models.Notification{}, gorm.ErrRecordNotFound
	}
	return notification, nil
}

func (m *memoryNotificationRepo) Update(ctx context.Context, notification *models.Notification) error {
	if _, ok := m.notifications[notification.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.notifications[notification.ID] = *notification
	return nil
}

func (m *memoryNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	var changed int64
	for id, notification := range m.notifications {
		if notification.UserID == userID && !notification.Read {
			notification.Read = true
			m.notifications[id] = notification
			changed++
		}
	}
	return changed, nil
}

func TestNotificationPushSanitizesMessage(t *testing.T) {
	repo := newMemoryNotificationRepo()
	svc := NewNotificationService(repo, testLogger())

	err := svc.Push(context.Background(), NotificationInput{
		UserID:  "stud-1",
		Type:    models.NotificationFeedback,
		Title:   "New feedback",
		Message: "<b>Great</b> work on <script>x()</script>chapter 2",
	})
	require.NoError(t, err)

	listed, err := svc.List(context.Background(), auth.Identity{UserID: "stud-1", Role: auth.RoleStudent}, 0, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "Great work on chapter 2", listed[0].Message)
	require.False(t, listed[0].Read)
}

func TestNotificationPushRequiresRecipient(t *testing.T) {
	svc := NewNotificationService(newMemoryNotificationRepo(), testLogger())

	err := svc.Push(context.Background(), NotificationInput{Type: models.NotificationGrade})
	require.Error(t, err)
}

func TestNotificationMarkReadOwnershipRule(t *testing.T) {
	repo := newMemoryNotificationRepo()
	svc := NewNotificationService(repo, testLogger())

	require.NoError(t, svc.Push(context.Background(), NotificationInput{UserID: "stud-1", Type: models.NotificationGrade, Title: "Graded"}))
	id := repo.order[0]

	// Someone else's feed entry reads as missing, not as forbidden.
	_, err := svc.MarkRead(context.Background(), auth.Identity{UserID: "stud-2", Role: auth.RoleStudent}, id)
	require.ErrorIs(t, err, ErrNotificationNotFound)

	marked, err := svc.MarkRead(context.Background(), auth.Identity{UserID: "stud-1", Role: auth.RoleStudent}, id)
	require.NoError(t, err)
	require.True(t, marked.Read)

	// Marking twice is a no-op.
	marked, err = svc.MarkRead(context.Background(), auth.Identity{UserID: "stud-1", Role: auth.RoleStudent}, id)
	require.NoError(t, err)
	require.True(t, marked.Read)
}

func TestNotificationMarkAllRead(t *testing.T) {
	repo := newMemoryNotificationRepo()
	svc := NewNotificationService(repo, testLogger())

	require.NoError(t, svc.Push(context.Background(), NotificationInput{UserID: "stud-1", Type: models.NotificationGrade}))
	require.NoError(t, svc.Push(context.Background(), NotificationInput{UserID: "stud-1", Type: models.NotificationFeedback}))
	require.NoError(t, svc.Push(context.Background(), NotificationInput{UserID: "stud-2", Type: models.NotificationGrade}))

	changed, err := svc.MarkAllRead(context.Background(), auth.Identity{UserID: "stud-1", Role: auth.RoleStudent})
	require.NoError(t, err)
	require.Equal(t, int64(2), changed)

	changed, err = svc.MarkAllRead(context.Background(), auth.Identity{UserID: "stud-1", Role: auth.RoleStudent})
	require.NoError(t, err)
	require.Zero(t, changed)
}
