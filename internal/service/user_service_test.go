package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
)

func newUserServiceFixture(t *testing.T, users ...models.User) (UserService, *memoryUserRepo) {
	t.Helper()

	repo := newMemoryUserRepo(users...)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewUserService(repo, validate, testLogger())

	return svc, repo
}

func TestUserRegisterNormalizesAndDetectsDuplicates(t *testing.T) {
	svc, _ := newUserServiceFixture(t)

	registered, err := svc.Register(context.Background(), dto.UserCreateRequest{
		UserID: " prof-ada ",
		Name:   "  Ada Lovelace ",
		Email:  "Ada@Uni.Test",
		Role:   models.UserRoleProfessor,
	})
	require.NoError(t, err)
	require.Equal(t, "prof-ada", registered.UserID)
	require.Equal(t, "Ada Lovelace", registered.Name)
	require.Equal(t, "ada@uni.test", registered.Email)

	_, err = svc.Register(context.Background(), dto.UserCreateRequest{
		UserID: "prof-ada",
		Name:   "Someone Else",
		Email:  "else@uni.test",
		Role:   models.UserRoleProfessor,
	})
	require.ErrorIs(t, err, ErrUserExists)

	_, err = svc.Register(context.Background(), dto.UserCreateRequest{
		UserID: "prof-ada2",
		Name:   "Ada Again",
		Email:  "ada@uni.test",
		Role:   models.UserRoleProfessor,
	})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestUserRegisterValidatesRole(t *testing.T) {
	svc, _ := newUserServiceFixture(t)

	_, err := svc.Register(context.Background(), dto.UserCreateRequest{
		UserID: "u1",
		Name:   "Someone",
		Email:  "u1@uni.test",
		Role:   "dean",
	})
	require.Error(t, err)
}

func TestUserGetNotFound(t *testing.T) {
	svc, _ := newUserServiceFixture(t)

	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserListVerifiedProfessors(t *testing.T) {
	svc, _ := newUserServiceFixture(t,
		models.User{UserID: "prof-ada", Name: "Ada", Email: "ada@uni.test", Role: models.UserRoleProfessor, Verified: true},
		models.User{UserID: "prof-new", Name: "New", Email: "new@uni.test", Role: models.UserRoleProfessor, Verified: false},
		models.User{UserID: "stud-1", Name: "One", Email: "one@uni.test", Role: models.UserRoleStudent},
	)

	professors, err := svc.ListVerifiedProfessors(context.Background())
	require.NoError(t, err)
	require.Len(t, professors, 1)
	require.Equal(t, "prof-ada", professors[0].UserID)
}

func TestUserSeedSkipsExisting(t *testing.T) {
	svc, repo := newUserServiceFixture(t,
		models.User{UserID: "prof-ada", Name: "Ada", Email: "ada@uni.test", Role: models.UserRoleProfessor, Verified: true},
	)

	inserted, err := svc.Seed(context.Background(), []dto.UserCreateRequest{
		{UserID: "prof-ada", Name: "Ada", Email: "ada@uni.test", Role: models.UserRoleProfessor, Verified: true},
		{UserID: "stud-1", Name: "One", Email: "one@uni.test", Role: models.UserRoleStudent},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), inserted)
	require.Len(t, repo.users, 2)
}

func TestUserSeedRejectsInvalidPayload(t *testing.T) {
	svc, repo := newUserServiceFixture(t)

	_, err := svc.Seed(context.Background(), []dto.UserCreateRequest{
		{UserID: "stud-1", Name: "One", Email: "not-an-email", Role: models.UserRoleStudent},
	})
	require.Error(t, err)
	require.Empty(t, repo.users)
}
