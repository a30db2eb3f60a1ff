package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/warden-admin/warden/internal/shared"
	"github.com/warden-admin/warden/internal/users"
	_ "github.com/warden-admin/warden/testing"
)

type stubRepo struct {
	users   map[int64]*users.User
	hashes  map[int64]string
	deleted []int64

	lastUpdateHash  *string
	lastProfileHash *string
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: map[int64]*users.User{}, hashes: map[int64]string{}}
}

func (s *stubRepo) ListUsers(ctx context.Context) ([]users.User, error) {
	out := make([]users.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubRepo) GetUser(ctx context.Context, id int64) (*users.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) CreateUser(ctx context.Context, name, email, passwordHash string, roleID int64, isActive bool) (int64, error) {
	id := int64(len(s.users) + 1)
	s.users[id] = &users.User{ID: id, Name: name, Email: email, Role: users.RoleRef{ID: roleID}, IsActive: isActive}
	s.hashes[id] = passwordHash
	return id, nil
}

func (s *stubRepo) UpdateUser(ctx context.Context, id int64, name, email string, passwordHash *string, roleID int64, isActive bool) error {
	u, ok := s.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Name, u.Email, u.Role.ID, u.IsActive = name, email, roleID, isActive
	s.lastUpdateHash = passwordHash
	if passwordHash != nil {
		s.hashes[id] = *passwordHash
	}
	return nil
}

func (s *stubRepo) UpdateProfile(ctx context.Context, id int64, name, email string, passwordHash *string) error {
	u, ok := s.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Name, u.Email = name, email
	s.lastProfileHash = passwordHash
	if passwordHash != nil {
		s.hashes[id] = *passwordHash
	}
	return nil
}

func (s *stubRepo) GetPasswordHash(ctx context.Context, id int64) (string, error) {
	if h, ok := s.hashes[id]; ok {
		return h, nil
	}
	return "", shared.ErrNotFound
}

func (s *stubRepo) DeleteUser(ctx context.Context, id int64) error {
	if _, ok := s.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.users, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := newStubRepo()
	svc := users.NewService(repo)

	created, err := svc.CreateUser(context.Background(), users.CreateUserInput{
		Name: "Ann", Email: "ann@x.com", Password: "pw123456", RoleID: 2, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", created.Name)

	stored := repo.hashes[created.ID]
	require.NotEqual(t, "pw123456", stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("pw123456")))
}

func TestUpdateUserKeepsPasswordWhenOmitted(t *testing.T) {
	repo := newStubRepo()
	repo.users[1] = &users.User{ID: 1, Name: "Ann", Email: "ann@x.com"}
	repo.hashes[1] = mustHash(t, "original")
	svc := users.NewService(repo)

	_, err := svc.UpdateUser(context.Background(), 1, users.UpdateUserInput{
		Name: "Ann B", Email: "ann@x.com", RoleID: 2, IsActive: true,
	})
	require.NoError(t, err)
	assert.Nil(t, repo.lastUpdateHash, "omitted password must not touch the stored hash")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes[1]), []byte("original")))

	newPassword := "replacement1"
	_, err = svc.UpdateUser(context.Background(), 1, users.UpdateUserInput{
		Name: "Ann B", Email: "ann@x.com", Password: &newPassword, RoleID: 2, IsActive: true,
	})
	require.NoError(t, err)
	require.NotNil(t, repo.lastUpdateHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes[1]), []byte(newPassword)))
}

func TestDeleteUserRejectsSelf(t *testing.T) {
	repo := newStubRepo()
	repo.users[5] = &users.User{ID: 5, Name: "Ann"}
	svc := users.NewService(repo)

	err := svc.DeleteUser(context.Background(), 5, 5)
	assert.ErrorIs(t, err, shared.ErrCannotDeleteSelf)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.DeleteUser(context.Background(), 1, 5))
	assert.Equal(t, []int64{5}, repo.deleted)
}

func TestUpdateProfilePasswordChangeVerifiesCurrent(t *testing.T) {
	repo := newStubRepo()
	repo.users[1] = &users.User{ID: 1, Name: "Ann", Email: "ann@x.com"}
	repo.hashes[1] = mustHash(t, "current1")
	svc := users.NewService(repo)

	_, err := svc.UpdateProfile(context.Background(), 1, users.UpdateProfileInput{
		Name: "Ann", Email: "ann@x.com", CurrentPassword: "wrong", NewPassword: "next1234",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes[1]), []byte("current1")))

	_, err = svc.UpdateProfile(context.Background(), 1, users.UpdateProfileInput{
		Name: "Ann", Email: "ann@x.com", CurrentPassword: "current1", NewPassword: "next1234",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes[1]), []byte("next1234")))
}

func TestUpdateProfileWithoutPasswordSkipsVerification(t *testing.T) {
	repo := newStubRepo()
	repo.users[1] = &users.User{ID: 1, Name: "Ann", Email: "ann@x.com"}
	svc := users.NewService(repo)

	updated, err := svc.UpdateProfile(context.Background(), 1, users.UpdateProfileInput{
		Name: "Ann B", Email: "annb@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann B", updated.Name)
	assert.Equal(t, "annb@x.com", updated.Email)
	assert.Nil(t, repo.lastProfileHash)
}
