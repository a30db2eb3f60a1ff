package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/warden-admin/warden/internal/auth"
	"github.com/warden-admin/warden/internal/shared"
	_ "github.com/warden-admin/warden/testing"
)

type stubRepo struct {
	usersByEmail map[string]*auth.User
	roleIDs      map[string]int64
	created      []createdUser
}

type createdUser struct {
	name, email, hash string
	roleID            int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if user, ok := s.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindSessionUser(ctx context.Context, userID int64) (*shared.SessionUser, error) {
	for _, user := range s.usersByEmail {
		if user.ID == userID && user.IsActive {
			return &shared.SessionUser{ID: user.ID, Name: user.Name, Email: user.Email, RoleID: user.RoleID}, nil
		}
	}
	return nil, shared.ErrUserNotFoundOrInactive
}

func (s *stubRepo) FindRoleIDByName(ctx context.Context, name string) (int64, error) {
	if id, ok := s.roleIDs[name]; ok {
		return id, nil
	}
	return 0, shared.ErrNotFound
}

func (s *stubRepo) CreateUser(ctx context.Context, name, email, passwordHash string, roleID int64) (int64, error) {
	s.created = append(s.created, createdUser{name: name, email: email, hash: passwordHash, roleID: roleID})
	return int64(len(s.created)), nil
}

type stubIssuer struct {
	issuedFor []int64
}

func (s *stubIssuer) Issue(ctx context.Context, userID int64) (string, error) {
	s.issuedFor = append(s.issuedFor, userID)
	return "token-for-tests", nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{usersByEmail: map[string]*auth.User{
		"ann@x.com": {ID: 1, Email: "ann@x.com", PasswordHash: mustHash(t, "pw123456"), IsActive: true},
	}}
	issuer := &stubIssuer{}
	svc := auth.NewService(repo, issuer)

	token, err := svc.Login(context.Background(), "ann@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "token-for-tests", token)
	assert.Equal(t, []int64{1}, issuer.issuedFor)
}

func TestLoginFailuresAreNonEnumerable(t *testing.T) {
	repo := &stubRepo{usersByEmail: map[string]*auth.User{
		"ann@x.com": {ID: 1, Email: "ann@x.com", PasswordHash: mustHash(t, "pw123456"), IsActive: true},
	}}
	svc := auth.NewService(repo, &stubIssuer{})

	_, wrongPassword := svc.Login(context.Background(), "ann@x.com", "nope-nope")
	_, unknownEmail := svc.Login(context.Background(), "ghost@x.com", "pw123456")

	// Wrong password and unknown account must be indistinguishable.
	assert.ErrorIs(t, wrongPassword, shared.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, shared.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := &stubRepo{usersByEmail: map[string]*auth.User{
		"ann@x.com": {ID: 1, Email: "ann@x.com", PasswordHash: mustHash(t, "pw123456"), IsActive: false},
	}}
	svc := auth.NewService(repo, &stubIssuer{})

	// Even the correct password never logs into a deactivated account.
	_, err := svc.Login(context.Background(), "ann@x.com", "pw123456")
	assert.ErrorIs(t, err, shared.ErrAccountInactive)
}

func TestRegisterAssignsDefaultRoleAndHashes(t *testing.T) {
	repo := &stubRepo{
		usersByEmail: map[string]*auth.User{},
		roleIDs:      map[string]int64{auth.DefaultRoleName: 5},
	}
	svc := auth.NewService(repo, &stubIssuer{})

	require.NoError(t, svc.Register(context.Background(), "Ann", "ann@x.com", "pw123456"))
	require.Len(t, repo.created, 1)
	assert.Equal(t, int64(5), repo.created[0].roleID)
	assert.NotEqual(t, "pw123456", repo.created[0].hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created[0].hash), []byte("pw123456")))
}

func TestRegisterEmailInUse(t *testing.T) {
	repo := &stubRepo{
		usersByEmail: map[string]*auth.User{
			"ann@x.com": {ID: 1, Email: "ann@x.com"},
		},
		roleIDs: map[string]int64{auth.DefaultRoleName: 5},
	}
	svc := auth.NewService(repo, &stubIssuer{})

	err := svc.Register(context.Background(), "Ann", "ann@x.com", "pw123456")
	assert.ErrorIs(t, err, shared.ErrEmailInUse)
	assert.Empty(t, repo.created)
}
