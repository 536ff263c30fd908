package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
)

type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[id.ID]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[id.ID]*User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID id.ID) (*User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *fakeUserRepo) Update(_ context.Context, user *User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, orgID id.ID, _ UserFilter) ([]User, int, error) {
	var out []User
	for _, u := range r.users {
		if u.OrgID == orgID {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func newTestService() (*Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(repo, txStub{}, jwtSvc, DefaultServiceConfig()), repo
}

func TestTokenRoundTrip(t *testing.T) {
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))

	user := NewUser(id.New(), "driver@example.com", "x")
	user.IsAdmin = true

	token, expiresAt, err := jwtSvc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	uc, err := jwtSvc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), uc.UserID)
	assert.Equal(t, user.OrgID.String(), uc.OrgID)
	assert.Equal(t, "driver@example.com", uc.Email)
	assert.True(t, uc.IsAdmin)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secret-a"))
	verifier := NewJWTService(DefaultJWTConfig("secret-b"))

	token, _, err := issuer.GenerateAccessToken(NewUser(id.New(), "driver@example.com", "x"))
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID := id.New()

	user, err := svc.Register(ctx, RegisterRequest{
		OrgID:    orgID,
		Email:    "Driver@Example.com",
		Password: "parola123",
		FullName: "Ion Popescu",
	})
	require.NoError(t, err)
	assert.Equal(t, "driver@example.com", user.Email)
	assert.NotEqual(t, "parola123", user.PasswordHash)

	token, logged, err := svc.Login(ctx, Credentials{Email: "driver@example.com", Password: "parola123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotNil(t, logged.LastLoginAt)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID := id.New()

	_, err := svc.Register(ctx, RegisterRequest{OrgID: orgID, Email: "a@b.com", Password: "short"})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Register(ctx, RegisterRequest{OrgID: orgID, Email: "a@b.com", Password: "parola123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{OrgID: orgID, Email: "a@b.com", Password: "parola123"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestLogin_LockoutAfterFailedAttempts(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	hash, err := bcrypt.GenerateFromPassword([]byte("parola123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := NewUser(id.New(), "driver@example.com", string(hash))
	require.NoError(t, repo.Create(ctx, user))

	for i := 0; i < 5; i++ {
		_, _, err = svc.Login(ctx, Credentials{Email: "driver@example.com", Password: "wrong"})
		require.Error(t, err)
	}
	assert.True(t, user.IsLocked())

	// Correct password is rejected while the account is locked.
	_, _, err = svc.Login(ctx, Credentials{Email: "driver@example.com", Password: "parola123"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}
