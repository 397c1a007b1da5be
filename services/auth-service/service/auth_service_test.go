package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/RigelNana/cinexnema/pkg/apperr"
	"github.com/RigelNana/cinexnema/pkg/logger"
	"github.com/RigelNana/cinexnema/services/auth-service/models"
	"github.com/RigelNana/cinexnema/services/auth-service/repository"
	"github.com/RigelNana/cinexnema/services/auth-service/utils"
	usermodels "github.com/RigelNana/cinexnema/services/user-service/models"
	userservice "github.com/RigelNana/cinexnema/services/user-service/service"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*usermodels.User
	err     error
	creates int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*usermodels.User{}}
}

// Create mimics the transactional insert: the user is stored only when every
// companion write succeeds.
func (f *fakeUsers) Create(_ context.Context, email, name, role string, with ...userservice.WithUser) (*usermodels.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	email = userservice.NormalizeEmail(email)
	for _, u := range f.byID {
		if u.Email == email {
			return nil, userservice.ErrEmailTaken
		}
	}
	u := &usermodels.User{Email: email, DisplayName: name, Role: role}
	u.ID = uuid.New()
	for _, fn := range with {
		if err := fn(nil, u); err != nil {
			return nil, err
		}
	}
	f.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*usermodels.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, userservice.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*usermodels.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	email = userservice.NormalizeEmail(email)
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, userservice.ErrNotFound
}

func (f *fakeUsers) SetRole(_ context.Context, id uuid.UUID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return userservice.ErrNotFound
	}
	u.Role = role
	return nil
}

type fakeAuthRepo struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*models.Auth
	createErr error
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{rows: map[uuid.UUID]*models.Auth{}}
}

func (r *fakeAuthRepo) WithTx(*gorm.DB) repository.AuthRepository { return r }

func (r *fakeAuthRepo) Create(_ context.Context, a *models.Auth) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.createErr; err != nil {
		r.createErr = nil
		return err
	}
	cp := *a
	r.rows[a.UserID] = &cp
	return nil
}

func (r *fakeAuthRepo) GetByUserID(_ context.Context, id uuid.UUID) (*models.Auth, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAuthRepo) UpdatePassword(_ context.Context, id uuid.UUID, hashed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Password = hashed
	return nil
}

func newAuthFixture(t *testing.T, secret string, admins ...string) (*AuthServiceImpl, *fakeUsers) {
	t.Helper()
	users := newFakeUsers()
	isAdmin := func(email string) bool {
		for _, a := range admins {
			if strings.EqualFold(a, email) {
				return true
			}
		}
		return false
	}
	svc := NewAuthService(newFakeAuthRepo(), users,
		utils.NewTokenManager(secret, time.Hour), isAdmin, logger.Discard())
	svc.SetHashCost(bcrypt.MinCost)
	return svc, users
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, _ := newAuthFixture(t, "secret")
	ctx := context.Background()

	session, err := svc.SignUp(ctx, Credentials{Email: "Ana@Example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, "ana@example.com", session.User.Email)
	assert.Equal(t, usermodels.RoleCreator, session.User.Role)

	principal, err := svc.ValidateToken(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, principal.UserID)
	assert.False(t, principal.IsAdmin())

	again, err := svc.SignIn(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, again.User.ID)
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := newAuthFixture(t, "secret")
	ctx := context.Background()

	_, err := svc.SignUp(ctx, Credentials{Email: "not-an-email", Password: "hunter22"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "123"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, Credentials{Email: "ANA@example.com", Password: "hunter22"})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, apperr.ReasonAlreadyExists, ae.Reason)
}

func TestSignInFailures(t *testing.T) {
	svc, users := newAuthFixture(t, "secret")
	ctx := context.Background()

	_, err := svc.SignIn(ctx, "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	_, err = svc.SignIn(ctx, "ana@example.com", "wrong-password")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	users.err = errors.New("connection reset")
	_, err = svc.SignIn(ctx, "ana@example.com", "hunter22")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestAdminRole(t *testing.T) {
	svc, users := newAuthFixture(t, "secret", "boss@example.com")
	ctx := context.Background()

	session, err := svc.SignUp(ctx, Credentials{Email: "Boss@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, usermodels.RoleAdmin, session.User.Role)

	principal, err := svc.ValidateToken(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin())

	// promoted on sign-in once listed
	plain, err := svc.SignUp(ctx, Credentials{Email: "late@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, usermodels.RoleCreator, plain.User.Role)

	svc.isAdmin = func(email string) bool { return email == "late@example.com" }
	session, err = svc.SignIn(ctx, "late@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, usermodels.RoleAdmin, session.User.Role)
	stored, err := users.GetByID(ctx, plain.User.ID)
	require.NoError(t, err)
	assert.Equal(t, usermodels.RoleAdmin, stored.Role)
}

func TestSignInOrSignUp(t *testing.T) {
	svc, users := newAuthFixture(t, "secret")
	ctx := context.Background()
	creds := Credentials{Email: "new@example.com", Password: "hunter22"}

	first, err := svc.SignInOrSignUp(ctx, creds)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, 1, users.creates)

	second, err := svc.SignInOrSignUp(ctx, creds)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, 1, users.creates)

	_, err = svc.SignInOrSignUp(ctx, Credentials{Email: "new@example.com", Password: "wrong-pass"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Equal(t, 1, users.creates)
}

func TestSignUpCredentialFailureLeavesNoUser(t *testing.T) {
	svc, users := newAuthFixture(t, "secret")
	ctx := context.Background()
	creds := Credentials{Email: "ana@example.com", Password: "hunter22"}

	svc.repo.(*fakeAuthRepo).createErr = errors.New("connection reset")
	_, err := svc.SignUp(ctx, creds)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	_, err = users.GetByEmail(ctx, "ana@example.com")
	assert.ErrorIs(t, err, userservice.ErrNotFound)

	session, err := svc.SignInOrSignUp(ctx, creds)
	require.NoError(t, err)
	assert.True(t, session.Created)
	_, err = svc.SignIn(ctx, "ana@example.com", "hunter22")
	assert.NoError(t, err)
}

func TestValidateToken(t *testing.T) {
	svc, _ := newAuthFixture(t, "secret")
	ctx := context.Background()

	_, err := svc.ValidateToken(ctx, "")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = svc.ValidateToken(ctx, "garbage")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	other, _ := newAuthFixture(t, "another-secret")
	session, err := other.SignUp(ctx, Credentials{Email: "x@example.com", Password: "hunter22"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, session.AccessToken)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	unconfigured, _ := newAuthFixture(t, "")
	_, err = unconfigured.ValidateToken(ctx, session.AccessToken)
	assert.Equal(t, apperr.KindConfigurationMissing, apperr.KindOf(err))
	_, err = unconfigured.SignIn(ctx, "x@example.com", "hunter22")
	assert.Equal(t, apperr.KindConfigurationMissing, apperr.KindOf(err))
}

func TestUpdatePassword(t *testing.T) {
	svc, _ := newAuthFixture(t, "secret")
	ctx := context.Background()
	session, err := svc.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(svc.UpdatePassword(ctx, session.User.ID, "x")))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.UpdatePassword(ctx, uuid.New(), "newpass1")))

	require.NoError(t, svc.UpdatePassword(ctx, session.User.ID, "newpass1"))
	_, err = svc.SignIn(ctx, "ana@example.com", "hunter22")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = svc.SignIn(ctx, "ana@example.com", "newpass1")
	assert.NoError(t, err)
}
