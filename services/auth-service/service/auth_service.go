package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/RigelNana/cinexnema/pkg/apperr"
	"github.com/RigelNana/cinexnema/services/auth-service/models"
	"github.com/RigelNana/cinexnema/services/auth-service/repository"
	"github.com/RigelNana/cinexnema/services/auth-service/utils"
	usermodels "github.com/RigelNana/cinexnema/services/user-service/models"
	userservice "github.com/RigelNana/cinexnema/services/user-service/service"
)

const MinPasswordLength = 6

// ErrUserNotFound is returned by SignIn for an unknown email.
var ErrUserNotFound = apperr.NotFound("user not found")

var errInvalidCredentials = apperr.Unauthorized("invalid credentials")

type Principal struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == usermodels.RoleAdmin
}

type Session struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresAt   time.Time        `json:"expires_at"`
	User        *usermodels.User `json:"user"`
	// Created is set when SignInOrSignUp had to register the user.
	Created bool `json:"created"`
}

type Credentials struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

type AuthService interface {
	SignUp(ctx context.Context, in Credentials) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignInOrSignUp(ctx context.Context, in Credentials) (*Session, error)
	ValidateToken(ctx context.Context, token string) (*Principal, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error
}

type AuthServiceImpl struct {
	repo     repository.AuthRepository
	users    userservice.UserService
	tokens   *utils.TokenManager
	isAdmin  func(email string) bool
	validate *validator.Validate
	hashCost int
	log      logrus.FieldLogger
}

func NewAuthService(repo repository.AuthRepository, users userservice.UserService, tokens *utils.TokenManager, isAdmin func(string) bool, log logrus.FieldLogger) *AuthServiceImpl {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthServiceImpl{
		repo:     repo,
		users:    users,
		tokens:   tokens,
		isAdmin:  isAdmin,
		validate: validator.New(),
		hashCost: bcrypt.DefaultCost,
		log:      log,
	}
}

// SetHashCost overrides the bcrypt cost. Values outside bcrypt's range keep the default.
func (s *AuthServiceImpl) SetHashCost(cost int) {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.hashCost = cost
	}
}

func (s *AuthServiceImpl) SignUp(ctx context.Context, in Credentials) (*Session, error) {
	if !s.tokens.Configured() {
		return nil, apperr.ConfigurationMissing("JWT_SECRET")
	}
	email := userservice.NormalizeEmail(in.Email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperr.Validation("a valid email is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperr.Validation("password must be at least 6 characters")
	}

	role := usermodels.RoleCreator
	if s.isAdmin(email) {
		role = usermodels.RoleAdmin
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	// The user row and its credential commit together.
	user, err := s.users.Create(ctx, email, in.DisplayName, role, func(tx *gorm.DB, u *usermodels.User) error {
		return s.repo.WithTx(tx).Create(ctx, &models.Auth{UserID: u.ID, Password: string(hash)})
	})
	if err != nil {
		if errors.Is(err, userservice.ErrEmailTaken) {
			return nil, apperr.Validation("email already registered").WithReason(apperr.ReasonAlreadyExists)
		}
		return nil, apperr.Upstream("database", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("user registered")

	return s.issue(user)
}

func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if !s.tokens.Configured() {
		return nil, apperr.ConfigurationMissing("JWT_SECRET")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userservice.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Upstream("database", err)
	}

	cred, err := s.repo.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, apperr.Upstream("database", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.Password), []byte(password)) != nil {
		return nil, errInvalidCredentials
	}

	// Admin list changes take effect on the next sign-in.
	if s.isAdmin(user.Email) && !user.IsAdmin() {
		if err := s.users.SetRole(ctx, user.ID, usermodels.RoleAdmin); err != nil {
			return nil, apperr.Upstream("database", err)
		}
		user.Role = usermodels.RoleAdmin
	}
	return s.issue(user)
}

func (s *AuthServiceImpl) SignInOrSignUp(ctx context.Context, in Credentials) (*Session, error) {
	session, err := s.SignIn(ctx, in.Email, in.Password)
	if !errors.Is(err, ErrUserNotFound) {
		return session, err
	}

	created := true
	if _, err := s.SignUp(ctx, in); err != nil {
		// a concurrent sign-up won the race, sign in against it
		ae, ok := apperr.As(err)
		if !ok || ae.Reason != apperr.ReasonAlreadyExists {
			return nil, err
		}
		created = false
	}

	session, err = s.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	session.Created = created
	return session, nil
}

func (s *AuthServiceImpl) ValidateToken(_ context.Context, token string) (*Principal, error) {
	if !s.tokens.Configured() {
		return nil, apperr.ConfigurationMissing("JWT_SECRET")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Unauthorized("missing token")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid or expired token", err)
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token subject")
	}
	return &Principal{UserID: id, Email: claims.Email, Role: claims.Role}, nil
}

func (s *AuthServiceImpl) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperr.Validation("password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("credential not found")
		}
		return apperr.Upstream("database", err)
	}
	return nil
}

func (s *AuthServiceImpl) issue(user *usermodels.User) (*Session, error) {
	token, exp, err := s.tokens.Generate(user.ID.String(), user.Email, user.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{AccessToken: token, TokenType: "Bearer", ExpiresAt: exp, User: user}, nil
}
