package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RigelNana/cinexnema/services/user-service/models"
	"github.com/RigelNana/cinexnema/services/user-service/repository"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// WithUser writes rows that must exist exactly when user does. It runs inside
// the transaction that inserts user.
type WithUser func(tx *gorm.DB, user *models.User) error

type UserService interface {
	Create(ctx context.Context, email, displayName, role string, with ...WithUser) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role string) error
}

type UserServiceImpl struct{ repo repository.UserRepository }

func NewUserService(r repository.UserRepository) *UserServiceImpl { return &UserServiceImpl{repo: r} }

// NormalizeEmail lower-cases and trims, emails are unique in that form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserServiceImpl) Create(ctx context.Context, email, displayName, role string, with ...WithUser) (*models.User, error) {
	email = NormalizeEmail(email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if role == "" {
		role = models.RoleCreator
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	u := &models.User{Email: email, DisplayName: displayName, Role: role}
	then := make([]func(tx *gorm.DB) error, 0, len(with))
	for _, fn := range with {
		then = append(then, func(tx *gorm.DB) error { return fn(tx, u) })
	}
	if err := s.repo.Create(ctx, u, then...); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return notFound(s.repo.GetByID(ctx, id))
}

func (s *UserServiceImpl) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return notFound(s.repo.GetByEmail(ctx, NormalizeEmail(email)))
}

func (s *UserServiceImpl) SetRole(ctx context.Context, id uuid.UUID, role string) error {
	_, err := notFound(nil, s.repo.UpdateRole(ctx, id, role))
	return err
}

func notFound(u *models.User, err error) (*models.User, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}
