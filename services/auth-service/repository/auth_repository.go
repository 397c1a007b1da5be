package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RigelNana/cinexnema/services/auth-service/models"
)

type AuthRepository interface {
	Create(ctx context.Context, auth *models.Auth) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Auth, error)
	// UpdatePassword returns gorm.ErrRecordNotFound when the user has no credential.
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashed string) error
	// WithTx returns a repository bound to an open transaction.
	WithTx(tx *gorm.DB) AuthRepository
}

type AuthRepositoryImpl struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &AuthRepositoryImpl{db: db}
}

func (r *AuthRepositoryImpl) WithTx(tx *gorm.DB) AuthRepository {
	if tx == nil {
		return r
	}
	return &AuthRepositoryImpl{db: tx}
}

func (r *AuthRepositoryImpl) Create(ctx context.Context, auth *models.Auth) error {
	return r.db.WithContext(ctx).Create(auth).Error
}

func (r *AuthRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Auth, error) {
	var auth models.Auth
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&auth).Error
	if err != nil {
		return nil, err
	}
	return &auth, nil
}

func (r *AuthRepositoryImpl) UpdatePassword(ctx context.Context, userID uuid.UUID, hashed string) error {
	result := r.db.WithContext(ctx).Model(&models.Auth{}).Where("user_id = ?", userID).Update("password", hashed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
