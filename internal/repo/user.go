package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medical_shop/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *GormRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]any{"reset_token_hash": tokenHash, "reset_token_expires_at": expiresAt}).Error
}

func (r *GormRepo) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("reset_token_hash = ? AND reset_token_hash <> ''", tokenHash).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetPassword stores the new hash and clears the reset token in one statement.
func (r *GormRepo) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":          passwordHash,
			"reset_token_hash":       "",
			"reset_token_expires_at": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
