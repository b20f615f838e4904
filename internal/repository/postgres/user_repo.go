package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jcall/wanderstay/internal/domain"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

// translateDuplicate surfaces unique-index violations as distinguishable
// error kinds so the signup flow can flash a field-specific message.
func translateDuplicate(err error) error {
	msg := strings.ToLower(err.Error())
	duplicate := strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
	if !duplicate {
		return err
	}
	if strings.Contains(msg, "email") {
		return domain.ErrEmailTaken
	}
	if strings.Contains(msg, "username") {
		return domain.ErrUsernameTaken
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("reset_password_token = ?", token).
		Where("reset_password_expires > ?", now).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":          passwordHash,
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		}).Error
}
