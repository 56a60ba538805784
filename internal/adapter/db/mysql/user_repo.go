package mysql

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"crf-service/internal/domain/user"
	apperrors "crf-service/pkg/errors"
)

// UserRepo reads and updates user accounts.
type UserRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// GetByID retrieves a user by id. A missing user yields a NotFoundError.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.String("id", id))
			return nil, apperrors.NewNotFoundError("user", "User not found")
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	return toUser(model), nil
}

// UpdateProfile overwrites the non-nil fields of changes and returns the stored user.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, changes user.ProfileChanges) (*user.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFoundError("user", "User not found")
			}
			return err
		}

		updates := map[string]any{}
		if changes.Name != nil {
			updates["name"] = *changes.Name
		}
		if changes.Gender != nil {
			updates["gender"] = *changes.Gender
		}
		if changes.Birthday != nil {
			updates["birthday"] = *changes.Birthday
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&model).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, err
		}
		r.log.Error("failed to update user profile", zap.Error(err), zap.String("id", id))
		return nil, apperrors.NewInternalError("failed to update user", err)
	}

	r.log.Info("user profile updated", zap.String("id", id))
	return toUser(model), nil
}

func toUser(m UserSchema) *user.User {
	return &user.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Gender:    m.Gender,
		Birthday:  m.Birthday,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
