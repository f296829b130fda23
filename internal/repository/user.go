// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"tidepool/internal/models"
	"tidepool/internal/validation"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users. Create and Save
// are the full validate-and-save path; UpdateColumns is the narrow partial
// update that deliberately skips validation (remember/forget/activate/reset).
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	UpdateColumns(ctx context.Context, id uint, cols map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByEmail looks up by canonical (lowercase) email. A missing record is
// (nil, nil), not an error.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := validateUser(user, true); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Email has already been taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	if err := validateUser(user, false); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Email has already been taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateColumns writes the given columns directly, bypassing model hooks and
// the validation above. Callers own the column names and values.
func (r *userRepository) UpdateColumns(ctx context.Context, id uint, cols map[string]interface{}) error {
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(cols).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the user and cascades to relationship edges on either side
// and to authored posts, inside one transaction.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).
			Delete(&models.Relationship{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// validateUser enforces the full-save constraints. The password digest is
// only required at creation; updates may leave the credential untouched.
func validateUser(user *models.User, creating bool) error {
	if err := validation.ValidateName(user.Name); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(user.Email); err != nil {
		return models.NewValidationError(err.Error())
	}
	if creating && user.PasswordDigest == "" {
		return models.NewValidationError("password can't be blank")
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite phrasing for tests.
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
