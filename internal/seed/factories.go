// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"time"

	"tidepool/internal/auth"
	"tidepool/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext credential every factory user gets.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// CreateUser constructs and persists a sample user with DefaultPassword.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	digest, err := auth.Digest(DefaultPassword, bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:           gofakeit.Name(),
		Email:          fmt.Sprintf("%s.%d@example.com", gofakeit.Username(), gofakeit.Number(1000, 9999)),
		PasswordDigest: digest,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateActivatedUser is CreateUser with the activation step already done.
func (f *Factory) CreateActivatedUser(overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.CreateUser(overrides...)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	err = f.db.Model(user).UpdateColumns(map[string]interface{}{
		"activated":    true,
		"activated_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	user.Activated = true
	user.ActivatedAt = &now
	return user, nil
}

// CreatePost constructs and persists a sample post for the given user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		UserID:  user.ID,
		Content: gofakeit.Sentence(8),
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}
