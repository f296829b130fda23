// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User holds identity attributes and the credential digests for the three
// token channels (remember, activation, password reset). Digest columns are
// one-way hashes; the plaintext counterparts live only in the transient
// fields below and are never persisted.
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"size:50;not null" json:"name"`
	Email          string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordDigest string `gorm:"not null" json:"-"`

	Activated        bool       `gorm:"not null;default:false" json:"activated"`
	ActivatedAt      *time.Time `json:"activated_at,omitempty"`
	ActivationDigest string     `json:"-"`
	RememberDigest   string     `json:"-"`
	ResetDigest      string     `json:"-"`
	ResetSentAt      *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Transient plaintext tokens, held only for the lifetime of the
	// operation that generated them (activation email, cookie handoff).
	RememberToken   string `gorm:"-" json:"-"`
	ActivationToken string `gorm:"-" json:"-"`
	ResetToken      string `gorm:"-" json:"-"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// BeforeSave canonicalizes the email to lowercase. Uniqueness is enforced
// case-insensitively by always storing the canonical form.
func (u *User) BeforeSave(_ *gorm.DB) error {
	u.Email = strings.ToLower(u.Email)
	return nil
}
