package models

import (
	"time"

	"gorm.io/gorm"
)

// Relationship is a directed follow edge: the follower follows the followed.
// The composite unique index backstops the graph layer's idempotent create.
type Relationship struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_relationships_follower_followed" json:"follower_id"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_relationships_follower_followed" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	Follower User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followed User `gorm:"foreignKey:FollowedID" json:"followed,omitempty"`
}

// TableName specifies the table name for GORM
func (Relationship) TableName() string {
	return "relationships"
}

// BeforeCreate rejects self-loops. A user can never follow itself, no
// matter which layer attempts the insert.
func (r *Relationship) BeforeCreate(_ *gorm.DB) error {
	if r.FollowerID == r.FollowedID {
		return NewValidationError("Cannot follow yourself")
	}
	return nil
}
