package repository

import (
	"context"

	"tidepool/internal/models"

	"gorm.io/gorm"
)

// RelationshipRepository defines the follow-graph operations. Create is
// idempotent: re-following an already-followed user is a no-op, with the
// composite unique index as a backstop against races.
type RelationshipRepository interface {
	Create(ctx context.Context, followerID, followedID uint) error
	Delete(ctx context.Context, followerID, followedID uint) error
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
}

type relationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository returns a new RelationshipRepository implementation.
func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) Create(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return models.NewValidationError("Cannot follow yourself")
	}

	edge := models.Relationship{FollowerID: followerID, FollowedID: followedID}
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		FirstOrCreate(&edge).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			// Lost a race with an identical insert; the edge exists.
			return nil
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *relationshipRepository) Delete(ctx context.Context, followerID, followedID uint) error {
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Relationship{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *relationshipRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Relationship{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *relationshipRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN relationships r ON users.id = r.follower_id").
		Where("r.followed_id = ?", userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *relationshipRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN relationships r ON users.id = r.followed_id").
		Where("r.follower_id = ?", userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
