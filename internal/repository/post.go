package repository

import (
	"context"

	"tidepool/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for authored posts. Feed is
// the content query the identity core consults; composing richer feeds
// belongs to caller code.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	ByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
	Feed(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Content == "" {
		return models.NewValidationError("Post content can't be blank")
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) ByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Feed returns posts authored by the user and everyone they follow,
// newest first.
func (r *postRepository) Feed(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	following := r.db.Model(&models.Relationship{}).
		Select("followed_id").
		Where("follower_id = ?", userID)

	if err := r.db.WithContext(ctx).
		Where("user_id IN (?) OR user_id = ?", following, userID).
		Order("created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
