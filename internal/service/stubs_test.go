package service

import (
	"context"

	"tidepool/internal/models"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	saveFn          func(context.Context, *models.User) error
	updateColumnsFn func(context.Context, uint, map[string]interface{}) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Save(ctx context.Context, user *models.User) error {
	return s.saveFn(ctx, user)
}
func (s *userRepoStub) UpdateColumns(ctx context.Context, id uint, cols map[string]interface{}) error {
	return s.updateColumnsFn(ctx, id, cols)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

// noopUserRepo returns a stub whose methods all succeed and find nothing.
func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		saveFn:          func(context.Context, *models.User) error { return nil },
		updateColumnsFn: func(context.Context, uint, map[string]interface{}) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
		listFn:          func(context.Context, int, int) ([]models.User, error) { return nil, nil },
	}
}

type relRepoStub struct {
	createFn    func(context.Context, uint, uint) error
	deleteFn    func(context.Context, uint, uint) error
	existsFn    func(context.Context, uint, uint) (bool, error)
	followersFn func(context.Context, uint) ([]models.User, error)
	followingFn func(context.Context, uint) ([]models.User, error)
}

func (s *relRepoStub) Create(ctx context.Context, followerID, followedID uint) error {
	return s.createFn(ctx, followerID, followedID)
}
func (s *relRepoStub) Delete(ctx context.Context, followerID, followedID uint) error {
	return s.deleteFn(ctx, followerID, followedID)
}
func (s *relRepoStub) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followedID)
}
func (s *relRepoStub) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followersFn(ctx, userID)
}
func (s *relRepoStub) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followingFn(ctx, userID)
}

func noopRelRepo() *relRepoStub {
	return &relRepoStub{
		createFn:    func(context.Context, uint, uint) error { return nil },
		deleteFn:    func(context.Context, uint, uint) error { return nil },
		existsFn:    func(context.Context, uint, uint) (bool, error) { return false, nil },
		followersFn: func(context.Context, uint) ([]models.User, error) { return nil, nil },
		followingFn: func(context.Context, uint) ([]models.User, error) { return nil, nil },
	}
}

type postRepoStub struct {
	createFn func(context.Context, *models.Post) error
	byUserFn func(context.Context, uint, int, int) ([]models.Post, error)
	feedFn   func(context.Context, uint, int, int) ([]models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) ByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return s.byUserFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Feed(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return s.feedFn(ctx, userID, limit, offset)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(context.Context, *models.Post) error { return nil },
		byUserFn: func(context.Context, uint, int, int) ([]models.Post, error) { return nil, nil },
		feedFn:   func(context.Context, uint, int, int) ([]models.Post, error) { return nil, nil },
	}
}

type mailerStub struct {
	activations []string
	resets      []string
}

func (m *mailerStub) SendActivationEmail(_ context.Context, _ *models.User, token string) error {
	m.activations = append(m.activations, token)
	return nil
}
func (m *mailerStub) SendPasswordResetEmail(_ context.Context, _ *models.User, token string) error {
	m.resets = append(m.resets, token)
	return nil
}
