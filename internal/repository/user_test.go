package repository

import (
	"context"
	"strings"
	"testing"

	"tidepool/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("persists and canonicalizes email", func(t *testing.T) {
		user := &models.User{Name: "Ada", Email: "Foo@Bar.COM", PasswordDigest: "digest"}
		require.NoError(t, repo.Create(ctx, user))

		reloaded, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "foo@bar.com", reloaded.Email)
		assert.False(t, reloaded.Activated)
	})

	t.Run("duplicate email fails case-insensitively", func(t *testing.T) {
		dup := &models.User{Name: "Eve", Email: "FOO@bar.com", PasswordDigest: "digest"}
		err := repo.Create(ctx, dup)
		require.Error(t, err)
		assert.True(t, models.IsValidationError(err))
	})

	t.Run("validation failures", func(t *testing.T) {
		cases := []struct {
			name string
			user models.User
		}{
			{"blank name", models.User{Email: "a@example.com", PasswordDigest: "d"}},
			{"name too long", models.User{Name: strings.Repeat("a", 51), Email: "a@example.com", PasswordDigest: "d"}},
			{"blank email", models.User{Name: "Ada", PasswordDigest: "d"}},
			{"bad email format", models.User{Name: "Ada", Email: "not-an-email", PasswordDigest: "d"}},
			{"missing password digest", models.User{Name: "Ada", Email: "b@example.com"}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				u := tc.user
				err := repo.Create(ctx, &u)
				require.Error(t, err)
				assert.True(t, models.IsValidationError(err), "expected validation error, got %v", err)
			})
		}
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	t.Parallel()
	db, factory := setupFactory(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := factory.CreateUser(func(u *models.User) { u.Email = "lookup@example.com" })
	require.NoError(t, err)

	t.Run("case-insensitive lookup", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "LOOKUP@Example.COM")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("missing is nil, nil", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestUserRepository_UpdateColumns(t *testing.T) {
	t.Parallel()
	db, factory := setupFactory(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	// The row is deliberately invalid for the full-save path (no name would
	// fail), so a partial update must not re-run validation.
	user, err := factory.CreateUser()
	require.NoError(t, err)

	require.NoError(t, repo.UpdateColumns(ctx, user.ID, map[string]interface{}{
		"remember_digest": "some-digest",
	}))

	reloaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "some-digest", reloaded.RememberDigest)

	// Clearing is just another partial update.
	require.NoError(t, repo.UpdateColumns(ctx, user.ID, map[string]interface{}{
		"remember_digest": "",
	}))
	reloaded, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.RememberDigest)
}

func TestUserRepository_Delete_Cascades(t *testing.T) {
	t.Parallel()
	db, factory := setupFactory(t)
	users := NewUserRepository(db)
	rels := NewRelationshipRepository(db)
	ctx := context.Background()

	alice, err := factory.CreateUser()
	require.NoError(t, err)
	bob, err := factory.CreateUser()
	require.NoError(t, err)

	require.NoError(t, rels.Create(ctx, alice.ID, bob.ID))
	require.NoError(t, rels.Create(ctx, bob.ID, alice.ID))
	_, err = factory.CreatePost(alice)
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, alice.ID))

	_, err = users.GetByID(ctx, alice.ID)
	assert.True(t, models.IsNotFoundError(err))

	var relCount int64
	require.NoError(t, db.Model(&models.Relationship{}).
		Where("follower_id = ? OR followed_id = ?", alice.ID, alice.ID).
		Count(&relCount).Error)
	assert.Zero(t, relCount, "edges on either side should be gone")

	var postCount int64
	require.NoError(t, db.Model(&models.Post{}).Where("user_id = ?", alice.ID).Count(&postCount).Error)
	assert.Zero(t, postCount, "authored posts should be gone")

	// The other endpoint survives.
	_, err = users.GetByID(ctx, bob.ID)
	assert.NoError(t, err)
}

func TestUserRepository_Save_OptionalPassword(t *testing.T) {
	t.Parallel()
	db, factory := setupFactory(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := factory.CreateUser()
	require.NoError(t, err)
	originalDigest := user.PasswordDigest

	user.Name = "Renamed"
	require.NoError(t, repo.Save(ctx, user))

	reloaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", reloaded.Name)
	assert.Equal(t, originalDigest, reloaded.PasswordDigest)
}
