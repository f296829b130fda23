package server

import (
	"tidepool/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /api/users/:id/follow. Following yourself is a no-op
// and reported as such.
func (s *Server) Follow(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}
	targetID, err := parseUserID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	if err := s.userService.Follow(c.Context(), user, targetID); err != nil {
		if models.IsNotFoundError(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		if models.IsValidationError(err) {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	following, err := s.userService.IsFollowing(c.Context(), user, targetID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// Unfollow handles DELETE /api/users/:id/follow. Removing an absent edge
// succeeds quietly.
func (s *Server) Unfollow(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}
	targetID, err := parseUserID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	if err := s.userService.Unfollow(c.Context(), user, targetID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"following": false})
}

// GetFollowers handles GET /api/users/:id/followers.
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	targetID, err := parseUserID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	users, err := s.userService.Followers(c.Context(), targetID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFollowing handles GET /api/users/:id/following.
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	targetID, err := parseUserID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	users, err := s.userService.Following(c.Context(), targetID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"users": users})
}
