package server

import (
	"strconv"

	"tidepool/internal/models"

	"github.com/gofiber/fiber/v2"
)

func parseUserID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, models.NewValidationError("Invalid user ID")
	}
	return uint(id), nil
}

// GetUser handles GET /api/users/:id.
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		if models.IsNotFoundError(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// UpdateProfile handles PATCH /api/users/me. Password is optional; when
// omitted the credential is left untouched.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	updated, err := s.userService.UpdateProfile(c.Context(), user.ID, req.Name, req.Email, req.Password)
	if err != nil {
		if models.IsValidationError(err) {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"user": updated})
}

// DeleteAccount handles DELETE /api/users/me. Destroys the account and
// cascades to follow edges and authored posts.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	if err := s.userService.DeleteUser(c.Context(), user.ID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFeed handles GET /api/feed.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	posts, err := s.userService.Feed(c.Context(), user, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}
