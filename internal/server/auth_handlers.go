package server

import (
	"tidepool/internal/models"
	"tidepool/internal/observability"
	"tidepool/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup. The account starts unactivated; the
// activation token goes out by mail, never in the response.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidateName(req.Name); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password, s.config.PasswordMinLength); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	user, err := s.userService.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if models.IsValidationError(err) {
			// Validation at this point means the email is already taken.
			return models.RespondWithError(c, fiber.StatusConflict, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := s.userService.SendActivationEmail(c.Context(), user); err != nil {
		// The account exists; a failed dispatch shouldn't roll it back.
		observability.GlobalLogger.Warn("activation email dispatch failed", "user_id", user.ID, "error", err.Error())
	}
	observability.GlobalLogger.AuthEvent(c.Context(), "signup", user.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created. Check your email to activate it.",
		"user":    user,
	})
}

// Login handles POST /api/auth/login. Unactivated accounts cannot log in.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		if models.IsUnauthorizedError(err) {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if !user.Activated {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("Account not activated. Check your email for the activation link."))
	}

	token, err := s.generateToken(user.ID, user.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	observability.GlobalLogger.AuthEvent(c.Context(), "login", user.ID)

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}
