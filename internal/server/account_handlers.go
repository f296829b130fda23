package server

import (
	"tidepool/internal/models"
	"tidepool/internal/observability"
	"tidepool/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ActivateAccount handles POST /api/account/activate. The caller presents
// the email plus the plaintext activation token from the signup mail.
func (s *Server) ActivateAccount(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil || user.Activated || !s.userService.Authenticated(user, service.DigestActivation, req.Token) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid activation link"))
	}

	if err := s.userService.Activate(c.Context(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	observability.GlobalLogger.AuthEvent(c.Context(), "account_activated", user.ID)

	token, err := s.generateToken(user.ID, user.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// RequestPasswordReset handles POST /api/account/password_resets. The
// response is identical whether or not the email is registered.
func (s *Server) RequestPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user != nil {
		if _, err := s.userService.CreateResetDigest(c.Context(), user); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if err := s.userService.SendPasswordResetEmail(c.Context(), user); err != nil {
			observability.GlobalLogger.Warn("reset email dispatch failed", "user_id", user.ID, "error", err.Error())
		}
		observability.GlobalLogger.AuthEvent(c.Context(), "password_reset_requested", user.ID)
	}

	return c.JSON(fiber.Map{
		"message": "If that email is registered, a reset link is on its way.",
	})
}

// CompletePasswordReset handles PATCH /api/account/password_resets with the
// email, the mailed token, and the new password.
func (s *Server) CompletePasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil || user.ResetDigest == "" ||
		!s.userService.Authenticated(user, service.DigestReset, req.Token) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid password reset link"))
	}
	if s.userService.PasswordResetExpired(user) {
		return models.RespondWithError(c, fiber.StatusGone,
			models.NewValidationError("Password reset has expired. Request a new one."))
	}

	if err := s.userService.ResetPassword(c.Context(), user, req.Password); err != nil {
		if models.IsValidationError(err) {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	observability.GlobalLogger.AuthEvent(c.Context(), "password_reset_completed", user.ID)

	return c.JSON(fiber.Map{
		"message": "Password updated.",
	})
}
