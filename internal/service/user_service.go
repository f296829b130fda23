// Package service holds the business logic between handlers and repositories.
package service

import (
	"context"
	"strings"
	"time"

	"tidepool/internal/auth"
	"tidepool/internal/config"
	"tidepool/internal/mailer"
	"tidepool/internal/models"
	"tidepool/internal/repository"
	"tidepool/internal/validation"
)

// DigestKind names one of the three digest channels a token can be checked
// against. An explicit enum, not a field name lookup.
type DigestKind string

const (
	DigestRemember   DigestKind = "remember"
	DigestActivation DigestKind = "activation"
	DigestReset      DigestKind = "reset"
)

// UserService implements the identity workflows: registration, login,
// persistent sessions, account activation, and password reset. Follow-graph
// calls delegate to the relationship repository; mail goes out through the
// Mailer port.
type UserService struct {
	users repository.UserRepository
	rels  repository.RelationshipRepository
	posts repository.PostRepository
	mail  mailer.Mailer

	hashCost    int
	passwordMin int
	resetTTL    time.Duration

	now func() time.Time
}

// NewUserService wires the service from its collaborators and config.
func NewUserService(
	users repository.UserRepository,
	rels repository.RelationshipRepository,
	posts repository.PostRepository,
	mail mailer.Mailer,
	cfg *config.Config,
) *UserService {
	return &UserService{
		users:       users,
		rels:        rels,
		posts:       posts,
		mail:        mail,
		hashCost:    auth.Cost(cfg.FastHashing),
		passwordMin: cfg.PasswordMinLength,
		resetTTL:    time.Duration(cfg.ResetTokenTTLHrs) * time.Hour,
		now:         time.Now,
	}
}

// Register creates a new, unactivated user. The activation digest is set
// before the row is persisted; the plaintext activation token rides on the
// returned user for exactly one email dispatch.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if err := validation.ValidatePassword(password, s.passwordMin); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	email = strings.ToLower(email)
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("Email has already been taken")
	}

	passwordDigest, err := auth.Digest(password, s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:           name,
		Email:          email,
		PasswordDigest: passwordDigest,
	}
	if err := s.createActivationDigest(user); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// createActivationDigest generates the activation token/digest pair. The
// digest is persisted with the row; the token stays transient.
func (s *UserService) createActivationDigest(user *models.User) error {
	token, err := auth.NewToken()
	if err != nil {
		return models.NewInternalError(err)
	}
	digest, err := auth.Digest(token, s.hashCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.ActivationToken = token
	user.ActivationDigest = digest
	return nil
}

// Authenticate checks email/password credentials for login. The error is the
// same for an unknown email and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.Verify(user.PasswordDigest, password) {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// Authenticated reports whether candidate matches the digest for the given
// channel. An absent digest or unknown kind is false, never an error.
func (s *UserService) Authenticated(user *models.User, kind DigestKind, candidate string) bool {
	var digest string
	switch kind {
	case DigestRemember:
		digest = user.RememberDigest
	case DigestActivation:
		digest = user.ActivationDigest
	case DigestReset:
		digest = user.ResetDigest
	default:
		return false
	}
	return auth.Verify(digest, candidate)
}

// Remember issues a fresh remember token, persists its digest through the
// partial-update path, and returns the plaintext for the caller to hold
// client-side. Any previous remember token is implicitly invalidated.
func (s *UserService) Remember(ctx context.Context, user *models.User) (string, error) {
	token, err := auth.NewToken()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	digest, err := auth.Digest(token, s.hashCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if err := s.users.UpdateColumns(ctx, user.ID, map[string]interface{}{
		"remember_digest": digest,
	}); err != nil {
		return "", err
	}
	user.RememberToken = token
	user.RememberDigest = digest
	return token, nil
}

// Forget discards the remember digest. Idempotent.
func (s *UserService) Forget(ctx context.Context, user *models.User) error {
	if err := s.users.UpdateColumns(ctx, user.ID, map[string]interface{}{
		"remember_digest": "",
	}); err != nil {
		return err
	}
	user.RememberToken = ""
	user.RememberDigest = ""
	return nil
}

// SessionToken returns the remember token minted in this call chain,
// generating one via Remember when none is held. The remember channel
// doubles as the per-session token.
func (s *UserService) SessionToken(ctx context.Context, user *models.User) (string, error) {
	if user.RememberToken != "" {
		return user.RememberToken, nil
	}
	return s.Remember(ctx, user)
}

// Activate flips the user to active. One-way and idempotent; no validation
// re-run on this path.
func (s *UserService) Activate(ctx context.Context, user *models.User) error {
	if user.Activated {
		return nil
	}
	now := s.now()
	if err := s.users.UpdateColumns(ctx, user.ID, map[string]interface{}{
		"activated":    true,
		"activated_at": now,
	}); err != nil {
		return err
	}
	user.Activated = true
	user.ActivatedAt = &now
	return nil
}

// SendActivationEmail dispatches the activation mail with the transient token.
func (s *UserService) SendActivationEmail(ctx context.Context, user *models.User) error {
	return s.mail.SendActivationEmail(ctx, user, user.ActivationToken)
}

// CreateResetDigest issues a password-reset token, persisting its digest and
// the sent-at timestamp directly. Returns the plaintext token.
func (s *UserService) CreateResetDigest(ctx context.Context, user *models.User) (string, error) {
	token, err := auth.NewToken()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	digest, err := auth.Digest(token, s.hashCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	now := s.now()
	if err := s.users.UpdateColumns(ctx, user.ID, map[string]interface{}{
		"reset_digest":  digest,
		"reset_sent_at": now,
	}); err != nil {
		return "", err
	}
	user.ResetToken = token
	user.ResetDigest = digest
	user.ResetSentAt = &now
	return token, nil
}

// SendPasswordResetEmail dispatches the reset mail with the transient token.
func (s *UserService) SendPasswordResetEmail(ctx context.Context, user *models.User) error {
	return s.mail.SendPasswordResetEmail(ctx, user, user.ResetToken)
}

// PasswordResetExpired reports whether the reset window has lapsed. A user
// with no reset in flight counts as expired; callers should check the reset
// digest first.
func (s *UserService) PasswordResetExpired(user *models.User) bool {
	if user.ResetSentAt == nil {
		return true
	}
	return s.now().Sub(*user.ResetSentAt) > s.resetTTL
}

// ResetPassword sets a new password and consumes the reset digest so the
// token cannot be replayed.
func (s *UserService) ResetPassword(ctx context.Context, user *models.User, password string) error {
	if err := validation.ValidatePassword(password, s.passwordMin); err != nil {
		return models.NewValidationError(err.Error())
	}
	digest, err := auth.Digest(password, s.hashCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.users.UpdateColumns(ctx, user.ID, map[string]interface{}{
		"password_digest": digest,
		"reset_digest":    "",
	}); err != nil {
		return err
	}
	user.PasswordDigest = digest
	user.ResetDigest = ""
	user.ResetToken = ""
	return nil
}

// UpdateProfile edits name/email and optionally rotates the password. A
// blank password leaves the credential untouched; a supplied one must still
// meet the minimum length.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, name, email, password string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = strings.ToLower(email)
	}
	if password != "" {
		if err := validation.ValidatePassword(password, s.passwordMin); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		digest, err := auth.Digest(password, s.hashCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.PasswordDigest = digest
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser destroys the account; the repository cascades to relationship
// edges on either side and to authored posts.
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	return s.users.Delete(ctx, userID)
}

// Follow adds a follow edge to the target. Following yourself is a no-op.
func (s *UserService) Follow(ctx context.Context, user *models.User, targetID uint) error {
	if user.ID == targetID {
		return nil
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.rels.Create(ctx, user.ID, targetID)
}

// Unfollow removes the follow edge if present.
func (s *UserService) Unfollow(ctx context.Context, user *models.User, targetID uint) error {
	return s.rels.Delete(ctx, user.ID, targetID)
}

// IsFollowing reports whether user currently follows the target.
func (s *UserService) IsFollowing(ctx context.Context, user *models.User, targetID uint) (bool, error) {
	return s.rels.Exists(ctx, user.ID, targetID)
}

// Followers returns the users following the given user.
func (s *UserService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.rels.Followers(ctx, userID)
}

// Following returns the users the given user follows.
func (s *UserService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.rels.Following(ctx, userID)
}

// Feed returns posts from the user and everyone they follow, newest first.
func (s *UserService) Feed(ctx context.Context, user *models.User, limit, offset int) ([]models.Post, error) {
	return s.posts.Feed(ctx, user.ID, limit, offset)
}
