package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tidepool/internal/config"
	"tidepool/internal/database"
	"tidepool/internal/models"
	"tidepool/internal/repository"
	"tidepool/internal/seed"
	"tidepool/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// captureMailer records dispatched tokens so flows can be driven end to end.
type captureMailer struct {
	activationTokens map[string]string // email -> token
	resetTokens      map[string]string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{
		activationTokens: map[string]string{},
		resetTokens:      map[string]string{},
	}
}

func (m *captureMailer) SendActivationEmail(_ context.Context, user *models.User, token string) error {
	m.activationTokens[user.Email] = token
	return nil
}

func (m *captureMailer) SendPasswordResetEmail(_ context.Context, user *models.User, token string) error {
	m.resetTokens[user.Email] = token
	return nil
}

func testServerConfig() *config.Config {
	return &config.Config{
		Port:              "8642",
		JWTSecret:         "test-secret-at-least-32-characters-x",
		Env:               "test",
		FastHashing:       true,
		PasswordMinLength: 6,
		ResetTokenTTLHrs:  2,
		MailFrom:          "noreply@tidepool.local",
	}
}

func setupTestServer(t *testing.T) (*Server, *fiber.App, *captureMailer, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.RegisteredModels()...))

	cfg := testServerConfig()
	mail := newCaptureMailer()
	userRepo := repository.NewUserRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	postRepo := repository.NewPostRepository(db)

	s := &Server{
		config:      cfg,
		db:          db,
		userRepo:    userRepo,
		relRepo:     relRepo,
		postRepo:    postRepo,
		mail:        mail,
		userService: service.NewUserService(userRepo, relRepo, postRepo, mail, cfg),
	}

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app, mail, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func bearerFor(t *testing.T, s *Server, user *models.User) map[string]string {
	t.Helper()
	token, err := s.generateToken(user.ID, user.Email)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func activatedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user, err := seed.NewFactory(db).CreateActivatedUser()
	require.NoError(t, err)
	return user
}
