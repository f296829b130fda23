// Package mailer dispatches account emails. The core never renders or sends
// mail itself; it hands a user reference and a plaintext token to a
// dispatcher and moves on.
package mailer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"tidepool/internal/models"
	"tidepool/internal/observability"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Channel is the Redis channel the mail worker subscribes to.
const Channel = "mail:outbound"

// Job kinds understood by the mail worker.
const (
	KindActivation    = "activation"
	KindPasswordReset = "password_reset"
)

var mailsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tidepool_mails_enqueued_total",
	Help: "Mail jobs published to the outbound channel, by kind.",
}, []string{"kind"})

// Mailer is the notification port consumed by the identity core.
type Mailer interface {
	SendActivationEmail(ctx context.Context, user *models.User, token string) error
	SendPasswordResetEmail(ctx context.Context, user *models.User, token string) error
}

// Job is the payload published for each outbound mail. The token rides along
// in plaintext exactly once; it is never written to the database.
type Job struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	UserID     uint      `json:"user_id"`
	To         string    `json:"to"`
	Name       string    `json:"name"`
	Token      string    `json:"token"`
	Link       string    `json:"link"`
	From       string    `json:"from"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// RedisMailer publishes mail jobs to a Redis channel for the mail worker.
type RedisMailer struct {
	rdb     *redis.Client
	from    string
	baseURL string
}

// NewRedisMailer returns a Mailer backed by the given Redis client.
// A nil client degrades to a no-op, matching how the rest of the app
// treats an absent Redis.
func NewRedisMailer(rdb *redis.Client, from, baseURL string) *RedisMailer {
	return &RedisMailer{rdb: rdb, from: from, baseURL: baseURL}
}

func (m *RedisMailer) SendActivationEmail(ctx context.Context, user *models.User, token string) error {
	return m.publish(ctx, KindActivation, user, token)
}

func (m *RedisMailer) SendPasswordResetEmail(ctx context.Context, user *models.User, token string) error {
	return m.publish(ctx, KindPasswordReset, user, token)
}

func (m *RedisMailer) publish(ctx context.Context, kind string, user *models.User, token string) error {
	if m.rdb == nil {
		return nil
	}
	job := Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		UserID:     user.ID,
		To:         user.Email,
		Name:       user.Name,
		Token:      token,
		Link:       m.link(kind, user.Email, token),
		From:       m.from,
		EnqueuedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := m.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		return models.NewInternalError(err)
	}
	mailsEnqueued.WithLabelValues(kind).Inc()
	return nil
}

// link builds the frontend URL the mail template points at. The token and
// email travel as query parameters so the page can post them back.
func (m *RedisMailer) link(kind, email, token string) string {
	if m.baseURL == "" {
		return ""
	}
	path := "/activate"
	if kind == KindPasswordReset {
		path = "/password_resets"
	}
	return m.baseURL + path + "?email=" + url.QueryEscape(email) + "&token=" + url.QueryEscape(token)
}

// LogMailer writes mail intents to the structured log instead of sending.
// Used in development and as a fallback when Redis is unavailable.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer returns a Mailer that only logs.
func NewLogMailer() *LogMailer {
	return &LogMailer{logger: observability.GlobalLogger.Logger}
}

func (m *LogMailer) SendActivationEmail(ctx context.Context, user *models.User, _ string) error {
	m.logger.InfoContext(ctx, "mail dispatch (log only)",
		slog.String("kind", KindActivation),
		slog.String("to", user.Email),
	)
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(ctx context.Context, user *models.User, _ string) error {
	m.logger.InfoContext(ctx, "mail dispatch (log only)",
		slog.String("kind", KindPasswordReset),
		slog.String("to", user.Email),
	)
	return nil
}

// NewRedisClient builds a client from either a bare host:port or a
// redis:// URL. Returns nil on a bad address so callers can degrade.
func NewRedisClient(addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			observability.GlobalLogger.Warn("invalid REDIS_URL, mail dispatch disabled",
				slog.String("error", err.Error()))
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	return redis.NewClient(opts)
}
