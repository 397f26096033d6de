package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/astro81/pathsala-backend/config"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/repository"
	"github.com/astro81/pathsala-backend/pkg/jwt"
	"github.com/astro81/pathsala-backend/pkg/metrics"
)

// TokenStore keeps revoked token ids and per-user revocation cutoffs.
// *redis.Client satisfies it; a nil TokenStore disables both checks.
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	RevokeUserSessions(ctx context.Context, userID string, ttl time.Duration) error
	RevokedBefore(ctx context.Context, userID string) (time.Time, bool, error)
}

// Service aggregates every business service.
type Service struct {
	Auth       AuthService
	User       UserService
	Category   CategoryService
	Course     CourseService
	Rating     RatingService
	Syllabus   SyllabusService
	Enrollment EnrollmentService
	Export     ExportService
}

// NewService wires the services over one repository aggregate.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	oracle *permission.Oracle,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	sessions := newSessionRevoker(tokens, jwtMgr, logger)
	return &Service{
		Auth:       NewAuthService(cfg, repo, oracle, jwtMgr, tokens, m, logger),
		User:       NewUserService(repo, oracle, sessions, logger),
		Category:   NewCategoryService(repo, oracle, logger),
		Course:     NewCourseService(repo, oracle, logger),
		Rating:     NewRatingService(repo, oracle, logger),
		Syllabus:   NewSyllabusService(repo, oracle, logger),
		Enrollment: NewEnrollmentService(&cfg.Enrollment, repo, oracle, m, logger),
		Export:     NewExportService(repo, oracle, logger),
	}
}

// ── shared helpers ──

// authorize turns an oracle refusal into an error.
func authorize(oracle *permission.Oracle, actor *model.User, c permission.Capability) error {
	if actor == nil {
		return ErrTokenInvalid
	}
	if !oracle.Authorize(actor, c) {
		return errPermissionDenied(c)
	}
	return nil
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func isDuplicate(err error) bool { return errors.Is(err, gorm.ErrDuplicatedKey) }

const timeLayout = time.RFC3339

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ── session revocation ──

// sessionRevoker signals "invalidate all sessions" for a user. Without a
// store it only logs; inactive users are still refused because requests
// load the current user.
type sessionRevoker struct {
	tokens TokenStore
	jwtMgr *jwt.Manager
	logger *zap.Logger
}

func newSessionRevoker(tokens TokenStore, jwtMgr *jwt.Manager, logger *zap.Logger) *sessionRevoker {
	return &sessionRevoker{tokens: tokens, jwtMgr: jwtMgr, logger: logger}
}

func (r *sessionRevoker) RevokeAll(ctx context.Context, userID string) {
	if r == nil || r.tokens == nil {
		if r != nil {
			r.logger.Warn("token store unavailable, sessions not revoked", zap.String("user_id", userID))
		}
		return
	}
	if err := r.tokens.RevokeUserSessions(ctx, userID, r.jwtMgr.RefreshTokenTTL()); err != nil {
		r.logger.Warn("revoke user sessions failed", zap.String("user_id", userID), zap.Error(err))
	}
}
