package service

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/astro81/pathsala-backend/config"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/repository"
	"github.com/astro81/pathsala-backend/internal/testutil"
	"github.com/astro81/pathsala-backend/pkg/jwt"
)

const testPassword = "Passw0rd!"

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-tests",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
			BcryptCost:      bcrypt.MinCost,
		},
	}
}

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

// sqlEnv is a service stack over an in-memory database.
type sqlEnv struct {
	db   *gorm.DB
	repo *repository.Repository
	svc  *Service
	cfg  *config.Config

	admin     *model.User
	moderator *model.User
}

func newSQLEnv(t *testing.T) *sqlEnv {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testConfig()
	repo := repository.NewRepository(db)
	svc := NewService(cfg, repo, permission.MustDefault(), jwt.NewManager(&cfg.Auth), nil, nil, zap.NewNop())
	return &sqlEnv{
		db:        db,
		repo:      repo,
		svc:       svc,
		cfg:       cfg,
		admin:     testutil.CreateUser(t, db, "admin", model.RoleAdmin),
		moderator: testutil.CreateUser(t, db, "mod", model.RoleModerator),
	}
}
