package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/astro81/pathsala-backend/config"
	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/repository"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
	"github.com/astro81/pathsala-backend/pkg/jwt"
	"github.com/astro81/pathsala-backend/pkg/metrics"
	"github.com/astro81/pathsala-backend/pkg/validator"
)

// NewUser is the input of CreateUser.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	Role      string
	FirstName string
	LastName  string
	Address   string
	PhoneNo   string
}

// AuthService credentials, tokens and account creation.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout revokes the presented access token and, if given, the refresh token.
	Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error
	// LogoutAll revokes every token issued to the user so far.
	LogoutAll(ctx context.Context, actor *model.User, access *jwt.Claims) error
	// Authenticate resolves a bearer access token to its active user.
	Authenticate(ctx context.Context, token string) (*jwt.Claims, *model.User, error)

	RegisterStudent(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	RegisterModerator(ctx context.Context, actor *model.User, req *dto.RegisterRequest) (*dto.UserResponse, error)
	// CreateUser is the single place accounts are created; the role is fixed here.
	CreateUser(ctx context.Context, in *NewUser) (*model.User, error)
}

type authService struct {
	cfg     *config.Config
	repo    *repository.Repository
	oracle  *permission.Oracle
	jwtMgr  *jwt.Manager
	tokens  TokenStore
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	oracle *permission.Oracle,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:     cfg,
		repo:    repo,
		oracle:  oracle,
		jwtMgr:  jwtMgr,
		tokens:  tokens,
		metrics: m,
		logger:  logger,
	}
}

// ── Login ──

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if isNotFound(err) {
			s.metrics.ObserveAuth("login", "invalid")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load user failed", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.ObserveAuth("login", "invalid")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.metrics.ObserveAuth("login", "inactive")
		return nil, ErrAccountInactive
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	if err := s.repo.User.TouchLastLogin(ctx, user.UserID, time.Now()); err != nil {
		s.logger.Warn("record last login failed", zap.String("user_id", user.UserID), zap.Error(err))
	}
	s.metrics.ObserveAuth("login", "ok")
	return resp, nil
}

// ── Refresh ──

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		s.metrics.ObserveAuth("refresh", "invalid")
		return nil, ErrTokenInvalid
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		s.metrics.ObserveAuth("refresh", "revoked")
		return nil, err
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTokenInvalid
		}
		s.logger.Error("load user failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	// the old refresh token is single use
	s.blacklist(ctx, claims)

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveAuth("refresh", "ok")
	return resp, nil
}

// ── Logout ──

func (s *authService) Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error {
	s.blacklist(ctx, access)
	if refreshToken != "" {
		if claims, err := s.jwtMgr.ParseToken(refreshToken); err == nil && claims.UserID == access.UserID {
			s.blacklist(ctx, claims)
		}
	}
	s.metrics.ObserveAuth("logout", "ok")
	return nil
}

func (s *authService) LogoutAll(ctx context.Context, actor *model.User, access *jwt.Claims) error {
	if actor == nil {
		return ErrTokenInvalid
	}
	if s.tokens != nil {
		if err := s.tokens.RevokeUserSessions(ctx, actor.UserID, s.jwtMgr.RefreshTokenTTL()); err != nil {
			s.logger.Error("revoke user sessions failed", zap.String("user_id", actor.UserID), zap.Error(err))
			return err
		}
	}
	// a token minted in the same second as the cutoff would survive it
	s.blacklist(ctx, access)
	s.metrics.ObserveAuth("logout_all", "ok")
	return nil
}

// ── Authenticate ──

func (s *authService) Authenticate(ctx context.Context, token string) (*jwt.Claims, *model.User, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil || claims.TokenType != jwt.TokenTypeAccess {
		return nil, nil, ErrTokenInvalid
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, nil, err
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrTokenInvalid
		}
		s.logger.Error("load user failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrAccountInactive
	}
	return claims, user, nil
}

// ── registration ──

func (s *authService) RegisterStudent(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	user, err := s.CreateUser(ctx, newUserFromRequest(req, model.RoleStudent))
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) RegisterModerator(ctx context.Context, actor *model.User, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := authorize(s.oracle, actor, permission.ManageUsers); err != nil {
		return nil, err
	}
	user, err := s.CreateUser(ctx, newUserFromRequest(req, model.RoleModerator))
	if err != nil {
		return nil, err
	}
	s.logger.Info("moderator registered", zap.String("username", user.Username), zap.String("by", actor.Username))
	resp := toUserResponse(user)
	return &resp, nil
}

func newUserFromRequest(req *dto.RegisterRequest, role string) *NewUser {
	return &NewUser{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Role:      role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
		PhoneNo:   req.PhoneNo,
	}
}

func (s *authService) CreateUser(ctx context.Context, in *NewUser) (*model.User, error) {
	if !model.IsValidRole(in.Role) {
		return nil, ErrInvalidRole
	}
	if !validator.IsStrongPassword(in.Password) {
		return nil, apperrors.Validation(map[string]string{"password": "must be at least 8 characters with upper, lower, digit and special characters"})
	}
	if in.PhoneNo != "" && !validator.IsPhone(in.PhoneNo) {
		return nil, apperrors.Validation(map[string]string{"phone_no": "invalid phone number"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost())
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		IsActive:     true,
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		if user.Role != model.RoleStudent {
			return nil
		}
		student := &model.Student{UserID: user.UserID}
		if in.Address != "" {
			student.Address = strPtr(strings.TrimSpace(in.Address))
		}
		if in.PhoneNo != "" {
			student.PhoneNo = strPtr(validator.NormalizePhone(in.PhoneNo))
		}
		if err := tx.Student.Create(ctx, student); err != nil {
			return err
		}
		user.Student = student
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateIdentity
		}
		s.logger.Error("create user failed", zap.String("username", in.Username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.UserID), zap.String("role", user.Role))
	return user, nil
}

// ── helpers ──

func (s *authService) bcryptCost() int {
	if c := s.cfg.Auth.BcryptCost; c >= bcrypt.MinCost && c <= bcrypt.MaxCost {
		return c
	}
	return bcrypt.DefaultCost
}

func (s *authService) issue(user *model.User) (*dto.TokenResponse, error) {
	access, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Username, user.Role)
	if err != nil {
		s.logger.Error("issue access token failed", zap.Error(err))
		return nil, err
	}
	refresh, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Username, user.Role)
	if err != nil {
		s.logger.Error("issue refresh token failed", zap.Error(err))
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user),
	}, nil
}

// checkRevoked consults the token store. Store failures are logged and
// let through.
func (s *authService) checkRevoked(ctx context.Context, claims *jwt.Claims) error {
	if s.tokens == nil {
		return nil
	}
	if blacklisted, err := s.tokens.IsBlacklisted(ctx, claims.ID); err != nil {
		s.logger.Warn("blacklist lookup failed", zap.Error(err))
	} else if blacklisted {
		return ErrTokenRevoked
	}

	cutoff, ok, err := s.tokens.RevokedBefore(ctx, claims.UserID)
	if err != nil {
		s.logger.Warn("revocation lookup failed", zap.Error(err))
		return nil
	}
	if ok && claims.IssuedAt != nil && claims.IssuedAt.Time.Before(cutoff) {
		return ErrTokenRevoked
	}
	return nil
}

func (s *authService) blacklist(ctx context.Context, claims *jwt.Claims) {
	if s.tokens == nil || claims == nil || claims.ID == "" {
		return
	}
	ttl := jwt.RemainingTTL(claims)
	if ttl <= 0 {
		return
	}
	if err := s.tokens.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("blacklist token failed", zap.String("jti", claims.ID), zap.Error(err))
	}
}
