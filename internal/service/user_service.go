package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/repository"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
	"github.com/astro81/pathsala-backend/pkg/validator"
)

// UserService profile and account administration.
type UserService interface {
	Me(ctx context.Context, actor *model.User) (*dto.UserDetailResponse, error)
	UpdateProfile(ctx context.Context, actor *model.User, req *dto.UpdateProfileRequest) (*dto.UserDetailResponse, error)
	// ChangeRole always fails: roles are fixed at creation.
	ChangeRole(ctx context.Context, actor *model.User, username, role string) error

	GetByUsername(ctx context.Context, actor *model.User, username string) (*dto.UserDetailResponse, error)
	List(ctx context.Context, actor *model.User, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)

	SelfDeactivate(ctx context.Context, actor *model.User, req *dto.SelfDeactivateRequest) error
	Deactivate(ctx context.Context, actor *model.User, username string, req *dto.AdminDeactivateRequest) error
	Reactivate(ctx context.Context, actor *model.User, username string) error
}

type userService struct {
	repo     *repository.Repository
	oracle   *permission.Oracle
	sessions *sessionRevoker
	logger   *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo *repository.Repository, oracle *permission.Oracle, sessions *sessionRevoker, logger *zap.Logger) UserService {
	return &userService{repo: repo, oracle: oracle, sessions: sessions, logger: logger}
}

// ── self ──

func (s *userService) Me(ctx context.Context, actor *model.User) (*dto.UserDetailResponse, error) {
	if actor == nil {
		return nil, ErrTokenInvalid
	}
	user, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return s.toDetail(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor *model.User, req *dto.UpdateProfileRequest) (*dto.UserDetailResponse, error) {
	if actor == nil {
		return nil, ErrTokenInvalid
	}
	user, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if (req.Address != nil || req.PhoneNo != nil) && user.Student == nil {
		return nil, ErrStudentProfileMissing
	}
	if req.PhoneNo != nil && *req.PhoneNo != "" && !validator.IsPhone(*req.PhoneNo) {
		return nil, apperrors.Validation(map[string]string{"phone_no": "invalid phone number"})
	}

	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	user.Touch(actor.UserID)

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.User.UpdateProfile(ctx, user); err != nil {
			return err
		}
		if user.Student == nil || (req.Address == nil && req.PhoneNo == nil) {
			return nil
		}
		if req.Address != nil {
			user.Student.Address = strPtr(strings.TrimSpace(*req.Address))
		}
		if req.PhoneNo != nil {
			user.Student.PhoneNo = strPtr(validator.NormalizePhone(*req.PhoneNo))
		}
		user.Student.Touch(actor.UserID)
		return tx.Student.UpdateContact(ctx, user.Student)
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateIdentity
		}
		s.logger.Error("update profile failed", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}
	return s.toDetail(user), nil
}

func (s *userService) ChangeRole(ctx context.Context, actor *model.User, username, role string) error {
	if err := authorize(s.oracle, actor, permission.ManageUsers); err != nil {
		return err
	}
	user, err := s.repo.User.GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	s.logger.Warn("role change refused",
		zap.String("user_id", user.UserID), zap.String("role", user.Role), zap.String("requested", role))
	return ErrImmutableRole
}

// ── admin ──

func (s *userService) GetByUsername(ctx context.Context, actor *model.User, username string) (*dto.UserDetailResponse, error) {
	if err := authorize(s.oracle, actor, permission.ManageUsers); err != nil {
		return nil, err
	}
	user, err := s.repo.User.GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	return s.toDetail(user), nil
}

func (s *userService) List(ctx context.Context, actor *model.User, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	if err := authorize(s.oracle, actor, permission.ManageUsers); err != nil {
		return nil, 0, err
	}
	filters := &repository.UserListFilters{
		Role:     req.Role,
		IsActive: req.IsActive,
		Keyword:  req.Keyword,
		Ordering: req.Ordering,
	}
	users, total, err := s.repo.User.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out, total, nil
}

// ── deactivation ──

func (s *userService) SelfDeactivate(ctx context.Context, actor *model.User, req *dto.SelfDeactivateRequest) error {
	if actor == nil {
		return ErrTokenInvalid
	}
	if actor.Role == model.RoleAdmin {
		return ErrAdminSelfDeactivation
	}
	if req.Username != actor.Username {
		return ErrConfirmationMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(req.Password)); err != nil {
		return ErrInvalidCredentials
	}

	if err := s.repo.User.SetActive(ctx, actor.UserID, false, actor.UserID); err != nil {
		s.logger.Error("deactivate user failed", zap.String("user_id", actor.UserID), zap.Error(err))
		return err
	}
	s.sessions.RevokeAll(ctx, actor.UserID)
	s.logger.Info("user deactivated self", zap.String("user_id", actor.UserID))
	return nil
}

func (s *userService) Deactivate(ctx context.Context, actor *model.User, username string, req *dto.AdminDeactivateRequest) error {
	if err := authorize(s.oracle, actor, permission.ManageUsers); err != nil {
		return err
	}
	if req.Username != username {
		return ErrConfirmationMismatch
	}
	if username == actor.Username {
		return ErrCannotDeactivateSelf
	}

	user, err := s.repo.User.GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	if req.Permanent {
		err = s.repo.User.Delete(ctx, user.UserID)
	} else {
		err = s.repo.User.SetActive(ctx, user.UserID, false, actor.UserID)
	}
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		s.logger.Error("deactivate user failed", zap.String("user_id", user.UserID), zap.Error(err))
		return err
	}

	s.sessions.RevokeAll(ctx, user.UserID)
	s.logger.Info("user deactivated",
		zap.String("user_id", user.UserID), zap.Bool("permanent", req.Permanent), zap.String("by", actor.Username))
	return nil
}

func (s *userService) Reactivate(ctx context.Context, actor *model.User, username string) error {
	if err := authorize(s.oracle, actor, permission.ManageUsers); err != nil {
		return err
	}
	user, err := s.repo.User.GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.repo.User.SetActive(ctx, user.UserID, true, actor.UserID); err != nil {
		s.logger.Error("reactivate user failed", zap.String("user_id", user.UserID), zap.Error(err))
		return err
	}
	return nil
}

// ── mapping ──

func toUserResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:        u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
	}
	if u.Student != nil {
		resp.Student = &dto.StudentResponse{
			Address:    deref(u.Student.Address),
			PhoneNo:    deref(u.Student.PhoneNo),
			IsApproved: u.Student.IsApproved,
		}
	}
	return resp
}

func (s *userService) toDetail(u *model.User) *dto.UserDetailResponse {
	return &dto.UserDetailResponse{
		UserResponse: toUserResponse(u),
		DateJoined:   formatTime(u.DateJoined),
		LastLogin:    formatTimePtr(u.LastLogin),
		Capabilities: s.oracle.CapabilitiesOf(u.Role),
	}
}
