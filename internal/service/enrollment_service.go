package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/astro81/pathsala-backend/config"
	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/repository"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
	"github.com/astro81/pathsala-backend/pkg/metrics"
)

// EnrollmentService the enrollment lifecycle.
//
//	pending ──approve──▶ approved
//	   └────deny──────▶ denied ──reapply (opt-in)──▶ pending
//
// Approve writes the enrollment and the student's approval flag in one
// transaction; a decision on a non-pending enrollment is refused without
// touching it.
type EnrollmentService interface {
	Apply(ctx context.Context, actor *model.User, req *dto.ApplyEnrollmentRequest) (*dto.EnrollmentResponse, error)
	Approve(ctx context.Context, actor *model.User, id string) (*dto.EnrollmentResponse, error)
	Deny(ctx context.Context, actor *model.User, id string) (*dto.EnrollmentResponse, error)
	// Patch dispatches {status: approved|denied} to Approve or Deny.
	Patch(ctx context.Context, actor *model.User, id string, req *dto.PatchEnrollmentRequest) (*dto.EnrollmentResponse, error)

	Get(ctx context.Context, actor *model.User, id string) (*dto.EnrollmentResponse, error)
	List(ctx context.Context, actor *model.User, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error)
	Mine(ctx context.Context, actor *model.User, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error)
	Delete(ctx context.Context, actor *model.User, id string) error
}

type enrollmentService struct {
	cfg     *config.EnrollmentConfig
	repo    *repository.Repository
	oracle  *permission.Oracle
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewEnrollmentService creates an EnrollmentService.
func NewEnrollmentService(
	cfg *config.EnrollmentConfig,
	repo *repository.Repository,
	oracle *permission.Oracle,
	m *metrics.Metrics,
	logger *zap.Logger,
) EnrollmentService {
	if cfg == nil {
		cfg = &config.EnrollmentConfig{}
	}
	return &enrollmentService{
		cfg:     cfg,
		repo:    repo,
		oracle:  oracle,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// ────────────────────── Apply ──────────────────────

func (s *enrollmentService) Apply(ctx context.Context, actor *model.User, req *dto.ApplyEnrollmentRequest) (resp *dto.EnrollmentResponse, err error) {
	defer func() { s.observe("apply", err) }()

	if err := authorize(s.oracle, actor, permission.ApplyEnrollment); err != nil {
		return nil, err
	}
	if actor.Role != model.RoleStudent {
		return nil, ErrNotAStudent
	}

	ok, err := s.repo.Course.Exists(ctx, req.CourseID)
	if err != nil {
		s.logger.Error("check course failed", zap.String("course_id", req.CourseID), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, ErrCourseNotFound
	}

	existing, err := s.repo.Enrollment.GetByUserAndCourse(ctx, actor.UserID, req.CourseID)
	switch {
	case err == nil:
		return s.reapply(ctx, existing)
	case !isNotFound(err):
		s.logger.Error("load enrollment failed", zap.Error(err))
		return nil, err
	}

	e := &model.Enrollment{
		UserID:    actor.UserID,
		CourseID:  req.CourseID,
		Status:    model.EnrollmentPending,
		AppliedAt: s.now(),
	}
	e.Stamp(actor.UserID)
	if err := s.repo.Enrollment.Create(ctx, e); err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateEnrollment
		}
		s.logger.Error("create enrollment failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("enrollment applied",
		zap.String("enrollment_id", e.EnrollmentID), zap.String("user_id", actor.UserID), zap.String("course_id", req.CourseID))
	return s.load(ctx, e.EnrollmentID)
}

// reapply handles an Apply that found an existing enrollment. Only a
// denied one may be reopened, and only when the policy allows it.
func (s *enrollmentService) reapply(ctx context.Context, existing *model.Enrollment) (*dto.EnrollmentResponse, error) {
	if !s.cfg.AllowReapplyAfterDenial || existing.Status != model.EnrollmentDenied {
		return nil, ErrDuplicateEnrollment
	}
	if err := s.repo.Enrollment.Reopen(ctx, existing.EnrollmentID, s.now()); err != nil {
		if errors.Is(err, apperrors.ErrOptimisticLock) {
			return nil, ErrDuplicateEnrollment
		}
		s.logger.Error("reopen enrollment failed", zap.String("enrollment_id", existing.EnrollmentID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("enrollment reopened", zap.String("enrollment_id", existing.EnrollmentID))
	return s.load(ctx, existing.EnrollmentID)
}

// ────────────────────── Approve / Deny ──────────────────────

func (s *enrollmentService) Approve(ctx context.Context, actor *model.User, id string) (resp *dto.EnrollmentResponse, err error) {
	defer func() { s.observe("approve", err) }()

	if err := authorize(s.oracle, actor, permission.EditEnrollment); err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		e, err := s.pendingForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.Enrollment.Approve(ctx, id, s.now(), actor.Label(), actor.UserID); err != nil {
			return err
		}
		if err := tx.Student.SetApproved(ctx, e.UserID, true); err != nil {
			if isNotFound(err) {
				return ErrStudentProfileMissing
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.decisionError(ctx, "approve", id, err)
	}

	s.logger.Info("enrollment approved", zap.String("enrollment_id", id), zap.String("by", actor.Label()))
	return s.load(ctx, id)
}

func (s *enrollmentService) Deny(ctx context.Context, actor *model.User, id string) (resp *dto.EnrollmentResponse, err error) {
	defer func() { s.observe("deny", err) }()

	if err := authorize(s.oracle, actor, permission.EditEnrollment); err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := s.pendingForUpdate(ctx, tx, id); err != nil {
			return err
		}
		return tx.Enrollment.Deny(ctx, id, actor.UserID)
	})
	if err != nil {
		return nil, s.decisionError(ctx, "deny", id, err)
	}

	s.logger.Info("enrollment denied", zap.String("enrollment_id", id), zap.String("by", actor.Label()))
	return s.load(ctx, id)
}

func (s *enrollmentService) Patch(ctx context.Context, actor *model.User, id string, req *dto.PatchEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	switch req.Status {
	case model.EnrollmentApproved:
		return s.Approve(ctx, actor, id)
	case model.EnrollmentDenied:
		return s.Deny(ctx, actor, id)
	default:
		return nil, ErrInvalidTransition.WithFields(map[string]string{"status": "must be approved or denied"})
	}
}

// pendingForUpdate locks the enrollment and refuses anything not pending.
func (s *enrollmentService) pendingForUpdate(ctx context.Context, tx *repository.Repository, id string) (*model.Enrollment, error) {
	e, err := tx.Enrollment.GetByIDForUpdate(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	if !e.IsPending() {
		return nil, stateError(e.Status)
	}
	return e, nil
}

// decisionError maps a failed decision. A lost compare-and-set is
// resolved by reading the state the winner left behind.
func (s *enrollmentService) decisionError(ctx context.Context, action, id string, err error) error {
	if errors.Is(err, apperrors.ErrOptimisticLock) {
		current, rerr := s.repo.Enrollment.GetByID(ctx, id)
		if rerr != nil {
			if isNotFound(rerr) {
				return ErrEnrollmentNotFound
			}
			s.logger.Error("reload enrollment failed", zap.String("enrollment_id", id), zap.Error(rerr))
			return rerr
		}
		return stateError(current.Status)
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	s.logger.Error("enrollment "+action+" failed", zap.String("enrollment_id", id), zap.Error(err))
	return err
}

func stateError(status string) error {
	if status == model.EnrollmentApproved {
		return ErrAlreadyApproved
	}
	return ErrNotPending
}

// ────────────────────── Read / Delete ──────────────────────

func (s *enrollmentService) Get(ctx context.Context, actor *model.User, id string) (*dto.EnrollmentResponse, error) {
	if actor == nil {
		return nil, ErrTokenInvalid
	}
	e, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("load enrollment failed", zap.String("enrollment_id", id), zap.Error(err))
		return nil, err
	}
	if e.UserID != actor.UserID && !s.oracle.Authorize(actor, permission.ViewEnrollment) {
		return nil, errPermissionDenied(permission.ViewEnrollment)
	}
	return toEnrollmentResponse(e), nil
}

func (s *enrollmentService) List(ctx context.Context, actor *model.User, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error) {
	if err := authorize(s.oracle, actor, permission.ViewEnrollment); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, req, req.UserID)
}

func (s *enrollmentService) Mine(ctx context.Context, actor *model.User, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error) {
	if actor == nil {
		return nil, 0, ErrTokenInvalid
	}
	return s.list(ctx, req, actor.UserID)
}

func (s *enrollmentService) list(ctx context.Context, req *dto.EnrollmentListRequest, userID string) ([]dto.EnrollmentResponse, int64, error) {
	filters := &repository.EnrollmentListFilters{
		Status:   req.Status,
		CourseID: req.CourseID,
		UserID:   userID,
	}
	list, total, err := s.repo.Enrollment.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list enrollments failed", zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.EnrollmentResponse, 0, len(list))
	for i := range list {
		out = append(out, *toEnrollmentResponse(&list[i]))
	}
	return out, total, nil
}

func (s *enrollmentService) Delete(ctx context.Context, actor *model.User, id string) (err error) {
	defer func() { s.observe("delete", err) }()

	if err := authorize(s.oracle, actor, permission.DeleteEnrollment); err != nil {
		return err
	}
	if err := s.repo.Enrollment.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrEnrollmentNotFound
		}
		s.logger.Error("delete enrollment failed", zap.String("enrollment_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("enrollment deleted", zap.String("enrollment_id", id), zap.String("by", actor.Label()))
	return nil
}

// ── helpers ──

func (s *enrollmentService) load(ctx context.Context, id string) (*dto.EnrollmentResponse, error) {
	e, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	return toEnrollmentResponse(e), nil
}

func (s *enrollmentService) observe(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperrors.KindOf(err).String()
	}
	s.metrics.ObserveEnrollment(action, outcome)
}

func toEnrollmentResponse(e *model.Enrollment) *dto.EnrollmentResponse {
	resp := &dto.EnrollmentResponse{
		ID:         e.EnrollmentID,
		UserID:     e.UserID,
		CourseID:   e.CourseID,
		Status:     e.Status,
		AppliedAt:  formatTime(e.AppliedAt),
		ApprovedAt: formatTimePtr(e.ApprovedAt),
		ApprovedBy: deref(e.ApprovedBy),
	}
	if e.User != nil {
		resp.Username = e.User.Username
	}
	if e.Course != nil {
		resp.CourseName = e.Course.Name
	}
	return resp
}
