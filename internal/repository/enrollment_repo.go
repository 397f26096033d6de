package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/astro81/pathsala-backend/internal/model"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
)

// EnrollmentListFilters narrows enrollment listings.
type EnrollmentListFilters struct {
	Status   string
	CourseID string
	UserID   string
}

// EnrollmentRepository enrollment data access.
type EnrollmentRepository interface {
	Create(ctx context.Context, e *model.Enrollment) error
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	// GetByIDForUpdate locks the row for the rest of the transaction where
	// the database supports it.
	GetByIDForUpdate(ctx context.Context, id string) (*model.Enrollment, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID string) (*model.Enrollment, error)
	// Approve moves a pending enrollment to approved. It returns
	// ErrOptimisticLock when the row is no longer pending.
	Approve(ctx context.Context, id string, at time.Time, approvedBy, actorID string) error
	// Deny moves a pending enrollment to denied, with the same contract.
	Deny(ctx context.Context, id string, actorID string) error
	// Reopen moves a denied enrollment back to pending.
	Reopen(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters *EnrollmentListFilters, offset, limit int) ([]model.Enrollment, int64, error)
	ListAll(ctx context.Context, filters *EnrollmentListFilters) ([]model.Enrollment, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo creates an EnrollmentRepository.
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, e *model.Enrollment) error {
	return r.db.WithContext(ctx).Omit("User", "Course").Create(e).Error
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Where("enrollment_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("enrollment_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// transition is a compare-and-set on status.
func (r *enrollmentRepo) transition(ctx context.Context, id, from string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("enrollment_id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrOptimisticLock
	}
	return nil
}

func (r *enrollmentRepo) Approve(ctx context.Context, id string, at time.Time, approvedBy, actorID string) error {
	return r.transition(ctx, id, model.EnrollmentPending, map[string]interface{}{
		"status":      model.EnrollmentApproved,
		"approved_at": at,
		"approved_by": approvedBy,
		"updated_by":  actorOrNil(actorID),
	})
}

func (r *enrollmentRepo) Deny(ctx context.Context, id string, actorID string) error {
	return r.transition(ctx, id, model.EnrollmentPending, map[string]interface{}{
		"status":     model.EnrollmentDenied,
		"updated_by": actorOrNil(actorID),
	})
}

func (r *enrollmentRepo) Reopen(ctx context.Context, id string, at time.Time) error {
	return r.transition(ctx, id, model.EnrollmentDenied, map[string]interface{}{
		"status":     model.EnrollmentPending,
		"applied_at": at,
	})
}

func (r *enrollmentRepo) Delete(ctx context.Context, id string) error {
	return checkAffected(r.db.WithContext(ctx).Where("enrollment_id = ?", id).Delete(&model.Enrollment{}))
}

func (r *enrollmentRepo) filtered(ctx context.Context, f *EnrollmentListFilters) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Enrollment{})
	if f == nil {
		return db
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.CourseID != "" {
		db = db.Where("course_id = ?", f.CourseID)
	}
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID)
	}
	return db
}

func (r *enrollmentRepo) List(ctx context.Context, filters *EnrollmentListFilters, offset, limit int) ([]model.Enrollment, int64, error) {
	var list []model.Enrollment
	var total int64

	db := r.filtered(ctx, filters)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("User").Preload("Course").
		Order("applied_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *enrollmentRepo) ListAll(ctx context.Context, filters *EnrollmentListFilters) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.filtered(ctx, filters).
		Preload("User").Preload("Course").
		Order("applied_at ASC").
		Find(&list).Error
	return list, err
}
