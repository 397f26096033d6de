package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/astro81/pathsala-backend/internal/model"
)

// StudentRepository student profile data access.
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByUserID(ctx context.Context, userID string) (*model.Student, error)
	UpdateContact(ctx context.Context, student *model.Student) error
	// SetApproved returns gorm.ErrRecordNotFound when no profile exists.
	SetApproved(ctx context.Context, userID string, approved bool) error
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo creates a StudentRepository.
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID string) (*model.Student, error) {
	var s model.Student
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) UpdateContact(ctx context.Context, student *model.Student) error {
	return checkAffected(r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("user_id = ?", student.UserID).
		Updates(map[string]interface{}{
			"address":    student.Address,
			"phone_no":   student.PhoneNo,
			"updated_by": student.UpdatedBy,
		}))
}

func (r *studentRepo) SetApproved(ctx context.Context, userID string, approved bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("user_id = ?", userID).
		Update("is_approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// already in the requested state counts as present
		var n int64
		if err := r.db.WithContext(ctx).Model(&model.Student{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
