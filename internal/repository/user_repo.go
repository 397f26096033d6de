package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/astro81/pathsala-backend/internal/model"
)

// UserListFilters narrows the admin user listing.
type UserListFilters struct {
	Role     string
	IsActive *bool
	Keyword  string // username / email / name contains
	Ordering string // e.g. "-date_joined", "username"
}

// UserRepository user data access. No method writes the role column after
// creation.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	SetActive(ctx context.Context, id string, active bool, updatedBy string) error
	SetPassword(ctx context.Context, id, hash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters *UserListFilters, offset, limit int) ([]model.User, int64, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a UserRepository.
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("Student").Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile writes the editable identity fields only.
func (r *userRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	return checkAffected(r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", user.UserID).
		Select("email", "first_name", "last_name", "updated_by", "updated_at").
		Updates(map[string]interface{}{
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"updated_by": user.UpdatedBy,
			"updated_at": time.Now(),
		}))
}

func (r *userRepo) SetActive(ctx context.Context, id string, active bool, updatedBy string) error {
	return checkAffected(r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_by": actorOrNil(updatedBy),
		}))
}

func (r *userRepo) SetPassword(ctx context.Context, id, hash string) error {
	return checkAffected(r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Update("password_hash", hash))
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		UpdateColumn("last_login", at).Error
}

// Delete permanently removes the user and the rows that hang off it.
func (r *userRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&model.Enrollment{}, &model.CourseRating{}, &model.Student{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&model.Course{}).Where("owner_id = ?", id).Update("owner_id", nil).Error; err != nil {
			return err
		}
		return checkAffected(tx.Where("user_id = ?", id).Delete(&model.User{}))
	})
}

var userOrdering = map[string]string{
	"username":    "username",
	"email":       "email",
	"role":        "role",
	"date_joined": "date_joined",
	"last_login":  "last_login",
}

func (r *userRepo) List(ctx context.Context, filters *UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})

	order := "date_joined DESC"
	if filters != nil {
		if filters.Role != "" {
			db = db.Where("role = ?", filters.Role)
		}
		if filters.IsActive != nil {
			db = db.Where("is_active = ?", *filters.IsActive)
		}
		if filters.Keyword != "" {
			p := likePattern(filters.Keyword)
			db = db.Where(likeExpr("username")+" OR "+likeExpr("email")+" OR "+likeExpr("first_name")+" OR "+likeExpr("last_name"), p, p, p, p)
		}
		order = orderClause(filters.Ordering, userOrdering, order)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Student").
		Order(order).
		Offset(offset).Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
