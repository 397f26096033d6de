package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/astro81/pathsala-backend/internal/model"
)

// CategoryRepository category data access.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Rename(ctx context.Context, id, name, updatedBy string) error
	Delete(ctx context.Context, id string) error
}

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo creates a CategoryRepository.
func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Where("category_id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Category, error) {
	var cats []model.Category
	if len(ids) == 0 {
		return cats, nil
	}
	err := r.db.WithContext(ctx).
		Where("category_id IN ?", ids).
		Order("name ASC").
		Find(&cats).Error
	return cats, err
}

func (r *categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&cats).Error
	return cats, err
}

func (r *categoryRepo) Rename(ctx context.Context, id, name, updatedBy string) error {
	return checkAffected(r.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("category_id = ?", id).
		Updates(map[string]interface{}{
			"name":       name,
			"updated_by": actorOrNil(updatedBy),
		}))
}

// Delete removes the category and detaches it from courses.
func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM course_categories WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		return checkAffected(tx.Where("category_id = ?", id).Delete(&model.Category{}))
	})
}
