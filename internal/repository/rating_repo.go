package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/astro81/pathsala-backend/internal/model"
)

// RatingRepository course rating data access.
type RatingRepository interface {
	Create(ctx context.Context, rating *model.CourseRating) error
	GetByID(ctx context.Context, id string) (*model.CourseRating, error)
	GetByCourseAndUser(ctx context.Context, courseID, userID string) (*model.CourseRating, error)
	Update(ctx context.Context, rating *model.CourseRating) error
	Delete(ctx context.Context, id string) error
	ListByCourse(ctx context.Context, courseID string, offset, limit int) ([]model.CourseRating, int64, error)
	// Average is 0 when the course has no ratings.
	Average(ctx context.Context, courseID string) (float64, error)
}

type ratingRepo struct {
	db *gorm.DB
}

// NewRatingRepo creates a RatingRepository.
func NewRatingRepo(db *gorm.DB) RatingRepository {
	return &ratingRepo{db: db}
}

func (r *ratingRepo) Create(ctx context.Context, rating *model.CourseRating) error {
	return r.db.WithContext(ctx).Omit("User").Create(rating).Error
}

func (r *ratingRepo) GetByID(ctx context.Context, id string) (*model.CourseRating, error) {
	var cr model.CourseRating
	if err := r.db.WithContext(ctx).Where("rating_id = ?", id).First(&cr).Error; err != nil {
		return nil, err
	}
	return &cr, nil
}

func (r *ratingRepo) GetByCourseAndUser(ctx context.Context, courseID, userID string) (*model.CourseRating, error) {
	var cr model.CourseRating
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&cr).Error
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

func (r *ratingRepo) Update(ctx context.Context, rating *model.CourseRating) error {
	return checkAffected(r.db.WithContext(ctx).
		Model(&model.CourseRating{}).
		Where("rating_id = ?", rating.RatingID).
		Updates(map[string]interface{}{
			"rating":     rating.Rating,
			"review":     rating.Review,
			"updated_by": rating.UpdatedBy,
		}))
}

func (r *ratingRepo) Delete(ctx context.Context, id string) error {
	return checkAffected(r.db.WithContext(ctx).Where("rating_id = ?", id).Delete(&model.CourseRating{}))
}

func (r *ratingRepo) ListByCourse(ctx context.Context, courseID string, offset, limit int) ([]model.CourseRating, int64, error) {
	var ratings []model.CourseRating
	var total int64

	db := r.db.WithContext(ctx).Model(&model.CourseRating{}).Where("course_id = ?", courseID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&ratings).Error
	return ratings, total, err
}

func (r *ratingRepo) Average(ctx context.Context, courseID string) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).
		Model(&model.CourseRating{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("course_id = ?", courseID).
		Row().Scan(&avg)
	return avg, err
}
