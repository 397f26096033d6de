package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/astro81/pathsala-backend/internal/model"
)

// CourseListFilters narrows the public course listing. Zero values do not
// filter.
type CourseListFilters struct {
	Name          string
	Title         string
	PriceMin      *float64
	PriceMax      *float64
	DurationMin   *int
	DurationMax   *int
	TrainingLevel string
	ClassType     string
	Category      string // category name, exact
	RatingMin     *float64
	RatingMax     *float64
	Ordering      string
}

// CourseRepository course data access, including the 1:1 description.
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetByName(ctx context.Context, name string) (*model.Course, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, course *model.Course) error
	ReplaceCategories(ctx context.Context, course *model.Course, categories []model.Category) error
	SetAverageRating(ctx context.Context, id string, avg float64) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters *CourseListFilters, offset, limit int) ([]model.Course, int64, error)
	Featured(ctx context.Context, floor float64, limit int) ([]model.Course, error)

	GetDescription(ctx context.Context, courseID string) (*model.CourseDescription, error)
	UpsertDescription(ctx context.Context, desc *model.CourseDescription) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo creates a CourseRepository.
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).
		Omit("Owner", "Description", "Categories.*").
		Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Owner").
		Preload("Description").
		Where("course_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) GetByName(ctx context.Context, name string) (*model.Course, error) {
	var c model.Course
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Course{}).Where("course_id = ?", id).Count(&n).Error
	return n > 0, err
}

// Update writes the editable columns. average_rating and owner_id are
// maintained elsewhere.
func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return checkAffected(r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ?", course.CourseID).
		Select("name", "title", "duration_weeks", "price", "training_level", "class_type",
			"overview", "objectives", "prerequisites", "outcomes", "curriculum", "updated_by", "updated_at").
		Updates(course))
}

func (r *courseRepo) ReplaceCategories(ctx context.Context, course *model.Course, categories []model.Category) error {
	return r.db.WithContext(ctx).
		Model(course).
		Association("Categories").
		Replace(categories)
}

func (r *courseRepo) SetAverageRating(ctx context.Context, id string, avg float64) error {
	return checkAffected(r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ?", id).
		UpdateColumn("average_rating", avg))
}

// Delete removes the course with everything scoped to it.
func (r *courseRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stmts := []string{
			"DELETE FROM course_categories WHERE course_id = ?",
			"DELETE FROM syllabus_topics WHERE syllabus_id IN (SELECT syllabus_id FROM course_syllabi WHERE course_id = ?)",
			"DELETE FROM course_syllabi WHERE course_id = ?",
			"DELETE FROM course_ratings WHERE course_id = ?",
			"DELETE FROM course_descriptions WHERE course_id = ?",
			"DELETE FROM enrollments WHERE course_id = ?",
		}
		for _, s := range stmts {
			if err := tx.Exec(s, id).Error; err != nil {
				return err
			}
		}
		return checkAffected(tx.Where("course_id = ?", id).Delete(&model.Course{}))
	})
}

var courseOrdering = map[string]string{
	"name":           "courses.name",
	"price":          "courses.price",
	"duration_weeks": "courses.duration_weeks",
	"training_level": "courses.training_level",
	"average_rating": "courses.average_rating",
	"created_at":     "courses.created_at",
}

func (r *courseRepo) List(ctx context.Context, filters *CourseListFilters, offset, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Course{})

	order := "courses.created_at DESC"
	if f := filters; f != nil {
		if f.Name != "" {
			db = db.Where(likeExpr("courses.name"), likePattern(f.Name))
		}
		if f.Title != "" {
			db = db.Where(likeExpr("courses.title"), likePattern(f.Title))
		}
		if f.PriceMin != nil {
			db = db.Where("courses.price >= ?", *f.PriceMin)
		}
		if f.PriceMax != nil {
			db = db.Where("courses.price <= ?", *f.PriceMax)
		}
		if f.DurationMin != nil {
			db = db.Where("courses.duration_weeks >= ?", *f.DurationMin)
		}
		if f.DurationMax != nil {
			db = db.Where("courses.duration_weeks <= ?", *f.DurationMax)
		}
		if f.TrainingLevel != "" {
			db = db.Where("courses.training_level = ?", f.TrainingLevel)
		}
		if f.ClassType != "" {
			db = db.Where("courses.class_type = ?", f.ClassType)
		}
		if f.Category != "" {
			db = db.Where("courses.course_id IN (?)",
				r.db.Table("course_categories").
					Select("course_categories.course_id").
					Joins("JOIN categories ON categories.category_id = course_categories.category_id").
					Where("categories.name = ?", f.Category))
		}
		if f.RatingMin != nil {
			db = db.Where("courses.average_rating >= ?", *f.RatingMin)
		}
		if f.RatingMax != nil {
			db = db.Where("courses.average_rating <= ?", *f.RatingMax)
		}
		order = orderClause(f.Ordering, courseOrdering, order)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Order(order).
		Offset(offset).Limit(limit).
		Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

func (r *courseRepo) Featured(ctx context.Context, floor float64, limit int) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Where("average_rating >= ?", floor).
		Order("average_rating DESC").Order("name ASC").
		Limit(limit).
		Find(&courses).Error
	return courses, err
}

// ── description ──

func (r *courseRepo) GetDescription(ctx context.Context, courseID string) (*model.CourseDescription, error) {
	var d model.CourseDescription
	if err := r.db.WithContext(ctx).Where("course_id = ?", courseID).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *courseRepo) UpsertDescription(ctx context.Context, desc *model.CourseDescription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"introduction", "overview", "requirements", "context", "updated_by", "updated_at"}),
		}).
		Create(desc).Error
}
