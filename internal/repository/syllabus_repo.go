package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/astro81/pathsala-backend/internal/model"
)

// SyllabusRepository course syllabus data access.
type SyllabusRepository interface {
	Create(ctx context.Context, syllabus *model.CourseSyllabus) error
	GetByID(ctx context.Context, id string) (*model.CourseSyllabus, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.CourseSyllabus, error)
	Update(ctx context.Context, syllabus *model.CourseSyllabus) error
	ReplaceTopics(ctx context.Context, syllabusID string, topics []model.SyllabusTopic) error
	Delete(ctx context.Context, id string) error
}

type syllabusRepo struct {
	db *gorm.DB
}

// NewSyllabusRepo creates a SyllabusRepository.
func NewSyllabusRepo(db *gorm.DB) SyllabusRepository {
	return &syllabusRepo{db: db}
}

func orderedTopics(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

// Create inserts the section together with its topics.
func (r *syllabusRepo) Create(ctx context.Context, syllabus *model.CourseSyllabus) error {
	return r.db.WithContext(ctx).Create(syllabus).Error
}

func (r *syllabusRepo) GetByID(ctx context.Context, id string) (*model.CourseSyllabus, error) {
	var s model.CourseSyllabus
	err := r.db.WithContext(ctx).
		Preload("Topics", orderedTopics).
		Where("syllabus_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *syllabusRepo) ListByCourse(ctx context.Context, courseID string) ([]model.CourseSyllabus, error) {
	var list []model.CourseSyllabus
	err := r.db.WithContext(ctx).
		Preload("Topics", orderedTopics).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&list).Error
	return list, err
}

func (r *syllabusRepo) Update(ctx context.Context, syllabus *model.CourseSyllabus) error {
	return checkAffected(r.db.WithContext(ctx).
		Model(&model.CourseSyllabus{}).
		Where("syllabus_id = ?", syllabus.SyllabusID).
		Updates(map[string]interface{}{
			"title":      syllabus.Title,
			"position":   syllabus.Position,
			"updated_by": syllabus.UpdatedBy,
		}))
}

func (r *syllabusRepo) ReplaceTopics(ctx context.Context, syllabusID string, topics []model.SyllabusTopic) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("syllabus_id = ?", syllabusID).Delete(&model.SyllabusTopic{}).Error; err != nil {
			return err
		}
		if len(topics) == 0 {
			return nil
		}
		for i := range topics {
			topics[i].SyllabusID = syllabusID
		}
		return tx.Create(&topics).Error
	})
}

func (r *syllabusRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("syllabus_id = ?", id).Delete(&model.SyllabusTopic{}).Error; err != nil {
			return err
		}
		return checkAffected(tx.Where("syllabus_id = ?", id).Delete(&model.CourseSyllabus{}))
	})
}
