package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/repository"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
)

// CourseService course catalog.
type CourseService interface {
	Create(ctx context.Context, actor *model.User, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error)
	// Featured returns the best rated courses at or above the rating floor.
	Featured(ctx context.Context) ([]dto.CourseResponse, error)
	Update(ctx context.Context, actor *model.User, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	Delete(ctx context.Context, actor *model.User, id string) error

	GetDescription(ctx context.Context, courseID string) (*dto.CourseDescriptionResponse, error)
	UpsertDescription(ctx context.Context, actor *model.User, courseID string, req *dto.CourseDescriptionRequest) (*dto.CourseDescriptionResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	oracle *permission.Oracle
	logger *zap.Logger
}

// NewCourseService creates a CourseService.
func NewCourseService(repo *repository.Repository, oracle *permission.Oracle, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, oracle: oracle, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, actor *model.User, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if err := authorize(s.oracle, actor, permission.AddCourse); err != nil {
		return nil, err
	}

	curriculum, err := encodeCurriculum(req.Curriculum)
	if err != nil {
		return nil, err
	}
	duration := model.DefaultDurationWeeks
	if req.DurationWeeks != nil {
		duration = *req.DurationWeeks
	}
	if fields := checkCourseFields(duration, req.Price, req.TrainingLevel, req.ClassType); fields != nil {
		return nil, apperrors.Validation(fields)
	}

	course := &model.Course{
		Name:          strings.TrimSpace(req.Name),
		Title:         strings.TrimSpace(req.Title),
		DurationWeeks: duration,
		Price:         model.Round2(req.Price),
		TrainingLevel: req.TrainingLevel,
		ClassType:     req.ClassType,
		Overview:      req.Overview,
		Objectives:    model.JoinLines(req.Objectives),
		Prerequisites: model.JoinLines(req.Prerequisites),
		Outcomes:      model.JoinLines(req.Outcomes),
		Curriculum:    curriculum,
		OwnerID:       &actor.UserID,
	}
	course.Stamp(actor.UserID)

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		categories, err := s.resolveCategories(ctx, tx, req.CategoryIDs)
		if err != nil {
			return err
		}
		if err := tx.Course.Create(ctx, course); err != nil {
			return err
		}
		if len(categories) > 0 {
			return tx.Course.ReplaceCategories(ctx, course, categories)
		}
		return nil
	})
	if err != nil {
		return nil, s.writeError("create course failed", course.Name, err)
	}

	return s.GetByID(ctx, course.CourseID)
}

// ────────────────────── Read ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("load course failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error) {
	filters := &repository.CourseListFilters{
		Name:          req.Name,
		Title:         req.Title,
		PriceMin:      req.PriceMin,
		PriceMax:      req.PriceMax,
		DurationMin:   req.DurationMin,
		DurationMax:   req.DurationMax,
		TrainingLevel: req.TrainingLevel,
		ClassType:     req.ClassType,
		Category:      strings.TrimSpace(req.Category),
		RatingMin:     req.RatingMin,
		RatingMax:     req.RatingMax,
		Ordering:      req.Ordering,
	}
	courses, total, err := s.repo.Course.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list courses failed", zap.Error(err))
		return nil, 0, err
	}
	return toCourseResponses(courses), total, nil
}

func (s *courseService) Featured(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.Featured(ctx, model.FeaturedRatingFloor, model.FeaturedLimit)
	if err != nil {
		s.logger.Error("list featured courses failed", zap.Error(err))
		return nil, err
	}
	return toCourseResponses(courses), nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, actor *model.User, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	if err := authorize(s.oracle, actor, permission.EditCourse); err != nil {
		return nil, err
	}

	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.DurationWeeks != nil {
		course.DurationWeeks = *req.DurationWeeks
	}
	if req.Price != nil {
		course.Price = model.Round2(*req.Price)
	}
	if req.TrainingLevel != nil {
		course.TrainingLevel = *req.TrainingLevel
	}
	if req.ClassType != nil {
		course.ClassType = *req.ClassType
	}
	if req.Overview != nil {
		course.Overview = *req.Overview
	}
	if req.Objectives != nil {
		course.Objectives = model.JoinLines(*req.Objectives)
	}
	if req.Prerequisites != nil {
		course.Prerequisites = model.JoinLines(*req.Prerequisites)
	}
	if req.Outcomes != nil {
		course.Outcomes = model.JoinLines(*req.Outcomes)
	}
	if req.Curriculum != nil {
		if course.Curriculum, err = encodeCurriculum(*req.Curriculum); err != nil {
			return nil, err
		}
	}
	if fields := checkCourseFields(course.DurationWeeks, course.Price, course.TrainingLevel, course.ClassType); fields != nil {
		return nil, apperrors.Validation(fields)
	}
	course.Touch(actor.UserID)

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Course.Update(ctx, course); err != nil {
			return err
		}
		if req.CategoryIDs == nil {
			return nil
		}
		categories, err := s.resolveCategories(ctx, tx, *req.CategoryIDs)
		if err != nil {
			return err
		}
		return tx.Course.ReplaceCategories(ctx, course, categories)
	})
	if err != nil {
		return nil, s.writeError("update course failed", id, err)
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, actor *model.User, id string) error {
	if err := authorize(s.oracle, actor, permission.DeleteCourse); err != nil {
		return err
	}
	if err := s.repo.Course.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrCourseNotFound
		}
		s.logger.Error("delete course failed", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("course deleted", zap.String("id", id), zap.String("by", actor.Username))
	return nil
}

// ────────────────────── Description ──────────────────────

func (s *courseService) GetDescription(ctx context.Context, courseID string) (*dto.CourseDescriptionResponse, error) {
	desc, err := s.repo.Course.GetDescription(ctx, courseID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDescriptionNotFound
		}
		s.logger.Error("load course description failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return toDescriptionResponse(desc), nil
}

func (s *courseService) UpsertDescription(ctx context.Context, actor *model.User, courseID string, req *dto.CourseDescriptionRequest) (*dto.CourseDescriptionResponse, error) {
	if err := authorize(s.oracle, actor, permission.EditCourse); err != nil {
		return nil, err
	}
	ok, err := s.repo.Course.Exists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCourseNotFound
	}

	desc := &model.CourseDescription{
		CourseID:     courseID,
		Introduction: strings.TrimSpace(req.Introduction),
		Overview:     strings.TrimSpace(req.Overview),
		Requirements: strings.TrimSpace(req.Requirements),
		Context:      strings.TrimSpace(req.Context),
	}
	desc.Stamp(actor.UserID)
	if err := s.repo.Course.UpsertDescription(ctx, desc); err != nil {
		s.logger.Error("upsert course description failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return toDescriptionResponse(desc), nil
}

// ── helpers ──

func (s *courseService) resolveCategories(ctx context.Context, tx *repository.Repository, ids []string) ([]model.Category, error) {
	if len(ids) == 0 {
		return []model.Category{}, nil
	}
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	categories, err := tx.Category.ListByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(categories) != len(unique) {
		return nil, apperrors.Validation(map[string]string{"category_ids": "contains an unknown category"})
	}
	return categories, nil
}

func (s *courseService) writeError(msg, key string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case isDuplicate(err):
		return ErrCourseExists
	case isNotFound(err):
		return ErrCourseNotFound
	}
	s.logger.Error(msg, zap.String("course", key), zap.Error(err))
	return err
}

func checkCourseFields(duration int, price float64, level, classType string) map[string]string {
	fields := map[string]string{}
	if duration < 1 {
		fields["duration_weeks"] = "must be at least 1"
	}
	if price < 0 {
		fields["price"] = "must not be negative"
	}
	if !model.IsValidLevel(level) {
		fields["training_level"] = "must be beginner, intermediate or advanced"
	}
	if !model.IsValidClassType(classType) {
		fields["class_type"] = "must be online, offline or hybrid"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func encodeCurriculum(items []dto.CurriculumItem) (datatypes.JSON, error) {
	if items == nil {
		items = []dto.CurriculumItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, apperrors.Validation(map[string]string{"curriculum": "must be a list of sections"})
	}
	return datatypes.JSON(b), nil
}

func decodeCurriculum(raw datatypes.JSON) []dto.CurriculumItem {
	items := []dto.CurriculumItem{}
	if len(raw) == 0 {
		return items
	}
	_ = json.Unmarshal(raw, &items)
	return items
}

func toDescriptionResponse(d *model.CourseDescription) *dto.CourseDescriptionResponse {
	return &dto.CourseDescriptionResponse{
		Introduction: d.Introduction,
		Overview:     d.Overview,
		Requirements: d.Requirements,
		Context:      d.Context,
	}
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	resp := &dto.CourseResponse{
		ID:            c.CourseID,
		Name:          c.Name,
		Title:         c.Title,
		DurationWeeks: c.DurationWeeks,
		Price:         c.Price,
		TrainingLevel: c.TrainingLevel,
		ClassType:     c.ClassType,
		Overview:      c.Overview,
		Objectives:    model.SplitLines(c.Objectives),
		Prerequisites: model.SplitLines(c.Prerequisites),
		Outcomes:      model.SplitLines(c.Outcomes),
		Curriculum:    decodeCurriculum(c.Curriculum),
		AverageRating: model.Round2(c.AverageRating),
		Categories:    make([]dto.CategoryResponse, 0, len(c.Categories)),
		CreatedAt:     formatTime(c.CreatedAt),
		UpdatedAt:     formatTime(c.UpdatedAt),
	}
	if c.Owner != nil {
		resp.Owner = c.Owner.Username
	}
	for i := range c.Categories {
		resp.Categories = append(resp.Categories, *toCategoryResponse(&c.Categories[i]))
	}
	if c.Description != nil {
		resp.Description = toDescriptionResponse(c.Description)
	}
	return resp
}

func toCourseResponses(courses []model.Course) []dto.CourseResponse {
	out := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, *toCourseResponse(&courses[i]))
	}
	return out
}
