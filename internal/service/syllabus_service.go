package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/repository"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
)

// SyllabusService course outline sections and their topics.
type SyllabusService interface {
	ListByCourse(ctx context.Context, courseID string) ([]dto.SyllabusResponse, error)
	Create(ctx context.Context, actor *model.User, courseID string, req *dto.SyllabusRequest) (*dto.SyllabusResponse, error)
	// Update replaces title, position and the full topic list.
	Update(ctx context.Context, actor *model.User, courseID, syllabusID string, req *dto.SyllabusRequest) (*dto.SyllabusResponse, error)
	Delete(ctx context.Context, actor *model.User, courseID, syllabusID string) error
}

type syllabusService struct {
	repo   *repository.Repository
	oracle *permission.Oracle
	logger *zap.Logger
}

// NewSyllabusService creates a SyllabusService.
func NewSyllabusService(repo *repository.Repository, oracle *permission.Oracle, logger *zap.Logger) SyllabusService {
	return &syllabusService{repo: repo, oracle: oracle, logger: logger}
}

func (s *syllabusService) ListByCourse(ctx context.Context, courseID string) ([]dto.SyllabusResponse, error) {
	ok, err := s.repo.Course.Exists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCourseNotFound
	}
	list, err := s.repo.Syllabus.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("list syllabus failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.SyllabusResponse, 0, len(list))
	for i := range list {
		out = append(out, *toSyllabusResponse(&list[i]))
	}
	return out, nil
}

func (s *syllabusService) Create(ctx context.Context, actor *model.User, courseID string, req *dto.SyllabusRequest) (*dto.SyllabusResponse, error) {
	if err := authorize(s.oracle, actor, permission.EditCourse); err != nil {
		return nil, err
	}
	topics, err := buildTopics(req.Topics, actor.UserID)
	if err != nil {
		return nil, err
	}

	syllabus := &model.CourseSyllabus{
		CourseID: courseID,
		Title:    strings.TrimSpace(req.Title),
		Position: req.Position,
		Topics:   topics,
	}
	syllabus.Stamp(actor.UserID)

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		ok, err := tx.Course.Exists(ctx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCourseNotFound
		}
		return tx.Syllabus.Create(ctx, syllabus)
	})
	if err != nil {
		return nil, s.fail("create syllabus failed", courseID, err)
	}
	return toSyllabusResponse(syllabus), nil
}

func (s *syllabusService) Update(ctx context.Context, actor *model.User, courseID, syllabusID string, req *dto.SyllabusRequest) (*dto.SyllabusResponse, error) {
	if err := authorize(s.oracle, actor, permission.EditCourse); err != nil {
		return nil, err
	}
	topics, err := buildTopics(req.Topics, actor.UserID)
	if err != nil {
		return nil, err
	}

	var syllabus *model.CourseSyllabus
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		if syllabus, err = s.scoped(ctx, tx, courseID, syllabusID); err != nil {
			return err
		}
		syllabus.Title = strings.TrimSpace(req.Title)
		syllabus.Position = req.Position
		syllabus.Touch(actor.UserID)
		if err := tx.Syllabus.Update(ctx, syllabus); err != nil {
			return err
		}
		if err := tx.Syllabus.ReplaceTopics(ctx, syllabusID, topics); err != nil {
			return err
		}
		syllabus.Topics = topics
		return nil
	})
	if err != nil {
		return nil, s.fail("update syllabus failed", syllabusID, err)
	}
	return toSyllabusResponse(syllabus), nil
}

func (s *syllabusService) Delete(ctx context.Context, actor *model.User, courseID, syllabusID string) error {
	if err := authorize(s.oracle, actor, permission.EditCourse); err != nil {
		return err
	}
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := s.scoped(ctx, tx, courseID, syllabusID); err != nil {
			return err
		}
		return tx.Syllabus.Delete(ctx, syllabusID)
	})
	if err != nil {
		return s.fail("delete syllabus failed", syllabusID, err)
	}
	return nil
}

// scoped loads a section that must belong to courseID.
func (s *syllabusService) scoped(ctx context.Context, tx *repository.Repository, courseID, syllabusID string) (*model.CourseSyllabus, error) {
	syllabus, err := tx.Syllabus.GetByID(ctx, syllabusID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSyllabusNotFound
		}
		return nil, err
	}
	if syllabus.CourseID != courseID {
		return nil, ErrSyllabusNotFound
	}
	return syllabus, nil
}

func (s *syllabusService) fail(msg, key string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case isDuplicate(err):
		return ErrSyllabusConflict
	case isNotFound(err):
		return ErrSyllabusNotFound
	}
	s.logger.Error(msg, zap.String("key", key), zap.Error(err))
	return err
}

func buildTopics(in []dto.TopicRequest, actorID string) ([]model.SyllabusTopic, error) {
	topics := make([]model.SyllabusTopic, 0, len(in))
	seen := make(map[int]bool, len(in))
	for _, t := range in {
		if seen[t.Position] {
			return nil, ErrTopicConflict.WithFields(map[string]string{"topics": "positions must be unique"})
		}
		seen[t.Position] = true
		topic := model.SyllabusTopic{Content: strings.TrimSpace(t.Content), Position: t.Position}
		topic.Stamp(actorID)
		topics = append(topics, topic)
	}
	return topics, nil
}

func toSyllabusResponse(sy *model.CourseSyllabus) *dto.SyllabusResponse {
	resp := &dto.SyllabusResponse{
		ID:       sy.SyllabusID,
		CourseID: sy.CourseID,
		Title:    sy.Title,
		Position: sy.Position,
		Topics:   make([]dto.TopicResponse, 0, len(sy.Topics)),
	}
	for _, t := range sy.Topics {
		resp.Topics = append(resp.Topics, dto.TopicResponse{ID: t.TopicID, Content: t.Content, Position: t.Position})
	}
	sort.Slice(resp.Topics, func(i, j int) bool { return resp.Topics[i].Position < resp.Topics[j].Position })
	return resp
}
