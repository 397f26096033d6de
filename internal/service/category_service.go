package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/repository"
)

// CategoryService course categories. Names are stored trimmed.
type CategoryService interface {
	Create(ctx context.Context, actor *model.User, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error)
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Update(ctx context.Context, actor *model.User, id string, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, actor *model.User, id string) error
}

type categoryService struct {
	repo   *repository.Repository
	oracle *permission.Oracle
	logger *zap.Logger
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(repo *repository.Repository, oracle *permission.Oracle, logger *zap.Logger) CategoryService {
	return &categoryService{repo: repo, oracle: oracle, logger: logger}
}

func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrCategoryBlank.WithFields(map[string]string{"name": "must not be blank"})
	}
	return name, nil
}

func (s *categoryService) Create(ctx context.Context, actor *model.User, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if err := authorize(s.oracle, actor, permission.AddCategory); err != nil {
		return nil, err
	}
	name, err := normalizeCategoryName(req.Name)
	if err != nil {
		return nil, err
	}

	category := &model.Category{Name: name}
	category.Stamp(actor.UserID)
	if err := s.repo.Category.Create(ctx, category); err != nil {
		if isDuplicate(err) {
			return nil, ErrCategoryExists
		}
		s.logger.Error("create category failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return toCategoryResponse(category), nil
}

func (s *categoryService) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	category, err := s.repo.Category.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCategoryNotFound
		}
		s.logger.Error("load category failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCategoryResponse(category), nil
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.Category.List(ctx)
	if err != nil {
		s.logger.Error("list categories failed", zap.Error(err))
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, *toCategoryResponse(&categories[i]))
	}
	return out, nil
}

func (s *categoryService) Update(ctx context.Context, actor *model.User, id string, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if err := authorize(s.oracle, actor, permission.EditCategory); err != nil {
		return nil, err
	}
	name, err := normalizeCategoryName(req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Category.Rename(ctx, id, name, actor.UserID); err != nil {
		switch {
		case isNotFound(err):
			return nil, ErrCategoryNotFound
		case isDuplicate(err):
			return nil, ErrCategoryExists
		}
		s.logger.Error("rename category failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &dto.CategoryResponse{ID: id, Name: name}, nil
}

func (s *categoryService) Delete(ctx context.Context, actor *model.User, id string) error {
	if err := authorize(s.oracle, actor, permission.DeleteCategory); err != nil {
		return err
	}
	if err := s.repo.Category.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrCategoryNotFound
		}
		s.logger.Error("delete category failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toCategoryResponse(c *model.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{ID: c.CategoryID, Name: c.Name}
}
