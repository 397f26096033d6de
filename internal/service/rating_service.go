package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/repository"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
)

// RatingService course ratings. Every write recomputes the course's
// average rating in the same transaction.
type RatingService interface {
	Rate(ctx context.Context, actor *model.User, courseID string, req *dto.RatingRequest) (*dto.RatingResponse, error)
	Update(ctx context.Context, actor *model.User, ratingID string, req *dto.RatingRequest) (*dto.RatingResponse, error)
	Delete(ctx context.Context, actor *model.User, ratingID string) error
	// Mine reports whether the actor has rated the course.
	Mine(ctx context.Context, actor *model.User, courseID string) (*dto.RatedResponse, error)
	ListByCourse(ctx context.Context, courseID string, page *dto.PaginationRequest) ([]dto.RatingResponse, int64, error)
}

type ratingService struct {
	repo   *repository.Repository
	oracle *permission.Oracle
	logger *zap.Logger
}

// NewRatingService creates a RatingService.
func NewRatingService(repo *repository.Repository, oracle *permission.Oracle, logger *zap.Logger) RatingService {
	return &ratingService{repo: repo, oracle: oracle, logger: logger}
}

func checkRating(req *dto.RatingRequest) (float64, error) {
	if req.Rating == nil {
		return 0, apperrors.Validation(map[string]string{"rating": "is required"})
	}
	v := model.Round2(*req.Rating)
	if v < model.MinRating || v > model.MaxRating {
		return 0, ErrRatingRange.WithFields(map[string]string{"rating": "must be between 0 and 5"})
	}
	return v, nil
}

// recomputeAverage must run inside the writing transaction.
func recomputeAverage(ctx context.Context, tx *repository.Repository, courseID string) error {
	avg, err := tx.Rating.Average(ctx, courseID)
	if err != nil {
		return err
	}
	return tx.Course.SetAverageRating(ctx, courseID, model.Round2(avg))
}

func (s *ratingService) Rate(ctx context.Context, actor *model.User, courseID string, req *dto.RatingRequest) (*dto.RatingResponse, error) {
	if err := authorize(s.oracle, actor, permission.RateCourse); err != nil {
		return nil, err
	}
	value, err := checkRating(req)
	if err != nil {
		return nil, err
	}

	rating := &model.CourseRating{
		CourseID: courseID,
		UserID:   actor.UserID,
		Rating:   value,
		Review:   strings.TrimSpace(req.Review),
	}
	rating.Stamp(actor.UserID)

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		ok, err := tx.Course.Exists(ctx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCourseNotFound
		}
		if err := tx.Rating.Create(ctx, rating); err != nil {
			if isDuplicate(err) {
				return ErrAlreadyRated
			}
			return err
		}
		return recomputeAverage(ctx, tx, courseID)
	})
	if err != nil {
		return nil, s.fail("rate course failed", courseID, err)
	}

	rating.User = actor
	return toRatingResponse(rating), nil
}

func (s *ratingService) Update(ctx context.Context, actor *model.User, ratingID string, req *dto.RatingRequest) (*dto.RatingResponse, error) {
	if err := authorize(s.oracle, actor, permission.RateCourse); err != nil {
		return nil, err
	}
	value, err := checkRating(req)
	if err != nil {
		return nil, err
	}

	var rating *model.CourseRating
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		if rating, err = s.ownRating(ctx, tx, actor, ratingID); err != nil {
			return err
		}
		rating.Rating = value
		rating.Review = strings.TrimSpace(req.Review)
		rating.Touch(actor.UserID)
		if err := tx.Rating.Update(ctx, rating); err != nil {
			return err
		}
		return recomputeAverage(ctx, tx, rating.CourseID)
	})
	if err != nil {
		return nil, s.fail("update rating failed", ratingID, err)
	}

	rating.User = actor
	return toRatingResponse(rating), nil
}

func (s *ratingService) Delete(ctx context.Context, actor *model.User, ratingID string) error {
	if err := authorize(s.oracle, actor, permission.RateCourse); err != nil {
		return err
	}
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		rating, err := s.ownRating(ctx, tx, actor, ratingID)
		if err != nil {
			return err
		}
		if err := tx.Rating.Delete(ctx, rating.RatingID); err != nil {
			return err
		}
		return recomputeAverage(ctx, tx, rating.CourseID)
	})
	if err != nil {
		return s.fail("delete rating failed", ratingID, err)
	}
	return nil
}

func (s *ratingService) Mine(ctx context.Context, actor *model.User, courseID string) (*dto.RatedResponse, error) {
	if actor == nil {
		return nil, ErrTokenInvalid
	}
	rating, err := s.repo.Rating.GetByCourseAndUser(ctx, courseID, actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return &dto.RatedResponse{Rated: false}, nil
		}
		s.logger.Error("load rating failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	rating.User = actor
	return &dto.RatedResponse{Rated: true, Rating: toRatingResponse(rating)}, nil
}

func (s *ratingService) ListByCourse(ctx context.Context, courseID string, page *dto.PaginationRequest) ([]dto.RatingResponse, int64, error) {
	ok, err := s.repo.Course.Exists(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrCourseNotFound
	}
	ratings, total, err := s.repo.Rating.ListByCourse(ctx, courseID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("list ratings failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.RatingResponse, 0, len(ratings))
	for i := range ratings {
		out = append(out, *toRatingResponse(&ratings[i]))
	}
	return out, total, nil
}

// ownRating loads a rating that must belong to actor.
func (s *ratingService) ownRating(ctx context.Context, tx *repository.Repository, actor *model.User, ratingID string) (*model.CourseRating, error) {
	rating, err := tx.Rating.GetByID(ctx, ratingID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	if rating.UserID != actor.UserID {
		return nil, apperrors.ErrPermissionDenied.WithMessage("you can only change your own rating")
	}
	return rating, nil
}

func (s *ratingService) fail(msg, key string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	if isNotFound(err) {
		return ErrCourseNotFound
	}
	s.logger.Error(msg, zap.String("key", key), zap.Error(err))
	return err
}

func toRatingResponse(r *model.CourseRating) *dto.RatingResponse {
	resp := &dto.RatingResponse{
		ID:        r.RatingID,
		CourseID:  r.CourseID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Review:    r.Review,
		CreatedAt: formatTime(r.CreatedAt),
	}
	if r.User != nil {
		resp.Username = r.User.Username
	}
	return resp
}
