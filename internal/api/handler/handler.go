package handler

import "github.com/astro81/pathsala-backend/internal/service"

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Category   *CategoryHandler
	Course     *CourseHandler
	Rating     *RatingHandler
	Syllabus   *SyllabusHandler
	Enrollment *EnrollmentHandler
	Export     *ExportHandler
}

// NewHandler builds the handlers over the service aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Category:   NewCategoryHandler(svc.Category),
		Course:     NewCourseHandler(svc.Course),
		Rating:     NewRatingHandler(svc.Rating),
		Syllabus:   NewSyllabusHandler(svc.Syllabus),
		Enrollment: NewEnrollmentHandler(svc.Enrollment),
		Export:     NewExportHandler(svc.Export),
	}
}
