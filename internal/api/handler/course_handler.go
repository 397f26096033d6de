package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/service"
	"github.com/astro81/pathsala-backend/pkg/response"
)

// CourseHandler course and course description endpoints.
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler creates a CourseHandler.
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses public listing with filters.
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req dto.CourseListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.courseSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// FeaturedCourses
// GET /api/v1/courses/featured
func (h *CourseHandler) FeaturedCourses(c *gin.Context) {
	list, err := h.courseSvc.Featured(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetCourse
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, course)
}

// CreateCourse
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, course)
}

// UpdateCourse partial update.
// PATCH /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, course)
}

// DeleteCourse
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetDescription
// GET /api/v1/courses/:id/description
func (h *CourseHandler) GetDescription(c *gin.Context) {
	desc, err := h.courseSvc.GetDescription(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, desc)
}

// UpsertDescription
// PUT /api/v1/courses/:id/description
func (h *CourseHandler) UpsertDescription(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.CourseDescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	desc, err := h.courseSvc.UpsertDescription(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, desc)
}
