package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/service"
	"github.com/astro81/pathsala-backend/pkg/response"
)

// EnrollmentHandler enrollment lifecycle endpoints.
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler creates an EnrollmentHandler.
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// Apply a student applies to a course.
// POST /api/v1/enrollments
func (h *EnrollmentHandler) Apply(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.ApplyEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}

	e, err := h.enrollmentSvc.Apply(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, e)
}

// ListEnrollments staff listing.
// GET /api/v1/enrollments
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.EnrollmentListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.enrollmentSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// MyEnrollments
// GET /api/v1/enrollments/mine
func (h *EnrollmentHandler) MyEnrollments(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.EnrollmentListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.enrollmentSvc.Mine(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetEnrollment owner or staff.
// GET /api/v1/enrollments/:id
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	e, err := h.enrollmentSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, e)
}

// PatchEnrollment decides a pending enrollment: {"status": "approved"|"denied"}.
// PATCH /api/v1/enrollments/:id
func (h *EnrollmentHandler) PatchEnrollment(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.PatchEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}

	e, err := h.enrollmentSvc.Patch(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, e)
}

// Approve
// POST /api/v1/enrollments/:id/approve
func (h *EnrollmentHandler) Approve(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	e, err := h.enrollmentSvc.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, e)
}

// Deny
// POST /api/v1/enrollments/:id/deny
func (h *EnrollmentHandler) Deny(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	e, err := h.enrollmentSvc.Deny(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, e)
}

// DeleteEnrollment
// DELETE /api/v1/enrollments/:id
func (h *EnrollmentHandler) DeleteEnrollment(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	if err := h.enrollmentSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}
