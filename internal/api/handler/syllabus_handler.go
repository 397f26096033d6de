package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/service"
	"github.com/astro81/pathsala-backend/pkg/response"
)

// SyllabusHandler course syllabus endpoints. Sections are addressed
// through their course.
type SyllabusHandler struct {
	syllabusSvc service.SyllabusService
}

// NewSyllabusHandler creates a SyllabusHandler.
func NewSyllabusHandler(syllabusSvc service.SyllabusService) *SyllabusHandler {
	return &SyllabusHandler{syllabusSvc: syllabusSvc}
}

// ListSyllabus
// GET /api/v1/courses/:id/syllabus
func (h *SyllabusHandler) ListSyllabus(c *gin.Context) {
	list, err := h.syllabusSvc.ListByCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateSection
// POST /api/v1/courses/:id/syllabus
func (h *SyllabusHandler) CreateSection(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.SyllabusRequest
	if !bindJSON(c, &req) {
		return
	}

	section, err := h.syllabusSvc.Create(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, section)
}

// UpdateSection replaces a section and its topics.
// PUT /api/v1/courses/:id/syllabus/:sid
func (h *SyllabusHandler) UpdateSection(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.SyllabusRequest
	if !bindJSON(c, &req) {
		return
	}

	section, err := h.syllabusSvc.Update(c.Request.Context(), actor, c.Param("id"), c.Param("sid"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, section)
}

// DeleteSection
// DELETE /api/v1/courses/:id/syllabus/:sid
func (h *SyllabusHandler) DeleteSection(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	if err := h.syllabusSvc.Delete(c.Request.Context(), actor, c.Param("id"), c.Param("sid")); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}
