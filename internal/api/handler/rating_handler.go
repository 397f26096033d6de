package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/service"
	"github.com/astro81/pathsala-backend/pkg/response"
)

// RatingHandler course rating endpoints.
type RatingHandler struct {
	ratingSvc service.RatingService
}

// NewRatingHandler creates a RatingHandler.
func NewRatingHandler(ratingSvc service.RatingService) *RatingHandler {
	return &RatingHandler{ratingSvc: ratingSvc}
}

// ListRatings
// GET /api/v1/courses/:id/ratings
func (h *RatingHandler) ListRatings(c *gin.Context) {
	var page dto.PaginationRequest
	if !bindQuery(c, &page) {
		return
	}

	list, total, err := h.ratingSvc.ListByCourse(c.Request.Context(), c.Param("id"), &page)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// RateCourse
// POST /api/v1/courses/:id/ratings
func (h *RatingHandler) RateCourse(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.RatingRequest
	if !bindJSON(c, &req) {
		return
	}

	rating, err := h.ratingSvc.Rate(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, rating)
}

// MyRating reports whether the caller has rated the course.
// GET /api/v1/courses/:id/ratings/mine
func (h *RatingHandler) MyRating(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	rated, err := h.ratingSvc.Mine(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, rated)
}

// UpdateRating
// PUT /api/v1/ratings/:id
func (h *RatingHandler) UpdateRating(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.RatingRequest
	if !bindJSON(c, &req) {
		return
	}

	rating, err := h.ratingSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, rating)
}

// DeleteRating
// DELETE /api/v1/ratings/:id
func (h *RatingHandler) DeleteRating(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	if err := h.ratingSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}
