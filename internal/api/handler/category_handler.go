package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/service"
	"github.com/astro81/pathsala-backend/pkg/response"
)

// CategoryHandler course category endpoints.
type CategoryHandler struct {
	categorySvc service.CategoryService
}

// NewCategoryHandler creates a CategoryHandler.
func NewCategoryHandler(categorySvc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categorySvc: categorySvc}
}

// ListCategories
// GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	list, err := h.categorySvc.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetCategory
// GET /api/v1/categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.categorySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, category)
}

// CreateCategory
// POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categorySvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, category)
}

// UpdateCategory renames a category.
// PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categorySvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, category)
}

// DeleteCategory
// DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	if err := h.categorySvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}
