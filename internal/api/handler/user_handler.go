package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/service"
	"github.com/astro81/pathsala-backend/pkg/response"
)

// UserHandler profile and account administration endpoints.
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// GetCurrentUser
// GET /api/v1/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Me(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateCurrentUser updates the caller's profile and student contact.
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateCurrentUser(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userSvc.UpdateProfile(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, user)
}

// DeactivateSelf
// POST /api/v1/users/me/deactivate
func (h *UserHandler) DeactivateSelf(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.SelfDeactivateRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userSvc.SelfDeactivate(c.Request.Context(), actor, &req); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListUsers
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.UserListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.userSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetUser
// GET /api/v1/users/:username
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByUsername(c.Request.Context(), actor, c.Param("username"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, user)
}

// ChangeRole is exposed so the refusal is explicit; roles never change.
// PUT /api/v1/users/:username/role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userSvc.ChangeRole(c.Request.Context(), actor, c.Param("username"), req.Role); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeactivateUser
// POST /api/v1/users/:username/deactivate
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.AdminDeactivateRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userSvc.Deactivate(c.Request.Context(), actor, c.Param("username"), &req); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// ReactivateUser
// POST /api/v1/users/:username/reactivate
func (h *UserHandler) ReactivateUser(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}

	if err := h.userSvc.Reactivate(c.Request.Context(), actor, c.Param("username")); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}
