package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/service"
	"github.com/astro81/pathsala-backend/pkg/response"
)

// AuthHandler authentication and registration endpoints.
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}

// RefreshToken exchanges a refresh token for a new pair.
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout revokes the current access token and an optional refresh token.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	var req dto.LogoutRequest
	// the body is optional
	_ = c.ShouldBindJSON(&req)

	if err := h.authSvc.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// LogoutAll revokes every session of the current user.
// POST /api/v1/auth/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	user, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.LogoutAll(c.Request.Context(), user, claims); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// Register public student sign-up.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authSvc.RegisterStudent(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, user)
}

// RegisterModerator admin-only moderator creation.
// POST /api/v1/auth/register/moderator
func (h *AuthHandler) RegisterModerator(c *gin.Context) {
	actor, ok := MustGetCurrentUser(c)
	if !ok {
		return
	}
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authSvc.RegisterModerator(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, user)
}
