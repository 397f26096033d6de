package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/astro81/pathsala-backend/internal/api/middleware"
	"github.com/astro81/pathsala-backend/internal/model"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
	"github.com/astro81/pathsala-backend/pkg/jwt"
	"github.com/astro81/pathsala-backend/pkg/response"
	"github.com/astro81/pathsala-backend/pkg/validator"
)

// MustGetCurrentUser returns the user loaded by JWTAuth. When it is
// missing a 401 has been written and the caller should return.
func MustGetCurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(middleware.CtxCurrentUser)
	if !exists {
		response.FromError(c, apperrors.ErrUnauthenticated)
		return nil, false
	}
	u, ok := v.(*model.User)
	if !ok || u == nil {
		response.FromError(c, apperrors.ErrUnauthenticated)
		return nil, false
	}
	return u, true
}

// MustGetClaims returns the access token claims set by JWTAuth.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		response.FromError(c, apperrors.ErrUnauthenticated)
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.FromError(c, apperrors.ErrUnauthenticated)
		return nil, false
	}
	return claims, true
}

// bindJSON binds the body and writes a 400 with field errors on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.FromError(c, apperrors.Validation(validator.Fields(err)))
		return false
	}
	return true
}

// bindQuery is bindJSON for query strings.
func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		response.FromError(c, apperrors.Validation(validator.Fields(err)))
		return false
	}
	return true
}
