package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
	"github.com/astro81/pathsala-backend/pkg/jwt"
	"github.com/astro81/pathsala-backend/pkg/response"
)

// Context keys set by JWTAuth.
const (
	CtxUserID      = "user_id"
	CtxRole        = "role"
	CtxCurrentUser = "current_user"
	CtxClaims      = "claims"
)

// Authenticator resolves a bearer token to its claims and active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*jwt.Claims, *model.User, error)
}

// JWTAuth requires a valid access token in Authorization: Bearer <token>.
// The user is loaded on every request, so deactivation takes effect
// immediately even when revocation markers are unavailable.
func JWTAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.FromError(c, apperrors.ErrUnauthenticated.WithMessage("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.FromError(c, apperrors.ErrUnauthenticated.WithMessage("malformed authorization header"))
			c.Abort()
			return
		}

		claims, user, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}

		c.Set(CtxUserID, user.UserID)
		c.Set(CtxRole, user.Role)
		c.Set(CtxCurrentUser, user)
		c.Set(CtxClaims, claims)

		c.Next()
	}
}

// RequireCapability refuses the request unless the current user's role
// holds c. Services check again; this keeps refusals out of handlers.
func RequireCapability(oracle *permission.Oracle, c permission.Capability) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := ctx.Get(CtxCurrentUser)
		u, ok := user.(*model.User)
		if !ok || u == nil {
			response.FromError(ctx, apperrors.ErrUnauthenticated)
			ctx.Abort()
			return
		}
		if !oracle.Authorize(u, c) {
			response.FromError(ctx, apperrors.ErrPermissionDenied.WithMessage("missing permission: "+string(c)))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
