package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/astro81/pathsala-backend/pkg/response"
)

// ErrorDetails lets internal error text reach clients. Enable in debug mode only.
func ErrorDetails(expose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expose {
			c.Set(response.ExposeErrorsKey, true)
		}
		c.Next()
	}
}
