package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/astro81/pathsala-backend/config"
	"github.com/astro81/pathsala-backend/internal/api/handler"
	"github.com/astro81/pathsala-backend/internal/api/middleware"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/pkg/database"
	"github.com/astro81/pathsala-backend/pkg/metrics"
)

const readyTimeout = 2 * time.Second

// Pinger is a dependency the readiness probe checks; *redis.Client
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps collects what the routes need besides the handlers.
type Deps struct {
	Auth    middleware.Authenticator
	Oracle  *permission.Oracle
	DB      *sql.DB
	Redis   Pinger                 // nil when redis is not configured
	Limiter middleware.RateLimiter // nil disables rate limiting
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Setup builds the gin engine.
func Setup(cfg *config.Config, h *handler.Handler, d Deps) *gin.Engine {
	if cfg.Server.Debug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	r.Use(middleware.ErrorDetails(cfg.Server.Debug()))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}

	// ── probes ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", readiness(d))
	if cfg.Metrics.Enabled && d.Metrics != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(d.Metrics.Handler()))
	}

	can := func(c permission.Capability) gin.HandlerFunc {
		return middleware.RequireCapability(d.Oracle, c)
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// public auth
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(d.Limiter, cfg.Server.LoginRate, cfg.Server.LoginWindow), h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// public catalog
		v1.GET("/categories", h.Category.ListCategories)
		v1.GET("/categories/:id", h.Category.GetCategory)
		v1.GET("/courses", h.Course.ListCourses)
		v1.GET("/courses/featured", h.Course.FeaturedCourses)
		v1.GET("/courses/:id", h.Course.GetCourse)
		v1.GET("/courses/:id/description", h.Course.GetDescription)
		v1.GET("/courses/:id/ratings", h.Rating.ListRatings)
		v1.GET("/courses/:id/syllabus", h.Syllabus.ListSyllabus)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(d.Auth))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.POST("/auth/logout-all", h.Auth.LogoutAll)
			authorized.POST("/auth/register/moderator", can(permission.ManageUsers), h.Auth.RegisterModerator)

			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.PATCH("/me", h.User.UpdateCurrentUser)
				users.POST("/me/deactivate", h.User.DeactivateSelf)
				users.GET("", can(permission.ManageUsers), h.User.ListUsers)
				users.GET("/:username", can(permission.ManageUsers), h.User.GetUser)
				users.PUT("/:username/role", can(permission.ManageUsers), h.User.ChangeRole)
				users.POST("/:username/deactivate", can(permission.ManageUsers), h.User.DeactivateUser)
				users.POST("/:username/reactivate", can(permission.ManageUsers), h.User.ReactivateUser)
			}

			categories := authorized.Group("/categories")
			{
				categories.POST("", can(permission.AddCategory), h.Category.CreateCategory)
				categories.PUT("/:id", can(permission.EditCategory), h.Category.UpdateCategory)
				categories.DELETE("/:id", can(permission.DeleteCategory), h.Category.DeleteCategory)
			}

			courses := authorized.Group("/courses")
			{
				courses.POST("", can(permission.AddCourse), h.Course.CreateCourse)
				courses.PATCH("/:id", can(permission.EditCourse), h.Course.UpdateCourse)
				courses.DELETE("/:id", can(permission.DeleteCourse), h.Course.DeleteCourse)
				courses.PUT("/:id/description", can(permission.EditCourse), h.Course.UpsertDescription)

				courses.POST("/:id/ratings", can(permission.RateCourse), h.Rating.RateCourse)
				courses.GET("/:id/ratings/mine", h.Rating.MyRating)

				courses.POST("/:id/syllabus", can(permission.EditCourse), h.Syllabus.CreateSection)
				courses.PUT("/:id/syllabus/:sid", can(permission.EditCourse), h.Syllabus.UpdateSection)
				courses.DELETE("/:id/syllabus/:sid", can(permission.EditCourse), h.Syllabus.DeleteSection)
			}

			ratings := authorized.Group("/ratings")
			{
				ratings.PUT("/:id", can(permission.RateCourse), h.Rating.UpdateRating)
				ratings.DELETE("/:id", can(permission.RateCourse), h.Rating.DeleteRating)
			}

			enrollments := authorized.Group("/enrollments")
			{
				enrollments.POST("", can(permission.ApplyEnrollment), h.Enrollment.Apply)
				enrollments.GET("", can(permission.ViewEnrollment), h.Enrollment.ListEnrollments)
				enrollments.GET("/mine", h.Enrollment.MyEnrollments)
				enrollments.GET("/:id", h.Enrollment.GetEnrollment) // owner or view_enrollment, checked in the service
				enrollments.PATCH("/:id", can(permission.EditEnrollment), h.Enrollment.PatchEnrollment)
				enrollments.POST("/:id/approve", can(permission.EditEnrollment), h.Enrollment.Approve)
				enrollments.POST("/:id/deny", can(permission.EditEnrollment), h.Enrollment.Deny)
				enrollments.DELETE("/:id", can(permission.DeleteEnrollment), h.Enrollment.DeleteEnrollment)
			}

			export := authorized.Group("/export")
			{
				export.GET("/enrollments", can(permission.ViewEnrollment), h.Export.ExportEnrollments)
			}
		}
	}

	return r
}

// readiness reports 503 until the database, and redis when configured,
// answer a ping.
func readiness(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}
		ready := true

		if d.DB != nil {
			if err := database.Ping(c.Request.Context(), d.DB, readyTimeout); err != nil {
				checks["database"] = "down"
				ready = false
			} else {
				checks["database"] = "ok"
			}
		}
		if d.Redis != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
			err := d.Redis.Ping(ctx)
			cancel()
			if err != nil {
				checks["redis"] = "down"
				ready = false
			} else {
				checks["redis"] = "ok"
			}
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "unavailable"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
