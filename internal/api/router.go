package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/constructhq/defect-tracker/internal/auth"
	"github.com/constructhq/defect-tracker/internal/database"
	pkgauth "github.com/constructhq/defect-tracker/pkg/auth"
)

// SetupRouter wires every route with its role allow-set. The route table
// below is the single declarative operation-to-roles mapping; handlers never
// re-check roles (the workflow engine's per-state gate is the one
// exception).
func SetupRouter(handler *Handler, authHandler *AuthHandler, db *database.Database, jwtManager *pkgauth.JWTManager, uploadDir string, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger), cors.Default())

	router.Static("/uploads", uploadDir)

	api := router.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		authed := api.Group("", auth.Authenticate(db, jwtManager))
		{
			authed.GET("/me", authHandler.Me)
			authed.GET("/projects", handler.ListProjects)
			authed.GET("/projects/:id", handler.GetProject)
			authed.GET("/users", auth.RequireRoles(auth.AdminRoles...), handler.ListUsers)
			authed.GET("/users/engineers", handler.ListEngineers)

			defects := authed.Group("/defects")
			{
				defects.GET("", handler.ListDefects)
				defects.POST("", auth.RequireRoles(auth.EngineerRoles...), handler.CreateDefect)
				defects.GET("/stats", handler.GetStats)
				defects.GET("/export", auth.RequireRoles(auth.ManagerRoles...), handler.ExportDefects)
				defects.GET("/:id", handler.GetDefect)
				defects.PATCH("/:id", auth.RequireRoles(auth.EngineerRoles...), handler.UpdateDefect)
				defects.DELETE("/:id", auth.RequireRoles(auth.ManagerRoles...), handler.DeleteDefect)
				defects.PATCH("/:id/status", auth.RequireRoles(auth.EngineerRoles...), handler.TransitionDefect)
				defects.POST("/:id/comments", handler.AddComment)
				defects.POST("/:id/attachments", auth.RequireRoles(auth.EngineerRoles...), handler.AddAttachment)
				defects.DELETE("/:id/attachments/:attachmentId", auth.RequireRoles(auth.EngineerRoles...), handler.RemoveAttachment)
			}
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "healthy",
		})
	})

	return router
}

// RequestLogger emits one structured log line per request.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
