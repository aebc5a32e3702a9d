package handlers

import (
	"net/http"

	"capstone-tracker/middleware"
	"capstone-tracker/models"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every handler the API mounts.
type Handlers struct {
	Auth         *AuthHandler
	Project      *ProjectHandler
	Defense      *DefenseHandler
	Manuscript   *ManuscriptHandler
	Capstone     *CapstoneHandler
	Notification *NotificationHandler
	Draft        *DraftHandler
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RegisterRoutes mounts the health check and the /api/v1 API on router.
func RegisterRoutes(router *gin.Engine, h Handlers) {
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/profile", h.Auth.GetProfile)
			protected.POST("/users", middleware.RequireRole(models.RoleAdmin), h.Auth.CreateAccount)

			projects := protected.Group("/projects")
			{
				projects.POST("", h.Project.CreateProject)
				projects.GET("", h.Project.GetProjects)
				projects.GET("/lineage", h.Project.GetLineageByTitle)
				projects.GET("/:id", h.Project.GetProject)
				projects.PUT("/:id", h.Project.UpdateProject)
				projects.DELETE("/:id", h.Project.DeleteProject)
				projects.GET("/:id/versions", h.Project.GetProjectVersions)
				projects.POST("/:id/adviser", middleware.RequireRole(models.RoleDean), h.Project.AssignAdviser)
				projects.POST("/:id/approvals/:stage", h.Project.RecordDecision)
				projects.GET("/:id/progress", h.Project.GetProgress)
				projects.GET("/:id/letter", h.Project.GetLetter)

				projects.GET("/:id/defenses/:kind", h.Defense.GetDefense)
				projects.POST("/:id/defenses/:kind", h.Defense.SubmitDefense)
				projects.PUT("/:id/defenses/:kind", h.Defense.EditDefense)
				projects.DELETE("/:id/defenses/:kind", h.Defense.UnsubmitDefense)
				projects.PUT("/:id/defenses/:kind/schedule", h.Defense.ScheduleDefense)
				projects.PUT("/:id/defenses/:kind/decision", h.Defense.DecideDefense)

				projects.GET("/:id/manuscript", h.Manuscript.GetManuscript)
				projects.POST("/:id/manuscript", h.Manuscript.UploadManuscript)
				projects.PUT("/:id/manuscript", h.Manuscript.EditManuscript)
				projects.DELETE("/:id/manuscript", h.Manuscript.CancelManuscript)
				projects.PUT("/:id/manuscript/review", middleware.RequireRole(models.RoleGrammarian), h.Manuscript.ReviewManuscript)

				projects.GET("/:id/draft", h.Draft.GetDraft)
				projects.PUT("/:id/draft", h.Draft.UpdateDraft)
				projects.DELETE("/:id/draft", h.Draft.DiscardDraft)
				projects.POST("/:id/draft/export", h.Draft.ExportDraft)
			}

			protected.GET("/manuscripts/queue", middleware.RequireRole(models.RoleGrammarian), h.Manuscript.GetQueue)
			protected.GET("/drafts", h.Draft.GetDrafts)

			capstones := protected.Group("/capstones")
			{
				capstones.POST("", h.Capstone.SubmitCapstone)
				capstones.GET("", h.Capstone.GetCapstones)
				capstones.GET("/:id", h.Capstone.GetCapstone)
				capstones.PUT("/:id/verification", middleware.RequireRole(models.RoleAdmin), h.Capstone.VerifyCapstone)
				capstones.POST("/:id/bookmark", h.Capstone.AddBookmark)
				capstones.DELETE("/:id/bookmark", h.Capstone.RemoveBookmark)
			}
			protected.GET("/bookmarks", h.Capstone.GetBookmarks)

			protected.GET("/notifications", h.Notification.GetNotifications)
			protected.PUT("/notifications/:id/read", h.Notification.MarkRead)
		}
	}
}
