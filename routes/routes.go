package routes

import (
	"onboarding-tracker-api/controllers"
	"onboarding-tracker-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/register", controllers.Register)
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Onboarding Tracker API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Applications
			applications := protected.Group("/applications")
			{
				applications.GET("", controllers.ListApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.POST("", controllers.CreateDraft)
				applications.PUT("/:id", controllers.UpdateDraft)
				applications.POST("/:id/submit", controllers.SubmitApplication)
				applications.GET("/:id/timeline", controllers.GetTimeline)

				// Only admin can move an application beyond submitted
				applications.POST("/:id/review", middleware.RequireAdmin(), controllers.BeginReview)
				applications.POST("/:id/approve", middleware.RequireAdmin(), controllers.ApproveApplication)
				applications.POST("/:id/reject", middleware.RequireAdmin(), controllers.RejectApplication)
			}

			// Documents
			documents := protected.Group("/documents")
			{
				documents.POST("/upload/:id", controllers.UploadDocument)
				documents.GET("/application/:id", controllers.GetDocuments)
				documents.GET("/download/:document_id", controllers.DownloadDocument)
				documents.DELETE("/:document_id", controllers.DeleteDocument)
				documents.POST("/:document_id/verify", middleware.RequireAdmin(), controllers.VerifyDocument)
				documents.GET("/types", controllers.GetDocumentTypes)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Admin
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/dashboard/stats", controllers.GetDashboardStats)
				admin.PUT("/profiles/:id/role", controllers.UpdateProfileRole)
			}
		}
	}
}
