// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/container"
	"github.com/AtRiskMedia/blockbuilder-go/internal/application/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/blockbuilder-go/pkg/config"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestMiddleware(container.PerfTracker, container.Logger))
	r.Use(middleware.CORSMiddleware(config.CORSOrigins))

	// Uploaded images are served straight from the media directory
	r.Static(config.MediaURLPrefix, config.MediaDir)

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger)
	widgetHandlers := handlers.NewWidgetHandlers(container.Registry, container.StarterService)
	sessionHandlers := handlers.NewSessionHandlers(container.EditorService, container.DocumentService, container.StarterService, container.Logger)
	exportHandlers := handlers.NewExportHandlers(container.EditorService, container.Logger)
	documentHandlers := handlers.NewDocumentHandlers(container.DocumentService, container.Logger)
	deliveryHandlers := handlers.NewDeliveryHandlers(container.DeliveryService, container.MediaService)
	previewHandlers := handlers.NewPreviewHandlers(container.EditorService, container.Broadcaster, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container)

	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandlers.GetHealth)

		auth := api.Group("/auth")
		{
			auth.GET("/status", authHandlers.GetAuthStatus)
			auth.POST("/login", authHandlers.PostLogin)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(container.AuthService, container.Logger))
		{
			protected.GET("/widgets", widgetHandlers.GetWidgets)
			protected.GET("/widgets/:type", widgetHandlers.GetWidget)
			protected.GET("/starters", widgetHandlers.GetStarters)

			sessions := protected.Group("/sessions")
			{
				sessions.POST("", sessionHandlers.PostSession)
				sessions.GET("", sessionHandlers.GetSessions)
				sessions.GET("/:id", sessionHandlers.GetSession)
				sessions.DELETE("/:id", sessionHandlers.DeleteSession)

				// Tree mutations
				sessions.POST("/:id/elements", sessionHandlers.PostElement)
				sessions.PATCH("/:id/elements/:elementId", sessionHandlers.PatchElement)
				sessions.DELETE("/:id/elements/:elementId", sessionHandlers.DeleteElement)
				sessions.POST("/:id/elements/:elementId/duplicate", sessionHandlers.PostDuplicate)
				sessions.POST("/:id/elements/:elementId/move", sessionHandlers.PostMove)
				sessions.POST("/:id/drop", sessionHandlers.PostDrop)

				// History and editor state
				sessions.POST("/:id/undo", sessionHandlers.PostUndo)
				sessions.POST("/:id/redo", sessionHandlers.PostRedo)
				sessions.PUT("/:id/selection", sessionHandlers.PutSelection)
				sessions.PUT("/:id/viewport", sessionHandlers.PutViewport)
				sessions.PUT("/:id/styles", sessionHandlers.PutStyles)
				sessions.PUT("/:id/title", sessionHandlers.PutTitle)

				// Rendering, export and import
				sessions.GET("/:id/render", exportHandlers.GetRender)
				sessions.GET("/:id/export", exportHandlers.GetExport)
				sessions.GET("/:id/document", exportHandlers.GetDocument)
				sessions.POST("/:id/import/markup", middleware.BodyLimit(config.MaxImportBodyMB), exportHandlers.PostImportMarkup)
				sessions.POST("/:id/import/document", middleware.BodyLimit(config.MaxImportBodyMB), exportHandlers.PostImportDocument)

				// Persistence and delivery
				sessions.POST("/:id/save", documentHandlers.PostSave)
				sessions.POST("/:id/send-test", deliveryHandlers.PostSendTest)
				sessions.GET("/:id/preview", previewHandlers.GetPreview)
			}

			documents := protected.Group("/documents")
			{
				documents.GET("", documentHandlers.GetDocuments)
				documents.GET("/:id", documentHandlers.GetDocument)
				documents.DELETE("/:id", middleware.RequireRole(services.RoleAdmin), documentHandlers.DeleteDocument)
			}

			protected.POST("/media", middleware.BodyLimit(config.MaxUploadBodyMB), deliveryHandlers.PostMedia)
			protected.GET("/media/:fileId", deliveryHandlers.GetMedia)
		}
	}

	return r
}
