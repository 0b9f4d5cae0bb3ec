package server

import (
	"github.com/labstack/echo/v4"

	"github.com/openfsq/qms/backend/internal/server/middleware"
	"github.com/openfsq/qms/backend/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Workflow routes
	apiRoutes.GET("/workflows/suggestions", routes.GetWorkflowSuggestionsHandler, middleware.RequirePermission("workflow.view"))
	apiRoutes.POST("/workflows/trigger", routes.TriggerWorkflowHandler, middleware.RequirePermission("workflow.trigger"))
	apiRoutes.GET("/workflows/executions", routes.GetWorkflowExecutionsHandler, middleware.RequirePermission("workflow.view"))

	// Relationship routes
	apiRoutes.GET("/relationships", routes.GetRelationshipsHandler, middleware.RequirePermission("relationship.view"))
	apiRoutes.POST("/relationships", routes.CreateRelationshipHandler, middleware.RequirePermission("relationship.create"))

	// Record routes, one resource per quality module
	for _, res := range routes.RecordResources() {
		apiRoutes.POST("/"+res.Path, routes.CreateRecordHandler(res.Module), middleware.RequirePermission("record.create"))
		apiRoutes.GET("/"+res.Path, routes.ListRecordsHandler(res.Module), middleware.RequirePermission("record.view"))
		apiRoutes.GET("/"+res.Path+"/:id", routes.GetRecordHandler(res.Module), middleware.RequirePermission("record.view"))
		apiRoutes.DELETE("/"+res.Path+"/:id", routes.DeleteRecordHandler(res.Module), middleware.RequirePermission("record.delete"))
	}

	// Notification routes
	apiRoutes.GET("/notifications", routes.GetNotificationsHandler, middleware.RequirePermission("notification.view"))
}
