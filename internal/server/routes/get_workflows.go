package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openfsq/qms/backend/internal/server/middleware"
	"github.com/openfsq/qms/backend/internal/workflow"
	"github.com/openfsq/qms/backend/pkg/logger"
)

// GetWorkflowSuggestionsHandler returns the follow-up actions the rule table
// suggests for a source record. Besides module and status, every other query
// parameter is passed through as a record attribute for the rule predicates
// (severity, priority, effectiveness, ...).
func GetWorkflowSuggestionsHandler(c echo.Context) error {
	type suggestionsResponse struct {
		Message     string                     `json:"message"`
		Suggestions []workflow.SuggestedAction `json:"suggestions"`
	}

	module := c.QueryParam("module")
	status := c.QueryParam("status")
	if module == "" {
		return c.JSON(http.StatusBadRequest, suggestionsResponse{
			Message: "Missing module parameter",
		})
	}

	attrs := make(map[string]any)
	for key, values := range c.QueryParams() {
		if key == "module" || key == "status" || len(values) == 0 {
			continue
		}
		attrs[key] = values[0]
	}

	engine := c.(*middleware.AppContext).App.Engine
	suggestions := engine.Suggestions(module, status, attrs)

	return c.JSON(http.StatusOK, suggestionsResponse{
		Message:     "OK",
		Suggestions: suggestions,
	})
}

// GetWorkflowExecutionsHandler lists the audit trail entries touching a record.
func GetWorkflowExecutionsHandler(c echo.Context) error {
	type executionsParams struct {
		EntityType string `query:"entity_type" validate:"required"`
		EntityID   string `query:"entity_id" validate:"required"`
	}

	type executionsResponse struct {
		Message    string               `json:"message"`
		Executions []workflow.Execution `json:"executions,omitempty"`
	}

	params := new(executionsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, executionsResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, executionsResponse{
			Message: "Invalid request",
		})
	}

	engine := c.(*middleware.AppContext).App.Engine
	executions, err := engine.ListExecutions(c.Request().Context(), params.EntityType, params.EntityID)
	if err != nil {
		logger.Error("Failed to list executions", "err", err)
		return c.JSON(http.StatusInternalServerError, executionsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, executionsResponse{
		Message:    "OK",
		Executions: executions,
	})
}
