package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openfsq/qms/backend/internal/server/middleware"
	"github.com/openfsq/qms/backend/internal/workflow"
	"github.com/openfsq/qms/backend/pkg/logger"
)

// TriggerWorkflowHandler fires a workflow action against a source record.
// Replaying a trigger that already completed returns the prior execution with
// 200; a fresh trigger returns 201.
func TriggerWorkflowHandler(c echo.Context) error {
	type triggerBody struct {
		Action  string             `json:"action" validate:"required"`
		Source  workflow.EntityRef `json:"source" validate:"required"`
		Payload map[string]any     `json:"payload"`
	}

	type triggerResponse struct {
		Message   string              `json:"message"`
		Execution *workflow.Execution `json:"execution,omitempty"`
	}

	data := new(triggerBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, triggerResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, triggerResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, triggerResponse{
			Message: "Unauthorized",
		})
	}

	engine := c.(*middleware.AppContext).App.Engine
	exec, created, err := engine.Trigger(c.Request().Context(), data.Action, data.Source, data.Payload, user.UserID)
	if err != nil {
		var unknownErr *workflow.UnknownActionError
		if errors.As(err, &unknownErr) {
			return c.JSON(http.StatusNotFound, triggerResponse{
				Message: unknownErr.Error(),
			})
		}
		var creationErr *workflow.TargetCreationError
		if errors.As(err, &creationErr) {
			return c.JSON(http.StatusUnprocessableEntity, triggerResponse{
				Message: creationErr.Error(),
			})
		}
		logger.Error("Failed to trigger workflow", "action", data.Action, "err", err)
		return c.JSON(http.StatusInternalServerError, triggerResponse{
			Message: "Internal server error",
		})
	}

	if !created {
		return c.JSON(http.StatusOK, triggerResponse{
			Message:   "Action was already completed for this record",
			Execution: &exec,
		})
	}
	return c.JSON(http.StatusCreated, triggerResponse{
		Message:   "Workflow action completed",
		Execution: &exec,
	})
}
