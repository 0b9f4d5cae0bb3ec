package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openfsq/qms/backend/internal/server/middleware"
	"github.com/openfsq/qms/backend/internal/workflow"
	"github.com/openfsq/qms/backend/pkg/logger"
)

// GetRelationshipsHandler lists every edge where the record appears as source
// or target, newest first.
func GetRelationshipsHandler(c echo.Context) error {
	type relationshipsParams struct {
		EntityType string `query:"entity_type" validate:"required"`
		EntityID   string `query:"entity_id" validate:"required"`
	}

	type relationshipsResponse struct {
		Message       string                  `json:"message"`
		Relationships []workflow.Relationship `json:"relationships,omitempty"`
	}

	params := new(relationshipsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, relationshipsResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, relationshipsResponse{
			Message: "Invalid request",
		})
	}

	engine := c.(*middleware.AppContext).App.Engine
	relationships, err := engine.ListRelationships(c.Request().Context(), params.EntityType, params.EntityID)
	if err != nil {
		logger.Error("Failed to list relationships", "err", err)
		return c.JSON(http.StatusInternalServerError, relationshipsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, relationshipsResponse{
		Message:       "OK",
		Relationships: relationships,
	})
}
