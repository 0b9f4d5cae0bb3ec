package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openfsq/qms/backend/internal/server/middleware"
	"github.com/openfsq/qms/backend/internal/workflow"
	"github.com/openfsq/qms/backend/pkg/logger"
)

// CreateRelationshipHandler links two existing records manually. Manual links
// create no execution row; re-linking the same pair is reported as success
// with the status code signalling nothing new was written.
func CreateRelationshipHandler(c echo.Context) error {
	type createRelationshipBody struct {
		Source workflow.EntityRef        `json:"source" validate:"required"`
		Target workflow.EntityRef        `json:"target" validate:"required"`
		Type   workflow.RelationshipType `json:"relationship_type" validate:"required,oneof=generated-from requires references triggers"`
	}

	type createRelationshipResponse struct {
		Message      string                 `json:"message"`
		Relationship *workflow.Relationship `json:"relationship,omitempty"`
	}

	data := new(createRelationshipBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, createRelationshipResponse{
			Message: "Unauthorized",
		})
	}

	engine := c.(*middleware.AppContext).App.Engine
	relationship, err := engine.Link(c.Request().Context(), data.Source, data.Target, data.Type, user.UserID)
	if err != nil {
		var dup *workflow.DuplicateRelationshipError
		if errors.As(err, &dup) {
			return c.JSON(http.StatusOK, createRelationshipResponse{
				Message: "Records are already linked",
			})
		}
		logger.Error("Failed to create relationship", "err", err)
		return c.JSON(http.StatusInternalServerError, createRelationshipResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusCreated, createRelationshipResponse{
		Message:      "Relationship created successfully",
		Relationship: &relationship,
	})
}
