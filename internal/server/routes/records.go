package routes

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/openfsq/qms/backend/internal/db"
	"github.com/openfsq/qms/backend/internal/server/middleware"
	"github.com/openfsq/qms/backend/internal/store"
	"github.com/openfsq/qms/backend/internal/workflow"
	"github.com/openfsq/qms/backend/pkg/logger"
)

// RecordResource binds a URL path segment to a record module.
type RecordResource struct {
	Path   string
	Module string
}

// RecordResources lists the record modules exposed over HTTP.
func RecordResources() []RecordResource {
	return []RecordResource{
		{Path: "findings", Module: workflow.ModuleAuditFinding},
		{Path: "non-conformances", Module: workflow.ModuleNonConformance},
		{Path: "capas", Module: workflow.ModuleCAPA},
		{Path: "complaints", Module: workflow.ModuleComplaint},
		{Path: "trainings", Module: workflow.ModuleTraining},
	}
}

type recordResponse struct {
	Message string              `json:"message"`
	Record  *workflow.RecordRef `json:"record,omitempty"`
}

// CreateRecordHandler creates a record of the module directly, outside any
// workflow trigger. The payload goes through the same typed validation the
// engine uses.
func CreateRecordHandler(module string) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload := make(map[string]any)
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, recordResponse{
				Message: "Invalid request body",
			})
		}

		user := c.(*middleware.AppContext).User
		if user == nil {
			return c.JSON(http.StatusUnauthorized, recordResponse{
				Message: "Unauthorized",
			})
		}

		conn := c.(*middleware.AppContext).App.DBConn
		creator, err := store.NewRecordCreator(conn, module)
		if err != nil {
			logger.Error("Failed to build record creator", "module", module, "err", err)
			return c.JSON(http.StatusInternalServerError, recordResponse{
				Message: "Internal server error",
			})
		}

		record, err := creator.Create(c.Request().Context(), payload, user.UserID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, recordResponse{
				Message: err.Error(),
			})
		}

		return c.JSON(http.StatusCreated, recordResponse{
			Message: "Record created successfully",
			Record:  &record,
		})
	}
}

// ListRecordsHandler lists the records of the module, newest first.
func ListRecordsHandler(module string) echo.HandlerFunc {
	type listResponse struct {
		Message string             `json:"message"`
		Records []db.RecordSummary `json:"records,omitempty"`
	}

	return func(c echo.Context) error {
		conn := c.(*middleware.AppContext).App.DBConn
		records, err := db.New(conn).ListRecords(c.Request().Context(), module)
		if err != nil {
			logger.Error("Failed to list records", "module", module, "err", err)
			return c.JSON(http.StatusInternalServerError, listResponse{
				Message: "Internal server error",
			})
		}

		return c.JSON(http.StatusOK, listResponse{
			Message: "OK",
			Records: records,
		})
	}
}

// GetRecordHandler returns one record by public ID.
func GetRecordHandler(module string) echo.HandlerFunc {
	type getResponse struct {
		Message string            `json:"message"`
		Record  *db.RecordSummary `json:"record,omitempty"`
	}

	return func(c echo.Context) error {
		id := c.Param("id")
		conn := c.(*middleware.AppContext).App.DBConn

		record, err := db.New(conn).GetRecordByPublicID(c.Request().Context(), module, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, getResponse{
				Message: "Record not found",
			})
		}
		if err != nil {
			logger.Error("Failed to get record", "module", module, "id", id, "err", err)
			return c.JSON(http.StatusInternalServerError, getResponse{
				Message: "Internal server error",
			})
		}

		return c.JSON(http.StatusOK, getResponse{
			Message: "OK",
			Record:  &record,
		})
	}
}

// DeleteRecordHandler removes a record and cascades its relationship edges in
// the same transaction.
func DeleteRecordHandler(module string) echo.HandlerFunc {
	type deleteResponse struct {
		Message string `json:"message"`
	}

	return func(c echo.Context) error {
		id := c.Param("id")
		ctx := c.Request().Context()
		conn := c.(*middleware.AppContext).App.DBConn

		tx, err := conn.Begin(ctx)
		if err != nil {
			logger.Error("Failed to begin transaction", "err", err)
			return c.JSON(http.StatusInternalServerError, deleteResponse{
				Message: "Internal server error",
			})
		}
		defer tx.Rollback(ctx)
		qtx := db.New(conn).WithTx(tx)

		deleted, err := qtx.DeleteRecordByPublicID(ctx, module, id)
		if err != nil {
			logger.Error("Failed to delete record", "module", module, "id", id, "err", err)
			return c.JSON(http.StatusInternalServerError, deleteResponse{
				Message: "Internal server error",
			})
		}
		if deleted == 0 {
			return c.JSON(http.StatusNotFound, deleteResponse{
				Message: "Record not found",
			})
		}

		err = qtx.DeleteRelationshipsForEntity(ctx, db.DeleteRelationshipsForEntityParams{
			EntityType: module,
			EntityID:   id,
		})
		if err != nil {
			logger.Error("Failed to delete relationships", "module", module, "id", id, "err", err)
			return c.JSON(http.StatusInternalServerError, deleteResponse{
				Message: "Internal server error",
			})
		}

		if err := tx.Commit(ctx); err != nil {
			logger.Error("Failed to commit transaction", "err", err)
			return c.JSON(http.StatusInternalServerError, deleteResponse{
				Message: "Internal server error",
			})
		}

		return c.JSON(http.StatusOK, deleteResponse{
			Message: "Record deleted successfully",
		})
	}
}
