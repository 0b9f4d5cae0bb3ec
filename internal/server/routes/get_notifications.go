package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openfsq/qms/backend/internal/db"
	"github.com/openfsq/qms/backend/internal/server/middleware"
	"github.com/openfsq/qms/backend/pkg/logger"
)

// GetNotificationsHandler lists the calling user's notifications, newest first.
func GetNotificationsHandler(c echo.Context) error {
	type notificationsResponse struct {
		Message       string            `json:"message"`
		Notifications []db.Notification `json:"notifications,omitempty"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, notificationsResponse{
			Message: "Unauthorized",
		})
	}

	conn := c.(*middleware.AppContext).App.DBConn
	notifications, err := db.New(conn).GetNotificationsForRecipient(c.Request().Context(), user.UserID)
	if err != nil {
		logger.Error("Failed to list notifications", "err", err)
		return c.JSON(http.StatusInternalServerError, notificationsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, notificationsResponse{
		Message:       "OK",
		Notifications: notifications,
	})
}
