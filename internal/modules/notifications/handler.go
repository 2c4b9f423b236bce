package notifications

import (
	"net/http"

	"logitrack-server/internal/models"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the notifications feed.
type Handler struct {
	svc ServiceInterface
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the feed endpoints on the admin group.
func (h *Handler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/notifications", h.ListNotifications)
	admin.POST("/notifications/:id/read", h.MarkRead)
}

func (h *Handler) ListNotifications(c echo.Context) error {
	feed := h.svc.List(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]interface{}{"notifications": feed, "total": len(feed)})
}

func (h *Handler) MarkRead(c echo.Context) error {
	if err := h.svc.MarkRead(c.Request().Context(), c.Param("id")); err != nil {
		c.Logger().Error("Handler.MarkRead: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to mark notification read"})
	}
	return c.NoContent(http.StatusNoContent)
}
