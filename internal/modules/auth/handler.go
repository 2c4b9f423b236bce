package auth

import (
	"net/http"

	"logitrack-server/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// Handler handles the admin login endpoint.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts the login endpoint on the public group.
func (h *Handler) RegisterRoutes(public *echo.Group) {
	public.POST("/auth/login", h.Login)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	token, err := h.svc.Login(req.Password)
	if err != nil {
		if err == models.ErrInvalidCredentials {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid password"})
		}
		c.Logger().Error("Handler.Login: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to log in"})
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}
