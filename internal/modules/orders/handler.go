package orders

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"logitrack-server/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate // For request body validation
}

// NewHandler creates a new order handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts the public tracking lookup and the admin CRUD
// surface on the given route groups.
func (h *Handler) RegisterRoutes(public, admin *echo.Group) {
	public.GET("/track/:code", h.TrackOrder)

	admin.GET("/orders", h.ListOrders)
	admin.POST("/orders", h.SaveOrder)
	admin.DELETE("/orders/:id", h.DeleteOrder)
	admin.GET("/orders/export", h.ExportOrders)
}

// TrackOrder is the public shipment lookup by tracking code.
func (h *Handler) TrackOrder(c echo.Context) error {
	order, err := h.svc.TrackOrder(c.Request().Context(), c.Param("code"))
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Shipment code not found"})
		}
		c.Logger().Error("Handler.TrackOrder: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to look up shipment"})
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) ListOrders(c echo.Context) error {
	orders := h.svc.ListOrders(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]interface{}{"orders": orders, "total": len(orders)})
}

func (h *Handler) SaveOrder(c echo.Context) error {
	var req models.SaveOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	order, err := h.svc.SaveOrder(c.Request().Context(), req)
	if err != nil {
		if err == models.ErrMissingRequiredFields {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
		}
		c.Logger().Error("Handler.SaveOrder: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to save order"})
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) DeleteOrder(c echo.Context) error {
	if removed := h.svc.DeleteOrder(c.Request().Context(), c.Param("id")); !removed {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

var exportHeaders = []string{"Order Code", "Customer", "Product", "Status", "Price", "Location"}

// ExportOrders streams the current order list as a CSV or XLSX download.
func (h *Handler) ExportOrders(c echo.Context) error {
	orders := h.svc.ListOrders(c.Request().Context())

	if c.QueryParam("format") == "xlsx" {
		return h.exportXLSX(c, orders)
	}
	return h.exportCSV(c, orders)
}

func (h *Handler) exportCSV(c echo.Context, orders []models.Order) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	res.WriteHeader(http.StatusOK)

	w := csv.NewWriter(res)
	if err := w.Write(exportHeaders); err != nil {
		return err
	}
	for _, o := range orders {
		row := []string{
			o.OrderCode,
			o.CustomerName,
			o.ProductName,
			string(o.Status),
			strconv.FormatFloat(o.TotalPrice, 'f', -1, 64),
			o.CurrentPhysicalLocation,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (h *Handler) exportXLSX(c echo.Context, orders []models.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	f.SetSheetName("Sheet1", sheet)
	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	for i, o := range orders {
		values := []interface{}{
			o.OrderCode,
			o.CustomerName,
			o.ProductName,
			string(o.Status),
			o.TotalPrice,
			o.CurrentPhysicalLocation,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	res.WriteHeader(http.StatusOK)
	if err := f.Write(res); err != nil {
		return fmt.Errorf("handler.ExportOrders: %w", err)
	}
	return nil
}
